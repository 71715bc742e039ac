package ux

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/softcopy/internal/bridge"
	"github.com/jorge-barreto/softcopy/internal/state"
)

// StatusView is everything RenderStatus prints.
type StatusView struct {
	Steps     []string
	State     *state.State
	Timing    *state.Timing
	Request   *bridge.Request
	Stale     bool
	Pending   []string
	OutputDir string
}

// RenderStatus prints run progress, the outstanding request and deliverables.
func RenderStatus(v StatusView) {
	st := v.State
	total := len(v.Steps)

	if st.Step >= total {
		fmt.Printf("%sState:%s   %s%s%s%s\n", Bold, Reset, Green, Bold, st.Status, Reset)
	} else {
		fmt.Printf("%sState:%s   %d/%d (%s) — %s\n",
			Bold, Reset, st.Step+1, total, v.Steps[st.Step], st.Status)
	}
	if st.Mode != "" {
		fmt.Printf("%sMode:%s    %s\n", Bold, Reset, st.Mode)
	}
	if name := st.Variables["software_name"]; name != "" {
		fmt.Printf("%sSoftware:%s %s\n", Bold, Reset, name)
	}

	if st.Step > 0 {
		fmt.Printf("\n%sCompleted:%s\n", Bold, Reset)
		for i := 0; i < st.Step && i < total; i++ {
			dur := ""
			if v.Timing != nil {
				if d := v.Timing.LastDuration(v.Steps[i]); d != "" {
					dur = "(" + d + ")"
				}
			}
			fmt.Printf("  %s%d%s  %-14s %sdone%s  %s\n",
				Dim, i+1, Reset, v.Steps[i], Green, Reset, dur)
		}
	}
	if st.Step < total {
		fmt.Printf("\n%sRemaining:%s\n", Bold, Reset)
		for i := st.Step; i < total; i++ {
			marker := "  "
			if i == st.Step {
				marker = fmt.Sprintf("%s→%s ", Yellow, Reset)
			}
			fmt.Printf("  %s%s%d%s  %s\n", marker, Dim, i+1, Reset, v.Steps[i])
		}
	}

	fmt.Printf("\n%sRequest:%s\n", Bold, Reset)
	if v.Request == nil {
		fmt.Printf("  %s(none)%s\n", Dim, Reset)
	} else {
		stale := ""
		if v.Stale {
			stale = fmt.Sprintf(" %s(stale: pid %d not running)%s", Yellow, v.Request.PID, Reset)
		}
		fmt.Printf("  %s → %s%s\n", v.Request.TaskType, v.Request.OutputFile, stale)
	}
	if len(v.Pending) > 0 {
		fmt.Printf("\n%sPending markers:%s\n", Bold, Reset)
		for _, p := range v.Pending {
			fmt.Printf("  %s\n", p)
		}
	}

	fmt.Printf("\n%sDeliverables:%s\n", Bold, Reset)
	entries, err := os.ReadDir(v.OutputDir)
	if err != nil || len(entries) == 0 {
		fmt.Printf("  %s(none)%s\n", Dim, Reset)
		fmt.Println()
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			fmt.Printf("  %s\n", filepath.Join(v.OutputDir, e.Name()))
		}
	}
	fmt.Println()
}
