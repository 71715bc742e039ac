// Package doctor checks a project for problems that stop a run and can ask
// claude to diagnose a failed one.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/jorge-barreto/softcopy/internal/bridge"
	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/dispatch"
	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/ux"
)

const maxLogLines = 200

const diagPrompt = `You are diagnosing a failed softcopy run. softcopy generates software copyright
documents: it requests a requirements breakdown, one HTML page per module and
descriptive text through a file handshake or the claude CLI, then renders
Markdown deliverables from templates.

## Failed Step
%s

## Run Log (last %d lines, JSON)
%s
%s
Instructions:
1. Identify what went wrong from the log.
2. Classify it as a PROJECT problem (config, templates, handshake left behind)
   or a GENERATION problem (unparseable or missing responses).
3. Suggest specific fixes.
4. Recommend the next command to run, e.g. softcopy doctor --clean or softcopy run.

Be direct and concise. Focus on actionable advice.`

// Level grades a check result.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelFail
)

// Finding is the result of one check.
type Finding struct {
	Check   string
	Level   Level
	Message string
}

// Options configures a doctor run.
type Options struct {
	Config *config.Config
	Layout *state.Layout
	Mode   string
	// Clean removes a stale request descriptor and orphaned pending markers.
	Clean bool
	// Diagnose asks Claude about the last failed or interrupted run.
	Diagnose bool
	Claude   *dispatch.Claude
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Check runs every check and returns the findings in order.
func Check(opts Options) []Finding {
	var out []Finding
	out = append(out, checkBinary(opts)...)
	out = append(out, checkTemplates(opts)...)
	out = append(out, checkRequest(opts)...)
	out = append(out, checkState(opts)...)
	return out
}

func checkBinary(opts Options) []Finding {
	cmd := opts.Config.Claude.Command
	err := dispatch.Preflight(config.ModeCLI, cmd)
	switch {
	case err == nil:
		return []Finding{{"claude", LevelOK, cmd + " found"}}
	case opts.Mode == config.ModeCLI:
		return []Finding{{"claude", LevelFail, err.Error()}}
	default:
		return []Finding{{"claude", LevelWarn, cmd + " not found; only the file handshake modes are available"}}
	}
}

func checkTemplates(opts Options) []Finding {
	known := make(map[string]bool, len(opts.Config.Variables))
	for _, v := range opts.Config.Variables {
		known[v.Key] = true
	}

	var out []Finding
	for _, d := range opts.Config.Documents {
		path := opts.Layout.TemplatePath(d.Template)
		data, err := os.ReadFile(path)
		if err != nil {
			out = append(out, Finding{"template", LevelFail, fmt.Sprintf("%s: %v", d.Template, err)})
			continue
		}
		var unknown []string
		seen := map[string]bool{}
		for _, m := range placeholderRe.FindAllStringSubmatch(string(data), -1) {
			key := m[1]
			if known[key] || config.IsGenerated(key) || seen[key] {
				continue
			}
			seen[key] = true
			unknown = append(unknown, key)
		}
		if len(unknown) > 0 {
			sort.Strings(unknown)
			out = append(out, Finding{"template", LevelWarn,
				fmt.Sprintf("%s: undeclared placeholders left as written: %s", d.Template, strings.Join(unknown, ", "))})
			continue
		}
		out = append(out, Finding{"template", LevelOK, d.Template})
	}
	return out
}

func checkRequest(opts Options) []Finding {
	m := bridge.NewMailbox(opts.Layout.Prompts, opts.Layout.Process, nil)
	var out []Finding

	live := ""
	req, err := m.Current()
	switch {
	case errors.Is(err, bridge.ErrNoRequest):
		out = append(out, Finding{"request", LevelOK, "no request outstanding"})
	case err != nil:
		out = append(out, Finding{"request", LevelFail, fmt.Sprintf("unreadable descriptor: %v", err)})
		if opts.Clean {
			out = append(out, clean("request", m.Clear(), "descriptor removed"))
		}
	default:
		stale, _ := m.Stale()
		if stale {
			out = append(out, Finding{"request", LevelWarn,
				fmt.Sprintf("stale descriptor for %s (pid %d not running)", req.OutputFile, req.PID)})
			if opts.Clean {
				out = append(out, clean("request", m.Clear(), "stale descriptor removed"))
			}
		} else {
			live = req.OutputFile
			out = append(out, Finding{"request", LevelOK,
				fmt.Sprintf("%s in progress (pid %d)", req.OutputFile, req.PID)})
		}
	}

	markers, err := m.PendingMarkers()
	if err != nil {
		return append(out, Finding{"markers", LevelFail, err.Error()})
	}
	for _, name := range markers {
		if name == live {
			continue
		}
		out = append(out, Finding{"markers", LevelWarn, "orphaned pending marker: " + name})
		if opts.Clean {
			out = append(out, clean("markers", m.RemoveMarker(name), name+" marker removed"))
		}
	}
	return out
}

func clean(check string, err error, done string) Finding {
	if err != nil {
		return Finding{check, LevelFail, err.Error()}
	}
	return Finding{check, LevelOK, done}
}

func checkState(opts Options) []Finding {
	st, err := state.Load(opts.Layout.ConfigDir())
	if err != nil {
		return []Finding{{"state", LevelWarn, fmt.Sprintf("unreadable state: %v", err)}}
	}
	switch st.Status {
	case state.StatusFailed, state.StatusInterrupted:
		return []Finding{{"state", LevelWarn, fmt.Sprintf("last run %s at step %q", st.Status, st.StepName)}}
	default:
		return []Finding{{"state", LevelOK, "last run " + st.Status}}
	}
}

// Run prints the findings and, when requested, a diagnosis of the last run.
// It fails when any check fails.
func Run(ctx context.Context, opts Options) error {
	fmt.Printf("\n%s%s══ Doctor ══%s\n\n", ux.Bold, ux.Cyan, ux.Reset)
	findings := Check(opts)
	failed := 0
	for _, f := range findings {
		switch f.Level {
		case LevelOK:
			ux.OK("%-9s %s", f.Check, f.Message)
		case LevelWarn:
			ux.Warn("%-9s %s", f.Check, f.Message)
		case LevelFail:
			failed++
			fmt.Printf("  %s✗ %-9s %s%s\n", ux.Red, f.Check, f.Message, ux.Reset)
		}
	}

	if opts.Diagnose {
		if err := diagnose(ctx, opts); err != nil {
			return err
		}
	}
	fmt.Println()
	if failed > 0 {
		return fmt.Errorf("doctor found %d problem(s)", failed)
	}
	return nil
}

func diagnose(ctx context.Context, opts Options) error {
	dir := opts.Layout.ConfigDir()
	st, err := state.Load(dir)
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}
	if st.Status != state.StatusFailed && st.Status != state.StatusInterrupted {
		fmt.Println("\nNo failed run to diagnose.")
		return nil
	}

	prompt := buildPrompt(gatherStep(st), gatherLog(opts.Layout.LogPath()), gatherTiming(dir, st.StepName))
	fmt.Printf("\n%s%s══ Doctor: diagnosing step %q ══%s\n\n", ux.Bold, ux.Cyan, st.StepName, ux.Reset)

	c := opts.Claude
	if c == nil {
		c = &dispatch.Claude{Command: opts.Config.Claude.Command}
	}
	out, err := c.Run(ctx, dispatch.Invocation{Prompt: prompt, Model: "sonnet"})
	if err != nil {
		return fmt.Errorf("failed to run claude: %w", err)
	}
	fmt.Println(out)
	ux.ResumeHint()
	return nil
}

func buildPrompt(step, log, timing string) string {
	var timingSection string
	if timing != "" {
		timingSection = fmt.Sprintf("\n## Execution Context\nTiming: %s\n", timing)
	}
	return fmt.Sprintf(diagPrompt, step, maxLogLines, log, timingSection)
}

func gatherStep(st *state.State) string {
	parts := []string{
		fmt.Sprintf("Step: %d (%s)", st.Step+1, st.StepName),
		fmt.Sprintf("Status: %s", st.Status),
	}
	if st.Mode != "" {
		parts = append(parts, fmt.Sprintf("Mode: %s", st.Mode))
	}
	if st.Modules > 0 {
		parts = append(parts, fmt.Sprintf("Modules: %d (fallback: %d)", st.Modules, st.Fallbacks))
	}
	return strings.Join(parts, "\n")
}

func gatherLog(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "(no log file found)"
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) > maxLogLines {
		lines = lines[len(lines)-maxLogLines:]
		return fmt.Sprintf("... (truncated to last %d lines)\n%s", maxLogLines, strings.Join(lines, "\n"))
	}
	return strings.Join(lines, "\n")
}

func gatherTiming(dir, stepName string) string {
	timing, err := state.LoadTiming(dir)
	if err != nil {
		return ""
	}
	var parts []string
	for _, e := range timing.Entries {
		if e.Step != stepName {
			continue
		}
		if e.Duration != "" {
			parts = append(parts, fmt.Sprintf("%s started %s, duration %s",
				e.Step, e.Start.Format("15:04:05"), e.Duration))
		} else {
			parts = append(parts, fmt.Sprintf("%s started %s (did not complete)",
				e.Step, e.Start.Format("15:04:05")))
		}
	}
	return strings.Join(parts, "; ")
}
