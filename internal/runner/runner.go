package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jorge-barreto/softcopy/internal/assemble"
	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/gate"
	"github.com/jorge-barreto/softcopy/internal/generate"
	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/srs"
	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/ux"
	"github.com/jorge-barreto/softcopy/internal/vars"
	"go.uber.org/zap"
)

// ErrDeclined is returned when the operator stops the run at a gate.
var ErrDeclined = errors.New("run stopped at confirmation gate")

// Runner drives the document pipeline.
type Runner struct {
	Config    *config.Config
	Layout    *state.Layout
	State     *state.State
	Timing    *state.Timing
	Generator *generate.Generator
	Prompter  gate.Prompter
	// Answers are pre-supplied variable values keyed by variable name.
	Answers map[string]string
	// SkipInputs fills variables from answers and defaults without asking.
	SkipInputs bool
	// AutoApprove passes every gate.
	AutoApprove bool
	// Modules overrides the module count when positive.
	Modules int
	// Expand enables the expansion request for documents that declare one.
	Expand bool
	Logger *zap.Logger

	vars        *vars.VariableSet
	moduleCount int
	modules     []srs.Module
	artifacts   []generate.Artifact
}

type step struct {
	name        string
	description string
	gate        string
	run         func(ctx context.Context) error
}

func (r *Runner) steps() []step {
	return []step{
		{name: "inputs", description: "collect software information", run: r.collectInputs},
		{name: "requirements", description: "requirements breakdown", run: r.requirements},
		{name: "confirm-frontend", gate: "是否继续生成前端页面？"},
		{name: "frontend", description: "module pages", run: r.frontend},
		{name: "line-count", description: "source line count", run: r.lineCount},
		{name: "confirm-documents", gate: "是否继续生成文档？"},
		{name: "descriptions", description: "function descriptions", run: r.descriptions},
		{name: "purpose", description: "development purpose", run: r.purpose},
		{name: "documents", description: "render deliverables", run: r.documents},
	}
}

// StepNames returns the pipeline step names in order.
func StepNames() []string {
	steps := (&Runner{}).steps()
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.name
	}
	return names
}

func (r *Runner) log() *zap.Logger {
	return logging.OrNop(r.Logger)
}

// failAndHint sets the failure status, saves state (warning on error),
// flushes timing, prints a resume hint, and returns the given error.
func (r *Runner) failAndHint(status string, err error) error {
	r.State.Status = status
	r.saveVariables()
	dir := r.Layout.ConfigDir()
	if saveErr := r.State.Save(dir); saveErr != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save state: %v\n", saveErr)
	}
	if r.Timing != nil {
		if flushErr := r.Timing.Flush(dir); flushErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush timing: %v\n", flushErr)
		}
	}
	if status != state.StatusDeclined {
		ux.ResumeHint()
	}
	return err
}

func (r *Runner) saveVariables() {
	if r.vars != nil {
		r.State.Variables = r.vars.Map()
	}
}

// Run executes every step from the start. Outputs already present in the
// process directory are reused by the backends.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Layout.EnsureDirs(); err != nil {
		return err
	}
	dir := r.Layout.ConfigDir()
	if r.Timing == nil {
		timing, err := state.LoadTiming(dir)
		if err != nil {
			return fmt.Errorf("loading timing: %w", err)
		}
		r.Timing = timing
	}

	steps := r.steps()
	total := len(steps)
	r.State.SetStep(0)
	r.State.Status = state.StatusRunning

	for r.State.Step < total {
		i := r.State.Step
		s := steps[i]

		if ctx.Err() != nil {
			return r.failAndHint(state.StatusInterrupted, ctx.Err())
		}

		r.State.StepName = s.name
		if err := r.State.Save(dir); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}

		ux.StepHeader(i, total, s.name, s.description)
		r.Timing.AddStart(s.name)
		start := time.Now()

		var err error
		if s.gate != "" {
			err = r.confirm(ctx, s.gate)
		} else {
			err = s.run(ctx)
		}

		if ctx.Err() != nil {
			// A request cut short keeps its *bridge.OutputError.
			if err == nil {
				err = ctx.Err()
			}
			r.log().Warn("step interrupted", zap.String("step", s.name), zap.Error(err))
			return r.failAndHint(state.StatusInterrupted, err)
		}
		if errors.Is(err, ErrDeclined) {
			r.Timing.AddEnd(s.name)
			ux.Info("用户取消，程序退出")
			r.log().Info("gate declined", zap.String("step", s.name))
			return r.failAndHint(state.StatusDeclined, err)
		}
		if err != nil {
			ux.StepFail(i, s.name, err.Error())
			r.log().Error("step failed", zap.String("step", s.name), zap.Error(err))
			return r.failAndHint(state.StatusFailed, fmt.Errorf("step %q: %w", s.name, err))
		}

		r.Timing.AddEnd(s.name)
		if err := r.Timing.Flush(dir); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to flush timing: %v\n", err)
		}
		r.saveVariables()
		r.State.Advance()
		if err := r.State.Save(dir); err != nil {
			return fmt.Errorf("saving state after step advance: %w", err)
		}
		ux.StepComplete(i, time.Since(start))
	}

	r.State.Status = state.StatusCompleted
	r.State.StepName = ""
	if err := r.State.Save(dir); err != nil {
		return fmt.Errorf("saving final state: %w", err)
	}
	if err := r.Timing.Flush(dir); err != nil {
		return fmt.Errorf("flushing timing: %w", err)
	}
	ux.Success(r.State.Modules, r.State.Fallbacks, vars.LineCount(r.State.TotalLines, r.Config.LineCountMultiplier), r.Layout.Output)
	return nil
}

func (r *Runner) confirm(ctx context.Context, question string) error {
	if r.AutoApprove {
		ux.Info("%s (auto-approved)", question)
		return nil
	}
	ok, err := gate.Confirm(ctx, r.Prompter, question)
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

func (r *Runner) collectInputs(ctx context.Context) error {
	answers := r.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	var vs *vars.VariableSet
	if r.SkipInputs {
		vs = vars.Defaults(r.Config.Variables, answers)
	} else {
		var err error
		vs, err = vars.Collect(ctx, r.Config.Variables, answers, r.Prompter)
		if err != nil {
			return err
		}
	}
	for _, d := range r.Config.Variables {
		if d.Required && vs.Get(d.Key) == "" {
			return fmt.Errorf("variable %q is required", d.Key)
		}
	}

	count := r.Modules
	if count <= 0 {
		answer := answers[vars.KeyModuleCount]
		if r.SkipInputs && answer == "" {
			answer = strconv.Itoa(r.Config.ModuleCount)
		}
		var err error
		count, err = vars.CollectModuleCount(ctx, r.Config.ModuleCount, answer, r.Prompter)
		if err != nil {
			return err
		}
	}
	if err := vs.Set(vars.KeyModuleCount, strconv.Itoa(count)); err != nil {
		return err
	}

	r.vars = vs
	r.moduleCount = count
	for _, k := range vs.Keys() {
		ux.Info("%s: %s", k, vs.Get(k))
	}
	r.log().Info("inputs collected", zap.Int("variables", vs.Len()), zap.Int("module_count", count))
	return nil
}

func (r *Runner) requirements(ctx context.Context) error {
	count := r.moduleCount
	modules, err := r.Generator.Requirements(ctx, r.vars.Get(vars.KeySoftwareName), r.vars.Get(vars.KeyIndustry), count)
	if err != nil {
		return err
	}
	if len(modules) != count {
		ux.Warn("requested %d modules, received %d", count, len(modules))
	}
	r.modules = modules
	r.State.Modules = len(modules)
	for i, m := range modules {
		ux.Info("%d. %s", i+1, m.Name)
	}
	return nil
}

func (r *Runner) frontend(ctx context.Context) error {
	software := r.vars.Get(vars.KeySoftwareName)
	r.artifacts = r.artifacts[:0]
	fallbacks := 0
	for i, m := range r.modules {
		art, err := r.Generator.ModuleHTML(ctx, i+1, m, software)
		if err != nil {
			return err
		}
		r.artifacts = append(r.artifacts, art)
		if art.Fallback {
			fallbacks++
			ux.Warn("[%d/%d] %s → %s (fallback, %d lines)", i+1, len(r.modules), m.Name, art.File, art.Lines)
		} else {
			ux.OK("[%d/%d] %s → %s (%d lines)", i+1, len(r.modules), m.Name, art.File, art.Lines)
		}
	}
	r.State.Fallbacks = fallbacks
	return nil
}

func (r *Runner) lineCount(ctx context.Context) error {
	total, err := assemble.TotalLines(r.Layout.Process, assemble.ModulePattern)
	if err != nil {
		return err
	}
	display := vars.LineCount(total, r.Config.LineCountMultiplier)
	if err := r.vars.Set(vars.KeyLineCount, strconv.Itoa(display)); err != nil {
		return err
	}
	r.State.TotalLines = total
	ux.OK("%d lines generated (registered as %d)", total, display)
	return nil
}

func (r *Runner) descriptions(ctx context.Context) error {
	summary, detailed, err := r.Generator.Descriptions(ctx, r.vars.Get(vars.KeySoftwareName), r.modules)
	if err != nil {
		return err
	}
	if err := r.vars.Set(vars.KeySummary, summary); err != nil {
		return err
	}
	return r.vars.Set(vars.KeyDetails, detailed)
}

func (r *Runner) purpose(ctx context.Context) error {
	p, err := r.Generator.Purpose(ctx, r.vars.Get(vars.KeySoftwareName), r.vars.Get(vars.KeyIndustry))
	if err != nil {
		return err
	}
	return r.vars.Set(vars.KeyDevPurpose, p)
}

func (r *Runner) documents(ctx context.Context) error {
	a := &assemble.Assembler{Layout: r.Layout, Vars: r.vars, Logger: r.Logger}
	if r.Expand {
		a.Expander = r.Generator
	}
	paths, err := a.RenderAll(ctx, r.Config.Documents)
	if err != nil {
		return err
	}
	for _, p := range paths {
		ux.OK("%s", p)
	}
	bundle, err := a.WriteSourceBundle(r.Config.SourceBundle)
	if err != nil {
		return err
	}
	ux.OK("%s", bundle)
	return nil
}

// DryRunPrint prints the step plan without executing.
func (r *Runner) DryRunPrint() {
	steps := r.steps()
	fmt.Printf("\n%sDry run — %d steps:%s\n\n", ux.Bold, len(steps), ux.Reset)
	for i, s := range steps {
		kind := "step"
		if s.gate != "" {
			kind = "gate"
		}
		fmt.Printf("  %s%d.%s %s%s%s (%s)", ux.Cyan, i+1, ux.Reset, ux.Bold, s.name, ux.Reset, kind)
		if s.description != "" {
			fmt.Printf(" — %s", s.description)
		}
		fmt.Println()
		switch s.name {
		case "requirements":
			fmt.Printf("     modules: %d, output: %s\n", r.moduleCountHint(), r.Layout.ProcessPath(generate.RequirementsFile))
		case "frontend":
			fmt.Printf("     max attempts: %d, output: %s\n", r.Config.MaxAttempts, r.Layout.ProcessPath(assemble.ModulePattern))
		case "line-count":
			fmt.Printf("     multiplier: %d\n", r.Config.LineCountMultiplier)
		case "documents":
			for _, d := range r.Config.Documents {
				expand := ""
				if d.Expand != "" && r.Expand {
					expand = " (expand: " + d.Expand + ")"
				}
				fmt.Printf("     %s → %s%s\n", d.Template, r.Layout.OutputPath(d.Output), expand)
			}
			fmt.Printf("     source bundle → %s\n", r.Layout.OutputPath(r.Config.SourceBundle))
		}
		if s.gate != "" {
			if r.AutoApprove {
				fmt.Printf("     %s (auto-approved)\n", s.gate)
			} else {
				fmt.Printf("     %s\n", s.gate)
			}
		}
	}
	fmt.Println()
}

func (r *Runner) moduleCountHint() int {
	if r.Modules > 0 {
		return r.Modules
	}
	return r.Config.ModuleCount
}
