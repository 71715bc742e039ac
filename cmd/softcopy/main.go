package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/jorge-barreto/softcopy/internal/bridge"
	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/dispatch"
	"github.com/jorge-barreto/softcopy/internal/docs"
	"github.com/jorge-barreto/softcopy/internal/doctor"
	"github.com/jorge-barreto/softcopy/internal/gate"
	"github.com/jorge-barreto/softcopy/internal/generate"
	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/runner"
	"github.com/jorge-barreto/softcopy/internal/scaffold"
	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/ux"
	"github.com/jorge-barreto/softcopy/internal/vars"
	"github.com/jorge-barreto/softcopy/internal/watch"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	app := &cli.Command{
		Name:        "softcopy",
		Usage:       "Software copyright document generator",
		Description: "Run 'softcopy docs' for documentation on config, modes, the request protocol, and more.",
		Commands: []*cli.Command{
			initCmd(),
			runCmd(),
			completeCmd(),
			watchCmd(),
			statusCmd(),
			doctorCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

// project is a loaded configuration and its resolved directories.
type project struct {
	cfg    *config.Config
	layout *state.Layout
}

func loadProject() (*project, error) {
	root, err := findProjectRoot()
	if err != nil {
		return nil, err
	}
	configPath := filepath.Join(root, state.ConfigDirName, "config.yaml")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	d := cfg.Dirs
	return &project{cfg: cfg, layout: state.NewLayout(root, d.Templates, d.Prompts, d.Process, d.Output)}, nil
}

func (p *project) mailbox(logger *zap.Logger) *bridge.Mailbox {
	return bridge.NewMailbox(p.layout.Prompts, p.layout.Process, logger)
}

func (p *project) logger(debug bool) (*zap.Logger, func() error, error) {
	return logging.New(p.layout.LogPath(), logging.Options{Debug: debug})
}

func (p *project) claude(logger *zap.Logger) *dispatch.Claude {
	return &dispatch.Claude{
		Command: p.cfg.Claude.Command,
		Model:   p.cfg.Claude.Model,
		Timeout: p.cfg.TimeoutFor(config.ModeCLI),
		WorkDir: p.layout.Root,
		Logger:  logger,
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Generate the requirements, module pages, and documents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: config.ModeAuto, Usage: "auto, interactive, or cli"},
			&cli.BoolFlag{Name: "skip-inputs", Usage: "Use defaults and .env answers instead of prompting"},
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Approve every confirmation gate"},
			&cli.IntFlag{Name: "modules", Usage: "Number of functional modules (skips the prompt)"},
			&cli.BoolFlag{Name: "no-expand", Usage: "Skip the document expansion requests"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Print the step plan without executing"},
			&cli.BoolFlag{Name: "debug", Usage: "Write debug entries to the run log"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mode := cmd.String("mode")
			if err := config.ValidateMode(mode); err != nil {
				return err
			}
			// CLAUDECODE guard
			if mode == config.ModeCLI && os.Getenv("CLAUDECODE") != "" {
				return fmt.Errorf("--mode cli cannot run inside Claude Code (CLAUDECODE env var is set). Use --mode auto with a fulfiller instead")
			}

			modules := int(cmd.Int("modules"))
			if modules != 0 && modules < config.MinModuleCount {
				return fmt.Errorf("--modules must be >= %d", config.MinModuleCount)
			}

			p, err := loadProject()
			if err != nil {
				return err
			}
			if err := dispatch.Preflight(mode, p.cfg.Claude.Command); err != nil {
				return err
			}

			answers, err := vars.LoadAnswers(p.layout.EnvPath())
			if err != nil {
				return err
			}

			st, err := state.Load(p.layout.ConfigDir())
			if err != nil {
				return fmt.Errorf("loading state: %w", err)
			}
			st.Mode = mode

			r := &runner.Runner{
				Config:      p.cfg,
				Layout:      p.layout,
				State:       st,
				Prompter:    gate.Stdio(),
				Answers:     answers,
				SkipInputs:  cmd.Bool("skip-inputs"),
				AutoApprove: cmd.Bool("yes"),
				Modules:     modules,
				Expand:      mode != config.ModeInteractive && !cmd.Bool("no-expand"),
			}

			if cmd.Bool("dry-run") {
				r.DryRunPrint()
				return nil
			}

			if !gate.Interactive() && !(r.SkipInputs && r.AutoApprove) {
				ux.Warn("stdin is not a terminal; use --skip-inputs and --yes for unattended runs")
			}

			if err := p.layout.EnsureDirs(); err != nil {
				return err
			}
			logger, closeLog, err := p.logger(cmd.Bool("debug"))
			if err != nil {
				return err
			}
			defer closeLog()
			logger.Info("run started", zap.String("mode", mode), zap.String("root", p.layout.Root))

			backend, err := generate.NewBackend(mode, p.cfg, p.layout, logger)
			if err != nil {
				return err
			}
			r.Logger = logger
			r.Generator = &generate.Generator{
				Backend:     backend,
				Process:     p.layout.Process,
				MaxAttempts: p.cfg.MaxAttempts,
				Logger:      logger,
			}

			if err := st.Save(p.layout.ConfigDir()); err != nil {
				return err
			}

			// Set up signal handling
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			err = r.Run(ctx)
			logger.Info("run finished", zap.String("status", st.Status), zap.Error(err))
			return exitError(err)
		},
	}
}

// exitError maps a run result to the error reported by the CLI. A declined
// gate and an interrupt outside a request end the run without an error; an
// interrupted request that left no output is still an error.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, runner.ErrDeclined) {
		return nil
	}
	var oe *bridge.OutputError
	if errors.As(err, &oe) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		fmt.Printf("\n  %s⚠ interrupted%s\n", ux.Yellow, ux.Reset)
		return nil
	}
	return err
}

func completeCmd() *cli.Command {
	return &cli.Command{
		Name:  "complete",
		Usage: "Fulfil the outstanding request from a file or stdin",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Read the answer from `FILE` instead of stdin"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := loadProject()
			if err != nil {
				return err
			}

			var data []byte
			if path := cmd.String("file"); path != "" {
				data, err = os.ReadFile(path)
			} else {
				data, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return err
			}
			if strings.TrimSpace(string(data)) == "" {
				return fmt.Errorf("empty answer; nothing written")
			}

			logger, closeLog, err := p.logger(false)
			if err != nil {
				return err
			}
			defer closeLog()

			req, err := p.mailbox(logger).Complete(string(data))
			if err != nil {
				if errors.Is(err, bridge.ErrNoRequest) {
					return fmt.Errorf("no request is outstanding")
				}
				return err
			}
			ux.OK("wrote %s (%s)", p.layout.ProcessPath(req.OutputFile), req.TaskType)
			return nil
		},
	}
}

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Follow pending requests, optionally fulfilling them with claude",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "once", Usage: "Stop after the first request"},
			&cli.BoolFlag{Name: "fulfill", Usage: "Answer each request by running claude"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := loadProject()
			if err != nil {
				return err
			}
			fulfill := cmd.Bool("fulfill")
			if fulfill {
				if err := dispatch.Preflight(config.ModeCLI, p.cfg.Claude.Command); err != nil {
					return err
				}
			}

			logger, closeLog, err := p.logger(false)
			if err != nil {
				return err
			}
			defer closeLog()

			w := &watch.Watcher{
				Mailbox:      p.mailbox(logger),
				Fulfill:      fulfill,
				Once:         cmd.Bool("once"),
				Timeout:      p.cfg.TimeoutFor(config.ModeAuto),
				PollInterval: p.cfg.PollInterval(),
				Logger:       logger,
			}
			if fulfill {
				w.Runner = p.claude(logger)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()
			return w.Run(ctx)
		},
	}
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show run progress and the outstanding request",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			p, err := loadProject()
			if err != nil {
				return err
			}
			dir := p.layout.ConfigDir()
			st, err := state.Load(dir)
			if err != nil {
				return fmt.Errorf("loading state: %w", err)
			}
			timing, err := state.LoadTiming(dir)
			if err != nil {
				return fmt.Errorf("loading timing: %w", err)
			}

			m := p.mailbox(nil)
			view := ux.StatusView{
				Steps:     runner.StepNames(),
				State:     st,
				Timing:    timing,
				OutputDir: p.layout.Output,
			}
			req, err := m.Current()
			switch {
			case err == nil:
				view.Request = req
				view.Stale, _ = m.Stale()
			case !errors.Is(err, bridge.ErrNoRequest):
				return err
			}
			if view.Pending, err = m.PendingMarkers(); err != nil {
				return err
			}
			ux.RenderStatus(view)
			return nil
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the project and clean up stale requests",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: config.ModeAuto, Usage: "Mode to check for: auto, interactive, or cli"},
			&cli.BoolFlag{Name: "clean", Usage: "Remove a stale request descriptor and orphaned pending markers"},
			&cli.BoolFlag{Name: "diagnose", Usage: "Ask claude to diagnose the last failed run"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mode := cmd.String("mode")
			if err := config.ValidateMode(mode); err != nil {
				return err
			}
			p, err := loadProject()
			if err != nil {
				return err
			}
			return doctor.Run(ctx, doctor.Options{
				Config:   p.cfg,
				Layout:   p.layout,
				Mode:     mode,
				Clean:    cmd.Bool("clean"),
				Diagnose: cmd.Bool("diagnose"),
				Claude:   p.claude(nil),
			})
		},
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize .softcopy/ with a default config and document templates",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-14s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'softcopy docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

// findProjectRoot walks up from cwd looking for .softcopy/config.yaml.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		configPath := filepath.Join(dir, state.ConfigDirName, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s/config.yaml found (searched from cwd to root); run 'softcopy init'", state.ConfigDirName)
		}
		dir = parent
	}
}
