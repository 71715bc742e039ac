package generate

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jorge-barreto/softcopy/internal/bridge"
	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/dispatch"
	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/ux"
	"go.uber.org/zap"
)

// Backend turns a request into content. Implementations must honour ctx.
type Backend interface {
	Generate(ctx context.Context, req *bridge.Request) (string, error)
}

// HandshakeBackend fulfils requests through the file handshake.
type HandshakeBackend struct {
	Client *bridge.Client
}

func (b *HandshakeBackend) Generate(ctx context.Context, req *bridge.Request) (string, error) {
	return b.Client.Submit(ctx, req)
}

// CLIBackend runs claude directly and persists its answer to the process directory.
type CLIBackend struct {
	Claude  *dispatch.Claude
	Mailbox *bridge.Mailbox
	Logger  *zap.Logger
}

func (b *CLIBackend) Generate(ctx context.Context, req *bridge.Request) (string, error) {
	log := logging.OrNop(b.Logger)
	outPath := b.Mailbox.OutputPath(req.OutputFile)
	if content, ok, err := bridge.ReadOutput(outPath); err != nil {
		return "", err
	} else if ok {
		log.Info("reusing existing output", zap.String("output_file", req.OutputFile))
		return content, nil
	}

	if err := os.MkdirAll(b.Mailbox.Prompts, 0755); err != nil {
		return "", err
	}
	if err := state.WriteFileAtomic(b.Mailbox.PromptRecordPath(req.OutputFile), []byte(req.Prompt), 0644); err != nil {
		return "", fmt.Errorf("writing prompt record: %w", err)
	}

	content, err := b.Claude.Run(ctx, dispatch.Invocation{Prompt: req.Prompt, JSON: true})
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(b.Mailbox.Process, 0755); err != nil {
		return "", err
	}
	if err := state.WriteFileAtomic(outPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing output: %w", err)
	}
	return content, nil
}

// NewBackend builds the backend for a run mode.
func NewBackend(mode string, cfg *config.Config, layout *state.Layout, logger *zap.Logger) (Backend, error) {
	mailbox := bridge.NewMailbox(layout.Prompts, layout.Process, logger)
	switch mode {
	case config.ModeAuto, config.ModeInteractive:
		manual := mode == config.ModeInteractive
		client := &bridge.Client{
			Mailbox:       mailbox,
			Timeout:       cfg.TimeoutFor(mode),
			PollInterval:  cfg.PollInterval(),
			Markers:       !manual,
			ProgressEvery: 5 * time.Second,
			Logger:        logger,
			OnPost: func(req *bridge.Request) {
				ux.RequestPosted(mailbox.DescriptorPath(), mailbox.OutputPath(req.OutputFile))
				if manual {
					ux.ManualInstructions(mailbox.PromptRecordPath(req.OutputFile), mailbox.OutputPath(req.OutputFile))
				}
			},
			Progress: func(req *bridge.Request, elapsed time.Duration) {
				ux.Waiting(req.OutputFile, elapsed)
			},
		}
		return &HandshakeBackend{Client: client}, nil
	case config.ModeCLI:
		return &CLIBackend{
			Claude: &dispatch.Claude{
				Command: cfg.Claude.Command,
				Model:   cfg.Claude.Model,
				Timeout: cfg.TimeoutFor(mode),
				WorkDir: layout.Root,
				Logger:  logger,
			},
			Mailbox: mailbox,
			Logger:  logger,
		}, nil
	default:
		return nil, config.ValidateMode(mode)
	}
}
