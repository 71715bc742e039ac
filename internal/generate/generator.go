// Package generate produces the requirements breakdown, module pages and
// descriptive text through a Backend, falling back to deterministic content
// where a response is unusable.
package generate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/jorge-barreto/softcopy/internal/assemble"
	"github.com/jorge-barreto/softcopy/internal/bridge"
	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/dispatch"
	"github.com/jorge-barreto/softcopy/internal/fallback"
	"github.com/jorge-barreto/softcopy/internal/fence"
	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/srs"
	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/validate"
	"github.com/jorge-barreto/softcopy/internal/vars"
	"go.uber.org/zap"
)

type ParseError = srs.ParseError

var ErrParse = srs.ErrParse

const (
	RequirementsFile = "srs.json"
	SummaryFile      = "summary.txt"
	DetailedFile     = "detailed.md"
	PurposeFile      = "purpose.txt"
)

// Generator issues generation requests for one run.
type Generator struct {
	Backend     Backend
	Process     string // directory holding request outputs
	MaxAttempts int
	Logger      *zap.Logger
}

// Artifact is one module page written to the process directory.
type Artifact struct {
	Index    int
	Module   srs.Module
	File     string
	Path     string
	Content  string
	Lines    int
	Fallback bool
	Attempts int
}

func (g *Generator) log() *zap.Logger {
	return logging.OrNop(g.Logger)
}

func (g *Generator) attempts() int {
	if g.MaxAttempts < 1 {
		return config.DefaultMaxAttempts
	}
	return g.MaxAttempts
}

func (g *Generator) path(name string) string {
	return filepath.Join(g.Process, name)
}

func (g *Generator) write(name, content string) error {
	if err := os.MkdirAll(g.Process, 0755); err != nil {
		return err
	}
	return state.WriteFileAtomic(g.path(name), []byte(content), 0644)
}

// clean unwraps a JSON envelope and strips a surrounding code fence.
func clean(raw string) string {
	return fence.Strip(dispatch.Unwrap(raw))
}

// Requirements asks for the module breakdown. Any failure is fatal.
func (g *Generator) Requirements(ctx context.Context, software, industry string, count int) ([]srs.Module, error) {
	log := g.log()
	req := bridge.NewRequest(bridge.TaskSRS, requirementsPrompt(software, industry, count), RequirementsFile, map[string]string{
		"software_name": software,
		"industry":      industry,
		"module_count":  fmt.Sprint(count),
	})
	raw, err := g.Backend.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("requirements: %w", err)
	}

	modules, err := srs.Parse(dispatch.Unwrap(raw))
	if err != nil {
		var pe *srs.ParseError
		if errors.As(err, &pe) {
			pe.Path = g.path(RequirementsFile)
		}
		log.Error("requirements parse failed", zap.Error(err))
		return nil, err
	}
	if len(modules) != count {
		log.Warn("module count mismatch", zap.Int("requested", count), zap.Int("received", len(modules)))
	}

	data, err := srs.Encode(modules)
	if err != nil {
		return nil, err
	}
	if err := g.write(RequirementsFile, string(data)+"\n"); err != nil {
		return nil, fmt.Errorf("saving requirements: %w", err)
	}
	log.Info("requirements parsed", zap.Int("modules", len(modules)))
	return modules, nil
}

// cleanHTML reduces a response to the HTML document it carries.
func cleanHTML(raw string) string {
	s := clean(raw)
	lower := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return s
	}
	if doc, ok := fence.FindHTML(s); ok {
		return doc
	}
	return s
}

// ModuleHTML produces the page for the 1-based module index. Rejected pages
// are deleted and requested again; after the last rejection, or on any
// non-cancellation failure, the fallback page is written. Only cancellation
// is returned as an error.
func (g *Generator) ModuleHTML(ctx context.Context, index int, m srs.Module, software string) (Artifact, error) {
	log := g.log()
	file := ModuleFileName(index, m.Name)
	art := Artifact{Index: index, Module: m, File: file, Path: g.path(file)}
	prompt := modulePrompt(software, m)
	reqCtx := map[string]string{
		"software_name": software,
		"module_name":   m.Name,
		"module_index":  fmt.Sprint(index),
	}

	for attempt := 1; attempt <= g.attempts(); attempt++ {
		art.Attempts = attempt
		raw, err := g.Backend.Generate(ctx, bridge.NewRequest(bridge.TaskHTMLCode, prompt, file, reqCtx))
		if err != nil {
			if ctx.Err() != nil {
				return art, err
			}
			log.Warn("module request failed, using fallback",
				zap.String("module", m.Name), zap.Int("attempt", attempt), zap.Error(err))
			break
		}

		content := cleanHTML(raw)
		if err := validate.HTML(content); err != nil {
			log.Warn("module page rejected",
				zap.String("module", m.Name), zap.Int("attempt", attempt), zap.Error(err))
			if rmErr := os.Remove(art.Path); rmErr != nil && !os.IsNotExist(rmErr) {
				return art, rmErr
			}
			continue
		}

		if err := g.write(file, content); err != nil {
			return art, err
		}
		art.Content = content
		art.Lines = assemble.CountText([]byte(content))
		log.Info("module page accepted", zap.String("module", m.Name), zap.Int("attempt", attempt))
		return art, nil
	}

	content, err := fallback.HTML(m.Name, software, m)
	if err != nil {
		return art, fmt.Errorf("fallback page for %s: %w", m.Name, err)
	}
	if err := g.write(file, content); err != nil {
		return art, err
	}
	art.Content = content
	art.Lines = assemble.CountText([]byte(content))
	art.Fallback = true
	log.Info("fallback page written",
		zap.String("module", m.Name), zap.String("archetype", fallback.Classify(m.Name).String()))
	return art, nil
}

// text issues a text request. ok is false when the caller should fall back.
func (g *Generator) text(ctx context.Context, task bridge.TaskType, prompt, file string) (string, bool, error) {
	raw, err := g.Backend.Generate(ctx, bridge.NewRequest(task, prompt, file, nil))
	if err != nil {
		if ctx.Err() != nil {
			return "", false, err
		}
		g.log().Warn("text request failed, using fallback", zap.String("output_file", file), zap.Error(err))
		return "", false, nil
	}
	content := clean(raw)
	if content == "" {
		g.log().Warn("empty text response, using fallback", zap.String("output_file", file))
		return "", false, nil
	}
	if err := g.write(file, content); err != nil {
		return "", false, err
	}
	return content, true, nil
}

// textOrFallback runs a text request and persists the fallback when needed.
func (g *Generator) textOrFallback(ctx context.Context, task bridge.TaskType, prompt, file, fb string) (string, error) {
	content, ok, err := g.text(ctx, task, prompt, file)
	if err != nil {
		return "", err
	}
	if !ok {
		if err := g.write(file, fb); err != nil {
			return "", err
		}
		return fb, nil
	}
	return content, nil
}

// Descriptions returns the function summary and detailed description.
func (g *Generator) Descriptions(ctx context.Context, software string, modules []srs.Module) (summary, detailed string, err error) {
	fbSummary, fbDetailed := fallback.Descriptions(software, modules)
	summary, err = g.textOrFallback(ctx, bridge.TaskSummary, summaryPrompt(modules), SummaryFile, fbSummary)
	if err != nil {
		return "", "", err
	}
	detailed, err = g.textOrFallback(ctx, bridge.TaskDetailed, detailedPrompt(modules), DetailedFile, fbDetailed)
	if err != nil {
		return "", "", err
	}
	return summary, detailed, nil
}

// Purpose returns the development purpose paragraph.
func (g *Generator) Purpose(ctx context.Context, software, industry string) (string, error) {
	return g.textOrFallback(ctx, bridge.TaskPurpose, purposePrompt(software, industry), PurposeFile,
		fallback.Purpose(software, industry))
}

// ExpandFileName is the output name for an expansion of docType.
func ExpandFileName(docType string) string {
	return "expanded_" + docType + ".md"
}

// Expand asks for an expanded version of a rendered document. The expansion
// is kept only when it is at least half as long as content; otherwise content
// is returned unchanged. Only cancellation is returned as an error.
func (g *Generator) Expand(ctx context.Context, docType, content string, vs *vars.VariableSet) (string, error) {
	log := g.log()
	file := ExpandFileName(docType)
	var values map[string]string
	if vs != nil {
		values = vs.Map()
	}
	expanded, ok, err := g.text(ctx, bridge.TaskExpand, expandPrompt(docType, content, values), file)
	if err != nil {
		return "", err
	}
	if !ok {
		return content, nil
	}
	orig, got := utf8.RuneCountInString(content), utf8.RuneCountInString(expanded)
	if got*2 < orig {
		log.Warn("expansion too short, keeping original",
			zap.String("doc_type", docType), zap.Int("original", orig), zap.Int("expanded", got))
		return content, nil
	}
	log.Info("expansion accepted", zap.String("doc_type", docType), zap.Int("original", orig), zap.Int("expanded", got))
	return expanded, nil
}
