// Package assemble renders the deliverable documents from templates and
// bundles the module pages into the source listing.
package assemble

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/logging"
	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/vars"
	"go.uber.org/zap"
)

// Expander rewrites a rendered document into a longer one. It returns
// content unchanged when the expansion is not usable.
type Expander interface {
	Expand(ctx context.Context, docType, content string, vs *vars.VariableSet) (string, error)
}

// Assembler writes deliverables into the output directory.
type Assembler struct {
	Layout *state.Layout
	Vars   *vars.VariableSet
	// Expander is optional; documents are written unexpanded without it.
	Expander Expander
	Logger   *zap.Logger
}

// Render fills doc's template and writes the result. It returns the output path.
func (a *Assembler) Render(ctx context.Context, doc config.Document) (string, error) {
	log := logging.OrNop(a.Logger)
	tmplPath := a.Layout.TemplatePath(doc.Template)
	data, err := os.ReadFile(tmplPath)
	if err != nil {
		return "", fmt.Errorf("reading template %s: %w", doc.Template, err)
	}

	content := a.Vars.Substitute(string(data))
	if doc.Expand != "" && a.Expander != nil {
		content, err = a.Expander.Expand(ctx, doc.Expand, content, a.Vars)
		if err != nil {
			return "", err
		}
	}

	out := a.Layout.OutputPath(doc.Output)
	if err := write(out, content); err != nil {
		return "", fmt.Errorf("writing %s: %w", doc.Output, err)
	}
	log.Info("document written", zap.String("document", doc.Name), zap.String("path", out))
	return out, nil
}

// RenderAll renders every document in order and returns the output paths.
func (a *Assembler) RenderAll(ctx context.Context, docs []config.Document) ([]string, error) {
	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		p, err := a.Render(ctx, doc)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// WriteSourceBundle bundles every module page in the process directory into
// the named output file.
func (a *Assembler) WriteSourceBundle(name string) (string, error) {
	files, err := ModuleFiles(a.Layout.Process)
	if err != nil {
		return "", err
	}
	bundle, err := SourceBundle(a.Vars.Get(vars.KeySoftwareName), a.Vars.Get(vars.KeyCompDate), files)
	if err != nil {
		return "", err
	}
	out := a.Layout.OutputPath(name)
	if err := write(out, bundle); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	logging.OrNop(a.Logger).Info("source bundle written",
		zap.String("path", out), zap.Int("modules", len(files)))
	return out, nil
}

func write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return state.WriteFileAtomic(path, []byte(content), 0644)
}
