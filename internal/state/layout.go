package state

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigDirName is the per-project directory holding config, state and logs.
const ConfigDirName = ".softcopy"

// Layout resolves every on-disk location used by a run.
type Layout struct {
	Root      string
	Templates string
	Prompts   string
	Process   string
	Output    string
}

// NewLayout builds a Layout from directory names relative to root.
// Absolute names are used as-is.
func NewLayout(root, templates, prompts, process, output string) *Layout {
	abs := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(root, p)
	}
	return &Layout{
		Root:      root,
		Templates: abs(templates),
		Prompts:   abs(prompts),
		Process:   abs(process),
		Output:    abs(output),
	}
}

// EnsureDirs creates the working directories for a run.
func (l *Layout) EnsureDirs() error {
	dirs := []string{
		l.ConfigDir(),
		l.LogsDir(),
		l.Prompts,
		l.Process,
		l.Output,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}
	return nil
}

// ConfigDir returns the .softcopy directory.
func (l *Layout) ConfigDir() string {
	return filepath.Join(l.Root, ConfigDirName)
}

// ConfigPath returns the path of config.yaml.
func (l *Layout) ConfigPath() string {
	return filepath.Join(l.ConfigDir(), "config.yaml")
}

// EnvPath returns the path of the optional .env answers file.
func (l *Layout) EnvPath() string {
	return filepath.Join(l.ConfigDir(), ".env")
}

// LogsDir returns the directory holding the run log.
func (l *Layout) LogsDir() string {
	return filepath.Join(l.ConfigDir(), "logs")
}

// LogPath returns the path of the structured run log.
func (l *Layout) LogPath() string {
	return filepath.Join(l.LogsDir(), "run.log")
}

// TemplatePath returns the path of a document template.
func (l *Layout) TemplatePath(name string) string {
	return filepath.Join(l.Templates, name)
}

// ProcessPath returns the path of an intermediate artifact.
func (l *Layout) ProcessPath(name string) string {
	return filepath.Join(l.Process, name)
}

// OutputPath returns the path of a final deliverable.
func (l *Layout) OutputPath(name string) string {
	return filepath.Join(l.Output, name)
}
