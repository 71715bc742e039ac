package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var validModels = map[string]bool{
	"":       true,
	"opus":   true,
	"sonnet": true,
	"haiku":  true,
}

var validExpand = map[string]bool{
	"":                     true,
	ExpandFunctionManual:   true,
	ExpandInstallManual:    true,
	ExpandRegistrationForm: true,
}

var varNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Generated keys are set by the pipeline and may not be declared.
var builtins = map[string]bool{
	"module_count":           true,
	"dev_purpose":            true,
	"main_functions_summary": true,
	"main_functions_details": true,
	"line_count":             true,
}

// ValidModes lists the accepted values for run --mode.
var ValidModes = []string{ModeAuto, ModeInteractive, ModeCLI}

// Validate checks the config for errors and sets defaults.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("config: 'name' is required")
	}

	if cfg.ModuleCount == 0 {
		cfg.ModuleCount = DefaultModuleCount
	}
	if cfg.ModuleCount < MinModuleCount {
		return fmt.Errorf("config: 'module-count' must be >= %d", MinModuleCount)
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.MaxAttempts < 1 {
		return fmt.Errorf("config: 'max-attempts' must be >= 1")
	}
	if cfg.LineCountMultiplier == 0 {
		cfg.LineCountMultiplier = DefaultLineCountMultiplier
	}
	if cfg.LineCountMultiplier < 1 {
		return fmt.Errorf("config: 'line-count-multiplier' must be >= 1")
	}

	if err := validateRequest(&cfg.Request); err != nil {
		return err
	}

	if cfg.Claude.Command == "" {
		cfg.Claude.Command = "claude"
	}
	if !validModels[cfg.Claude.Model] {
		return fmt.Errorf("config: unknown claude.model %q (must be opus, sonnet, or haiku)", cfg.Claude.Model)
	}

	setDir(&cfg.Dirs.Templates, "templates")
	setDir(&cfg.Dirs.Prompts, "prompts")
	setDir(&cfg.Dirs.Process, "process")
	setDir(&cfg.Dirs.Output, "output")

	if len(cfg.Variables) == 0 {
		cfg.Variables = DefaultVariables()
	}
	seenVars := make(map[string]bool)
	for _, v := range cfg.Variables {
		if v.Key == "" {
			return fmt.Errorf("config: variables: empty variable name")
		}
		if !varNameRe.MatchString(v.Key) {
			return fmt.Errorf("config: variables: %q is not a valid variable name (must match [A-Za-z_][A-Za-z0-9_]*)", v.Key)
		}
		if builtins[v.Key] {
			return fmt.Errorf("config: variables: %q is generated by the pipeline", v.Key)
		}
		if seenVars[v.Key] {
			return fmt.Errorf("config: variables: duplicate variable %q", v.Key)
		}
		seenVars[v.Key] = true
	}

	if len(cfg.Documents) == 0 {
		cfg.Documents = DefaultDocuments()
	}
	seenDocs := make(map[string]bool)
	for i := range cfg.Documents {
		d := &cfg.Documents[i]
		if d.Template == "" {
			return fmt.Errorf("config: document %d: 'template' is required", i+1)
		}
		if d.Name == "" {
			d.Name = strings.TrimSuffix(d.Template, filepath.Ext(d.Template))
		}
		if seenDocs[d.Name] {
			return fmt.Errorf("config: duplicate document name %q", d.Name)
		}
		seenDocs[d.Name] = true
		if d.Output == "" {
			d.Output = d.Template
		}
		if hasSeparator(d.Output) {
			return fmt.Errorf("config: document %q: output %q must not contain path separators", d.Name, d.Output)
		}
		if !validExpand[d.Expand] {
			return fmt.Errorf("config: document %q: unknown expand type %q (must be %s, %s, or %s)",
				d.Name, d.Expand, ExpandFunctionManual, ExpandInstallManual, ExpandRegistrationForm)
		}
	}

	if cfg.SourceBundle == "" {
		cfg.SourceBundle = DefaultSourceBundle
	}
	if hasSeparator(cfg.SourceBundle) {
		return fmt.Errorf("config: source-bundle %q must not contain path separators", cfg.SourceBundle)
	}

	return nil
}

// ValidateMode checks a --mode value.
func ValidateMode(mode string) error {
	for _, m := range ValidModes {
		if m == mode {
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q (must be %s)", mode, strings.Join(ValidModes, ", "))
}

func validateRequest(r *Request) error {
	fields := []struct {
		name string
		v    *int
		def  int
	}{
		{"request.timeout", &r.Timeout, DefaultTimeout},
		{"request.manual-timeout", &r.ManualTimeout, DefaultManualTimeout},
		{"request.cli-timeout", &r.CLITimeout, DefaultCLITimeout},
		{"request.poll-interval", &r.PollInterval, DefaultPollInterval},
	}
	for _, f := range fields {
		if *f.v == 0 {
			*f.v = f.def
		}
		if *f.v < 0 {
			return fmt.Errorf("config: %s must be >= 0", f.name)
		}
	}
	return nil
}

func setDir(p *string, def string) {
	if *p == "" {
		*p = def
	}
}

func hasSeparator(name string) bool {
	return strings.Contains(name, "/") || strings.Contains(name, string(filepath.Separator))
}

// IsGenerated reports whether key is set by the pipeline rather than declared.
func IsGenerated(key string) bool {
	return builtins[key]
}
