package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Variable is an operator-supplied placeholder value.
type Variable struct {
	Key      string `yaml:"key"`
	Prompt   string `yaml:"prompt"`
	Default  string `yaml:"default"`
	Required bool   `yaml:"required"`
}

// Document maps a template to a deliverable.
type Document struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
	Output   string `yaml:"output"`
	Expand   string `yaml:"expand"`
}

// Request holds the wait bounds for the file handshake and the CLI path, in seconds.
type Request struct {
	Timeout       int `yaml:"timeout"`
	ManualTimeout int `yaml:"manual-timeout"`
	CLITimeout    int `yaml:"cli-timeout"`
	PollInterval  int `yaml:"poll-interval"`
}

type Claude struct {
	Command string `yaml:"command"`
	Model   string `yaml:"model"`
}

type Dirs struct {
	Templates string `yaml:"templates"`
	Prompts   string `yaml:"prompts"`
	Process   string `yaml:"process"`
	Output    string `yaml:"output"`
}

type Config struct {
	Name                string     `yaml:"name"`
	ModuleCount         int        `yaml:"module-count"`
	MaxAttempts         int        `yaml:"max-attempts"`
	LineCountMultiplier int        `yaml:"line-count-multiplier"`
	Request             Request    `yaml:"request"`
	Claude              Claude     `yaml:"claude"`
	Dirs                Dirs       `yaml:"dirs"`
	Variables           []Variable `yaml:"variables"`
	Documents           []Document `yaml:"documents"`
	SourceBundle        string     `yaml:"source-bundle"`
}

// Load reads a YAML config file and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TimeoutFor returns the wait bound for the given request mode.
func (c *Config) TimeoutFor(mode string) time.Duration {
	switch mode {
	case ModeInteractive:
		return time.Duration(c.Request.ManualTimeout) * time.Second
	case ModeCLI:
		return time.Duration(c.Request.CLITimeout) * time.Second
	default:
		return time.Duration(c.Request.Timeout) * time.Second
	}
}

// PollInterval returns the handshake poll interval.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Request.PollInterval) * time.Second
}
