package vars

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/jorge-barreto/softcopy/internal/config"
)

// EnvPrefix marks pre-supplied answers in the environment or .env file.
const EnvPrefix = "SOFTCOPY_VAR_"

// Definition describes one operator-supplied variable.
type Definition = config.Variable

// Prompter asks the operator a question and returns the trimmed answer.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// LoadAnswers collects pre-supplied answers from envPath (if present) and the
// process environment. The environment wins. Keys are returned lowercased
// without the prefix.
func LoadAnswers(envPath string) (map[string]string, error) {
	answers := make(map[string]string)
	if envPath != "" {
		fileVals, err := godotenv.Read(envPath)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", envPath, err)
		}
		for k, v := range fileVals {
			if key, ok := answerKey(k); ok {
				answers[key] = v
			}
		}
	}
	for _, kv := range os.Environ() {
		k, v, _ := strings.Cut(kv, "=")
		if key, ok := answerKey(k); ok {
			answers[key] = v
		}
	}
	return answers, nil
}

func answerKey(name string) (string, bool) {
	if !strings.HasPrefix(name, EnvPrefix) || len(name) == len(EnvPrefix) {
		return "", false
	}
	return strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), true
}

// Collect fills a set from defs. A pre-supplied answer wins; otherwise the
// operator is asked. Empty input takes the default. A required key without a
// default is asked again until non-empty.
func Collect(ctx context.Context, defs []Definition, answers map[string]string, p Prompter) (*VariableSet, error) {
	vs := New()
	for _, d := range defs {
		value, ok := answers[d.Key]
		if !ok {
			var err error
			value, err = ask(ctx, d, p)
			if err != nil {
				return nil, err
			}
		}
		if value == "" {
			value = d.Default
		}
		if err := vs.Set(d.Key, value); err != nil {
			return nil, err
		}
	}
	return vs, nil
}

func ask(ctx context.Context, d Definition, p Prompter) (string, error) {
	label := d.Prompt
	if label == "" {
		label = d.Key
	}
	question := label + ": "
	if d.Default != "" {
		question = fmt.Sprintf("%s [%s]: ", label, d.Default)
	}
	for {
		answer, err := p.Ask(ctx, question)
		if err != nil {
			return "", err
		}
		if answer != "" || d.Default != "" || !d.Required {
			return answer, nil
		}
		question = fmt.Sprintf("%s (必填): ", label)
	}
}

// Defaults fills a set without asking. A non-empty pre-supplied answer wins
// over the declared default.
func Defaults(defs []Definition, answers map[string]string) *VariableSet {
	vs := New()
	for _, d := range defs {
		value := answers[d.Key]
		if value == "" {
			value = d.Default
		}
		// defs are validated unique, Set cannot fail here
		_ = vs.Set(d.Key, value)
	}
	return vs
}

// CollectModuleCount asks for the number of functional modules. answer, when
// non-empty, is used without asking. Counts below config.MinModuleCount are
// rejected and counts above config.ConfirmModuleCount need confirmation.
func CollectModuleCount(ctx context.Context, def int, answer string, p Prompter) (int, error) {
	if answer != "" {
		n, err := strconv.Atoi(strings.TrimSpace(answer))
		if err != nil || n < config.MinModuleCount {
			return 0, fmt.Errorf("invalid module count %q (must be an integer >= %d)", answer, config.MinModuleCount)
		}
		return n, nil
	}
	question := fmt.Sprintf("功能模块数量 [%d]: ", def)
	for {
		input, err := p.Ask(ctx, question)
		if err != nil {
			return 0, err
		}
		if input == "" {
			return def, nil
		}
		n, err := strconv.Atoi(input)
		if err != nil {
			question = fmt.Sprintf("请输入整数 [%d]: ", def)
			continue
		}
		if n < config.MinModuleCount {
			question = fmt.Sprintf("模块数量至少为 %d [%d]: ", config.MinModuleCount, def)
			continue
		}
		if n > config.ConfirmModuleCount {
			confirm, err := p.Ask(ctx, fmt.Sprintf("模块数量 %d 较多，确认继续? (y/n): ", n))
			if err != nil {
				return 0, err
			}
			if c := strings.ToLower(confirm); c != "y" && c != "yes" {
				question = fmt.Sprintf("功能模块数量 [%d]: ", def)
				continue
			}
		}
		return n, nil
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
