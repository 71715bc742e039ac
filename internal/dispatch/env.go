package dispatch

import (
	"os"
	"strings"
)

// BuildEnv returns the environment for the claude child process: the current
// environment with every CLAUDECODE* variable removed.
func BuildEnv() []string {
	var out []string
	for _, e := range os.Environ() {
		key, _, _ := strings.Cut(e, "=")
		if strings.HasPrefix(key, "CLAUDECODE") {
			continue
		}
		out = append(out, e)
	}
	return out
}
