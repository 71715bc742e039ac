// Package vars holds the write-once variable store used to fill document templates.
package vars

import (
	"errors"
	"fmt"
	"strings"
)

// Generated keys set by the pipeline.
const (
	KeyModuleCount  = "module_count"
	KeyDevPurpose   = "dev_purpose"
	KeySummary      = "main_functions_summary"
	KeyDetails      = "main_functions_details"
	KeyLineCount    = "line_count"
	KeySoftwareName = "software_name"
	KeyIndustry     = "industry"
	KeyCompDate     = "comp_date"
)

var ErrAlreadySet = errors.New("variable already set")

// VariableSet is an ordered name to value map. Each key is written at most once per run.
type VariableSet struct {
	keys   []string
	values map[string]string
}

func New() *VariableSet {
	return &VariableSet{values: make(map[string]string)}
}

// FromMap builds a set from m in sorted key order.
func FromMap(m map[string]string) *VariableSet {
	vs := New()
	for _, k := range sortedKeys(m) {
		vs.keys = append(vs.keys, k)
		vs.values[k] = m[k]
	}
	return vs
}

// Set stores value under key. It fails with ErrAlreadySet if key is present.
func (vs *VariableSet) Set(key, value string) error {
	if _, ok := vs.values[key]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadySet, key)
	}
	vs.keys = append(vs.keys, key)
	vs.values[key] = value
	return nil
}

// Get returns the value of key, or "" when absent.
func (vs *VariableSet) Get(key string) string {
	return vs.values[key]
}

func (vs *VariableSet) Lookup(key string) (string, bool) {
	v, ok := vs.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (vs *VariableSet) Keys() []string {
	out := make([]string, len(vs.keys))
	copy(out, vs.keys)
	return out
}

// Map returns a copy of the values.
func (vs *VariableSet) Map() map[string]string {
	m := make(map[string]string, len(vs.values))
	for k, v := range vs.values {
		m[k] = v
	}
	return m
}

func (vs *VariableSet) Len() int {
	return len(vs.keys)
}

// Substitute replaces every {{key}} occurrence in template with its value.
// Replacement is literal and single-pass; unknown placeholders stay as written.
func (vs *VariableSet) Substitute(template string) string {
	if len(vs.keys) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(vs.keys))
	for _, k := range vs.keys {
		pairs = append(pairs, "{{"+k+"}}", vs.values[k])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// LineCount applies the configured multiplier to a raw non-empty line total.
func LineCount(total, multiplier int) int {
	if multiplier < 1 {
		multiplier = 1
	}
	return total * multiplier
}
