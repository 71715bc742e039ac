package vars

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// scriptedPrompter replays answers in order and records the questions.
type scriptedPrompter struct {
	answers   []string
	questions []string
}

func (p *scriptedPrompter) Ask(_ context.Context, question string) (string, error) {
	p.questions = append(p.questions, question)
	if len(p.answers) == 0 {
		return "", io.EOF
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	return a, nil
}

func TestCollect_DefaultsAndAnswers(t *testing.T) {
	defs := []Definition{
		{Key: "software_name", Prompt: "软件名称", Default: "示例系统", Required: true},
		{Key: "version", Prompt: "版本号", Default: "V1.0"},
		{Key: "applicant", Prompt: "著作权人"},
	}
	p := &scriptedPrompter{answers: []string{"", "张三"}}
	answers := map[string]string{"version": "V2.0"}

	vs, err := Collect(context.Background(), defs, answers, p)
	if err != nil {
		t.Fatal(err)
	}
	if vs.Get("software_name") != "示例系统" {
		t.Fatalf("software_name = %q", vs.Get("software_name"))
	}
	if vs.Get("version") != "V2.0" {
		t.Fatalf("version = %q", vs.Get("version"))
	}
	if vs.Get("applicant") != "张三" {
		t.Fatalf("applicant = %q", vs.Get("applicant"))
	}
	if len(p.questions) != 2 {
		t.Fatalf("expected 2 questions, got %v", p.questions)
	}
	if p.questions[0] != "软件名称 [示例系统]: " {
		t.Fatalf("unexpected question %q", p.questions[0])
	}
}

func TestCollect_RequiredReprompts(t *testing.T) {
	defs := []Definition{{Key: "owner", Prompt: "Owner", Required: true}}
	p := &scriptedPrompter{answers: []string{"", "", "acme"}}
	vs, err := Collect(context.Background(), defs, nil, p)
	if err != nil {
		t.Fatal(err)
	}
	if vs.Get("owner") != "acme" {
		t.Fatalf("owner = %q", vs.Get("owner"))
	}
	if len(p.questions) != 3 {
		t.Fatalf("expected 3 prompts, got %d", len(p.questions))
	}
}

func TestCollect_PrompterError(t *testing.T) {
	defs := []Definition{{Key: "a"}}
	_, err := Collect(context.Background(), defs, nil, &scriptedPrompter{})
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestDefaults(t *testing.T) {
	defs := []Definition{{Key: "a", Default: "1"}, {Key: "b"}, {Key: "c", Default: "3"}}
	vs := Defaults(defs, map[string]string{"c": "answered", "a": ""})
	if vs.Get("a") != "1" {
		t.Fatalf("a = %q", vs.Get("a"))
	}
	if v, ok := vs.Lookup("b"); !ok || v != "" {
		t.Fatalf("b = %q, %v", v, ok)
	}
	if vs.Get("c") != "answered" {
		t.Fatalf("c = %q", vs.Get("c"))
	}
	if got := strings.Join(vs.Keys(), ","); got != "a,b,c" {
		t.Fatalf("keys = %s", got)
	}
}

func TestLoadAnswers(t *testing.T) {
	envPath := filepath.Join(t.TempDir(), ".env")
	content := "SOFTCOPY_VAR_SOFTWARE_NAME=文件系统\nSOFTCOPY_VAR_VERSION=V3.0\nOTHER=ignored\n"
	if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SOFTCOPY_VAR_VERSION", "V4.0")

	answers, err := LoadAnswers(envPath)
	if err != nil {
		t.Fatal(err)
	}
	if answers["software_name"] != "文件系统" {
		t.Fatalf("software_name = %q", answers["software_name"])
	}
	if answers["version"] != "V4.0" {
		t.Fatalf("environment should win, got %q", answers["version"])
	}
	if _, ok := answers["other"]; ok {
		t.Fatal("unprefixed key must be ignored")
	}
}

func TestLoadAnswers_MissingFile(t *testing.T) {
	answers, err := LoadAnswers(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("missing .env must not fail: %v", err)
	}
	if answers == nil {
		t.Fatal("expected non-nil map")
	}
}

func TestCollectModuleCount(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    int
	}{
		{"default", []string{""}, 10},
		{"explicit", []string{"6"}, 6},
		{"not a number", []string{"abc", "4"}, 4},
		{"below minimum", []string{"2", "3"}, 3},
		{"large confirmed", []string{"40", "y"}, 40},
		{"large declined", []string{"40", "n", "12"}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &scriptedPrompter{answers: tt.answers}
			got, err := CollectModuleCount(context.Background(), 10, "", p)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCollectModuleCount_Answer(t *testing.T) {
	got, err := CollectModuleCount(context.Background(), 10, "8", &scriptedPrompter{})
	if err != nil || got != 8 {
		t.Fatalf("got %d, %v", got, err)
	}
	if _, err := CollectModuleCount(context.Background(), 10, "1", &scriptedPrompter{}); err == nil {
		t.Fatal("expected error for answer below minimum")
	}
}
