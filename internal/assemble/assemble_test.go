package assemble

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/vars"
)

type recordingExpander struct {
	docTypes []string
	result   string
	err      error
}

func (e *recordingExpander) Expand(ctx context.Context, docType, content string, vs *vars.VariableSet) (string, error) {
	e.docTypes = append(e.docTypes, docType)
	if e.err != nil {
		return "", e.err
	}
	if e.result == "" {
		return content, nil
	}
	return e.result, nil
}

func newAssembler(t *testing.T, templates map[string]string) *Assembler {
	t.Helper()
	root := t.TempDir()
	layout := state.NewLayout(root, "templates", "prompts", "process", "output")
	if err := os.MkdirAll(layout.Templates, 0755); err != nil {
		t.Fatal(err)
	}
	for name, body := range templates {
		if err := os.WriteFile(layout.TemplatePath(name), []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return &Assembler{
		Layout: layout,
		Vars:   vars.FromMap(map[string]string{"name": "World", "software_name": "医院排队叫号系统", "comp_date": "2024.12.31"}),
	}
}

func TestRender_Substitutes(t *testing.T) {
	a := newAssembler(t, map[string]string{"hello.md": "Hello {{name}}, {{missing}}"})
	out, err := a.Render(context.Background(), config.Document{Name: "hello", Template: "hello.md", Output: "hello.md"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Hello World, {{missing}}" {
		t.Fatalf("got %q", data)
	}
}

func TestRender_Expands(t *testing.T) {
	a := newAssembler(t, map[string]string{"manual.md": "{{software_name}}"})
	exp := &recordingExpander{result: "expanded"}
	a.Expander = exp
	docs := []config.Document{
		{Name: "manual", Template: "manual.md", Output: "manual.md", Expand: config.ExpandFunctionManual},
		{Name: "plain", Template: "manual.md", Output: "plain.md"},
	}
	paths, err := a.RenderAll(context.Background(), docs)
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.docTypes) != 1 || exp.docTypes[0] != config.ExpandFunctionManual {
		t.Fatalf("unexpected expansions %v", exp.docTypes)
	}
	manual, _ := os.ReadFile(paths[0])
	plain, _ := os.ReadFile(paths[1])
	if string(manual) != "expanded" || string(plain) != "医院排队叫号系统" {
		t.Fatalf("got %q and %q", manual, plain)
	}
}

func TestRender_ExpandCancelled(t *testing.T) {
	a := newAssembler(t, map[string]string{"m.md": "x"})
	a.Expander = &recordingExpander{err: context.Canceled}
	_, err := a.Render(context.Background(), config.Document{Name: "m", Template: "m.md", Output: "m.md", Expand: config.ExpandInstallManual})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(a.Layout.OutputPath("m.md")); !os.IsNotExist(err) {
		t.Fatal("no output expected after cancellation")
	}
}

func TestRender_MissingTemplate(t *testing.T) {
	a := newAssembler(t, nil)
	_, err := a.Render(context.Background(), config.Document{Name: "x", Template: "nope.md", Output: "x.md"})
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestCountLines(t *testing.T) {
	if got := CountText([]byte("a\n\n  \nb\n\tc\n")); got != 3 {
		t.Fatalf("CountText = %d, want 3", got)
	}
	if got := CountText(nil); got != 0 {
		t.Fatalf("CountText(nil) = %d", got)
	}
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.html"), []byte("1\n2\n"), 0644)
	os.WriteFile(filepath.Join(dir, "b.html"), []byte("1\n\n3"), 0644)
	os.WriteFile(filepath.Join(dir, "c.txt"), []byte("ignored\n"), 0644)
	total, err := TotalLines(dir, "*.html")
	if err != nil {
		t.Fatal(err)
	}
	if total != 4 {
		t.Fatalf("TotalLines = %d, want 4", total)
	}
	if _, err := CountLines(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSourceBundle(t *testing.T) {
	a := newAssembler(t, nil)
	os.MkdirAll(a.Layout.Process, 0755)
	os.WriteFile(a.Layout.ProcessPath("module_02_队列_管理.html"), []byte("<html>\n\n</html>"), 0644)
	os.WriteFile(a.Layout.ProcessPath("module_01_排队取号.html"), []byte("<html>\n<body></body>\n</html>\n"), 0644)
	os.WriteFile(a.Layout.ProcessPath("srs.json"), []byte("[]"), 0644)

	out, err := a.WriteSourceBundle(config.DefaultSourceBundle)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	for _, want := range []string{
		"# 医院排队叫号系统 源代码\n",
		"## 代码目录\n\n1. [01 排队取号](#01-排队取号)\n2. [02 队列 管理](#02-队列-管理)\n",
		"## 01 排队取号\n\n**文件**: `module_01_排队取号.html`  \n**行数**: 3 行\n\n```html\n<html>\n",
		"**行数**: 2 行",
		"- **模块数量**: 2\n",
		"- **总代码行数**: 5 行\n",
		"- **生成时间**: 2024.12.31\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("bundle missing %q", want)
		}
	}
	if strings.Index(got, "## 01 排队取号") > strings.Index(got, "## 02 队列 管理") {
		t.Error("sections out of order")
	}
	if strings.Contains(got, "srs.json") {
		t.Error("non-module files must not be bundled")
	}
}

func TestSourceBundle_Empty(t *testing.T) {
	got, err := SourceBundle("s", "d", nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "- **模块数量**: 0\n") {
		t.Fatalf("unexpected bundle %q", got)
	}
}
