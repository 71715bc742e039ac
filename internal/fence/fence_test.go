package fence

import (
	"testing"
)

func TestParse_SingleBlock(t *testing.T) {
	input := "```json\n[{\"name\":\"a\"}]\n```\n"
	blocks := Parse(input)
	if len(blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(blocks))
	}
	if blocks[0].Lang != "json" {
		t.Fatalf("expected lang json, got %q", blocks[0].Lang)
	}
	if blocks[0].Content != `[{"name":"a"}]` {
		t.Fatalf("unexpected content: %q", blocks[0].Content)
	}
}

func TestParse_MultipleBlocks(t *testing.T) {
	input := "Intro\n\n```\nplain\n```\n\nMore\n\n```HTML\n<html></html>\n```\n"
	blocks := Parse(input)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Lang != "" || blocks[0].Content != "plain" {
		t.Fatalf("block 0: %+v", blocks[0])
	}
	if blocks[1].Lang != "html" {
		t.Fatalf("block 1: expected lang html, got %q", blocks[1].Lang)
	}
}

func TestParse_Unterminated(t *testing.T) {
	blocks := Parse("```json\n[1, 2]")
	if len(blocks) != 1 || blocks[0].Content != "[1, 2]" {
		t.Fatalf("unexpected blocks %+v", blocks)
	}
}

func TestExtract(t *testing.T) {
	input := "Here you go:\n```text\nnope\n```\n```json\n  [{\"name\": \"x\"}]  \n```\nDone."
	got, ok := Extract(input, "json")
	if !ok || got != `[{"name": "x"}]` {
		t.Fatalf("got %q, %v", got, ok)
	}
	if _, ok := Extract(input, "yaml"); ok {
		t.Fatal("expected no yaml block")
	}
}

func TestStrip(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"```json\n[1]\n```", "[1]"},
		{"```html\n<html></html>\n```\n", "<html></html>"},
		{"  plain text  ", "plain text"},
		{"```\nbare\n```", "bare"},
		{"content\n```", "content"},
		{"```", ""},
	}
	for _, tt := range tests {
		if got := Strip(tt.in); got != tt.want {
			t.Errorf("Strip(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFindJSONArray(t *testing.T) {
	input := `The modules are: [ {"name": "a"}, {"name": "b"} ] as requested.`
	got, ok := FindJSONArray(input)
	if !ok || got != `[ {"name": "a"}, {"name": "b"} ]` {
		t.Fatalf("got %q, %v", got, ok)
	}
	if _, ok := FindJSONArray("no array [1, 2]"); ok {
		t.Fatal("array without objects must not match")
	}
}

func TestFindHTML(t *testing.T) {
	input := "Sure!\n<!DOCTYPE html>\n<html><body>x</body></html>\nHope this helps."
	got, ok := FindHTML(input)
	if !ok || got != "<!DOCTYPE html>\n<html><body>x</body></html>" {
		t.Fatalf("got %q, %v", got, ok)
	}
	got, ok = FindHTML("prefix <HTML>y</HTML> suffix")
	if !ok || got != "<HTML>y</HTML>" {
		t.Fatalf("got %q, %v", got, ok)
	}
	if _, ok := FindHTML("<html> never closed"); ok {
		t.Fatal("expected no match without closing tag")
	}
}
