// Package fence locates content inside fenced code blocks and surrounding prose.
package fence

import (
	"regexp"
	"strings"
)

// Block is one fenced code block.
type Block struct {
	Lang    string // e.g. "json"; empty for a bare fence
	Content string // content between the fences
}

var fenceOpenRe = regexp.MustCompile("^```\\s*([\\w+-]*)")

// Parse extracts every fenced code block from text, in order of appearance.
// An unterminated block runs to the end of text.
func Parse(text string) []Block {
	lines := strings.Split(text, "\n")
	var blocks []Block
	var current *Block
	var buf strings.Builder

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if current != nil {
			if trimmed == "```" {
				current.Content = buf.String()
				blocks = append(blocks, *current)
				current = nil
				buf.Reset()
				continue
			}
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(line)
			continue
		}

		if m := fenceOpenRe.FindStringSubmatch(trimmed); m != nil {
			current = &Block{Lang: strings.ToLower(m[1])}
			buf.Reset()
		}
	}
	if current != nil {
		current.Content = buf.String()
		blocks = append(blocks, *current)
	}

	return blocks
}

// Extract returns the body of the first block tagged lang.
func Extract(text, lang string) (string, bool) {
	lang = strings.ToLower(lang)
	for _, b := range Parse(text) {
		if b.Lang == lang {
			return strings.TrimSpace(b.Content), true
		}
	}
	return "", false
}

// Strip removes a leading ```lang line and a trailing fence from text.
func Strip(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = ""
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}

var jsonArrayRe = regexp.MustCompile(`(?s)\[\s*\{.*\}\s*\]`)

// FindJSONArray returns the outermost [{...}] span embedded in text.
func FindJSONArray(text string) (string, bool) {
	m := jsonArrayRe.FindString(text)
	return m, m != ""
}

// FindHTML returns the HTML document embedded in text, from <!DOCTYPE html>
// or <html up to the last </html>.
func FindHTML(text string) (string, bool) {
	lower := strings.ToLower(text)
	start := strings.Index(lower, "<!doctype html")
	if start < 0 {
		start = strings.Index(lower, "<html")
	}
	if start < 0 {
		return "", false
	}
	end := strings.LastIndex(lower, "</html>")
	if end < start {
		return "", false
	}
	return text[start : end+len("</html>")], true
}
