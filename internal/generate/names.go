package generate

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const maxNameRunes = 50

var unsafeNameChars = strings.NewReplacer(
	"<", "", ">", "", ":", "", `"`, "", "/", "", `\`, "", "|", "", "?", "", "*", "",
	" ", "_",
)

// SanitizeName makes a module name safe for use in a file name.
func SanitizeName(name string) string {
	s := unsafeNameChars.Replace(norm.NFC.String(strings.TrimSpace(name)))
	r := []rune(s)
	if len(r) > maxNameRunes {
		s = string(r[:maxNameRunes])
	}
	if s == "" {
		return "module"
	}
	return s
}

// ModuleFileName returns the output name for the 1-based module index.
func ModuleFileName(index int, name string) string {
	return fmt.Sprintf("module_%02d_%s.html", index, SanitizeName(name))
}
