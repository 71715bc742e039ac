// Package fallback renders deterministic content used when the external
// generator is unavailable or its output is rejected.
package fallback

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/jorge-barreto/softcopy/internal/srs"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pages = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

type pageData struct {
	Module   string
	Software string
	Overview string
	Features []string
	Section  template.HTML
}

// HTML renders the fallback page for a module. Output depends only on the arguments.
func HTML(moduleName, softwareName string, info srs.Module) (string, error) {
	return HTMLFor(Classify(moduleName), moduleName, softwareName, info)
}

// HTMLFor renders the fallback page with an explicit archetype.
func HTMLFor(arch Archetype, moduleName, softwareName string, info srs.Module) (string, error) {
	data := pageData{
		Module:   moduleName,
		Software: softwareName,
		Overview: info.Description,
		Features: info.Features,
	}
	if data.Overview == "" {
		data.Overview = fmt.Sprintf("本模块是%s的核心功能模块之一，提供%s的完整管理功能。", softwareName, moduleName)
	}

	var section bytes.Buffer
	if err := pages.ExecuteTemplate(&section, arch.String(), data); err != nil {
		return "", fmt.Errorf("rendering %s section: %w", arch, err)
	}
	// section comes from html/template and is already escaped
	data.Section = template.HTML(section.String())

	var page bytes.Buffer
	if err := pages.ExecuteTemplate(&page, "page.html.tmpl", data); err != nil {
		return "", fmt.Errorf("rendering fallback page: %w", err)
	}
	return page.String(), nil
}
