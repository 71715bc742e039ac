package scaffold

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jorge-barreto/softcopy/internal/state"
	"github.com/jorge-barreto/softcopy/internal/ux"
)

//go:embed templates/*.md
var templateFS embed.FS

var configTemplate = `name: %q

# Default module count offered at the prompt (minimum 3).
module-count: 10
# Requests per module page before the built-in page is used.
max-attempts: 3
# {{line_count}} = generated non-blank lines x this factor.
line-count-multiplier: 10

request:
  timeout: 600          # seconds, auto mode
  manual-timeout: 300   # seconds, interactive mode
  cli-timeout: 300      # seconds per claude invocation, cli mode
  poll-interval: 1

claude:
  command: claude

dirs:
  templates: templates
  prompts: prompts
  process: process
  output: output

variables:
  - key: software_name
    prompt: 软件名称
    default: 医院排队叫号系统
    required: true
  - key: version
    prompt: 版本号
    default: V1.0
  - key: applicant
    prompt: 著作权人
  - key: comp_date
    prompt: 开发完成日期
    default: "2024.12.31"
    required: true
  - key: industry
    prompt: 面向行业
  - key: applicant_address
    prompt: 著作权人地址
  - key: applicant_contact
    prompt: 联系人
  - key: applicant_phone
    prompt: 联系电话

documents:
  - name: function-manual
    template: 软件功能说明书.md
    expand: function_manual
  - name: install-manual
    template: 软件安装说明书.md
    expand: install_manual
  - name: registration-form
    template: 软件著作权登记信息表.md
    expand: registration_form

source-bundle: 源代码.md
`

// Init creates .softcopy/config.yaml and the default document templates in
// targetDir. Templates that already exist are left alone.
func Init(targetDir string) error {
	configDir := filepath.Join(targetDir, state.ConfigDirName)
	if _, err := os.Stat(configDir); err == nil {
		return fmt.Errorf("%s directory already exists in %s", state.ConfigDirName, targetDir)
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", state.ConfigDirName, err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	name := filepath.Base(targetDir)
	if err := os.WriteFile(configPath, []byte(fmt.Sprintf(configTemplate, name)), 0644); err != nil {
		return fmt.Errorf("writing config.yaml: %w", err)
	}

	templatesDir := filepath.Join(targetDir, "templates")
	created, err := writeTemplates(templatesDir)
	if err != nil {
		return err
	}

	fmt.Printf("\n%s%s✓ Initialized %s/ directory%s\n\n", ux.Bold, ux.Green, state.ConfigDirName, ux.Reset)
	fmt.Printf("  Created:\n")
	fmt.Printf("    %s%s/config.yaml%s — project configuration\n", ux.Cyan, state.ConfigDirName, ux.Reset)
	for _, name := range created {
		fmt.Printf("    %stemplates/%s%s\n", ux.Cyan, name, ux.Reset)
	}
	fmt.Printf("\n  Next steps:\n")
	fmt.Printf("    1. Edit %s%s/config.yaml%s and the templates\n", ux.Cyan, state.ConfigDirName, ux.Reset)
	fmt.Printf("    2. Run %ssoftcopy run --dry-run%s to preview\n", ux.Cyan, ux.Reset)
	fmt.Printf("    3. Run %ssoftcopy watch --fulfill%s and %ssoftcopy run%s\n\n", ux.Cyan, ux.Reset, ux.Cyan, ux.Reset)
	return nil
}

// TemplateNames lists the bundled default templates.
func TemplateNames() []string {
	entries, _ := fs.ReadDir(templateFS, "templates")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func writeTemplates(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating templates: %w", err)
	}
	var created []string
	for _, name := range TemplateNames() {
		dst := filepath.Join(dir, name)
		if _, err := os.Stat(dst); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return created, err
		}
		data, err := templateFS.ReadFile("templates/" + name)
		if err != nil {
			return created, err
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			return created, fmt.Errorf("writing %s: %w", name, err)
		}
		created = append(created, name)
	}
	return created, nil
}
