package assemble

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ModulePattern matches the module pages in the process directory.
const ModulePattern = "module_*.html"

// ModuleFiles returns the module pages in dir, sorted by name.
func ModuleFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, ModulePattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CountText returns the number of non-blank lines in content.
func CountText(content []byte) int {
	n := 0
	for _, line := range bytes.Split(content, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}

// CountLines returns the number of non-blank lines in the file at path.
func CountLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return CountText(data), nil
}

// TotalLines sums CountLines over the files in dir matching glob.
func TotalLines(dir, glob string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, glob))
	if err != nil {
		return 0, err
	}
	total := 0
	for _, f := range files {
		n, err := CountLines(f)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// sectionTitle derives the heading for a module page from its file name.
func sectionTitle(path string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	stem = strings.TrimPrefix(stem, "module_")
	return strings.ReplaceAll(stem, "_", " ")
}

// SourceBundle renders the module pages as one Markdown listing with a
// table of contents and a closing statistics block.
func SourceBundle(software, date string, files []string) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s 源代码\n\n", software)
	b.WriteString("本文档包含系统的所有前端 HTML 源代码。\n\n")
	b.WriteString("## 代码目录\n\n")
	for i, f := range files {
		title := sectionTitle(f)
		fmt.Fprintf(&b, "%d. [%s](#%s)\n", i+1, title, strings.ReplaceAll(title, " ", "-"))
	}
	b.WriteString("\n---\n\n")

	total := 0
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", err
		}
		lines := CountText(data)
		total += lines
		fmt.Fprintf(&b, "## %s\n\n", sectionTitle(f))
		fmt.Fprintf(&b, "**文件**: `%s`  \n", filepath.Base(f))
		fmt.Fprintf(&b, "**行数**: %d 行\n\n", lines)
		b.WriteString("```html\n")
		b.Write(data)
		b.WriteString("\n```\n\n---\n\n")
	}

	b.WriteString("\n## 统计信息\n\n")
	fmt.Fprintf(&b, "- **模块数量**: %d\n", len(files))
	fmt.Fprintf(&b, "- **总代码行数**: %d 行\n", total)
	fmt.Fprintf(&b, "- **生成时间**: %s\n", date)
	return b.String(), nil
}
