package generate

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/softcopy/internal/config"
	"github.com/jorge-barreto/softcopy/internal/srs"
)

func requirementsPrompt(software, industry string, count int) string {
	return fmt.Sprintf(`Generate a Software Requirements Specification (SRS) for the following software:

Software Name: %[1]s
Industry: %[2]s
Target OS: Linux
Development Tool: VSCode

IMPORTANT: Design modules SPECIFICALLY for "%[1]s" in the %[2]s industry.
Each module must be relevant to the software's purpose and target users.
Think about what functions this software actually needs based on its name and industry.

Requirements:
1. Create exactly %[3]d functional modules (NO MORE, NO LESS)
2. Each module should have:
   - Module name (in Chinese) - must be relevant to %[1]s
   - Brief description - describe how this module serves %[1]s
   - Key features (3-5 items) - specific features for this type of software

Module examples for reference (DO NOT copy, create ORIGINAL modules for %[1]s):
- User Management: User registration, login, permission control
- Data Management: Data entry, query, statistics, export
- Business Logic: Core business processes, workflows
- System Settings: Configuration, parameter management

IMPORTANT: Return ONLY a valid JSON array with exactly %[3]d modules.
The array structure must be:
[
  {
    "name": "模块名称",
    "description": "模块描述",
    "features": ["功能1", "功能2", "功能3"]
  }
]

Do not include any other text or explanation - just the JSON array.`, software, industry, count)
}

func modulePrompt(software string, m srs.Module) string {
	desc := m.Description
	if desc == "" {
		desc = m.Name + "的功能实现页面"
	}
	var features strings.Builder
	for _, f := range m.Features {
		fmt.Fprintf(&features, "        - %s\n", f)
	}
	return fmt.Sprintf(`Generate a complete HTML/CSS page for a software module with the following specifications:

Software Name: %s
Module Name: %s
Module Description: %s
Module Features:
%s
Requirements:
1. Create a professional, clean UI with modern design
2. Use blue (#3498db) as the primary color
3. Include all necessary CSS styles in a <style> tag
4. Generate sufficient code to fully implement all features with proper styling and functionality
5. The page should be a functional UI for this module
6. Include:
   - Header with module name and breadcrumbs
   - Main content area with relevant UI elements
   - Sidebar with navigation options
   - Footer with copyright info
   - Appropriate buttons, forms, tables, or other elements based on module type

CRITICAL: Your response must contain ONLY the HTML code. Start with <!DOCTYPE html> and end with </html>.
Do NOT include any explanation, introduction, or summary.`, software, m.Name, desc, features.String())
}

func modulesText(modules []srs.Module) string {
	lines := make([]string, len(modules))
	for i, m := range modules {
		lines[i] = fmt.Sprintf("- %s: %s", m.Name, m.Description)
	}
	return strings.Join(lines, "\n")
}

func summaryPrompt(modules []srs.Module) string {
	return fmt.Sprintf(`Based on the following software modules, write a brief summary (100-150 words) of the main functions:

%s

Write in Chinese, suitable for a software copyright registration form.`, modulesText(modules))
}

func detailedPrompt(modules []srs.Module) string {
	return fmt.Sprintf(`Based on the following software modules, write detailed functional descriptions (500-800 words) for a functional manual:

%s

For each module, include:
1. Module overview
2. Main functions
3. User interactions
4. Data processing logic

Write in Chinese, formatted as Markdown.`, modulesText(modules))
}

func purposePrompt(software, industry string) string {
	return fmt.Sprintf(`Write a development purpose description (100-150 words) for:

Software: %s
Industry: %s

Focus on:
1. What problem the software solves
2. Target users and scenarios
3. Expected benefits

Write in Chinese, suitable for a software copyright registration form.`, software, industry)
}

// expandPrompt builds the expansion prompt for a document type. Unknown
// types use the function manual prompt.
func expandPrompt(docType, content string, v map[string]string) string {
	software, industry := v["software_name"], v["industry"]
	switch docType {
	case config.ExpandInstallManual:
		return fmt.Sprintf(`请对以下软件安装说明书模板进行扩写，添加详细的安装配置内容：

软件名称: %s
面向行业: %s
目标操作系统: Linux
开发工具: VSCode

要求：
1. 保持模板的整体结构和格式
2. **章节层级规范**：一级章节使用 markdown 一级标题（#），二级章节使用 markdown 二级标题（##），三级章节使用 markdown 三级标题（###）。文档标题使用一级标题，主要章节（如环境准备、安装说明等）使用二级标题，子章节使用三级标题。确保层级关系正确。
3. 添加详细的环境要求、安装步骤、配置说明
4. 包含常见问题和解决方案
5. 使用专业的技术文档语言
6. 内容要符合软件著作权申请的要求
7. **重要**：不要添加"测试报告模板"章节，只保留安装相关的内容

模板内容如下：
`+"```"+`
%s
`+"```"+`

请直接返回扩写后的完整文档内容，不要添加任何解释说明。`, software, industry, content)
	case config.ExpandRegistrationForm:
		version := v["version"]
		if version == "" {
			version = "V1.0"
		}
		return fmt.Sprintf(`请对以下软件著作权登记信息表模板进行完善和扩写：

软件名称: %s
面向行业: %s
版本号: %s
完成日期: %s

要求：
1. 保持表格的整体格式
2. 对各项内容进行详细、准确的填写
3. **字数限制**：
   - "开发目的"部分不超过50字
   - "软件的技术特点"部分不超过100字
4. **程序量**：模板中的源程序量已是最终数值，请原样保留，不要修改
5. 使用规范的著作权申请语言
6. 确保内容符合软件著作权登记要求
7. 只保留一个"软件的主要功能"条目，删除重复的条目

模板内容如下：
`+"```"+`
%s
`+"```"+`

请直接返回完善后的完整表格内容，不要添加任何解释说明。`, software, industry, version, v["comp_date"], content)
	default:
		return fmt.Sprintf(`请对以下软件功能说明书模板进行扩写，添加详细的内容：

软件名称: %s
面向行业: %s

要求：
1. 保持模板的整体结构和格式
2. **章节层级规范**：一级章节使用 markdown 一级标题（#），二级章节使用 markdown 二级标题（##），三级章节使用 markdown 三级标题（###）。确保层级关系正确，不要混用。
3. 对每个功能模块进行详细描述（300-500字/模块）
4. 添加具体的功能说明、使用方法、操作步骤
5. 使用专业的技术文档语言
6. 内容要符合软件著作权申请的要求

模板内容如下：
`+"```"+`
%s
`+"```"+`

请直接返回扩写后的完整文档内容，不要添加任何解释说明。`, software, industry, content)
	}
}
