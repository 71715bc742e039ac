package fallback

import (
	"fmt"
	"strings"

	"github.com/jorge-barreto/softcopy/internal/srs"
)

// Purpose returns the development purpose paragraph.
func Purpose(software, industry string) string {
	if industry == "" {
		industry = "相关行业"
	}
	return fmt.Sprintf(`%[1]s是为了解决%[2]s在日常运营管理中存在的痛点问题而开发的专用软件系统。

随着信息化建设的不断深入，%[2]s对高效、规范的管理工具需求日益增长。传统的人工管理方式存在效率低下、数据不共享、流程不规范等问题，严重制约了服务质量的提升。

本软件面向%[2]s的管理人员和使用者，通过先进的信息技术手段，实现业务流程的数字化、自动化管理。系统涵盖了用户管理、数据处理、统计分析等核心功能，能够显著提高工作效率，降低运营成本。

通过本软件的应用，预计可实现管理效率提升50%%以上，数据处理准确率达到99.9%%，为%[2]s的现代化管理提供强有力的技术支撑。`, software, industry)
}

// Descriptions returns the function summary and the detailed per-module description.
func Descriptions(software string, modules []srs.Module) (summary, detailed string) {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}

	var s strings.Builder
	fmt.Fprintf(&s, "本系统包含%d个核心功能模块，即%s。\n\n", len(modules), strings.Join(names, "、"))
	for i, m := range modules {
		desc := m.Description
		if desc == "" {
			desc = "提供" + m.Name + "相关的业务处理功能"
		}
		sep := "；"
		if i == len(modules)-1 {
			sep = "。"
		}
		fmt.Fprintf(&s, "%s模块%s%s", m.Name, strings.TrimRight(desc, "。；"), sep)
	}
	fmt.Fprintf(&s, "系统通过模块化设计，实现完整的%s功能，有效提升工作效率。", software)

	var d strings.Builder
	fmt.Fprintf(&d, "本系统提供完整的%s解决方案，包含以下核心功能模块：\n\n", software)
	for i, m := range modules {
		fmt.Fprintf(&d, "### %d. %s\n\n", i+1, m.Name)
		fmt.Fprintf(&d, "**功能概述**：%s\n\n", m.Description)
		d.WriteString("**主要功能**：\n\n")
		for _, f := range m.Features {
			fmt.Fprintf(&d, "- %s\n", f)
		}
		d.WriteString("\n**用户交互**：用户通过图形界面进行操作，系统提供实时反馈和状态提示。\n\n")
		d.WriteString("**数据处理**：系统采用实时数据处理机制，确保数据的一致性和准确性。\n\n")
	}

	return s.String(), strings.TrimRight(d.String(), "\n") + "\n"
}
