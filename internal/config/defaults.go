package config

const (
	ModeAuto        = "auto"
	ModeInteractive = "interactive"
	ModeCLI         = "cli"
)

// Expansion document types.
const (
	ExpandFunctionManual   = "function_manual"
	ExpandInstallManual    = "install_manual"
	ExpandRegistrationForm = "registration_form"
)

const (
	DefaultModuleCount         = 10
	MinModuleCount             = 3
	ConfirmModuleCount         = 30
	DefaultMaxAttempts         = 3
	DefaultLineCountMultiplier = 10
	DefaultTimeout             = 600
	DefaultManualTimeout       = 300
	DefaultCLITimeout          = 300
	DefaultPollInterval        = 1
	DefaultSourceBundle        = "源代码.md"
)

// DefaultVariables returns the variable set used when config.yaml lists none.
func DefaultVariables() []Variable {
	return []Variable{
		{Key: "software_name", Prompt: "软件名称", Default: "医院排队叫号系统", Required: true},
		{Key: "version", Prompt: "版本号", Default: "V1.0"},
		{Key: "applicant", Prompt: "著作权人"},
		{Key: "comp_date", Prompt: "开发完成日期", Default: "2024.12.31", Required: true},
		{Key: "industry", Prompt: "面向行业"},
		{Key: "applicant_address", Prompt: "著作权人地址"},
		{Key: "applicant_contact", Prompt: "联系人"},
		{Key: "applicant_phone", Prompt: "联系电话"},
	}
}

// DefaultDocuments returns the document set used when config.yaml lists none.
func DefaultDocuments() []Document {
	return []Document{
		{Name: "function-manual", Template: "软件功能说明书.md", Output: "软件功能说明书.md", Expand: ExpandFunctionManual},
		{Name: "install-manual", Template: "软件安装说明书.md", Output: "软件安装说明书.md", Expand: ExpandInstallManual},
		{Name: "registration-form", Template: "软件著作权登记信息表.md", Output: "软件著作权登记信息表.md", Expand: ExpandRegistrationForm},
	}
}
