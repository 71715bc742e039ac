package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Getting started with softcopy",
		Content: topicQuickstart,
	},
	{
		Name:    "config",
		Title:   "Configuration Reference",
		Summary: "Config file schema, fields, and defaults",
		Content: topicConfig,
	},
	{
		Name:    "modes",
		Title:   "Generation Modes",
		Summary: "auto, interactive, and cli modes",
		Content: topicModes,
	},
	{
		Name:    "protocol",
		Title:   "Request Protocol",
		Summary: "The file handshake between softcopy and a fulfiller",
		Content: topicProtocol,
	},
	{
		Name:    "variables",
		Title:   "Template Variables",
		Summary: "Declared variables, generated variables, and .env answers",
		Content: topicVariables,
	},
	{
		Name:    "pipeline",
		Title:   "Pipeline Steps",
		Summary: "Steps, gates, validation, fallbacks, and resuming",
		Content: topicPipeline,
	},
}

const topicQuickstart = `Quick Start
===========

1. Initialize a project:

    mkdir my-filing && cd my-filing
    softcopy init

   This creates .softcopy/config.yaml and the default document templates
   in templates/.

2. Edit .softcopy/config.yaml and the templates if needed.

3. Preview the plan without executing:

    softcopy run --dry-run

4. Run for real. In the default auto mode, start a fulfiller in a second
   terminal first:

    softcopy watch --fulfill      # terminal 1
    softcopy run                  # terminal 2

5. Check progress:

    softcopy status

Deliverables are written to output/. Intermediate responses stay in
process/ and are reused when a run is started again.

CLI
---

  softcopy init                       Scaffold .softcopy/ and templates/
  softcopy run                        Run the pipeline (auto mode)
  softcopy run --mode cli             Call claude directly
  softcopy run --mode interactive     Fulfil each request by hand
  softcopy run --skip-inputs          Use defaults and .env answers
  softcopy run --yes                  Approve every confirmation gate
  softcopy run --modules N            Request N functional modules
  softcopy run --no-expand            Skip the document expansion requests
  softcopy run --dry-run              Print the step plan
  softcopy run --debug                Write debug entries to the run log
  softcopy complete [--file F]        Fulfil the outstanding request
  softcopy watch [--once] [--fulfill] Follow pending requests
  softcopy status                     Show run state and outstanding request
  softcopy doctor [--clean]           Check the project, clean stale requests
  softcopy doctor --diagnose          Ask claude to explain the last failure
  softcopy docs [topic]               Show documentation
`

const topicConfig = `Configuration Reference
=======================

The project is configured in .softcopy/config.yaml. Every field except
name has a default.

Top-level fields
----------------

  name                   string   Required. Project name.
  module-count           int      Default module count offered at the prompt.
                                  Default: 10. Minimum: 3.
  max-attempts           int      Requests per module page before the
                                  fallback page is used. Default: 3.
  line-count-multiplier  int      Factor applied to the generated line total
                                  for {{line_count}}. Default: 10.
  source-bundle          string   Output name of the source listing.
                                  Default: 源代码.md
  request                object   Wait bounds, see below.
  claude                 object   command (default "claude") and model
                                  ("opus", "sonnet", "haiku" or empty).
  dirs                   object   templates, prompts, process, output.
                                  Relative to the project root.
  variables              list     Operator-supplied variables.
  documents              list     Template to deliverable mappings.

request
-------

  timeout          int   Seconds to wait in auto mode. Default: 600.
  manual-timeout   int   Seconds to wait in interactive mode. Default: 300.
  cli-timeout      int   Seconds a claude invocation may run. Default: 300.
  poll-interval    int   Seconds between output checks. Default: 1.

variables
---------

  key        string   Required. Placeholder name, [A-Za-z_][A-Za-z0-9_]*.
  prompt     string   Question shown to the operator.
  default    string   Used when the answer is empty.
  required   bool     Ask again until non-empty (when there is no default).

documents
---------

  name       string   Defaults to the template name without extension.
  template   string   Required. File in the templates directory.
  output     string   Defaults to the template name. No path separators.
  expand     string   function_manual, install_manual, registration_form,
                      or empty for no expansion request.

Example
-------

    name: hospital-queue
    module-count: 12
    request:
      timeout: 900
    documents:
      - template: 软件功能说明书.md
        expand: function_manual
`

const topicModes = `Generation Modes
================

softcopy run --mode <mode>

auto (default)
  Each request is written to the request slot with a pending marker next
  to it. A fulfiller (softcopy watch --fulfill, an editor extension, or a
  person) writes the output file. softcopy waits up to request.timeout.

interactive
  Same handshake without pending markers. The prompt path and the expected
  output path are printed; paste the answer into the file or pipe it to
  softcopy complete. softcopy waits up to request.manual-timeout. Document
  expansion is off in this mode.

cli
  softcopy runs claude -p for every request and saves the answer to the
  process directory itself. claude must be on PATH; softcopy doctor
  --mode cli checks it.

In every mode an output that already exists and is non-empty is reused
without a new request.
`

const topicProtocol = `Request Protocol
================

Files (default directories):

  prompts/.generation_request     Request descriptor (JSON), one at a time.
  prompts/<output>.prompt         The prompt text for <output>.
  prompts/<output>.pending        Marker for automated fulfillers (auto mode).
  process/<output>                The answer.

Descriptor fields:

  id            UUID of the request.
  task_type     srs, html_code, summary, detailed, purpose, or expand.
  prompt        Full prompt text.
  output_file   File name in the process directory to write.
  context       Extra key/value pairs (software name, module name, ...).
  pid           Process ID of the waiting softcopy run.
  created_at    RFC 3339 timestamp.

A fulfiller reads the descriptor, writes the answer to process/<output_file>
(write to a temporary file and rename), then removes the descriptor and the
marker. softcopy complete does all of this for you.

The wait ends as soon as the output exists and is non-empty. When the bound
is exceeded the request fails: the requirements request ends the run, module
pages and text requests fall back to built-in content.

Only one request is outstanding at a time. A descriptor whose pid is no
longer running is stale and is replaced by the next request; softcopy
doctor --clean removes it explicitly.
`

const topicVariables = `Template Variables
==================

Templates use {{key}} placeholders. Substitution is literal and single
pass; placeholders without a value are left as written.

Declared variables
------------------

Declared under variables: in config.yaml. The defaults are:

  software_name        软件名称 (required)
  version              版本号
  applicant            著作权人
  comp_date            开发完成日期 (required)
  industry             面向行业
  applicant_address    著作权人地址
  applicant_contact    联系人
  applicant_phone      联系电话

Generated variables
-------------------

Set by the pipeline and not declarable:

  module_count             Number of functional modules requested.
  main_functions_summary   Function summary.
  main_functions_details   Detailed function description.
  dev_purpose              Development purpose.
  line_count               Generated line total times line-count-multiplier.

Answers without prompting
-------------------------

Values can be supplied in .softcopy/.env or the environment:

  SOFTCOPY_VAR_SOFTWARE_NAME=医院排队叫号系统
  SOFTCOPY_VAR_MODULE_COUNT=12

The environment wins over .env. Names are matched case-insensitively.
With --skip-inputs, anything not supplied takes its default.
`

const topicPipeline = `Pipeline Steps
==============

  1. inputs              Collect variables and the module count.
  2. requirements        Request the module breakdown (process/srs.json).
  3. confirm-frontend    Gate: continue to the module pages?
  4. frontend            One HTML page per module.
  5. line-count          Count non-blank lines of the module pages.
  6. confirm-documents   Gate: continue to the documents?
  7. descriptions        Function summary and detailed description.
  8. purpose             Development purpose.
  9. documents           Render templates and the source listing.

Gates ask y/n on the terminal. Anything but y or yes stops the run with
exit code 0. --yes approves every gate.

Validation
----------

A module page is accepted when it contains <html, <head, <body and </html>,
carries no explanatory prose, is at least 1000 characters long and has a
<style> block. A rejected page is deleted and requested again up to
max-attempts times. After that, or when the request itself fails, a
built-in page chosen by the module name is written instead.

Failures
--------

An unusable requirements breakdown ends the run with an error. Text
requests that fail fall back to built-in text. An expansion shorter than
half of the rendered document is discarded.

Resuming
--------

State is saved to .softcopy/state.json after every step. softcopy run
starts from the first step again and reuses every output already in
process/, so finished requests are not repeated.
`
