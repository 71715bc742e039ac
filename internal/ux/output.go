package ux

import (
	"fmt"
	"time"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// StepHeader prints a timestamped step header.
func StepHeader(index, total int, name, description string) {
	fmt.Printf("\n%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
	desc := ""
	if description != "" {
		desc = fmt.Sprintf(" — %s", description)
	}
	fmt.Printf("%s[%s]%s  %sStep %d/%d: %s%s%s\n",
		Dim, timestamp(), Reset, Bold, index+1, total, name, desc, Reset)
	fmt.Printf("%s[%s]%s %s══════════════════════════════════════%s\n",
		Dim, timestamp(), Reset, Cyan, Reset)
}

// StepComplete prints a step completion message.
func StepComplete(index int, duration time.Duration) {
	m := int(duration.Minutes())
	s := int(duration.Seconds()) % 60
	fmt.Printf("%s[%s]%s  %s✓ Step %d complete (%dm %02ds)%s\n",
		Dim, timestamp(), Reset, Green, index+1, m, s, Reset)
}

// StepFail prints a step failure message.
func StepFail(index int, stepName, errMsg string) {
	fmt.Printf("%s[%s]%s  %s✗ Step %d (%s) failed: %s%s\n",
		Dim, timestamp(), Reset, Red, index+1, stepName, errMsg, Reset)
}

// ResumeHint prints how to pick the run up again. Existing outputs are reused.
func ResumeHint() {
	fmt.Printf("\n%sResume:%s softcopy run (existing outputs in process/ are reused)\n", Yellow, Reset)
}

// OK prints a success line.
func OK(format string, args ...any) {
	fmt.Printf("  %s✓%s %s\n", Green, Reset, fmt.Sprintf(format, args...))
}

// Warn prints a warning line.
func Warn(format string, args ...any) {
	fmt.Printf("  %s⚠ %s%s\n", Yellow, fmt.Sprintf(format, args...), Reset)
}

// Info prints a neutral line.
func Info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// RequestPosted prints where a request is waiting to be fulfilled.
func RequestPosted(descriptor, output string) {
	fmt.Printf("  %s→%s request: %s\n", Cyan, Reset, descriptor)
	fmt.Printf("  %s→%s expecting: %s\n", Cyan, Reset, output)
}

// ManualInstructions tells the operator how to fulfil a request by hand.
func ManualInstructions(promptPath, outputPath string) {
	fmt.Printf("\n  %sManual step:%s\n", Bold, Reset)
	fmt.Printf("    1. Give the prompt in %s to your assistant\n", promptPath)
	fmt.Printf("    2. Save the answer to %s\n", outputPath)
	fmt.Printf("       or pipe it to: softcopy complete\n")
}

// Waiting prints a wait progress line.
func Waiting(output string, elapsed time.Duration) {
	fmt.Printf("  %s… waiting for %s (%ds)%s\n", Dim, output, int(elapsed.Seconds()), Reset)
}

// Success prints the final summary.
func Success(modules, fallbacks, lines int, outputDir string) {
	fmt.Printf("\n%s[%s]%s  %s%s══ Documents complete ══%s\n",
		Dim, timestamp(), Reset, Bold, Green, Reset)
	fmt.Printf("  modules: %d (fallback: %d)\n", modules, fallbacks)
	fmt.Printf("  line count: %d\n", lines)
	fmt.Printf("  output: %s\n\n", outputDir)
}
