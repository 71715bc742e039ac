// Package validate decides whether a generated HTML page is usable.
package validate

import (
	"strings"
	"unicode/utf8"
)

// MinLength is the minimum accepted page length in characters.
const MinLength = 1000

var requiredTags = []string{"<html", "<head", "<body", "</html>"}

// explanatoryPhrases mark a response that describes the page instead of being it.
var explanatoryPhrases = []string{
	"I've created a complete",
	"Here's what's included:",
	"The page includes:",
	"**Design Features:**",
	"**Structure:**",
	"**Features Implemented:**",
	"**Code Details:**",
	"The file has been created successfully",
	"This is a production-ready",
}

const (
	ReasonExplanatory = "explanatory text detected"
	ReasonTooShort    = "content too short"
	ReasonNoStyle     = "missing style block"
)

// Failure is a rejected page with the first failing check.
type Failure struct {
	Reason string
}

func (f *Failure) Error() string {
	return "html validation failed: " + f.Reason
}

// HTML checks content in order: required tags, explanatory phrases, length,
// then a style block. It returns a *Failure naming the first failing check.
func HTML(content string) error {
	lower := strings.ToLower(content)
	for _, tag := range requiredTags {
		if !strings.Contains(lower, tag) {
			return &Failure{Reason: "missing " + tag + " tag"}
		}
	}
	for _, phrase := range explanatoryPhrases {
		if strings.Contains(content, phrase) {
			return &Failure{Reason: ReasonExplanatory}
		}
	}
	if utf8.RuneCountInString(content) < MinLength {
		return &Failure{Reason: ReasonTooShort}
	}
	if !strings.Contains(lower, "<style") {
		return &Failure{Reason: ReasonNoStyle}
	}
	return nil
}

// Accept is the boolean form of HTML.
func Accept(content string) (bool, string) {
	if err := HTML(content); err != nil {
		if f, ok := err.(*Failure); ok {
			return false, f.Reason
		}
		return false, err.Error()
	}
	return true, ""
}
