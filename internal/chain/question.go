// File: internal/chain/question.go
package chain

import (
	"regexp"
	"strings"
)

// QuestionPolicy decides whether an assistant reply ends with an open question
// for the user. A trailing question pauses autonomous execution until the user
// answers.
type QuestionPolicy interface {
	// TrailingQuestion returns the contiguous block of question lines at the
	// end of text, or "" if the reply does not end with a question.
	TrailingQuestion(text string) string
}

// listMarkerPattern strips bullet and enumeration prefixes so that list items
// like "1. Which airport?" still count as question lines.
var listMarkerPattern = regexp.MustCompile(`^\s*(?:-\s*|\*\s*|\d+\.\s*)`)

// trailingQuestionPolicy is the default policy: walk lines bottom-up and
// collect the run of non-empty lines that contain a question mark.
type trailingQuestionPolicy struct{}

// DefaultQuestionPolicy returns the question-mark based policy.
func DefaultQuestionPolicy() QuestionPolicy { return trailingQuestionPolicy{} }

func (trailingQuestionPolicy) TrailingQuestion(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var questions []string
	for i := len(lines) - 1; i >= 0; i-- {
		line := listMarkerPattern.ReplaceAllString(lines[i], "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.Contains(line, "?") {
			break
		}
		questions = append([]string{line}, questions...)
	}

	return strings.Join(questions, "\n")
}
