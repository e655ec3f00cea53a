package domain

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxFirstNameLen bounds the displayed first name so report columns stay
// aligned for unusually long names.
const maxFirstNameLen = 11

// namePartPattern splits a camelCase submission stem ("firstnameLastname")
// into its name components.
var namePartPattern = regexp.MustCompile(`[a-z]+|[A-Z][a-z]*`)

var titleCaser = cases.Title(language.English)

// Essay is a single student submission. The ID doubles as the student's
// display name derived from the submission filename; the corpus loader
// guarantees uniqueness before handing essays to the orchestrator.
type Essay struct {
	// ID uniquely identifies the essay within a run.
	ID string `json:"id"`

	// Body is the full essay text.
	Body string `json:"body"`

	// WordCount is the whitespace-delimited word count of Body.
	WordCount int `json:"word_count"`

	// Disqualified marks essays exceeding the configured word limit.
	// Such essays are flagged and excluded from dispatch, never truncated.
	Disqualified bool `json:"disqualified,omitempty"`

	// DisqualificationReason explains why the essay was disqualified.
	DisqualificationReason string `json:"disqualification_reason,omitempty"`
}

// NewEssay builds an Essay from a submission file stem and its body text,
// flagging it as disqualified when the word count exceeds maxWords.
// A maxWords of zero disables the limit.
func NewEssay(stem, body string, maxWords int) Essay {
	essay := Essay{
		ID:        DeriveStudentName(stem),
		Body:      strings.TrimSpace(body),
		WordCount: CountWords(body),
	}

	if maxWords > 0 && essay.WordCount > maxWords {
		essay.Disqualified = true
		essay.DisqualificationReason = fmt.Sprintf(
			"exceeds word limit (%d/%d words)", essay.WordCount, maxWords)
	}

	return essay
}

// DeriveStudentName converts a submission file stem to a display name.
// Stems follow the "firstnameLastname" convention and become
// "Firstname Lastname"; stems that don't match fall back to title-casing
// with underscores and dashes treated as separators. The first name is
// truncated to eleven characters.
func DeriveStudentName(stem string) string {
	parts := namePartPattern.FindAllString(stem, -1)
	if len(parts) < 2 {
		fallback := strings.NewReplacer("_", " ", "-", " ").Replace(stem)
		return titleCaser.String(fallback)
	}

	for i, part := range parts {
		parts[i] = titleCaser.String(strings.ToLower(part))
	}
	if len(parts[0]) > maxFirstNameLen {
		parts[0] = parts[0][:maxFirstNameLen]
	}

	return strings.Join(parts, " ")
}

// CountWords returns the number of whitespace-delimited words in text.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
