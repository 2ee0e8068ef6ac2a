package journal

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Content length bounds, counted in characters after trimming.
const (
	MinContentLength = 10
	MaxContentLength = 5000

	// ShortEntryWords is the word count below which a warning is attached.
	ShortEntryWords = 3
)

// Validation is the result of checking entry content.
type Validation struct {
	Content   string   `json:"-"`
	WordCount int      `json:"word_count"`
	CharCount int      `json:"char_count"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ValidateContent checks entry content against the length bounds and returns
// the trimmed content with its counts. Short but valid entries carry a warning.
func ValidateContent(content string) (*Validation, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, &ValidationError{Field: "content", Reason: "journal entry cannot be empty"}
	}

	n := utf8.RuneCountInString(trimmed)
	if n < MinContentLength {
		return nil, &ValidationError{
			Field:  "content",
			Reason: fmt.Sprintf("journal entry is too short (minimum %d characters)", MinContentLength),
		}
	}
	if n > MaxContentLength {
		return nil, &ValidationError{
			Field:  "content",
			Reason: fmt.Sprintf("journal entry is too long (maximum %d characters)", MaxContentLength),
		}
	}

	v := &Validation{
		Content:   trimmed,
		WordCount: WordCount(trimmed),
		CharCount: n,
	}
	if v.WordCount < ShortEntryWords {
		v.Warnings = append(v.Warnings, "very short entry - consider writing more for better emotion analysis")
	}
	return v, nil
}

// ValidateLabel checks an emotion label and its confidence score. Unknown
// labels are accepted; empty labels and scores outside 0-100 are not.
func ValidateLabel(emotion string, score float64) error {
	if NormalizeEmotion(emotion) == "" {
		return &ValidationError{Field: "emotion", Reason: "emotion label cannot be empty"}
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return &ValidationError{Field: "emotion_score", Reason: fmt.Sprintf("confidence %.2f outside 0-100", score)}
	}
	return nil
}
