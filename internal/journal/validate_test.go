package journal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateContent_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"empty", "", true},
		{"whitespace only", "   \n\t ", true},
		{"too short", "short", true},
		{"nine chars after trim", "  123456789  ", true},
		{"exactly ten", "1234567890", false},
		{"max length", strings.Repeat("a", MaxContentLength), false},
		{"over max", strings.Repeat("a", MaxContentLength+1), true},
		{"multibyte counted as characters", strings.Repeat("é", 10), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateContent(tc.content)
			if tc.wantErr {
				require.Error(t, err)
				var ve *ValidationError
				assert.True(t, errors.As(err, &ve))
				assert.Equal(t, "content", ve.Field)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateContent_TrimsAndCounts(t *testing.T) {
	v, err := ValidateContent("  Today I felt calm and   rested.\n")
	require.NoError(t, err)
	assert.Equal(t, "Today I felt calm and   rested.", v.Content)
	assert.Equal(t, 6, v.WordCount)
	assert.Empty(t, v.Warnings)
}

func TestValidateContent_ShortEntryWarning(t *testing.T) {
	v, err := ValidateContent("Exhausted today")
	require.NoError(t, err)
	assert.Equal(t, 2, v.WordCount)
	assert.Len(t, v.Warnings, 1)
}

func TestValidateLabel(t *testing.T) {
	assert.NoError(t, ValidateLabel("joy", 88))
	assert.NoError(t, ValidateLabel("contempt", 50), "unknown labels are accepted")
	assert.Error(t, ValidateLabel(" ", 50))
	assert.Error(t, ValidateLabel("joy", -1))
	assert.Error(t, ValidateLabel("joy", 100.5))
	assert.True(t, IsValidation(ValidateLabel("", 10)))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount("   "))
	assert.Equal(t, 3, WordCount(" one\ttwo\nthree "))
}

func TestStorageError_Unwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := error(&StorageError{Op: "insert", Err: inner})
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsStorage(err))
	assert.Equal(t, "storage insert: disk full", err.Error())
}

func TestDescribeAndEncouragement(t *testing.T) {
	assert.Equal(t, "Feeling happy, content, and positive", Describe("JOY"))
	assert.Equal(t, "An emotional state", Describe("contempt"))
	assert.Contains(t, Encouragement("sadness"), "this too shall pass")
	assert.Contains(t, Encouragement("other"), "Thank you for sharing")
}

func TestPromptFor_Wraps(t *testing.T) {
	assert.Equal(t, WritingPrompts[0], PromptFor(len(WritingPrompts)))
	assert.Equal(t, WritingPrompts[1], PromptFor(-1))
}
