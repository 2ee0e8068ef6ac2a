// Package classify wraps the external collaborators that label entry text
// with an emotion and write a short reflection back to the user.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/blackwell-systems/mindlens/internal/journal"
)

// Result is a classifier verdict. Confidence is on a 0-100 scale.
type Result struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier labels entry text with an emotion.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// Reflector writes a supportive reflection for an entry.
type Reflector interface {
	Reflect(ctx context.Context, emotion, text string) (string, error)
}

// Disabled is a Classifier that always reports itself unavailable.
type Disabled struct{}

// Classify always fails with journal.ErrClassifierUnavailable.
func (Disabled) Classify(context.Context, string) (Result, error) {
	return Result{}, journal.ErrClassifierUnavailable
}

// Static is a Reflector that returns a canned encouragement per emotion.
type Static struct{}

// Reflect returns the encouragement message for emotion.
func (Static) Reflect(_ context.Context, emotion, _ string) (string, error) {
	return journal.Encouragement(emotion), nil
}

// FallbackReflection is stored when the reflection generator fails.
func FallbackReflection(emotion string) string {
	return "I'm having trouble generating a reflection right now. " + journal.Encouragement(emotion)
}

// normalize lowercases the label and rounds confidence to 2 decimals.
func normalize(r Result) (Result, error) {
	r.Label = journal.NormalizeEmotion(r.Label)
	if r.Label == "" {
		return Result{}, fmt.Errorf("classifier returned an empty label")
	}
	if math.IsNaN(r.Confidence) || r.Confidence < 0 || r.Confidence > 100 {
		return Result{}, fmt.Errorf("classifier returned confidence %v outside 0-100", r.Confidence)
	}
	r.Confidence = math.Round(r.Confidence*100) / 100
	return r, nil
}

// decodeModelJSON unmarshals model output, tolerating prose or code fences
// around a single JSON object.
func decodeModelJSON(outputText string, v any) error {
	s := strings.TrimSpace(outputText)
	if s == "" {
		return io.ErrUnexpectedEOF
	}

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no JSON object found in model output (len=%d)", len(s))
	}

	sub := s[start : end+1]
	if err := json.Unmarshal([]byte(sub), v); err != nil {
		return fmt.Errorf("failed to unmarshal extracted JSON (len=%d): %w", len(sub), err)
	}
	return nil
}
