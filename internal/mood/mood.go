// Package mood converts an emotion label and classifier confidence into a
// scalar mood value on a 0-9 scale.
package mood

import "github.com/blackwell-systems/mindlens/internal/journal"

// UnknownBase is the base value for labels outside the known set.
const UnknownBase = 5

var bases = map[string]float64{
	journal.Joy:      9,
	journal.Love:     8,
	journal.Surprise: 6,
	journal.Neutral:  5,
	journal.Fear:     3,
	journal.Sadness:  2,
	journal.Anger:    2,
}

// Base returns the base mood value for a label.
func Base(emotion string) float64 {
	if b, ok := bases[journal.NormalizeEmotion(emotion)]; ok {
		return b
	}
	return UnknownBase
}

// Known reports whether the label has its own base value.
func Known(emotion string) bool {
	_, ok := bases[journal.NormalizeEmotion(emotion)]
	return ok
}

// Value returns base(emotion) * confidence/100. Confidence is not clamped;
// callers are responsible for supplying 0-100.
func Value(emotion string, confidence float64) float64 {
	return Base(emotion) * (confidence / 100)
}
