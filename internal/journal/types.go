// Package journal defines the journal entry model, content validation and
// the error taxonomy shared by the store, the write path and the API.
package journal

import (
	"strings"
	"time"
)

// Emotion labels produced by the classifier.
const (
	Joy      = "joy"
	Love     = "love"
	Surprise = "surprise"
	Neutral  = "neutral"
	Fear     = "fear"
	Sadness  = "sadness"
	Anger    = "anger"
)

// Emotions lists the known labels in display order.
var Emotions = []string{Joy, Love, Surprise, Neutral, Fear, Sadness, Anger}

// Entry is a single persisted journal entry. Entries are never mutated
// after insert, only deleted.
type Entry struct {
	ID           int64     `json:"id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	Emotion      string    `json:"emotion"`
	EmotionScore float64   `json:"emotion_score"`
	Reflection   string    `json:"reflection,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	WordCount    int       `json:"word_count"`
}

// NewEntry is the input to a store insert. Timestamp and word count are
// assigned by the store.
type NewEntry struct {
	UserID       string
	Content      string
	Emotion      string
	EmotionScore float64
	Reflection   string
}

// Point is the projection of an entry used by the analytics engine.
type Point struct {
	Timestamp    time.Time `json:"timestamp"`
	Emotion      string    `json:"emotion"`
	EmotionScore float64   `json:"emotion_score"`
	WordCount    int       `json:"word_count"`
}

// DailyEmotion is one row of the per-day emotion rollup.
type DailyEmotion struct {
	UserID     string  `json:"user_id"`
	Emotion    string  `json:"emotion"`
	Date       string  `json:"date"`
	Score      float64 `json:"score"`
	EntryCount int     `json:"entry_count"`
}

// NormalizeEmotion lowercases and trims a label.
func NormalizeEmotion(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// WordCount returns the number of whitespace-separated tokens in the
// trimmed content.
func WordCount(content string) int {
	return len(strings.Fields(strings.TrimSpace(content)))
}

// IsKnownEmotion reports whether label is one of the classifier labels.
func IsKnownEmotion(label string) bool {
	label = NormalizeEmotion(label)
	for _, e := range Emotions {
		if e == label {
			return true
		}
	}
	return false
}

var descriptions = map[string]string{
	Joy:      "Feeling happy, content, and positive",
	Love:     "Experiencing affection, warmth, and connection",
	Surprise: "Feeling amazed, shocked, or unexpected",
	Neutral:  "Balanced emotional state, neither positive nor negative",
	Fear:     "Experiencing anxiety, worry, or apprehension",
	Sadness:  "Feeling down, melancholy, or disappointed",
	Anger:    "Feeling frustrated, irritated, or upset",
}

// Describe returns a one-line description of an emotion label.
func Describe(label string) string {
	if d, ok := descriptions[NormalizeEmotion(label)]; ok {
		return d
	}
	return "An emotional state"
}

var encouragements = map[string]string{
	Joy:      "It's wonderful to see you feeling so positive! 🌟",
	Love:     "Love and connection are beautiful emotions to experience. 💕",
	Surprise: "Life's surprises can lead to amazing discoveries! ✨",
	Neutral:  "Sometimes a balanced state is exactly what we need. 🧘",
	Fear:     "It's okay to feel afraid - acknowledging fear is the first step to courage. 💪",
	Sadness:  "Your feelings are valid. Remember that this too shall pass. 🌈",
	Anger:    "It's natural to feel angry sometimes. Let's work through this together. 🤝",
}

// Encouragement returns a short supportive message for an emotion label.
func Encouragement(label string) string {
	if m, ok := encouragements[NormalizeEmotion(label)]; ok {
		return m
	}
	return "Thank you for sharing your thoughts with me. 🙏"
}

// WritingPrompts are suggestions shown when a user has nothing to write about.
var WritingPrompts = []string{
	"What made you smile today?",
	"Describe a moment when you felt truly peaceful.",
	"What are you grateful for right now?",
	"Write about a challenge you overcame recently.",
	"What would you tell your younger self?",
	"Describe your ideal day from start to finish.",
	"What's something new you learned this week?",
	"Write about a person who has positively influenced your life.",
	"What are your hopes for tomorrow?",
	"Describe a place where you feel completely at ease.",
	"What's a small victory you achieved recently?",
	"Write about something that inspired you lately.",
	"What would you do if you had no fear?",
	"Describe a moment of unexpected kindness.",
	"What are you looking forward to most?",
}

// PromptFor picks a writing prompt deterministically from a seed, such as
// the day of the year.
func PromptFor(seed int) string {
	if seed < 0 {
		seed = -seed
	}
	return WritingPrompts[seed%len(WritingPrompts)]
}
