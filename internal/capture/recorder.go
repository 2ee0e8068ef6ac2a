// Package capture implements the journal write path: validate the text,
// label it, write a reflection and persist the entry.
package capture

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/mindlens/internal/classify"
	"github.com/blackwell-systems/mindlens/internal/journal"
)

// Writer is the subset of the entry store the recorder needs.
type Writer interface {
	Insert(ctx context.Context, e journal.NewEntry) (int64, error)
	Get(ctx context.Context, id int64, userID string) (*journal.Entry, error)
}

// Request is a new entry submitted by a user. Emotion and Score are
// optional; when Emotion is empty the classifier labels the text.
type Request struct {
	UserID  string   `json:"-"`
	Content string   `json:"content"`
	Emotion string   `json:"emotion,omitempty"`
	Score   *float64 `json:"emotion_score,omitempty"`

	// SkipReflection stores the entry without generating a reflection.
	SkipReflection bool `json:"skip_reflection,omitempty"`
}

// Result is the stored entry plus any validation warnings.
type Result struct {
	Entry    *journal.Entry `json:"entry"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Recorder orchestrates the write path.
type Recorder struct {
	store      Writer
	classifier classify.Classifier
	reflector  classify.Reflector
	log        zerolog.Logger
}

// NewRecorder creates a recorder. A nil classifier disables automatic
// labelling; a nil reflector uses the static encouragement messages.
func NewRecorder(store Writer, classifier classify.Classifier, reflector classify.Reflector, log zerolog.Logger) *Recorder {
	if classifier == nil {
		classifier = classify.Disabled{}
	}
	if reflector == nil {
		reflector = classify.Static{}
	}
	return &Recorder{store: store, classifier: classifier, reflector: reflector, log: log}
}

// Record validates, labels, reflects on and stores an entry.
func (r *Recorder) Record(ctx context.Context, req Request) (*Result, error) {
	if req.UserID == "" {
		return nil, &journal.ValidationError{Field: "user_id", Reason: "user id is required"}
	}

	v, err := journal.ValidateContent(req.Content)
	if err != nil {
		return nil, err
	}

	emotion, score, err := r.label(ctx, req, v.Content)
	if err != nil {
		return nil, err
	}

	reflection := ""
	if !req.SkipReflection {
		reflection = r.reflect(ctx, req.UserID, emotion, v.Content)
	}

	id, err := r.store.Insert(ctx, journal.NewEntry{
		UserID:       req.UserID,
		Content:      v.Content,
		Emotion:      emotion,
		EmotionScore: score,
		Reflection:   reflection,
	})
	if err != nil {
		return nil, err
	}

	entry, err := r.store.Get(ctx, id, req.UserID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &journal.StorageError{Op: "insert", Err: fmt.Errorf("entry %d missing after insert", id)}
	}

	r.log.Info().
		Str("user_id", req.UserID).
		Int64("entry_id", id).
		Str("emotion", emotion).
		Float64("score", score).
		Int("words", entry.WordCount).
		Msg("entry recorded")

	return &Result{Entry: entry, Warnings: v.Warnings}, nil
}

// label returns the caller's label when given, otherwise the classifier's.
func (r *Recorder) label(ctx context.Context, req Request, content string) (string, float64, error) {
	if req.Emotion != "" {
		score := 100.0
		if req.Score != nil {
			score = *req.Score
		}
		if err := journal.ValidateLabel(req.Emotion, score); err != nil {
			return "", 0, err
		}
		return journal.NormalizeEmotion(req.Emotion), score, nil
	}
	if req.Score != nil {
		return "", 0, &journal.ValidationError{Field: "emotion", Reason: "emotion_score given without an emotion"}
	}

	res, err := r.classifier.Classify(ctx, content)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", req.UserID).Msg("classification failed")
		if errors.Is(err, journal.ErrClassifierUnavailable) {
			return "", 0, err
		}
		return "", 0, fmt.Errorf("%w: %v", journal.ErrClassifierUnavailable, err)
	}
	return res.Label, res.Confidence, nil
}

// reflect never fails; generator errors produce the fallback text.
func (r *Recorder) reflect(ctx context.Context, userID, emotion, content string) string {
	text, err := r.reflector.Reflect(ctx, emotion, content)
	if err != nil || text == "" {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("reflection failed, using fallback")
		return classify.FallbackReflection(emotion)
	}
	return text
}
