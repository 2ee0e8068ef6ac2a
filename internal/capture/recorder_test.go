package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/mindlens/internal/classify"
	"github.com/blackwell-systems/mindlens/internal/journal"
	"github.com/blackwell-systems/mindlens/internal/store"
)

type stubClassifier struct {
	res   classify.Result
	err   error
	calls int
}

func (s *stubClassifier) Classify(context.Context, string) (classify.Result, error) {
	s.calls++
	return s.res, s.err
}

type stubReflector struct {
	text string
	err  error
}

func (s stubReflector) Reflect(context.Context, string, string) (string, error) {
	return s.text, s.err
}

func newStore(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenInMemory(store.WithClock(func() time.Time {
		return time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRecord_ClassifiesAndReflects(t *testing.T) {
	db := newStore(t)
	cls := &stubClassifier{res: classify.Result{Label: "joy", Confidence: 91.2}}
	rec := NewRecorder(db, cls, stubReflector{text: "Lovely."}, zerolog.Nop())

	res, err := rec.Record(context.Background(), Request{UserID: "u1", Content: "  I finished the marathon today!  "})
	require.NoError(t, err)

	e := res.Entry
	assert.Equal(t, "I finished the marathon today!", e.Content)
	assert.Equal(t, "joy", e.Emotion)
	assert.Equal(t, 91.2, e.EmotionScore)
	assert.Equal(t, "Lovely.", e.Reflection)
	assert.Equal(t, 5, e.WordCount)
	assert.Equal(t, 1, cls.calls)
	assert.Empty(t, res.Warnings)
}

func TestRecord_ManualLabelSkipsClassifier(t *testing.T) {
	db := newStore(t)
	cls := &stubClassifier{err: errors.New("should not be called")}
	rec := NewRecorder(db, cls, nil, zerolog.Nop())

	score := 64.0
	res, err := rec.Record(context.Background(), Request{UserID: "u1", Content: "Argued with my landlord again.", Emotion: "Anger", Score: &score})
	require.NoError(t, err)
	assert.Equal(t, "anger", res.Entry.Emotion)
	assert.Equal(t, 64.0, res.Entry.EmotionScore)
	assert.Equal(t, journal.Encouragement("anger"), res.Entry.Reflection)
	assert.Zero(t, cls.calls)
}

func TestRecord_ClassifierUnavailable(t *testing.T) {
	db := newStore(t)
	rec := NewRecorder(db, &stubClassifier{err: errors.New("connection refused")}, nil, zerolog.Nop())

	_, err := rec.Record(context.Background(), Request{UserID: "u1", Content: "A perfectly ordinary day."})
	assert.ErrorIs(t, err, journal.ErrClassifierUnavailable)

	entries, err := db.List(context.Background(), "u1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is stored when classification fails")
}

func TestRecord_NilClassifierIsDisabled(t *testing.T) {
	rec := NewRecorder(newStore(t), nil, nil, zerolog.Nop())
	_, err := rec.Record(context.Background(), Request{UserID: "u1", Content: "A perfectly ordinary day."})
	assert.ErrorIs(t, err, journal.ErrClassifierUnavailable)
}

func TestRecord_ReflectionFallback(t *testing.T) {
	db := newStore(t)
	rec := NewRecorder(db, &stubClassifier{res: classify.Result{Label: "fear", Confidence: 55}},
		stubReflector{err: errors.New("rate limited")}, zerolog.Nop())

	res, err := rec.Record(context.Background(), Request{UserID: "u1", Content: "Big presentation tomorrow morning."})
	require.NoError(t, err)
	assert.Equal(t, classify.FallbackReflection("fear"), res.Entry.Reflection)
}

func TestRecord_SkipReflection(t *testing.T) {
	db := newStore(t)
	rec := NewRecorder(db, &stubClassifier{res: classify.Result{Label: "neutral", Confidence: 50}},
		stubReflector{text: "unused"}, zerolog.Nop())

	res, err := rec.Record(context.Background(), Request{UserID: "u1", Content: "Groceries, laundry, bed.", SkipReflection: true})
	require.NoError(t, err)
	assert.Empty(t, res.Entry.Reflection)
}

func TestRecord_Validation(t *testing.T) {
	rec := NewRecorder(newStore(t), &stubClassifier{res: classify.Result{Label: "joy", Confidence: 90}}, nil, zerolog.Nop())
	ctx := context.Background()

	_, err := rec.Record(ctx, Request{UserID: "u1", Content: "too short"})
	assert.True(t, journal.IsValidation(err))

	_, err = rec.Record(ctx, Request{Content: "long enough content here"})
	assert.True(t, journal.IsValidation(err))

	bad := 150.0
	_, err = rec.Record(ctx, Request{UserID: "u1", Content: "long enough content here", Emotion: "joy", Score: &bad})
	assert.True(t, journal.IsValidation(err))

	_, err = rec.Record(ctx, Request{UserID: "u1", Content: "long enough content here", Score: &bad})
	assert.True(t, journal.IsValidation(err))
}

func TestRecord_ShortEntryWarning(t *testing.T) {
	rec := NewRecorder(newStore(t), &stubClassifier{res: classify.Result{Label: "sadness", Confidence: 80}}, nil, zerolog.Nop())
	res, err := rec.Record(context.Background(), Request{UserID: "u1", Content: "Heartbroken tonight."})
	require.NoError(t, err)
	assert.Len(t, res.Warnings, 1)
}
