package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/mindlens/internal/journal"
	"github.com/blackwell-systems/mindlens/internal/store"
)

type fakeRebuilder struct {
	users   []string
	listErr error
	failFor string
	rebuilt []string
}

func (f *fakeRebuilder) Users(context.Context) ([]string, error) {
	return f.users, f.listErr
}

func (f *fakeRebuilder) RebuildHistory(_ context.Context, userID string) (int, error) {
	if userID == f.failFor {
		return 0, errors.New("boom")
	}
	f.rebuilt = append(f.rebuilt, userID)
	return 2, nil
}

func TestRebuild_ContinuesPastFailures(t *testing.T) {
	f := &fakeRebuilder{users: []string{"a", "b", "c"}, failFor: "b"}

	sum, err := Rebuild(context.Background(), f, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, Rows: 4, Failed: 1}, sum)
	assert.Equal(t, []string{"a", "c"}, f.rebuilt)
}

func TestRebuild_ListError(t *testing.T) {
	f := &fakeRebuilder{listErr: errors.New("db down")}

	_, err := Rebuild(context.Background(), f, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing users")
}

func TestRebuild_StopsOnCancelledContext(t *testing.T) {
	f := &fakeRebuilder{users: []string{"a", "b"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Rebuild(ctx, f, zerolog.Nop())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, f.rebuilt)
}

func TestNew_RejectsBadHour(t *testing.T) {
	_, err := New(&fakeRebuilder{}, Config{Hour: 24}, zerolog.Nop())
	assert.Error(t, err)
}

func TestScheduler_StartSchedulesDailyRun(t *testing.T) {
	s, err := New(&fakeRebuilder{}, Config{Hour: 3}, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, s.NextRun().IsZero())

	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })

	next := s.NextRun()
	require.False(t, next.IsZero())
	assert.Equal(t, 3, next.In(time.UTC).Hour())
	assert.WithinDuration(t, time.Now(), next, 24*time.Hour)
}

func TestRunNow_RebuildsStoreHistory(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, emotion := range []string{"joy", "joy", "fear"} {
		_, err := db.Insert(ctx, journal.NewEntry{UserID: "u1", Content: "Some words here.", Emotion: emotion, EmotionScore: 60})
		require.NoError(t, err)
	}

	s, err := New(db, Config{Hour: 3}, zerolog.Nop())
	require.NoError(t, err)

	sum, err := s.RunNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Users)
	assert.Equal(t, 2, sum.Rows)
}
