package output

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	SetNoColor(true)
}

func TestVisualLen_PlainText(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"hello", 5},
		{"", 0},
		{"abc def", 7},
		{"\x1b[1mbold\x1b[0m", 4},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, visualLen(tc.input), "visualLen(%q)", tc.input)
	}
}

func TestTable_Render(t *testing.T) {
	tbl := NewTable("Emotion", "Count")
	tbl.AddRow("joy", "3")
	tbl.AddRow("sadness", "1")

	lines := strings.Split(strings.TrimRight(tbl.Render(), "\n"), "\n")
	require.Len(t, lines, 4, tbl.Render())
	assert.True(t, strings.HasPrefix(lines[0], "Emotion"), "header %q", lines[0])
	assert.Equal(t, "joy      3    ", lines[2])
}

func TestScoreBar(t *testing.T) {
	got := MoodBar(4.5, 10)
	assert.True(t, strings.HasPrefix(got, "█████░░░░░"), "bar %q", got)
	assert.True(t, strings.HasSuffix(got, "4.5/9"), "label %q", got)

	over := ScoreBar(150, 100, 4)
	assert.True(t, strings.HasPrefix(over, "████ "), "expected bar to clamp, got %q", over)
}

func TestCountBar(t *testing.T) {
	assert.Equal(t, "██░░░░░░", CountBar(1, 4, 8))
	assert.Equal(t, "░░░", CountBar(0, 0, 3))
}

func TestTrendLabel(t *testing.T) {
	assert.Contains(t, TrendLabel("increasing"), "▲")
	assert.Contains(t, TrendLabel("decreasing"), "▼")
	assert.Contains(t, TrendLabel("anything"), "stable")
}

func TestEmotion(t *testing.T) {
	assert.Equal(t, "😊 joy", Emotion("joy"))
	assert.Equal(t, "🤔", EmotionEmoji("contempt"))
	assert.Equal(t, "#4169E1", string(EmotionColor("SADNESS")))
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{time.Minute, "1 minute ago"},
		{30 * time.Minute, "30 minutes ago"},
		{5 * time.Hour, "5 hours ago"},
		{26 * time.Hour, "Yesterday"},
		{4 * 24 * time.Hour, "4 days ago"},
		{8 * 24 * time.Hour, "1 week ago"},
		{20 * 24 * time.Hour, "2 weeks ago"},
		{40 * 24 * time.Hour, "January 30, 2026"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, RelativeTime(now.Add(-tc.ago), now), "RelativeTime(-%v)", tc.ago)
	}
}
