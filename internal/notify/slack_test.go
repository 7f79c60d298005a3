package notify

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncateForSlack(t *testing.T) {
	t.Run("short text untouched", func(t *testing.T) {
		assert.Equal(t, "namaste", truncateForSlack("namaste", 300))
	})

	t.Run("long text cut with marker", func(t *testing.T) {
		long := strings.Repeat("a", 400)
		got := truncateForSlack(long, 300)
		assert.Len(t, got, 303)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("cut lands on a rune boundary", func(t *testing.T) {
		long := strings.Repeat("🙏", 100)
		got := truncateForSlack(long, 301)
		assert.True(t, utf8.ValidString(got))
		assert.True(t, strings.HasSuffix(got, "..."))
	})
}

func TestNilNotifierIsNoOp(t *testing.T) {
	var n *SlackNotifier
	assert.NoError(t, n.send("ignored"))
	n.NotifyRunSummary(1, 2, 3, 4)
}
