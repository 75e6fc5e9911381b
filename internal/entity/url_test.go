package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestURL_ExpiredAt(t *testing.T) {
	expiresAt := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	url := URL{ExpiresAt: expiresAt}

	t.Run("before expiry", func(t *testing.T) {
		assert.False(t, url.ExpiredAt(expiresAt.Add(-time.Minute)))
	})

	t.Run("boundary instant is still live", func(t *testing.T) {
		assert.False(t, url.ExpiredAt(expiresAt))
	})

	t.Run("after expiry", func(t *testing.T) {
		assert.True(t, url.ExpiredAt(expiresAt.Add(time.Nanosecond)))
	})
}

func TestURL_Clone(t *testing.T) {
	url := &URL{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com",
		URLStats: URLStats{
			ClickCount: 1,
			Clicks:     []ClickEvent{{Referrer: "https://ref.example"}},
		},
	}

	cp := url.Clone()
	cp.Clicks[0].Referrer = "changed"
	cp.Clicks = append(cp.Clicks, ClickEvent{})
	cp.ClickCount = 2

	assert.Equal(t, int64(1), url.ClickCount)
	assert.Len(t, url.Clicks, 1)
	assert.Equal(t, "https://ref.example", url.Clicks[0].Referrer)
}
