package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStale(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	limit := AgeLimitDays(7)

	tests := []struct {
		name      string
		fetchedAt time.Time
		want      bool
	}{
		{"fresh", now.Add(-24 * time.Hour), false},
		{"just fetched", now, false},
		{"exactly at limit is not stale", now.Add(-limit), false},
		{"one second past limit", now.Add(-limit - time.Second), true},
		{"long past limit", now.Add(-30 * 24 * time.Hour), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Stale(tt.fetchedAt, limit, now))
		})
	}
}

func TestAgeLimitDays(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, AgeLimitDays(7))
	assert.Equal(t, time.Duration(0), AgeLimitDays(0))
}
