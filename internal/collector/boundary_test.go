package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBoundary(t *testing.T) {
	tests := []struct {
		name  string
		now   string
		every time.Duration
		want  string
	}{
		{"mid interval", "2024-06-10T10:37:12Z", 15 * time.Minute, "2024-06-10T10:45:00Z"},
		{"rollover to next hour", "2024-06-10T10:50:00Z", 15 * time.Minute, "2024-06-10T11:00:00Z"},
		{"exactly on boundary advances", "2024-06-10T10:45:00Z", 15 * time.Minute, "2024-06-10T11:00:00Z"},
		{"top of hour", "2024-06-10T10:00:00Z", 15 * time.Minute, "2024-06-10T10:15:00Z"},
		{"five minute interval", "2024-06-10T10:03:59Z", 5 * time.Minute, "2024-06-10T10:05:00Z"},
		{"thirty minute interval", "2024-06-10T10:31:00Z", 30 * time.Minute, "2024-06-10T11:00:00Z"},
		{"hourly interval", "2024-06-10T10:01:00Z", 60 * time.Minute, "2024-06-10T11:00:00Z"},
		{"day rollover", "2024-06-10T23:55:00Z", 15 * time.Minute, "2024-06-11T00:00:00Z"},
		{"seconds are truncated", "2024-06-10T10:44:59Z", 15 * time.Minute, "2024-06-10T10:45:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now, err := time.Parse(time.RFC3339, tt.now)
			assert.NoError(t, err)
			want, err := time.Parse(time.RFC3339, tt.want)
			assert.NoError(t, err)

			got := NextBoundary(now, tt.every)
			assert.Equal(t, want, got, "boundary after %s every %s", tt.now, tt.every)
		})
	}
}

func TestNextBoundaryIsStrictlyLater(t *testing.T) {
	now := time.Date(2024, 6, 10, 10, 45, 0, 0, time.UTC)
	next := NextBoundary(now, 15*time.Minute)
	assert.True(t, next.After(now), "boundary must be strictly after now")
}
