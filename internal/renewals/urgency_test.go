package renewals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		due  time.Time
		want UrgencyTier
	}{
		{"overdue", now.Add(-24 * time.Hour), UrgencyHigh},
		{"due exactly now", now, UrgencyHigh},
		{"one second ahead", now.Add(time.Second), UrgencyMedium},
		{"within three days", now.Add(48 * time.Hour), UrgencyMedium},
		{"exactly three days ahead", now.Add(72 * time.Hour), UrgencyMedium},
		{"just past three days", now.Add(72*time.Hour + time.Second), UrgencyNormal},
		{"far future", now.AddDate(0, 1, 0), UrgencyNormal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.due, now))
		})
	}
}
