package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eventmap/internal/service"
)

func TestParseDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339 utc", "2025-06-01T12:00:00Z", time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
		{"rfc3339 offset keeps offset", "2025-06-01T12:00:00+05:00", time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)},
		{"fractional seconds", "2025-06-01T12:00:00.5Z", time.Date(2025, 6, 1, 12, 0, 0, 500_000_000, time.UTC)},
		{"form layout in location", "2025-06-01T12:00", time.Date(2025, 6, 1, 12, 0, 0, 0, paris)},
		{"seconds without offset", "2025-06-01T12:00:30", time.Date(2025, 6, 1, 12, 0, 30, 0, paris)},
		{"space separated", "2025-06-01 12:00", time.Date(2025, 6, 1, 12, 0, 0, 0, paris)},
		{"date only", "2025-06-01", time.Date(2025, 6, 1, 0, 0, 0, 0, paris)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := service.ParseDate(tc.in, paris)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "tomorrow", "2025-13-01", "01/06/2025"} {
		_, err := service.ParseDate(in, time.UTC)
		assert.Error(t, err, in)
	}
}

func TestFieldsFromEvent_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	e := exportEvent("a", time.Date(2025, 6, 1, 0, 30, 0, 0, time.UTC))

	f := service.FieldsFromEvent(e, tokyo)

	assert.Equal(t, "2025-06-01T09:30", f.StartDate)
	assert.Equal(t, "2025-06-01T10:30", f.EndDate)
	assert.Equal(t, "48.85", f.Latitude)
	assert.Equal(t, "2.35", f.Longitude)
	assert.Equal(t, e.Title, f.Title)
}
