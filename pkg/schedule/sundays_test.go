package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSundaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month int
		want  []string
	}{
		{
			name:  "march 2024 has five sundays",
			year:  2024,
			month: 3,
			want:  []string{"2024-03-03", "2024-03-10", "2024-03-17", "2024-03-24", "2024-03-31"},
		},
		{
			name:  "june 2024 starts on a saturday",
			year:  2024,
			month: 6,
			want:  []string{"2024-06-02", "2024-06-09", "2024-06-16", "2024-06-23", "2024-06-30"},
		},
		{
			name:  "september 2024 first day is a sunday",
			year:  2024,
			month: 9,
			want:  []string{"2024-09-01", "2024-09-08", "2024-09-15", "2024-09-22", "2024-09-29"},
		},
		{
			name:  "february 2024 leap month",
			year:  2024,
			month: 2,
			want:  []string{"2024-02-04", "2024-02-11", "2024-02-18", "2024-02-25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sundays, err := SundaysInMonth(tt.year, tt.month)
			require.NoError(t, err)

			got := make([]string, 0, len(sundays))
			for _, s := range sundays {
				assert.Equal(t, time.Sunday, s.Weekday())
				got = append(got, DateKey(s))
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSundaysInMonthAscending(t *testing.T) {
	sundays, err := SundaysInMonth(2025, 12)
	require.NoError(t, err)
	require.NotEmpty(t, sundays)

	for i := 1; i < len(sundays); i++ {
		assert.True(t, sundays[i].After(sundays[i-1]))
		assert.Equal(t, 7*24*time.Hour, sundays[i].Sub(sundays[i-1]))
	}
}

func TestSundaysInMonthRejectsBadMonth(t *testing.T) {
	_, err := SundaysInMonth(2024, 0)
	assert.Error(t, err)

	_, err = SundaysInMonth(2024, 13)
	assert.Error(t, err)
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	in := time.Date(2024, 6, 2, 23, 45, 12, 0, loc)

	got := NormalizeDate(in)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), got)
}
