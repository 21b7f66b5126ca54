package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{
			name:  "single day",
			start: "2025-01-10",
			end:   "2025-01-10",
			want:  []string{"2025-01-10"},
		},
		{
			name:  "three days",
			start: "2025-01-10",
			end:   "2025-01-12",
			want:  []string{"2025-01-10", "2025-01-11", "2025-01-12"},
		},
		{
			name:  "across month boundary",
			start: "2025-01-30",
			end:   "2025-02-02",
			want:  []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"},
		},
		{
			name:  "across leap day",
			start: "2024-02-28",
			end:   "2024-03-01",
			want:  []string{"2024-02-28", "2024-02-29", "2024-03-01"},
		},
		{
			name:  "start after end",
			start: "2025-01-12",
			end:   "2025-01-10",
			want:  nil,
		},
		{
			name:  "unparseable start",
			start: "tomorrow",
			end:   "2025-01-10",
			want:  nil,
		},
		{
			name:  "unparseable end",
			start: "2025-01-10",
			end:   "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Range(tt.start, tt.end))
		})
	}
}

func TestRangeLengthAndOrder(t *testing.T) {
	dates := Range("2025-03-01", "2025-03-31")
	require.Len(t, dates, 31)

	for i := 1; i < len(dates); i++ {
		prev, err := ParseDate(dates[i-1])
		require.NoError(t, err)
		cur, err := ParseDate(dates[i])
		require.NoError(t, err)
		assert.Equal(t, prev.AddDate(0, 0, 1), cur, "gap at index %d", i)
	}
}

func TestSpan(t *testing.T) {
	assert.Equal(t, 1, Span("2025-01-10", "2025-01-10"))
	assert.Equal(t, 3, Span("2025-01-10", "2025-01-12"))
	assert.Equal(t, 0, Span("2025-01-12", "2025-01-10"))
	assert.Equal(t, 0, Span("bad", "2025-01-10"))
}

func TestFormatDay(t *testing.T) {
	assert.Equal(t, "Fri, Jan 10", FormatDay("2025-01-10"))
	assert.Equal(t, "not-a-date", FormatDay("not-a-date"))
}

func TestParseDateIsUTC(t *testing.T) {
	d, err := ParseDate("2025-06-15")
	require.NoError(t, err)
	assert.Equal(t, "UTC", d.Location().String())
	assert.Equal(t, 0, d.Hour())
}
