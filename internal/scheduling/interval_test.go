package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 3, hour, min, 0, 0, time.UTC) // a Monday
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"disjoint", Interval{at(9, 0), at(10, 0)}, Interval{at(11, 0), at(12, 0)}, false},
		{"back to back", Interval{at(9, 0), at(10, 0)}, Interval{at(10, 0), at(11, 0)}, false},
		{"partial", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 30), at(10, 30)}, true},
		{"contained", Interval{at(9, 0), at(12, 0)}, Interval{at(10, 0), at(11, 0)}, true},
		{"containing", Interval{at(10, 0), at(11, 0)}, Interval{at(9, 0), at(12, 0)}, true},
		{"identical", Interval{at(9, 0), at(10, 0)}, Interval{at(9, 0), at(10, 0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestIntervalContains(t *testing.T) {
	outer := Interval{at(9, 0), at(12, 0)}
	assert.True(t, outer.Contains(Interval{at(9, 0), at(12, 0)}))
	assert.True(t, outer.Contains(Interval{at(10, 0), at(11, 0)}))
	assert.False(t, outer.Contains(Interval{at(8, 59), at(10, 0)}))
	assert.False(t, outer.Contains(Interval{at(11, 30), at(12, 1)}))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"09:00:00", 9 * 3600, false},
		{"09:00", 9 * 3600, false},
		{"17:30:15", 17*3600 + 30*60 + 15, false},
		{"00:00:00", 0, false},
		{"23:59:59", 24*3600 - 1, false},
		{"24:00:00", 0, true},
		{"9", 0, true},
		{"ab:cd", 0, true},
	}
	for _, tt := range tests {
		got, err := parseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatClockDoesNotWrapPastMidnight(t *testing.T) {
	assert.Equal(t, "16:20:00", formatClock(16*3600+20*60))
	// 23:30 start plus a one-hour service must not display as 00:30.
	assert.Equal(t, "24:30:00", formatClock(24*3600+30*60))
}
