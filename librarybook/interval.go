package librarybook

import (
	"fmt"
	"strings"
)

// Interval is a half-open range [Start, End) of fractional hours
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Availability holds the free time of one room for one day as disjoint,
// sorted intervals of fractional hours (0.0 - 24.0)
type Availability struct {
	intervals []Interval
}

// NewAvailability returns an Availability covering exactly [lower, upper)
func NewAvailability(lower float64, upper float64) (*Availability, error) {
	if lower >= upper {
		return nil, fmt.Errorf("%w: %v >= %v", ErrInvalidRange, lower, upper)
	}
	a := &Availability{}
	a.intervals = []Interval{{Start: lower, End: upper}}

	return a, nil
}

// Chop removes [start, end) from every interval, shrinking, splitting or
// deleting intervals as needed
func (a *Availability) Chop(start float64, end float64) {
	if start >= end {
		return
	}
	var kept []Interval
	for _, iv := range a.intervals {
		if end <= iv.Start || start >= iv.End {
			kept = append(kept, iv)
			continue
		}
		if iv.Start < start {
			kept = append(kept, Interval{Start: iv.Start, End: start})
		}
		if end < iv.End {
			kept = append(kept, Interval{Start: end, End: iv.End})
		}
	}
	a.intervals = kept
}

// Contains returns true if point is inside any interval
func (a *Availability) Contains(point float64) bool {
	for _, iv := range a.intervals {
		if iv.Start <= point && point < iv.End {
			return true
		}
	}
	return false
}

// Covers returns true if a single interval holds all of [start, end)
func (a *Availability) Covers(start float64, end float64) bool {
	for _, iv := range a.intervals {
		if iv.Start <= start && end <= iv.End {
			return true
		}
	}
	return false
}

// Intervals returns a copy of the free intervals
func (a *Availability) Intervals() []Interval {
	ret := make([]Interval, len(a.intervals))
	copy(ret, a.intervals)

	return ret
}

// Render returns one marker per step between from and to, true where the
// step start is free
func (a *Availability) Render(stepMinutes int, from float64, to float64) []bool {
	var ret []bool
	if stepMinutes <= 0 {
		return ret
	}
	step := float64(stepMinutes) / 60
	for i := 0; ; i++ {
		t := from + float64(i)*step
		if t >= to {
			break
		}
		ret = append(ret, a.Contains(t))
	}

	return ret
}

// String renders the intervals as clock times eg [07:00-09:00 09:30-20:00]
func (a *Availability) String() string {
	var parts []string
	for _, iv := range a.intervals {
		parts = append(parts, clock(iv.Start)+"-"+clock(iv.End))
	}

	return "[" + strings.Join(parts, " ") + "]"
}

// hourFraction converts a clock time to fractional hours
func hourFraction(hour int, minute int) float64 {
	return float64(hour) + float64(minute)/60
}

func clock(f float64) string {
	minutes := int(f*60 + 0.5)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
