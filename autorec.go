// Package autorec contains the data types shared by the live automation
// recording engine: parameters, their automation curves, the transport the
// engine reads time from, and the engine settings.
//
// The recording engine itself lives in the recorder package; the types here
// are the collaborators it reads from and writes to.
package autorec

import (
	"errors"
	"math"
)

type (
	// Change is a single value update of a parameter, stamped with the
	// transport time (in seconds) at which it happened. Changes are passed by
	// value and never modified after creation.
	Change struct {
		Time  float64
		Value float64
	}

	// Range is a half-open time range [Start, End), in seconds. Most of the
	// curve operations treat the end as inclusive; see the individual
	// methods.
	Range struct {
		Start float64 `yaml:"start" json:"start"`
		End   float64 `yaml:"end" json:"end"`
	}
)

const (
	// Epsilon is the smallest time difference the engine considers
	// meaningful when comparing keyframe times.
	Epsilon = 1e-6

	// MinTick is the minimal time step used when extending a curve past its
	// current end.
	MinTick = 1e-3
)

var (
	ErrEmptyRange     = errors.New("time range is empty")
	ErrNoSession      = errors.New("parameter has no open recording session")
	ErrParamDeleted   = errors.New("parameter has been deleted")
	ErrInvalidMode    = errors.New("invalid automation mode")
	ErrInvalidRange   = errors.New("value range minimum must be less than maximum")
	ErrInvalidSetting = errors.New("invalid setting")
)

func (r Range) Length() float64 { return r.End - r.Start }

// IsEmpty returns true if the range has no positive length.
func (r Range) IsEmpty() bool { return r.End-r.Start <= 0 }

// Contains reports whether t is in [Start, End).
func (r Range) Contains(t float64) bool { return t >= r.Start && t < r.End }

// ContainsInclusive reports whether t is in [Start, End].
func (r Range) ContainsInclusive(t float64) bool { return t >= r.Start && t <= r.End }

// Expanded returns the range grown by amount on both sides.
func (r Range) Expanded(amount float64) Range {
	return Range{Start: r.Start - amount, End: r.End + amount}
}

// Overlaps reports whether the two ranges intersect or touch.
func (r Range) Overlaps(o Range) bool {
	return r.Start <= o.End && o.Start <= r.End
}

// Union returns the smallest range containing both ranges.
func (r Range) Union(o Range) Range {
	return Range{Start: math.Min(r.Start, o.Start), End: math.Max(r.End, o.End)}
}

// Clamp returns t limited to [Start, End].
func (r Range) Clamp(t float64) float64 {
	return math.Max(r.Start, math.Min(r.End, t))
}

// RangeSet is a sorted list of disjoint time ranges. Adding a range that
// overlaps or touches existing ones merges them.
type RangeSet []Range

// Add inserts r to the set, merging it with overlapping ranges. Empty ranges
// are ignored.
func (s *RangeSet) Add(r Range) {
	if r.IsEmpty() {
		return
	}
	ret := make(RangeSet, 0, len(*s)+1)
	inserted := false
	for _, e := range *s {
		switch {
		case e.End < r.Start:
			ret = append(ret, e)
		case r.End < e.Start:
			if !inserted {
				ret = append(ret, r)
				inserted = true
			}
			ret = append(ret, e)
		default:
			r = r.Union(e)
		}
	}
	if !inserted {
		ret = append(ret, r)
	}
	*s = ret
}

// Total returns the summed length of all ranges in the set.
func (s RangeSet) Total() float64 {
	total := 0.0
	for _, r := range s {
		total += r.Length()
	}
	return total
}
