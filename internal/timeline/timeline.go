// Package timeline implements the segment model for a single clip: cut
// boundaries, per-segment playback speed, and trimming. It owns the
// mapping between source time (the original media) and visual time (the
// edited, speed-adjusted timeline).
package timeline

import (
	"math"

	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// Segment is a contiguous source-time span with one speed and one
// user-toggled trim flag. Segments always tile [0, sourceDuration].
type Segment struct {
	Start       float64
	End         float64
	Speed       float64
	UserTrimmed bool
}

// TrimRange is the globally kept source range. Material outside it is
// excluded from the visual timeline without touching segment state.
type TrimRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Timeline holds the full segment model for one clip. All operations
// are synchronous; mutations either fully apply or leave the state
// untouched and report false. Operations before Initialize are no-ops,
// since callers may race with async media metadata loading.
type Timeline struct {
	frameRate float64
	duration  float64
	segments  []Segment
	trim      *TrimRange
}

func New(frameRate float64) *Timeline {
	if frameRate <= 0 || math.IsNaN(frameRate) {
		frameRate = timeutil.DefaultFrameRate
	}
	return &Timeline{frameRate: frameRate}
}

// Initialize seeds the timeline with one full-length, untrimmed,
// speed-1 segment. A non-positive duration leaves it uninitialized.
func (t *Timeline) Initialize(sourceDuration float64) bool {
	if sourceDuration <= 0 || math.IsNaN(sourceDuration) || math.IsInf(sourceDuration, 0) {
		return false
	}
	t.duration = sourceDuration
	t.segments = []Segment{{Start: 0, End: sourceDuration, Speed: 1}}
	t.trim = nil
	return true
}

func (t *Timeline) Initialized() bool { return t.duration > 0 }

func (t *Timeline) FrameRate() float64 { return t.frameRate }

func (t *Timeline) SourceDuration() float64 { return t.duration }

// Segments returns a copy of the segment list.
func (t *Timeline) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

func (t *Timeline) Trim() *TrimRange {
	if t.trim == nil {
		return nil
	}
	c := *t.trim
	return &c
}

// AddBoundary splits the segment containing sourceTime in two, both
// halves inheriting the original speed and trim flag. Rejected when the
// time coincides with an existing boundary within one frame.
func (t *Timeline) AddBoundary(sourceTime float64) bool {
	if !t.Initialized() {
		return false
	}
	sourceTime = timeutil.Clamp(sourceTime, 0, t.duration)

	for _, s := range t.segments {
		if timeutil.SameTime(sourceTime, s.Start, t.frameRate) ||
			timeutil.SameTime(sourceTime, s.End, t.frameRate) {
			return false
		}
	}

	idx := t.segmentIndexAt(sourceTime)
	if idx < 0 {
		return false
	}

	s := t.segments[idx]
	left := Segment{Start: s.Start, End: sourceTime, Speed: s.Speed, UserTrimmed: s.UserTrimmed}
	right := Segment{Start: sourceTime, End: s.End, Speed: s.Speed, UserTrimmed: s.UserTrimmed}

	t.segments = append(t.segments[:idx], append([]Segment{left, right}, t.segments[idx+1:]...)...)
	return true
}

// RemoveBoundary merges the two segments around the interior boundary
// nearest to sourceTime. The merged segment takes the left segment's
// speed and trim flag, so removing a just-added boundary restores the
// original segment exactly.
func (t *Timeline) RemoveBoundary(sourceTime float64) bool {
	if !t.Initialized() || len(t.segments) < 2 {
		return false
	}
	sourceTime = timeutil.Clamp(sourceTime, 0, t.duration)

	nearest := -1
	best := math.Inf(1)
	for i := 0; i < len(t.segments)-1; i++ {
		d := math.Abs(t.segments[i].End - sourceTime)
		if d < best {
			best = d
			nearest = i
		}
	}
	if nearest < 0 {
		return false
	}

	left := t.segments[nearest]
	right := t.segments[nearest+1]
	merged := Segment{Start: left.Start, End: right.End, Speed: left.Speed, UserTrimmed: left.UserTrimmed}

	t.segments = append(t.segments[:nearest], append([]Segment{merged}, t.segments[nearest+2:]...)...)
	return true
}

// SetSegmentSpeed updates one segment's playback speed. Values below 1
// slow playback down, above 1 speed it up. Non-positive or non-finite
// speeds are rejected.
func (t *Timeline) SetSegmentSpeed(index int, speed float64) bool {
	if !t.Initialized() || index < 0 || index >= len(t.segments) {
		return false
	}
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return false
	}
	t.segments[index].Speed = speed
	return true
}

// ToggleTrimSegment flips a segment's user trim flag, independent of
// the global trim range.
func (t *Timeline) ToggleTrimSegment(index int) bool {
	if !t.Initialized() || index < 0 || index >= len(t.segments) {
		return false
	}
	t.segments[index].UserTrimmed = !t.segments[index].UserTrimmed
	return true
}

// SetTrimRange replaces the kept source range. Bounds are clamped to
// the source; an empty or inverted range is rejected.
func (t *Timeline) SetTrimRange(start, end float64) bool {
	if !t.Initialized() {
		return false
	}
	start = timeutil.Clamp(start, 0, t.duration)
	end = timeutil.Clamp(end, 0, t.duration)
	if start >= end {
		return false
	}
	t.trim = &TrimRange{Start: start, End: end}
	return true
}

func (t *Timeline) ClearTrimRange() {
	t.trim = nil
}

// DetrimStart restores the source range at the head of the clip when it
// was excluded by the trim range. It is a no-op when the first segment
// was explicitly toggled off by the user: that trim has a different
// cause and widening the range would not reveal anything.
func (t *Timeline) DetrimStart() bool {
	if !t.Initialized() || len(t.segments) == 0 {
		return false
	}
	if t.segments[0].UserTrimmed {
		return false
	}
	if t.trim == nil || t.trim.Start <= 0 {
		return false
	}
	t.trim.Start = 0
	return true
}

// DetrimEnd is the tail-side counterpart of DetrimStart.
func (t *Timeline) DetrimEnd() bool {
	if !t.Initialized() || len(t.segments) == 0 {
		return false
	}
	if t.segments[len(t.segments)-1].UserTrimmed {
		return false
	}
	if t.trim == nil || t.trim.End >= t.duration {
		return false
	}
	t.trim.End = t.duration
	return true
}

// SegmentAt returns the index and a copy of the segment owning the
// given source time, or -1 and nil when uninitialized.
func (t *Timeline) SegmentAt(sourceTime float64) (int, *Segment) {
	idx := t.segmentIndexAt(sourceTime)
	if idx < 0 {
		return -1, nil
	}
	s := t.segments[idx]
	return idx, &s
}

func (t *Timeline) segmentIndexAt(sourceTime float64) int {
	if !t.Initialized() {
		return -1
	}
	sourceTime = timeutil.Clamp(sourceTime, 0, t.duration)
	for i, s := range t.segments {
		if sourceTime >= s.Start && sourceTime < s.End {
			return i
		}
	}
	// Exactly at the source end: owned by the last segment.
	return len(t.segments) - 1
}

// visibleSpan returns the part of a segment that survives both the user
// trim flag and the global trim range.
func (t *Timeline) visibleSpan(s Segment) (lo, hi float64, ok bool) {
	if s.UserTrimmed {
		return 0, 0, false
	}
	lo, hi = s.Start, s.End
	if t.trim != nil {
		if t.trim.Start > lo {
			lo = t.trim.Start
		}
		if t.trim.End < hi {
			hi = t.trim.End
		}
	}
	if hi <= lo {
		return 0, 0, false
	}
	return lo, hi, true
}
