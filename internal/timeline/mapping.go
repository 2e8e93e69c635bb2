package timeline

import "github.com/clipforge/clipforge-agent/internal/timeutil"

// VisualDuration is the total length of the edited timeline: every
// visible span played at its own speed.
func (t *Timeline) VisualDuration() float64 {
	total := 0.0
	for _, s := range t.segments {
		if lo, hi, ok := t.visibleSpan(s); ok {
			total += (hi - lo) / s.Speed
		}
	}
	return total
}

// TrimmedDuration is the source time excluded from the visual timeline,
// regardless of cause.
func (t *Timeline) TrimmedDuration() float64 {
	visible := 0.0
	for _, s := range t.segments {
		if lo, hi, ok := t.visibleSpan(s); ok {
			visible += hi - lo
		}
	}
	return t.duration - visible
}

// SourceToVisual maps a source timestamp onto the edited timeline. A
// time inside trimmed material snaps forward to the start of the next
// visible span, so playback never stalls on trimmed content; past the
// last visible span it clamps to the visual duration.
func (t *Timeline) SourceToVisual(sourceTime float64) float64 {
	if !t.Initialized() {
		return 0
	}
	sourceTime = timeutil.Clamp(sourceTime, 0, t.duration)

	acc := 0.0
	for _, s := range t.segments {
		lo, hi, ok := t.visibleSpan(s)
		if !ok {
			continue
		}
		if sourceTime < lo {
			return acc
		}
		if sourceTime <= hi {
			return acc + (sourceTime-lo)/s.Speed
		}
		acc += (hi - lo) / s.Speed
	}
	return acc
}

// VisualToSource is the inverse walk: spend the visual budget across
// visible spans, then map the remainder back through the owning
// segment's speed.
func (t *Timeline) VisualToSource(visualTime float64) float64 {
	if !t.Initialized() {
		return 0
	}
	visualTime = timeutil.Clamp(visualTime, 0, t.VisualDuration())

	lastEnd := 0.0
	for _, s := range t.segments {
		lo, hi, ok := t.visibleSpan(s)
		if !ok {
			continue
		}
		d := (hi - lo) / s.Speed
		// Strictly less: an exactly exhausted budget belongs to the
		// start of the next visible span, matching SourceToVisual's
		// start-inclusive ownership at span seams.
		if visualTime < d {
			return lo + visualTime*s.Speed
		}
		visualTime -= d
		lastEnd = hi
	}
	return lastEnd
}

// Span is a visible stretch of source material played at one speed.
type Span struct {
	Start float64
	End   float64
	Speed float64
}

// VisibleSpans lists the visible source stretches in playback order.
// Adjacent spans with equal speeds are not merged.
func (t *Timeline) VisibleSpans() []Span {
	var spans []Span
	for _, s := range t.segments {
		if lo, hi, ok := t.visibleSpan(s); ok {
			spans = append(spans, Span{Start: lo, End: hi, Speed: s.Speed})
		}
	}
	return spans
}

// IsTimeVisible reports whether the source time falls inside visible
// material. Span ends are owned by whatever follows them, so the end
// of a span bordering trimmed material is itself trimmed; only the
// final visible instant of the whole timeline is end-inclusive.
func (t *Timeline) IsTimeVisible(sourceTime float64) bool {
	if !t.Initialized() {
		return false
	}
	sourceTime = timeutil.Clamp(sourceTime, 0, t.duration)

	lastEnd := -1.0
	for _, s := range t.segments {
		lo, hi, ok := t.visibleSpan(s)
		if !ok {
			continue
		}
		if sourceTime < lo {
			return false
		}
		if sourceTime < hi {
			return true
		}
		lastEnd = hi
	}
	return lastEnd >= 0 && sourceTime == lastEnd
}

// ClampToVisibleRange snaps a source time into visible material,
// preferring the next visible span, falling back to the previous one.
func (t *Timeline) ClampToVisibleRange(sourceTime float64) float64 {
	if !t.Initialized() {
		return 0
	}
	sourceTime = timeutil.Clamp(sourceTime, 0, t.duration)

	lastEnd := -1.0
	for _, s := range t.segments {
		lo, hi, ok := t.visibleSpan(s)
		if !ok {
			continue
		}
		if sourceTime < lo {
			return lo
		}
		if sourceTime < hi {
			return sourceTime
		}
		lastEnd = hi
	}
	if lastEnd >= 0 {
		return lastEnd
	}
	return 0
}
