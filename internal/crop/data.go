package crop

import (
	"github.com/clipforge/clipforge-agent/internal/timeline"
	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// KeyframeData is the persisted JSON shape of one crop keyframe. Time
// is a frame index.
type KeyframeData struct {
	Time   int     `json:"time"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Data returns the full keyframe list for persistence, untouched by
// trims.
func (t *Track) Data() []KeyframeData {
	out := make([]KeyframeData, 0, t.keys.Len())
	for _, k := range t.keys.Keyframes() {
		out = append(out, KeyframeData{
			Time: k.Frame, X: k.Value.X, Y: k.Value.Y,
			Width: k.Value.Width, Height: k.Value.Height,
		})
	}
	return out
}

// Restore replaces the track contents from persisted data. Negative
// frames are dropped; duplicate frames keep the last entry. The
// end-explicit flag is re-derived from the restored keyframes.
func (t *Track) Restore(data []KeyframeData) {
	t.keys.Reset()
	for _, k := range data {
		t.keys.Set(k.Time, clampRect(Rect{X: k.X, Y: k.Y, Width: k.Width, Height: k.Height}))
	}
	t.endExplicit = t.hasExplicitEnd()
}

// ExportKeyframes emits the keyframes an export consumer sees: only
// frames inside visible source time, renumbered onto the edited
// timeline through the visual-time mapping. When the end keyframe is
// implicit, a synthetic terminal keyframe holding the last value is
// appended at the visible end so the renderer keeps holding it.
func (t *Track) ExportKeyframes(tl *timeline.Timeline) []KeyframeData {
	out := []KeyframeData{}
	var lastRect Rect
	for _, k := range t.keys.Keyframes() {
		src := timeutil.TimeForFrame(k.Frame, t.frameRate)
		if !tl.IsTimeVisible(src) {
			continue
		}
		visual := tl.SourceToVisual(src)
		out = append(out, KeyframeData{
			Time: timeutil.FrameForTime(visual, t.frameRate),
			X:    k.Value.X, Y: k.Value.Y, Width: k.Value.Width, Height: k.Value.Height,
		})
		lastRect = k.Value
	}

	if len(out) > 0 && !t.endExplicit {
		endFrame := timeutil.FrameForTime(tl.VisualDuration(), t.frameRate)
		if out[len(out)-1].Time < endFrame {
			out = append(out, KeyframeData{
				Time: endFrame,
				X:    lastRect.X, Y: lastRect.Y, Width: lastRect.Width, Height: lastRect.Height,
			})
		}
	}
	return out
}

// ExportKeyframesInRange further clips the export against an
// export-time trim range in source seconds. The nearest out-of-range
// keyframe on each side survives as a boundary keyframe clamped to the
// range edge, so interpolation stays continuous at the cut.
func (t *Track) ExportKeyframesInRange(tl *timeline.Timeline, start, end float64) []KeyframeData {
	if end <= start {
		return []KeyframeData{}
	}

	startFrame := timeutil.FrameForTime(start, t.frameRate)
	endFrame := timeutil.FrameForTime(end, t.frameRate)

	type raw struct {
		frame int
		rect  Rect
	}
	kept := []raw{}
	var before, after *raw

	for _, k := range t.keys.Keyframes() {
		switch {
		case k.Frame < startFrame:
			before = &raw{frame: k.Frame, rect: k.Value}
		case k.Frame > endFrame:
			if after == nil {
				after = &raw{frame: k.Frame, rect: k.Value}
			}
		default:
			kept = append(kept, raw{frame: k.Frame, rect: k.Value})
		}
	}

	if before != nil && (len(kept) == 0 || kept[0].frame > startFrame) {
		kept = append([]raw{{frame: startFrame, rect: before.rect}}, kept...)
	}
	if after != nil && (len(kept) == 0 || kept[len(kept)-1].frame < endFrame) {
		kept = append(kept, raw{frame: endFrame, rect: after.rect})
	}

	out := make([]KeyframeData, 0, len(kept))
	for _, k := range kept {
		src := timeutil.TimeForFrame(k.frame, t.frameRate)
		if !tl.IsTimeVisible(src) {
			continue
		}
		visual := tl.SourceToVisual(src)
		out = append(out, KeyframeData{
			Time: timeutil.FrameForTime(visual, t.frameRate),
			X:    k.rect.X, Y: k.rect.Y, Width: k.rect.Width, Height: k.rect.Height,
		})
	}
	return out
}
