// Package crop specializes the keyframe track to animated crop
// rectangles, with aspect-ratio locking and explicit end-keyframe
// semantics.
package crop

import (
	"math"

	"github.com/clipforge/clipforge-agent/internal/keyframe"
	"github.com/clipforge/clipforge-agent/internal/timeline"
	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// Rect is a crop rectangle in coordinates normalized to the source
// frame, so 0-1 on both axes.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// FullFrame is the fallback crop when a track has no keyframes.
var FullFrame = Rect{X: 0, Y: 0, Width: 1, Height: 1}

func lerpRect(a, b Rect, pos float64) Rect {
	return Rect{
		X:      a.X + (b.X-a.X)*pos,
		Y:      a.Y + (b.Y-a.Y)*pos,
		Width:  a.Width + (b.Width-a.Width)*pos,
		Height: a.Height + (b.Height-a.Height)*pos,
	}
}

// Track animates a crop rectangle over one clip. The last keyframe
// implicitly extends to the end of the clip until the user places an
// explicit keyframe at (or past) the final frame.
type Track struct {
	keys         *keyframe.Track[Rect]
	frameRate    float64
	clipDuration float64
	sourceAspect float64
	endExplicit  bool
}

// New creates an empty track. sourceAspect is the media width/height
// ratio used by aspect locking; zero falls back to 16:9.
func New(frameRate, clipDuration, sourceAspect float64) *Track {
	if frameRate <= 0 {
		frameRate = timeutil.DefaultFrameRate
	}
	if sourceAspect <= 0 || math.IsNaN(sourceAspect) {
		sourceAspect = 16.0 / 9.0
	}
	return &Track{
		keys:         keyframe.NewTrack[Rect](frameRate, lerpRect),
		frameRate:    frameRate,
		clipDuration: clipDuration,
		sourceAspect: sourceAspect,
	}
}

func (t *Track) Len() int { return t.keys.Len() }

// EndFrame is the clip's final frame index.
func (t *Track) EndFrame() int {
	return timeutil.FrameForTime(t.clipDuration, t.frameRate)
}

// EndExplicit reports whether the user has pinned the end of the clip
// with a real keyframe.
func (t *Track) EndExplicit() bool { return t.endExplicit }

// SetKeyframe inserts or overwrites a crop keyframe. The rectangle is
// clamped into the unit square; placing a keyframe at or past the
// clip's final frame makes the end explicit.
func (t *Track) SetKeyframe(frame int, r Rect) bool {
	if !t.keys.Set(frame, clampRect(r)) {
		return false
	}
	if frame >= t.EndFrame() {
		t.endExplicit = true
	}
	return true
}

func (t *Track) RemoveKeyframe(frame int) bool {
	if !t.keys.Remove(frame) {
		return false
	}
	if frame >= t.EndFrame() {
		t.endExplicit = t.hasExplicitEnd()
	}
	return true
}

// DeleteRange removes every keyframe between the two frames inclusive.
func (t *Track) DeleteRange(startFrame, endFrame int) int {
	n := t.keys.RemoveRange(startFrame, endFrame)
	if n > 0 && endFrame >= t.EndFrame() {
		t.endExplicit = t.hasExplicitEnd()
	}
	return n
}

// CleanupTrimmed drops keyframes that sit inside trimmed source time
// and are no longer reachable. Wire this to trim-range changes.
func (t *Track) CleanupTrimmed(tl *timeline.Timeline) int {
	removed := 0
	for _, k := range t.keys.Keyframes() {
		src := timeutil.TimeForFrame(k.Frame, t.frameRate)
		if !tl.IsTimeVisible(src) {
			if t.keys.Remove(k.Frame) {
				removed++
			}
		}
	}
	if removed > 0 {
		t.endExplicit = t.hasExplicitEnd()
	}
	return removed
}

func (t *Track) HasKeyframeAt(frame int) bool { return t.keys.Has(frame) }

func (t *Track) KeyframeAt(frame int) (Rect, bool) { return t.keys.At(frame) }

// Keyframes returns the raw keyframes in frame order.
func (t *Track) Keyframes() []keyframe.Keyframe[Rect] { return t.keys.Keyframes() }

// ValueAt interpolates the crop at a time in seconds. The miss return
// means "no keyframes"; callers fall back to FullFrame.
func (t *Track) ValueAt(seconds float64) (Rect, bool) {
	return t.keys.ValueAt(seconds)
}

func (t *Track) CopyKeyframe(frame int) bool  { return t.keys.Copy(frame) }
func (t *Track) PasteKeyframe(frame int) bool { return t.keys.Paste(frame) }

// SetAspectRatio re-derives every keyframe's width from its height and
// the new pixel aspect ratio, preserving each crop's center. This is a
// bulk rewrite so stored keyframes always agree with the track's
// current ratio.
func (t *Track) SetAspectRatio(ratio float64) bool {
	if ratio <= 0 || math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return false
	}
	for _, k := range t.keys.Keyframes() {
		r := k.Value
		cx := r.X + r.Width/2
		cy := r.Y + r.Height/2

		// Pixel aspect of a normalized rect is w*sourceAspect/h.
		w := r.Height * ratio / t.sourceAspect
		h := r.Height
		if w > 1 {
			h = h / w
			w = 1
		}
		r = Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
		t.keys.Set(k.Frame, clampRect(r))
	}
	return true
}

func (t *Track) hasExplicitEnd() bool {
	last, ok := t.keys.LastFrame()
	return ok && last >= t.EndFrame()
}

// clampRect keeps the rectangle inside the unit square with a
// non-negative size, sliding it back in when it overflows.
func clampRect(r Rect) Rect {
	r.Width = timeutil.Clamp(r.Width, 0, 1)
	r.Height = timeutil.Clamp(r.Height, 0, 1)
	r.X = timeutil.Clamp(r.X, 0, 1-r.Width)
	r.Y = timeutil.Clamp(r.Y, 0, 1-r.Height)
	return r
}
