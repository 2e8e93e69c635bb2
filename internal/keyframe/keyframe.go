// Package keyframe implements a generic ordered keyframe track with
// linear interpolation. Keyframes are addressed by frame index, not
// seconds, so edits stay stable across repeated time conversions.
package keyframe

import (
	"sort"

	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// Keyframe pairs a frame index with a sampled value.
type Keyframe[T any] struct {
	Frame int
	Value T
}

// LerpFunc blends two values by a normalized position in [0, 1].
type LerpFunc[T any] func(a, b T, pos float64) T

// Track is an ordered set of keyframes. Duplicate frames overwrite.
// All operations are synchronous and never block; lookups are O(log n)
// over the keyframe count.
type Track[T any] struct {
	frameRate float64
	lerp      LerpFunc[T]
	keys      []Keyframe[T]
	clipboard *T
}

func NewTrack[T any](frameRate float64, lerp LerpFunc[T]) *Track[T] {
	if frameRate <= 0 {
		frameRate = timeutil.DefaultFrameRate
	}
	return &Track[T]{frameRate: frameRate, lerp: lerp}
}

func (t *Track[T]) FrameRate() float64 { return t.frameRate }

func (t *Track[T]) Len() int { return len(t.keys) }

// Keyframes returns a copy of the keyframe list in frame order.
func (t *Track[T]) Keyframes() []Keyframe[T] {
	out := make([]Keyframe[T], len(t.keys))
	copy(out, t.keys)
	return out
}

// Set inserts or overwrites the keyframe at the given frame. Negative
// frames are rejected.
func (t *Track[T]) Set(frame int, value T) bool {
	if frame < 0 {
		return false
	}
	i := t.indexOf(frame)
	if i < len(t.keys) && t.keys[i].Frame == frame {
		t.keys[i].Value = value
		return true
	}
	t.keys = append(t.keys, Keyframe[T]{})
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = Keyframe[T]{Frame: frame, Value: value}
	return true
}

// Remove deletes the keyframe at the exact frame, if present.
func (t *Track[T]) Remove(frame int) bool {
	i := t.indexOf(frame)
	if i >= len(t.keys) || t.keys[i].Frame != frame {
		return false
	}
	t.keys = append(t.keys[:i], t.keys[i+1:]...)
	return true
}

// RemoveRange deletes every keyframe with startFrame <= frame <=
// endFrame and returns how many were dropped.
func (t *Track[T]) RemoveRange(startFrame, endFrame int) int {
	if startFrame > endFrame {
		return 0
	}
	kept := t.keys[:0]
	removed := 0
	for _, k := range t.keys {
		if k.Frame >= startFrame && k.Frame <= endFrame {
			removed++
			continue
		}
		kept = append(kept, k)
	}
	t.keys = kept
	return removed
}

func (t *Track[T]) Has(frame int) bool {
	i := t.indexOf(frame)
	return i < len(t.keys) && t.keys[i].Frame == frame
}

// At returns the stored value at the exact frame.
func (t *Track[T]) At(frame int) (T, bool) {
	i := t.indexOf(frame)
	if i < len(t.keys) && t.keys[i].Frame == frame {
		return t.keys[i].Value, true
	}
	var zero T
	return zero, false
}

// ValueAt interpolates the track at a time in seconds. Before the
// first keyframe and after the last the nearest endpoint value holds;
// there is no extrapolation. An empty track reports a miss so callers
// can fall back to their default.
func (t *Track[T]) ValueAt(seconds float64) (T, bool) {
	var zero T
	if len(t.keys) == 0 {
		return zero, false
	}

	frame := timeutil.FrameForTime(seconds, t.frameRate)

	if frame <= t.keys[0].Frame {
		return t.keys[0].Value, true
	}
	last := t.keys[len(t.keys)-1]
	if frame >= last.Frame {
		return last.Value, true
	}

	i := t.indexOf(frame)
	if t.keys[i].Frame == frame {
		return t.keys[i].Value, true
	}

	prev := t.keys[i-1]
	next := t.keys[i]
	pos := float64(frame-prev.Frame) / float64(next.Frame-prev.Frame)
	if t.lerp == nil {
		// No blend available; hold the previous keyframe.
		return prev.Value, true
	}
	return t.lerp(prev.Value, next.Value, pos), true
}

// Copy stores the keyframe at the given frame in the one-slot
// clipboard.
func (t *Track[T]) Copy(frame int) bool {
	v, ok := t.At(frame)
	if !ok {
		return false
	}
	t.clipboard = &v
	return true
}

// Paste writes the clipboard value at the destination frame,
// overwriting any keyframe already there.
func (t *Track[T]) Paste(atFrame int) bool {
	if t.clipboard == nil {
		return false
	}
	return t.Set(atFrame, *t.clipboard)
}

func (t *Track[T]) FirstFrame() (int, bool) {
	if len(t.keys) == 0 {
		return 0, false
	}
	return t.keys[0].Frame, true
}

func (t *Track[T]) LastFrame() (int, bool) {
	if len(t.keys) == 0 {
		return 0, false
	}
	return t.keys[len(t.keys)-1].Frame, true
}

// Reset drops all keyframes and the clipboard.
func (t *Track[T]) Reset() {
	t.keys = nil
	t.clipboard = nil
}

// indexOf returns the position of the first keyframe with
// Frame >= frame.
func (t *Track[T]) indexOf(frame int) int {
	return sort.Search(len(t.keys), func(i int) bool {
		return t.keys[i].Frame >= frame
	})
}
