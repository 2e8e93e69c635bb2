// Package timeutil holds the frame arithmetic shared by the timeline
// and keyframe packages. Keyframes are addressed by frame index rather
// than raw seconds so repeated conversions cannot drift.
package timeutil

import "math"

// DefaultFrameRate is assumed when a clip's metadata does not carry one.
const DefaultFrameRate = 30.0

// FrameForTime converts seconds to a frame index. Ties round away from
// zero, so t=0.05 at 30fps lands on frame 2, not 1.
func FrameForTime(seconds, fps float64) int {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0
	}
	f := int(math.Round(seconds * fps))
	if f < 0 {
		return 0
	}
	return f
}

// TimeForFrame converts a frame index back to seconds.
func TimeForFrame(frame int, fps float64) float64 {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	if frame < 0 {
		return 0
	}
	return float64(frame) / fps
}

// FrameDuration returns the length of one frame in seconds. It doubles
// as the tolerance for "these two times are the same cut point".
func FrameDuration(fps float64) float64 {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return 1.0 / fps
}

// Clamp limits v to [lo, hi]. NaN clamps to lo so a bad input can
// never escape the valid range.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SameTime reports whether two timestamps coincide within one frame at
// the given rate.
func SameTime(a, b, fps float64) bool {
	return math.Abs(a-b) < FrameDuration(fps)
}
