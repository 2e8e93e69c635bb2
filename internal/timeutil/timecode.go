package timeutil

import (
	"fmt"
	"math"
)

// Timecode formats seconds as SMPTE HH:MM:SS:FF at the nearest integer
// frame rate. Fractional rates (23.976, 29.97) are rounded; drop-frame
// numbering is the caller's concern.
func Timecode(seconds, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = int(DefaultFrameRate)
	}
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	totalFrames := int(math.Round(seconds * float64(fps)))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	secs := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, secs, frames)
}

// IsDropFrameRate reports whether the rate conventionally uses
// drop-frame timecode counting.
func IsDropFrameRate(frameRate float64) bool {
	return math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01
}
