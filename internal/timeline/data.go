package timeline

import (
	"math"
	"sort"

	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// SegmentsData is the persisted JSON shape for one clip's segment
// model. Speeds are stored sparsely (index -> speed, 1.0 omitted) and
// user-toggled trims as an index list, so legacy blobs missing either
// field restore to sensible defaults.
type SegmentsData struct {
	Boundaries      []float64       `json:"boundaries"`
	SegmentSpeeds   map[int]float64 `json:"segmentSpeeds,omitempty"`
	TrimRange       *TrimRange      `json:"trimRange"`
	TrimmedSegments []int           `json:"trimmedSegments,omitempty"`
}

// ExportData emits the minimal JSON needed to reconstruct the model.
func (t *Timeline) ExportData() SegmentsData {
	data := SegmentsData{Boundaries: []float64{}}
	if !t.Initialized() {
		return data
	}

	for i, s := range t.segments {
		if i > 0 {
			data.Boundaries = append(data.Boundaries, s.Start)
		}
		if s.Speed != 1 {
			if data.SegmentSpeeds == nil {
				data.SegmentSpeeds = make(map[int]float64)
			}
			data.SegmentSpeeds[i] = s.Speed
		}
		if s.UserTrimmed {
			data.TrimmedSegments = append(data.TrimmedSegments, i)
		}
	}
	data.TrimRange = t.Trim()
	return data
}

// Restore rebuilds the timeline from persisted data. Malformed fields
// are skipped rather than failing the whole restore: unknown indices
// and invalid speeds are ignored, a missing speed defaults to 1, and a
// missing trim range means no trim.
func (t *Timeline) Restore(data SegmentsData, sourceDuration float64) bool {
	if !t.Initialize(sourceDuration) {
		return false
	}

	bounds := make([]float64, 0, len(data.Boundaries))
	for _, b := range data.Boundaries {
		if math.IsNaN(b) || b <= 0 || b >= sourceDuration {
			continue
		}
		bounds = append(bounds, b)
	}
	sort.Float64s(bounds)
	for _, b := range bounds {
		t.AddBoundary(b)
	}

	for idx, speed := range data.SegmentSpeeds {
		t.SetSegmentSpeed(idx, speed)
	}

	for _, idx := range data.TrimmedSegments {
		if idx >= 0 && idx < len(t.segments) {
			t.segments[idx].UserTrimmed = true
		}
	}

	if data.TrimRange != nil {
		start := timeutil.Clamp(data.TrimRange.Start, 0, sourceDuration)
		end := timeutil.Clamp(data.TrimRange.End, 0, sourceDuration)
		if start < end {
			t.trim = &TrimRange{Start: start, End: end}
		}
	}
	return true
}
