package highlight

import (
	"math"
	"sort"

	"github.com/clipforge/clipforge-agent/internal/keyframe"
	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// KeyframeData is one persisted sub-track keyframe. Time is a frame
// index local to the region start.
type KeyframeData struct {
	Time      int     `json:"time"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity float64 `json:"intensity"`
}

// RegionData is the persisted JSON shape of one region.
type RegionData struct {
	StartTime float64        `json:"start_time"`
	EndTime   float64        `json:"end_time"`
	Enabled   bool           `json:"enabled"`
	Keyframes []KeyframeData `json:"keyframes"`
}

// ExportRegions emits all regions for persistence or export.
func (t *Track) ExportRegions() []RegionData {
	out := make([]RegionData, 0, len(t.regions))
	for _, r := range t.regions {
		rd := RegionData{
			StartTime: r.Start,
			EndTime:   r.End,
			Enabled:   r.Enabled,
			Keyframes: []KeyframeData{},
		}
		for _, k := range r.Keys.Keyframes() {
			rd.Keyframes = append(rd.Keyframes, KeyframeData{
				Time: k.Frame, X: k.Value.X, Y: k.Value.Y, Intensity: k.Value.Intensity,
			})
		}
		out = append(out, rd)
	}
	return out
}

// RestoreRegions rebuilds the track from persisted data. Regions with
// invalid or out-of-source spans are dropped; overlapping spans keep
// the earlier region and clamp the later one's start forward. A region
// without keyframes gets the default seed.
func (t *Track) RestoreRegions(data []RegionData, sourceDuration float64) bool {
	if sourceDuration <= 0 || math.IsNaN(sourceDuration) {
		return false
	}
	t.duration = sourceDuration
	t.regions = nil

	sorted := make([]RegionData, len(data))
	copy(sorted, data)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })

	prevEnd := 0.0
	for _, rd := range sorted {
		start := timeutil.Clamp(rd.StartTime, 0, sourceDuration)
		end := timeutil.Clamp(rd.EndTime, 0, sourceDuration)
		if start < prevEnd {
			start = prevEnd
		}
		if end-start < timeutil.FrameDuration(t.frameRate) {
			continue
		}

		region := &Region{
			Start:   start,
			End:     end,
			Enabled: rd.Enabled,
			Keys:    keyframe.NewTrack[Params](t.frameRate, lerpParams),
		}
		for _, k := range rd.Keyframes {
			region.Keys.Set(k.Time, Params{X: k.X, Y: k.Y, Intensity: k.Intensity})
		}
		if region.Keys.Len() == 0 {
			region.Keys.Set(0, DefaultParams)
		}

		t.regions = append(t.regions, region)
		prevEnd = end
	}
	return true
}
