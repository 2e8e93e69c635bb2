// Package highlight implements the overlay-region track: independent
// enable/disable spans over source time, each carrying its own keyframe
// sub-track for the overlay's parameters. Unlike segments, regions do
// not tile the timeline; a gap simply means no highlight.
package highlight

import (
	"math"
	"sort"

	"github.com/clipforge/clipforge-agent/internal/keyframe"
	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// DefaultRegionLength is the span given to a freshly added region, in
// seconds.
const DefaultRegionLength = 2.0

// Params are the animatable highlight properties. Position is
// normalized to the source frame.
type Params struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Intensity float64 `json:"intensity"`
}

func lerpParams(a, b Params, pos float64) Params {
	return Params{
		X:         a.X + (b.X-a.X)*pos,
		Y:         a.Y + (b.Y-a.Y)*pos,
		Intensity: a.Intensity + (b.Intensity-a.Intensity)*pos,
	}
}

// DefaultParams is the seed keyframe for new regions: centered, full
// intensity.
var DefaultParams = Params{X: 0.5, Y: 0.5, Intensity: 1}

// Region is one enable/disable span. Keyframe frames are local to the
// region start, so dragging a region does not rewrite its animation.
type Region struct {
	Start   float64
	End     float64
	Enabled bool
	Keys    *keyframe.Track[Params]
}

// Track owns all highlight regions for one clip, kept sorted and
// non-overlapping.
type Track struct {
	frameRate float64
	duration  float64
	regions   []*Region
}

func New(frameRate, sourceDuration float64) *Track {
	if frameRate <= 0 {
		frameRate = timeutil.DefaultFrameRate
	}
	return &Track{frameRate: frameRate, duration: sourceDuration}
}

func (t *Track) Initialized() bool { return t.duration > 0 }

func (t *Track) Len() int { return len(t.regions) }

// Regions returns the region slice in start order. Callers must not
// mutate the returned regions directly.
func (t *Track) Regions() []*Region { return t.regions }

// AddRegion creates a region of the default length at the given source
// time. It is truncated against the source end and the next region;
// fully overlapped starts are rejected.
func (t *Track) AddRegion(startSourceTime float64) (int, bool) {
	if !t.Initialized() || math.IsNaN(startSourceTime) {
		return -1, false
	}
	start := timeutil.Clamp(startSourceTime, 0, t.duration)
	end := math.Min(start+DefaultRegionLength, t.duration)

	for _, r := range t.regions {
		if start >= r.Start && start < r.End {
			return -1, false
		}
		// Truncate against the first region starting inside the span.
		if r.Start > start && r.Start < end {
			end = r.Start
		}
	}
	if end-start < timeutil.FrameDuration(t.frameRate) {
		return -1, false
	}

	region := &Region{
		Start:   start,
		End:     end,
		Enabled: true,
		Keys:    keyframe.NewTrack[Params](t.frameRate, lerpParams),
	}
	region.Keys.Set(0, DefaultParams)

	t.regions = append(t.regions, region)
	sort.Slice(t.regions, func(i, j int) bool { return t.regions[i].Start < t.regions[j].Start })
	for i, r := range t.regions {
		if r == region {
			return i, true
		}
	}
	return -1, false
}

func (t *Track) DeleteRegion(index int) bool {
	if index < 0 || index >= len(t.regions) {
		return false
	}
	t.regions = append(t.regions[:index], t.regions[index+1:]...)
	return true
}

// MoveRegionStart drags a region's left edge. It clamps against the
// previous region's end and never crosses the region's own end.
func (t *Track) MoveRegionStart(index int, sourceTime float64) bool {
	if index < 0 || index >= len(t.regions) || math.IsNaN(sourceTime) {
		return false
	}
	r := t.regions[index]

	lo := 0.0
	if index > 0 {
		lo = t.regions[index-1].End
	}
	hi := r.End - timeutil.FrameDuration(t.frameRate)

	r.Start = timeutil.Clamp(sourceTime, lo, hi)
	return true
}

// MoveRegionEnd drags a region's right edge, clamped symmetrically.
func (t *Track) MoveRegionEnd(index int, sourceTime float64) bool {
	if index < 0 || index >= len(t.regions) || math.IsNaN(sourceTime) {
		return false
	}
	r := t.regions[index]

	hi := t.duration
	if index < len(t.regions)-1 {
		hi = t.regions[index+1].Start
	}
	lo := r.Start + timeutil.FrameDuration(t.frameRate)

	r.End = timeutil.Clamp(sourceTime, lo, hi)
	return true
}

func (t *Track) ToggleRegion(index int) bool {
	if index < 0 || index >= len(t.regions) {
		return false
	}
	t.regions[index].Enabled = !t.regions[index].Enabled
	return true
}

// SetRegionKeyframe writes a keyframe on a region's sub-track. The
// frame is local to the region start.
func (t *Track) SetRegionKeyframe(index, frame int, p Params) bool {
	if index < 0 || index >= len(t.regions) {
		return false
	}
	return t.regions[index].Keys.Set(frame, p)
}

func (t *Track) RemoveRegionKeyframe(index, frame int) bool {
	if index < 0 || index >= len(t.regions) {
		return false
	}
	return t.regions[index].Keys.Remove(frame)
}

// RegionAt returns the index and region owning the source time, or -1
// and nil in a gap.
func (t *Track) RegionAt(sourceTime float64) (int, *Region) {
	for i, r := range t.regions {
		if sourceTime >= r.Start && sourceTime < r.End {
			return i, r
		}
	}
	return -1, nil
}

// InEnabledRegion reports whether the source time falls in an enabled
// region.
func (t *Track) InEnabledRegion(sourceTime float64) bool {
	_, r := t.RegionAt(sourceTime)
	return r != nil && r.Enabled
}

// HighlightAt returns the interpolated overlay parameters at the given
// source time, or a miss when no enabled region covers it.
func (t *Track) HighlightAt(sourceTime float64) (Params, bool) {
	_, r := t.RegionAt(sourceTime)
	if r == nil || !r.Enabled {
		return Params{}, false
	}
	return r.Keys.ValueAt(sourceTime - r.Start)
}

// InitializeFromClipMetadata resets the track and seeds one default
// region per upstream clip boundary. Used right after a multi-clip
// export: fresh boundary data supersedes any stale edits. The pixel
// dimensions are part of the host's clip-metadata shape; seeded params
// are normalized and do not depend on them.
func (t *Track) InitializeFromClipMetadata(clipBoundaries []float64, _, _ int) {
	t.regions = nil
	if !t.Initialized() {
		return
	}

	sorted := make([]float64, 0, len(clipBoundaries))
	for _, b := range clipBoundaries {
		if math.IsNaN(b) || b < 0 || b >= t.duration {
			continue
		}
		sorted = append(sorted, b)
	}
	sort.Float64s(sorted)

	for _, b := range sorted {
		if idx, ok := t.AddRegion(b); ok {
			t.regions[idx].Keys.Reset()
			t.regions[idx].Keys.Set(0, DefaultParams)
		}
	}
}
