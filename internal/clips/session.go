package clips

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/clipforge/clipforge-agent/internal/crop"
	"github.com/clipforge/clipforge-agent/internal/highlight"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// Session owns the active clip's engine triple: one segment timeline,
// one crop track and one highlight track, swapped as a unit on clip
// switch. Every mutation arms the debounced saver; the session itself
// performs no I/O outside Activate/Deactivate and the saver callback.
type Session struct {
	svc      ClipService
	logger   *slog.Logger
	player   Player
	debounce time.Duration

	mu         sync.Mutex
	clip       *Clip
	timeline   *timeline.Timeline
	cropTrack  *crop.Track
	highlights *highlight.Track
	saver      *Saver
}

func NewSession(svc ClipService, player Player, debounce time.Duration, logger *slog.Logger) *Session {
	if player == nil {
		player = NullPlayer{}
	}
	s := &Session{svc: svc, logger: logger, player: player, debounce: debounce}
	s.saver = NewSaver(debounce, s.saveSnapshot, logger)
	return s
}

// Activate makes a clip current. The outgoing clip's in-memory state is
// captured and persisted before the incoming clip's tracks are
// constructed, so a concurrent read never sees a half-swapped triple.
func (s *Session) Activate(ctx context.Context, clipID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clip != nil && s.clip.ID == clipID {
		return nil
	}

	if s.clip != nil {
		outgoingID := s.clip.ID
		blobs := s.captureLocked()
		if err := s.svc.SaveState(ctx, outgoingID, blobs); err != nil && s.logger != nil {
			s.logger.Warn("failed to persist outgoing clip state", "clip_id", outgoingID, "error", err)
		}
	}

	clip, err := s.svc.GetClip(ctx, clipID)
	if err != nil {
		return err
	}
	if clip == nil {
		return fmt.Errorf("clip not found: %s", clipID)
	}

	blobs, err := s.svc.LoadState(ctx, clipID)
	if err != nil {
		return err
	}

	tl := timeline.New(clip.FrameRate)
	tl.Restore(blobs.Segments, clip.DurationS)

	aspect := 0.0
	if clip.Height > 0 {
		aspect = float64(clip.Width) / float64(clip.Height)
	}
	ct := crop.New(clip.FrameRate, clip.DurationS, aspect)
	ct.Restore(blobs.Crop)

	ht := highlight.New(clip.FrameRate, clip.DurationS)
	ht.RestoreRegions(blobs.Highlights, clip.DurationS)

	s.clip = clip
	s.timeline = tl
	s.cropTrack = ct
	s.highlights = ht

	if s.logger != nil {
		s.logger.Info("clip activated", "clip_id", clip.ID, "name", clip.Name)
	}
	return nil
}

// Reload rebuilds the active clip's tracks from persisted state,
// discarding in-memory edits. Used when state is rewritten out of
// band, for example through the HTTP state endpoints.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clip == nil {
		return nil
	}

	blobs, err := s.svc.LoadState(ctx, s.clip.ID)
	if err != nil {
		return err
	}

	tl := timeline.New(s.clip.FrameRate)
	tl.Restore(blobs.Segments, s.clip.DurationS)

	aspect := 0.0
	if s.clip.Height > 0 {
		aspect = float64(s.clip.Width) / float64(s.clip.Height)
	}
	ct := crop.New(s.clip.FrameRate, s.clip.DurationS, aspect)
	ct.Restore(blobs.Crop)

	ht := highlight.New(s.clip.FrameRate, s.clip.DurationS)
	ht.RestoreRegions(blobs.Highlights, s.clip.DurationS)

	s.timeline = tl
	s.cropTrack = ct
	s.highlights = ht
	return nil
}

// Deactivate flushes pending state and drops the active clip.
func (s *Session) Deactivate(ctx context.Context) {
	s.saver.Flush(ctx)

	s.mu.Lock()
	s.clip = nil
	s.timeline = nil
	s.cropTrack = nil
	s.highlights = nil
	s.mu.Unlock()
}

func (s *Session) ActiveClip() *Clip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return nil
	}
	c := *s.clip
	return &c
}

func (s *Session) Dirty() bool { return s.saver.Pending() }

// Flush persists the current state immediately.
func (s *Session) Flush(ctx context.Context) { s.saver.Flush(ctx) }

// ExportState captures the active clip's state in its serializable
// form.
func (s *Session) ExportState() *StateBlobs {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return nil
	}
	return s.captureLocked()
}

func (s *Session) captureLocked() *StateBlobs {
	return &StateBlobs{
		Segments:   s.timeline.ExportData(),
		Crop:       s.cropTrack.Data(),
		Highlights: s.highlights.ExportRegions(),
	}
}

func (s *Session) saveSnapshot(ctx context.Context) error {
	s.mu.Lock()
	if s.clip == nil {
		s.mu.Unlock()
		return nil
	}
	id := s.clip.ID
	blobs := s.captureLocked()
	s.mu.Unlock()

	return s.svc.SaveState(ctx, id, blobs)
}

// mutate runs op against the active triple and schedules a save when
// it reports a change. With no active clip the edit is ignored.
func (s *Session) mutate(op func() bool) bool {
	s.mu.Lock()
	if s.clip == nil {
		s.mu.Unlock()
		return false
	}
	changed := op()
	s.mu.Unlock()

	if changed {
		s.saver.Schedule()
	}
	return changed
}

// Timeline edits.

func (s *Session) AddBoundary(sourceTime float64) bool {
	return s.mutate(func() bool { return s.timeline.AddBoundary(sourceTime) })
}

func (s *Session) RemoveBoundary(sourceTime float64) bool {
	return s.mutate(func() bool { return s.timeline.RemoveBoundary(sourceTime) })
}

func (s *Session) SetSegmentSpeed(index int, speed float64) bool {
	return s.mutate(func() bool { return s.timeline.SetSegmentSpeed(index, speed) })
}

func (s *Session) ToggleTrimSegment(index int) bool {
	return s.mutate(func() bool { return s.timeline.ToggleTrimSegment(index) })
}

// SetTrimRange moves the global trim handles and discards crop
// keyframes that fell into the newly trimmed material.
func (s *Session) SetTrimRange(start, end float64) bool {
	return s.mutate(func() bool {
		if !s.timeline.SetTrimRange(start, end) {
			return false
		}
		s.cropTrack.CleanupTrimmed(s.timeline)
		return true
	})
}

func (s *Session) DetrimStart() bool {
	return s.mutate(func() bool { return s.timeline.DetrimStart() })
}

func (s *Session) DetrimEnd() bool {
	return s.mutate(func() bool { return s.timeline.DetrimEnd() })
}

// Crop edits.

func (s *Session) SetCropKeyframe(frame int, r crop.Rect) bool {
	return s.mutate(func() bool { return s.cropTrack.SetKeyframe(frame, r) })
}

func (s *Session) RemoveCropKeyframe(frame int) bool {
	return s.mutate(func() bool { return s.cropTrack.RemoveKeyframe(frame) })
}

func (s *Session) CopyCropKeyframe(frame int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return false
	}
	return s.cropTrack.CopyKeyframe(frame)
}

func (s *Session) PasteCropKeyframe(frame int) bool {
	return s.mutate(func() bool { return s.cropTrack.PasteKeyframe(frame) })
}

func (s *Session) SetCropAspectRatio(ratio float64) bool {
	return s.mutate(func() bool { return s.cropTrack.SetAspectRatio(ratio) })
}

// Highlight edits.

func (s *Session) AddHighlightRegion(startSourceTime float64) bool {
	return s.mutate(func() bool {
		_, ok := s.highlights.AddRegion(startSourceTime)
		return ok
	})
}

func (s *Session) DeleteHighlightRegion(index int) bool {
	return s.mutate(func() bool { return s.highlights.DeleteRegion(index) })
}

func (s *Session) MoveHighlightStart(index int, sourceTime float64) bool {
	return s.mutate(func() bool { return s.highlights.MoveRegionStart(index, sourceTime) })
}

func (s *Session) MoveHighlightEnd(index int, sourceTime float64) bool {
	return s.mutate(func() bool { return s.highlights.MoveRegionEnd(index, sourceTime) })
}

func (s *Session) ToggleHighlightRegion(index int) bool {
	return s.mutate(func() bool { return s.highlights.ToggleRegion(index) })
}

func (s *Session) SetHighlightKeyframe(index, frame int, p highlight.Params) bool {
	return s.mutate(func() bool { return s.highlights.SetRegionKeyframe(index, frame, p) })
}

// Playback queries, sampled once per animation frame by the host.

// VisualTime converts the player's current source position onto the
// edited timeline.
func (s *Session) VisualTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return 0
	}
	return s.timeline.SourceToVisual(s.player.CurrentTime())
}

// SeekVisual maps a visual-time scrub back to source time and seeks
// the player there.
func (s *Session) SeekVisual(visualTime float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return
	}
	s.player.Seek(s.timeline.VisualToSource(visualTime))
}

// CurrentCrop returns the crop rectangle for the player's position,
// falling back to the full frame when the track is empty.
func (s *Session) CurrentCrop() crop.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return crop.FullFrame
	}
	r, ok := s.cropTrack.ValueAt(s.player.CurrentTime())
	if !ok {
		return crop.FullFrame
	}
	return r
}

// CurrentHighlight returns the interpolated highlight parameters at
// the player's position, if an enabled region covers it.
func (s *Session) CurrentHighlight() (highlight.Params, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clip == nil {
		return highlight.Params{}, false
	}
	return s.highlights.HighlightAt(s.player.CurrentTime())
}
