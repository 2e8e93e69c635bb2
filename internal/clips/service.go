package clips

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/clipforge/clipforge-agent/internal/crop"
	"github.com/clipforge/clipforge-agent/internal/highlight"
	"github.com/clipforge/clipforge-agent/internal/timeline"
	"github.com/clipforge/clipforge-agent/internal/timeutil"
)

// StateBlobs is the decoded form of a clip's three persisted blobs.
type StateBlobs struct {
	Segments   timeline.SegmentsData  `json:"segments_data"`
	Crop       []crop.KeyframeData    `json:"crop_data"`
	Highlights []highlight.RegionData `json:"highlights_data"`
}

type ClipService interface {
	CreateClip(ctx context.Context, name, mediaPath string, durationS, frameRate float64, width, height int) (*Clip, error)
	GetClip(ctx context.Context, id string) (*Clip, error)
	ListClips(ctx context.Context) ([]*Clip, error)
	DeleteClip(ctx context.Context, id string) error
	CountClips(ctx context.Context) (int, error)
	LoadState(ctx context.Context, clipID string) (*StateBlobs, error)
	SaveState(ctx context.Context, clipID string, blobs *StateBlobs) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) CreateClip(ctx context.Context, name, mediaPath string, durationS, frameRate float64, width, height int) (*Clip, error) {
	if name == "" {
		return nil, fmt.Errorf("clip name is required")
	}
	if durationS <= 0 || math.IsNaN(durationS) {
		return nil, fmt.Errorf("clip duration must be positive")
	}
	if frameRate <= 0 || math.IsNaN(frameRate) {
		frameRate = timeutil.DefaultFrameRate
	}

	now := time.Now()
	clip := &Clip{
		ID:        NewID(),
		Name:      name,
		MediaPath: mediaPath,
		DurationS: durationS,
		FrameRate: frameRate,
		Width:     width,
		Height:    height,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateClip(ctx, clip); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("clip created", "clip_id", clip.ID, "name", name, "duration_s", durationS)
	}
	return clip, nil
}

func (s *Service) GetClip(ctx context.Context, id string) (*Clip, error) {
	return s.repo.GetClip(ctx, id)
}

func (s *Service) ListClips(ctx context.Context) ([]*Clip, error) {
	return s.repo.ListClips(ctx)
}

func (s *Service) DeleteClip(ctx context.Context, id string) error {
	return s.repo.DeleteClip(ctx, id)
}

func (s *Service) CountClips(ctx context.Context) (int, error) {
	return s.repo.CountClips(ctx)
}

// LoadState fetches and decodes a clip's persisted blobs. A clip with
// no saved state, or with a blob that fails to parse, yields the zero
// value for that blob: the engine defaults apply and nothing fails.
func (s *Service) LoadState(ctx context.Context, clipID string) (*StateBlobs, error) {
	stored, err := s.repo.GetState(ctx, clipID)
	if err != nil {
		return nil, err
	}

	blobs := &StateBlobs{}
	if stored == nil {
		return blobs, nil
	}

	s.decodeBlob(clipID, "segments_data", stored.Segments, &blobs.Segments)
	s.decodeBlob(clipID, "crop_data", stored.Crop, &blobs.Crop)
	s.decodeBlob(clipID, "highlights_data", stored.Highlights, &blobs.Highlights)
	return blobs, nil
}

func (s *Service) decodeBlob(clipID, field string, raw []byte, dst interface{}) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil && s.logger != nil {
		s.logger.Warn("discarding malformed clip state blob",
			"clip_id", clipID, "field", field, "error", err)
	}
}

func (s *Service) SaveState(ctx context.Context, clipID string, blobs *StateBlobs) error {
	segments, err := json.Marshal(blobs.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	cropData, err := json.Marshal(blobs.Crop)
	if err != nil {
		return fmt.Errorf("marshal crop: %w", err)
	}
	highlights, err := json.Marshal(blobs.Highlights)
	if err != nil {
		return fmt.Errorf("marshal highlights: %w", err)
	}

	state := &ClipState{
		ClipID:     clipID,
		Segments:   segments,
		Crop:       cropData,
		Highlights: highlights,
		UpdatedAt:  time.Now(),
	}
	if err := s.repo.UpsertState(ctx, state); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Debug("clip state saved", "clip_id", clipID)
	}
	return nil
}
