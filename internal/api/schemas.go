package api

import (
	"time"

	"github.com/clipforge/clipforge-agent/internal/clips"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	State        string `json:"state"`
	ClipsCount   int    `json:"clips_count"`
	ActiveClipID string `json:"active_clip_id,omitempty"`
	Dirty        bool   `json:"dirty"`
}

type CreateClipRequest struct {
	Name      string  `json:"name"`
	MediaPath string  `json:"media_path"`
	DurationS float64 `json:"duration_s"`
	FrameRate float64 `json:"frame_rate,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
}

type ClipResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MediaPath string  `json:"media_path"`
	DurationS float64 `json:"duration_s"`
	FrameRate float64 `json:"frame_rate"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type ClipsResponse struct {
	Clips []ClipResponse `json:"clips"`
}

type MappingResponse struct {
	SourceTime     float64 `json:"source_time"`
	VisualTime     float64 `json:"visual_time"`
	Visible        bool    `json:"visible"`
	VisualDuration float64 `json:"visual_duration"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ClipToResponse(c *clips.Clip) ClipResponse {
	return ClipResponse{
		ID:        c.ID,
		Name:      c.Name,
		MediaPath: c.MediaPath,
		DurationS: c.DurationS,
		FrameRate: c.FrameRate,
		Width:     c.Width,
		Height:    c.Height,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}
