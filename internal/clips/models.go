package clips

import (
	"time"

	"github.com/google/uuid"
)

// Clip is one editable piece of source media. The editing state itself
// (segments, crop keyframes, highlight regions) lives in the per-clip
// JSON blobs, loaded into engine objects while the clip is active.
type Clip struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MediaPath string    `json:"media_path"`
	DurationS float64   `json:"duration_s"`
	FrameRate float64   `json:"frame_rate"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClipState carries the three persisted blobs for one clip, as raw
// JSON. The engine packages own the shapes; this layer only stores
// them.
type ClipState struct {
	ClipID     string
	Segments   []byte
	Crop       []byte
	Highlights []byte
	UpdatedAt  time.Time
}

func NewID() string {
	return uuid.NewString()
}
