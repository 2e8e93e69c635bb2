package export

import "github.com/clipforge/clipforge-agent/internal/crop"

type ExportRequest struct {
	ClipID    string `json:"clip_id"`
	Title     string `json:"title"`
	Format    string `json:"format"`
	OutputDir string `json:"output_dir"`
}

// Event is one EDL edit: a visible source span cut onto the record
// timeline. Times are seconds. SourceIn/Out are source time; RecordIn
// and RecordOut are positions on the edited timeline.
type Event struct {
	ClipName  string
	MediaPath string
	SourceIn  float64
	SourceOut float64
	RecordIn  float64
	RecordOut float64
	Speed     float64
}

// ExportResponse carries the EDL result plus the crop keyframes
// renumbered onto the edited timeline, so a render consumer gets both
// from one call. The EDL format itself has no crop notion.
type ExportResponse struct {
	Status        string              `json:"status"`
	Format        string              `json:"format"`
	OutputPath    string              `json:"output_path"`
	EventCount    int                 `json:"event_count"`
	CropKeyframes []crop.KeyframeData `json:"crop_keyframes"`
}
