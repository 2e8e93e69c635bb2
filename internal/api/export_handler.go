package api

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipforge/clipforge-agent/internal/crop"
	"github.com/clipforge/clipforge-agent/internal/export"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

// exportEDLHandler renders a clip's edited timeline as an EDL file.
// Pending session edits are flushed first so the export always matches
// what the user last saw.
func exportEDLHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.ExportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		if strings.ToLower(req.Format) != "edl" {
			WriteError(w, http.StatusBadRequest, "format must be edl", "BAD_REQUEST")
			return
		}
		if req.ClipID == "" {
			WriteError(w, http.StatusBadRequest, "clip_id is required", "BAD_REQUEST")
			return
		}
		if err := export.ValidateOutputDir(req.OutputDir); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		clip, err := cfg.ClipService.GetClip(r.Context(), req.ClipID)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}
		if clip == nil {
			WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
			return
		}

		blobs, ok := loadFreshState(cfg, w, r, clip.ID)
		if !ok {
			return
		}

		tl := timeline.New(clip.FrameRate)
		if !tl.Restore(blobs.Segments, clip.DurationS) {
			WriteError(w, http.StatusUnprocessableEntity, "clip state cannot be restored", "INVALID_STATE")
			return
		}

		events := export.BuildEvents(tl, export.SanitizeName(clip.Name, 160), clip.MediaPath)
		if len(events) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "timeline has no visible material", "EMPTY_TIMELINE")
			return
		}

		title := export.SanitizeName(req.Title, 120)
		if title == "" {
			title = export.SanitizeName(clip.Name, 120)
		}
		if title == "" {
			title = "clipforge_export"
		}

		edl := export.GenerateEDL(events, title, clip.FrameRate)
		outputPath := filepath.Join(req.OutputDir, title+".edl")
		if err := os.WriteFile(outputPath, []byte(edl), 0o644); err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to write export file", "INTERNAL_ERROR")
			return
		}

		// The EDL carries cuts and speeds only; the crop track rides
		// along in the response, renumbered onto the edited timeline.
		cropTrack := crop.New(clip.FrameRate, clip.DurationS, clipAspect(clip))
		cropTrack.Restore(blobs.Crop)

		WriteJSON(w, http.StatusOK, export.ExportResponse{
			Status:        "ok",
			Format:        "edl",
			OutputPath:    outputPath,
			EventCount:    len(events),
			CropKeyframes: cropTrack.ExportKeyframes(tl),
		})
	}
}
