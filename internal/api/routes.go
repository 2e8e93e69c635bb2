package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipforge/clipforge-agent/internal/clips"
	"github.com/clipforge/clipforge-agent/internal/config"
	"github.com/clipforge/clipforge-agent/internal/crop"
	"github.com/clipforge/clipforge-agent/internal/highlight"
	"github.com/clipforge/clipforge-agent/internal/timeline"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/status", statusHandler(cfg))
		r.Get("/clips", listClipsHandler(cfg))
		r.Post("/clips", createClipHandler(cfg))
		r.Get("/clips/{id}", getClipHandler(cfg))
		r.Delete("/clips/{id}", deleteClipHandler(cfg))
		r.Post("/clips/{id}/activate", activateClipHandler(cfg))
		r.Get("/clips/{id}/state", getStateHandler(cfg))
		r.Get("/clips/{id}/segments", getSegmentsHandler(cfg))
		r.Put("/clips/{id}/segments", putSegmentsHandler(cfg))
		r.Get("/clips/{id}/crop", getCropHandler(cfg))
		r.Put("/clips/{id}/crop", putCropHandler(cfg))
		r.Get("/clips/{id}/highlights", getHighlightsHandler(cfg))
		r.Put("/clips/{id}/highlights", putHighlightsHandler(cfg))
		r.Get("/clips/{id}/mapping", mappingHandler(cfg))
		r.Get("/clips/{id}/media", mediaHandler(cfg))
		r.Post("/export", exportEDLHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: config.Version,
			UptimeS: uptime,
		})
	}
}

func statusHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, _ := cfg.ClipService.CountClips(r.Context())

		resp := StatusResponse{State: "idle", ClipsCount: count}
		if cfg.Session != nil {
			if active := cfg.Session.ActiveClip(); active != nil {
				resp.State = "editing"
				resp.ActiveClipID = active.ID
				resp.Dirty = cfg.Session.Dirty()
			}
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

func listClipsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := cfg.ClipService.ListClips(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list clips", "INTERNAL_ERROR")
			return
		}

		resp := ClipsResponse{Clips: make([]ClipResponse, len(list))}
		for i, c := range list {
			resp.Clips[i] = ClipToResponse(c)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func createClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateClipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		clip, err := cfg.ClipService.CreateClip(r.Context(), req.Name, req.MediaPath, req.DurationS, req.FrameRate, req.Width, req.Height)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusCreated, ClipToResponse(clip))
	}
}

func getClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, ClipToResponse(clip))
	}
}

func deleteClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "clip id required", "BAD_REQUEST")
			return
		}

		if cfg.Session != nil {
			if active := cfg.Session.ActiveClip(); active != nil && active.ID == id {
				cfg.Session.Deactivate(r.Context())
			}
		}

		if err := cfg.ClipService.DeleteClip(r.Context(), id); err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func activateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "clip id required", "BAD_REQUEST")
			return
		}
		if cfg.Session == nil {
			WriteError(w, http.StatusServiceUnavailable, "no editing session", "NO_SESSION")
			return
		}

		if err := cfg.Session.Activate(r.Context(), id); err != nil {
			WriteError(w, http.StatusNotFound, err.Error(), "NOT_FOUND")
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func getStateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}

		blobs, ok := loadFreshState(cfg, w, r, clip.ID)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, blobs)
	}
}

func getSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}
		blobs, ok := loadFreshState(cfg, w, r, clip.ID)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, blobs.Segments)
	}
}

// putSegmentsHandler replaces a clip's segment model. The payload is
// validated by restoring it through the timeline engine; what gets
// persisted (and returned) is the normalized form, not the raw input.
func putSegmentsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}

		var data timeline.SegmentsData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		tl := timeline.New(clip.FrameRate)
		if !tl.Restore(data, clip.DurationS) {
			WriteError(w, http.StatusBadRequest, "invalid segments data", "INVALID_STATE")
			return
		}

		blobs, ok := updateState(cfg, w, r, clip.ID, func(b *clips.StateBlobs) {
			b.Segments = tl.ExportData()
		})
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, blobs.Segments)
	}
}

func getCropHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}
		blobs, ok := loadFreshState(cfg, w, r, clip.ID)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, blobs.Crop)
	}
}

func putCropHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}

		var data []crop.KeyframeData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		track := crop.New(clip.FrameRate, clip.DurationS, clipAspect(clip))
		track.Restore(data)

		blobs, ok := updateState(cfg, w, r, clip.ID, func(b *clips.StateBlobs) {
			b.Crop = track.Data()
		})
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, blobs.Crop)
	}
}

func getHighlightsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}
		blobs, ok := loadFreshState(cfg, w, r, clip.ID)
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, blobs.Highlights)
	}
}

func putHighlightsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}

		var data []highlight.RegionData
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		track := highlight.New(clip.FrameRate, clip.DurationS)
		track.RestoreRegions(data, clip.DurationS)

		blobs, ok := updateState(cfg, w, r, clip.ID, func(b *clips.StateBlobs) {
			b.Highlights = track.ExportRegions()
		})
		if !ok {
			return
		}
		WriteJSON(w, http.StatusOK, blobs.Highlights)
	}
}

// mappingHandler converts between source and visual time for a clip.
// Exactly one of source_time or visual_time must be given.
func mappingHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}

		srcParam := r.URL.Query().Get("source_time")
		visParam := r.URL.Query().Get("visual_time")
		if (srcParam == "") == (visParam == "") {
			WriteError(w, http.StatusBadRequest, "exactly one of source_time or visual_time is required", "BAD_REQUEST")
			return
		}

		blobs, ok := loadFreshState(cfg, w, r, clip.ID)
		if !ok {
			return
		}

		tl := timeline.New(clip.FrameRate)
		tl.Restore(blobs.Segments, clip.DurationS)

		resp := MappingResponse{VisualDuration: tl.VisualDuration()}
		if srcParam != "" {
			src, err := strconv.ParseFloat(srcParam, 64)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid source_time", "BAD_REQUEST")
				return
			}
			resp.SourceTime = src
			resp.VisualTime = tl.SourceToVisual(src)
			resp.Visible = tl.IsTimeVisible(src)
		} else {
			vis, err := strconv.ParseFloat(visParam, 64)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid visual_time", "BAD_REQUEST")
				return
			}
			resp.VisualTime = vis
			resp.SourceTime = tl.VisualToSource(vis)
			resp.Visible = tl.IsTimeVisible(resp.SourceTime)
		}

		WriteJSON(w, http.StatusOK, resp)
	}
}

// mediaHandler streams the clip's source file with byte-range support
// so the editing UI can scrub.
func mediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clip, ok := lookupClip(cfg, w, r)
		if !ok {
			return
		}
		if cfg.Playback == nil {
			WriteError(w, http.StatusServiceUnavailable, "media serving disabled", "NO_PLAYBACK")
			return
		}
		if err := cfg.Playback.ServeFile(w, r, clip.MediaPath); err != nil && cfg.Logger != nil {
			cfg.Logger.Error("media serve error", "error", err, "clip_id", clip.ID)
		}
	}
}

func lookupClip(cfg ServerConfig, w http.ResponseWriter, r *http.Request) (*clips.Clip, bool) {
	id := chi.URLParam(r, "id")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "clip id required", "BAD_REQUEST")
		return nil, false
	}

	clip, err := cfg.ClipService.GetClip(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		return nil, false
	}
	if clip == nil {
		WriteError(w, http.StatusNotFound, "clip not found", "NOT_FOUND")
		return nil, false
	}
	return clip, true
}

// loadFreshState reads a clip's persisted state, flushing the editing
// session first when that clip is active so reads see pending edits.
func loadFreshState(cfg ServerConfig, w http.ResponseWriter, r *http.Request, clipID string) (*clips.StateBlobs, bool) {
	flushIfActive(cfg, r, clipID)

	blobs, err := cfg.ClipService.LoadState(r.Context(), clipID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to load clip state", "INTERNAL_ERROR")
		return nil, false
	}
	return blobs, true
}

func updateState(cfg ServerConfig, w http.ResponseWriter, r *http.Request, clipID string, apply func(*clips.StateBlobs)) (*clips.StateBlobs, bool) {
	blobs, ok := loadFreshState(cfg, w, r, clipID)
	if !ok {
		return nil, false
	}

	apply(blobs)

	if err := cfg.ClipService.SaveState(r.Context(), clipID, blobs); err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to save clip state", "INTERNAL_ERROR")
		return nil, false
	}

	reloadIfActive(cfg, r, clipID)
	return blobs, true
}

func flushIfActive(cfg ServerConfig, r *http.Request, clipID string) {
	if cfg.Session == nil {
		return
	}
	if active := cfg.Session.ActiveClip(); active != nil && active.ID == clipID {
		cfg.Session.Flush(r.Context())
	}
}

func reloadIfActive(cfg ServerConfig, r *http.Request, clipID string) {
	if cfg.Session == nil {
		return
	}
	if active := cfg.Session.ActiveClip(); active != nil && active.ID == clipID {
		if err := cfg.Session.Reload(r.Context()); err != nil && cfg.Logger != nil {
			cfg.Logger.Warn("failed to reload session state", "clip_id", clipID, "error", err)
		}
	}
}

func clipAspect(c *clips.Clip) float64 {
	if c.Height > 0 {
		return float64(c.Width) / float64(c.Height)
	}
	return 0
}
