package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"housepaint/internal/compose"
	"housepaint/internal/domain"
	"housepaint/internal/middleware"
	"housepaint/internal/session"
	"housepaint/internal/upload"
)

type photoView struct {
	MIME     string `json:"mime"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Revision int    `json:"revision"`
}

type maskView struct {
	Parts  []domain.ExteriorPart `json:"parts"`
	Width  int                   `json:"width"`
	Height int                   `json:"height"`
}

type resultView struct {
	GenerationID string    `json:"generation_id"`
	Mode         string    `json:"mode"`
	CreatedAt    time.Time `json:"created_at"`
	URL          string    `json:"url"`
}

type sessionView struct {
	ID           string                `json:"id"`
	Mode         compose.ModeName      `json:"mode"`
	Photo        *photoView            `json:"photo,omitempty"`
	HasReference bool                  `json:"has_reference"`
	Mask         *maskView             `json:"mask,omitempty"`
	Colors       domain.ColorSelection `json:"colors"`
	Enabled      domain.EnabledParts   `json:"enabled"`
	Note         string                `json:"note"`
	Logo         bool                  `json:"logo"`
	Result       *resultView           `json:"result,omitempty"`
	Generating   bool                  `json:"generating"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// modeOf mirrors the composer's precedence: mask, then reference, then plain.
func modeOf(s *session.Session) compose.ModeName {
	switch {
	case s.Mask != nil:
		return compose.ModeMask
	case s.Reference != nil:
		return compose.ModeReference
	default:
		return compose.ModePlain
	}
}

func (a *App) view(s *session.Session) sessionView {
	v := sessionView{
		ID:           s.ID,
		Mode:         modeOf(s),
		HasReference: s.Reference != nil,
		Colors:       s.Colors,
		Enabled:      s.Enabled,
		Note:         s.Note,
		Logo:         s.Logo,
		Generating:   a.Sessions.Generating(s.ID),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
	if s.Photo != nil {
		v.Photo = &photoView{MIME: s.Photo.MIME, Width: s.Photo.Width, Height: s.Photo.Height, Revision: s.PhotoRevision}
	}
	if s.Mask != nil {
		v.Mask = &maskView{Parts: s.Mask.Parts, Width: s.Mask.Width, Height: s.Mask.Height}
	}
	if s.Result != nil {
		v.Result = &resultView{
			GenerationID: s.Result.GenerationID,
			Mode:         s.Result.Mode,
			CreatedAt:    s.Result.CreatedAt,
			URL:          fmt.Sprintf("/v1/sessions/%s/result.png", s.ID),
		}
	}
	return v
}

func (a *App) respond(w http.ResponseWriter, r *http.Request, s *session.Session, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, a.view(s))
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

func partParam(r *http.Request) (domain.ExteriorPart, error) {
	return domain.ParsePart(chi.URLParam(r, "part"))
}

func (a *App) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.Sessions.Create(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, a.view(s))
}

func (a *App) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.Sessions.Get(r.Context(), sessionID(r))
	a.respond(w, r, s, err)
}

func (a *App) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.Delete(r.Context(), sessionID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readImage accepts either a multipart form with a "file" field or a raw
// image body.
func (a *App) readImage(w http.ResponseWriter, r *http.Request) (upload.Image, error) {
	limit := a.Config.MaxUploadBytes
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)
		file, hdr, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return upload.Image{}, upload.ErrTooLarge
			}
			return upload.Image{}, fmt.Errorf("%w: missing file field", domain.ErrUnsupportedMedia)
		}
		defer file.Close()
		return upload.Read(file, hdr.Header.Get("Content-Type"), limit)
	}
	return upload.Read(r.Body, ct, limit)
}

func (a *App) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	img, err := a.readImage(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	s, err := a.Sessions.SetPhoto(r.Context(), sessionID(r), img)
	a.respond(w, r, s, err)
}

func (a *App) UploadReference(w http.ResponseWriter, r *http.Request) {
	img, err := a.readImage(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	s, err := a.Sessions.SetReference(r.Context(), sessionID(r), img)
	a.respond(w, r, s, err)
}

func (a *App) ClearReference(w http.ResponseWriter, r *http.Request) {
	s, err := a.Sessions.ClearReference(r.Context(), sessionID(r))
	a.respond(w, r, s, err)
}

type colorRequest struct {
	Hex    string `json:"hex"`
	Swatch string `json:"swatch"`
}

func (a *App) SetColor(w http.ResponseWriter, r *http.Request) {
	part, err := partParam(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req colorRequest
	if !a.decode(w, r, &req) {
		return
	}
	value := req.Hex
	if value == "" {
		if _, ok := domain.FindSwatch(req.Swatch); !ok {
			a.error(w, http.StatusBadRequest, "invalid_color", "hex or a known swatch is required")
			return
		}
		value = req.Swatch
	}
	s, err := a.Sessions.SetColor(r.Context(), sessionID(r), part, value)
	a.respond(w, r, s, err)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

func (a *App) SetPart(w http.ResponseWriter, r *http.Request) {
	part, err := partParam(r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req toggleRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "enabled is required")
		return
	}
	s, err := a.Sessions.SetEnabled(r.Context(), sessionID(r), part, *req.Enabled)
	a.respond(w, r, s, err)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (a *App) SetNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !a.decode(w, r, &req) {
		return
	}
	s, err := a.Sessions.SetNote(r.Context(), sessionID(r), req.Note)
	a.respond(w, r, s, err)
}

func (a *App) SetLogo(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !a.decode(w, r, &req) {
		return
	}
	if req.Enabled == nil {
		a.error(w, http.StatusBadRequest, "bad_request", "enabled is required")
		return
	}
	s, err := a.Sessions.SetLogo(r.Context(), sessionID(r), *req.Enabled)
	a.respond(w, r, s, err)
}

func (a *App) UploadMask(w http.ResponseWriter, r *http.Request) {
	img, err := a.readImage(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if img.Format != "png" {
		a.fail(w, r, fmt.Errorf("%w: mask must be png, got %s", domain.ErrUnsupportedMedia, img.Format))
		return
	}
	s, err := a.Sessions.UploadMask(r.Context(), sessionID(r), img.Data)
	a.respond(w, r, s, err)
}

func (a *App) ClearMask(w http.ResponseWriter, r *http.Request) {
	s, err := a.Sessions.ClearMask(r.Context(), sessionID(r))
	a.respond(w, r, s, err)
}

func (a *App) MaskPNG(w http.ResponseWriter, r *http.Request) {
	data, err := a.Sessions.MaskPNG(r.Context(), sessionID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.binary(w, "image/png", "", data)
}

// Instruction previews the mode and instruction the next generation sends.
func (a *App) Instruction(w http.ResponseWriter, r *http.Request) {
	mode, text, err := a.Sessions.Instruction(r.Context(), sessionID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"mode": mode, "instruction": text})
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.RequestIDFromContext(r.Context())
	s, err := a.Sessions.Generate(r.Context(), sessionID(r), requestID)
	a.respond(w, r, s, err)
}

func (a *App) ResultPNG(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	data, err := a.Sessions.ResultPNG(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.binary(w, "image/png", fmt.Sprintf("house-repaint-%s.png", id), data)
}

func (a *App) Bundle(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	data, err := a.Sessions.Bundle(r.Context(), id)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.binary(w, "application/zip", fmt.Sprintf("house-repaint-%s.zip", id), data)
}

type generationView struct {
	ID         string                `json:"id"`
	Mode       string                `json:"mode"`
	Parts      []domain.ExteriorPart `json:"parts"`
	Model      string                `json:"model"`
	Status     string                `json:"status"`
	Error      string                `json:"error,omitempty"`
	DurationMS int64                 `json:"duration_ms"`
	CreatedAt  time.Time             `json:"created_at"`
}

// Generations lists recorded attempts when a database is configured.
func (a *App) Generations(w http.ResponseWriter, r *http.Request) {
	if a.History == nil {
		a.error(w, http.StatusNotImplemented, "not_configured", "generation history requires a database")
		return
	}
	id := sessionID(r)
	if _, err := a.Sessions.Get(r.Context(), id); err != nil {
		a.fail(w, r, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	recs, err := a.History.ListBySession(r.Context(), id, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	items := make([]generationView, 0, len(recs))
	for _, rec := range recs {
		items = append(items, generationView{
			ID:         rec.ID,
			Mode:       rec.Mode,
			Parts:      rec.Parts,
			Model:      rec.Model,
			Status:     string(rec.Status),
			Error:      rec.Error,
			DurationMS: rec.Duration.Milliseconds(),
			CreatedAt:  rec.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) binary(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
