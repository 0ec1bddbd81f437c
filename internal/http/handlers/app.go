package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"housepaint/internal/domain"
	"housepaint/internal/infra"
	"housepaint/internal/maskedit"
	"housepaint/internal/session"
	"housepaint/internal/upload"
)

// HistoryLister lists recorded generation attempts.
type HistoryLister interface {
	ListBySession(ctx context.Context, sessionID string, limit int) ([]domain.GenerationRecord, error)
}

type App struct {
	Sessions *session.Manager
	History  HistoryLister
	Config   *infra.Config
	Logger   infra.Logger
	Model    string
}

func NewApp(cfg *infra.Config, sessions *session.Manager, history HistoryLister, model string, logger infra.Logger) *App {
	return &App{
		Sessions: sessions,
		History:  history,
		Config:   cfg,
		Logger:   logger.With().Str("component", "http").Logger(),
		Model:    model,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{domain.ErrNoResult, http.StatusNotFound, "no_result"},
	{domain.ErrNoMask, http.StatusNotFound, "no_mask"},
	{domain.ErrNoBasePhoto, http.StatusBadRequest, "no_base_photo"},
	{domain.ErrGenerationInFlight, http.StatusConflict, "generation_in_flight"},
	{domain.ErrPhotoChanged, http.StatusConflict, "photo_changed"},
	{domain.ErrWallLocked, http.StatusConflict, "wall_locked"},
	{domain.ErrEditorNotOpen, http.StatusConflict, "editor_not_open"},
	{maskedit.ErrClosed, http.StatusConflict, "editor_closed"},
	{domain.ErrInvalidColor, http.StatusBadRequest, "invalid_color"},
	{domain.ErrUnknownPart, http.StatusBadRequest, "unknown_part"},
	{maskedit.ErrBrushSize, http.StatusBadRequest, "invalid_brush_size"},
	{maskedit.ErrBadViewport, http.StatusBadRequest, "invalid_viewport"},
	{maskedit.ErrNoPhoto, http.StatusBadRequest, "no_base_photo"},
	{session.ErrUnknownPointer, http.StatusBadRequest, "unknown_pointer"},
	{upload.ErrTooLarge, http.StatusRequestEntityTooLarge, "too_large"},
	{domain.ErrUnsupportedMedia, http.StatusUnsupportedMediaType, "unsupported_media"},
	{domain.ErrMissingCredential, http.StatusServiceUnavailable, "missing_credential"},
	{domain.ErrGenerationFailed, http.StatusBadGateway, "generation_failed"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// fail maps err onto the JSON error envelope. Unmapped errors are logged and
// reported as internal.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			message := err.Error()
			switch m.target {
			case domain.ErrGenerationFailed:
				message = domain.ErrGenerationFailed.Error()
			case domain.ErrMissingCredential:
				message = domain.ErrMissingCredential.Error()
			}
			a.error(w, m.status, m.code, message)
			return
		}
	}
	a.Logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	a.error(w, http.StatusInternalServerError, "internal", "internal error")
}
