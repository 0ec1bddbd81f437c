package handlers

import (
	"net/http"

	"housepaint/internal/domain"
	"housepaint/internal/middleware"
)

type partView struct {
	ID     domain.ExteriorPart `json:"id"`
	Name   string              `json:"name"`
	Label  string              `json:"label"`
	Legend string              `json:"legend"`
}

// Parts lists the paintable parts with their mask legend colors, named in the
// request locale.
func (a *App) Parts(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	items := make([]partView, 0, len(domain.AllParts()))
	for _, p := range domain.AllParts() {
		items = append(items, partView{
			ID:     p,
			Name:   p.DisplayName(locale),
			Label:  p.Label(),
			Legend: p.LegendHex(),
		})
	}
	a.json(w, http.StatusOK, map[string]any{"locale": locale, "items": items})
}

func (a *App) Palette(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": domain.Palette()})
}
