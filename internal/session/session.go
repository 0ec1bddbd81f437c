// Package session holds per-user repaint state and the manager that mediates
// every mutation, the mask editor and generation.
package session

import (
	"time"

	"housepaint/internal/domain"
)

// Artifact points at bytes held in the artifact store.
type Artifact struct {
	Key    string `json:"key"`
	MIME   string `json:"mime"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Mask is a saved mask and the parts detected on it.
type Mask struct {
	Artifact
	Parts []domain.ExteriorPart `json:"parts"`
}

// Result is the last successful generation.
type Result struct {
	Artifact
	GenerationID string    `json:"generation_id"`
	Mode         string    `json:"mode"`
	Instruction  string    `json:"instruction"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the explicit state-transition object behind one user's work.
// Each exported mutator is one mutation point; a new base photo resets
// everything derived from the previous one.
type Session struct {
	ID            string                `json:"id"`
	Photo         *Artifact             `json:"photo,omitempty"`
	PhotoRevision int                   `json:"photo_revision"`
	Reference     *Artifact             `json:"reference,omitempty"`
	Mask          *Mask                 `json:"mask,omitempty"`
	Result        *Result               `json:"result,omitempty"`
	Colors        domain.ColorSelection `json:"colors"`
	Enabled       domain.EnabledParts   `json:"enabled"`
	Note          string                `json:"note"`
	Logo          bool                  `json:"logo"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// New starts a session with default colors and only the wall enabled.
func New(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Colors:    domain.DefaultColors(),
		Enabled:   domain.DefaultEnabled(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone deep-copies the session.
func (s *Session) Clone() *Session {
	out := *s
	out.Colors = s.Colors.Clone()
	out.Enabled = s.Enabled.Clone()
	if s.Photo != nil {
		p := *s.Photo
		out.Photo = &p
	}
	if s.Reference != nil {
		r := *s.Reference
		out.Reference = &r
	}
	if s.Mask != nil {
		m := *s.Mask
		m.Parts = append([]domain.ExteriorPart(nil), s.Mask.Parts...)
		out.Mask = &m
	}
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	return &out
}

// SetPhoto installs a new base photo. Colors and toggles return to defaults;
// mask, reference and result are dropped.
func (s *Session) SetPhoto(a Artifact, now time.Time) {
	s.Photo = &a
	s.PhotoRevision++
	s.Colors = domain.DefaultColors()
	s.Enabled = domain.DefaultEnabled()
	s.Mask = nil
	s.Reference = nil
	s.Result = nil
	s.UpdatedAt = now
}

// SetReference installs a style reference photo.
func (s *Session) SetReference(a Artifact, now time.Time) {
	s.Reference = &a
	s.UpdatedAt = now
}

// ClearReference removes the style reference.
func (s *Session) ClearReference(now time.Time) {
	s.Reference = nil
	s.UpdatedAt = now
}

// SetColor assigns a normalized hex color to part.
func (s *Session) SetColor(part domain.ExteriorPart, hex string, now time.Time) error {
	if !part.Valid() {
		return domain.ErrUnknownPart
	}
	norm, err := domain.NormalizeHex(hex)
	if err != nil {
		return err
	}
	s.Colors[part] = norm
	s.UpdatedAt = now
	return nil
}

// SetEnabled toggles part. The wall cannot be disabled through a toggle;
// only a saved mask may do that.
func (s *Session) SetEnabled(part domain.ExteriorPart, enabled bool, now time.Time) error {
	if !part.Valid() {
		return domain.ErrUnknownPart
	}
	if part == domain.PartWall && !enabled {
		return domain.ErrWallLocked
	}
	s.Enabled[part] = enabled
	s.UpdatedAt = now
	return nil
}

// SetNote stores the free-text user instruction as given.
func (s *Session) SetNote(note string, now time.Time) {
	s.Note = note
	s.UpdatedAt = now
}

// SetLogo toggles the S/J monogram.
func (s *Session) SetLogo(on bool, now time.Time) {
	s.Logo = on
	s.UpdatedAt = now
}

// ApplyMask stores a saved mask. The detected parts replace the toggles
// wholesale.
func (s *Session) ApplyMask(m Mask, now time.Time) {
	s.Mask = &m
	s.Enabled = domain.EnabledOnly(m.Parts)
	s.UpdatedAt = now
}

// ClearMask drops the mask and restores the default toggles.
func (s *Session) ClearMask(now time.Time) {
	s.Mask = nil
	s.Enabled = domain.DefaultEnabled()
	s.UpdatedAt = now
}

// SetResult records a successful generation.
func (s *Session) SetResult(r Result, now time.Time) {
	s.Result = &r
	s.UpdatedAt = now
}
