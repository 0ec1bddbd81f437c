package session

import (
	"context"
	"image"

	"housepaint/internal/domain"
	"housepaint/internal/maskedit"
	"housepaint/internal/metrics"
)

type editorEntry struct {
	editor   *maskedit.Editor
	revision int
}

// EditorView is the observable state of an open mask editor.
type EditorView struct {
	State      string              `json:"state"`
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Part       domain.ExteriorPart `json:"part"`
	BrushSize  int                 `json:"brush_size"`
	Erasing    bool                `json:"erasing"`
	Cursor     int                 `json:"cursor"`
	HistoryLen int                 `json:"history_len"`
}

func viewOf(e *maskedit.Editor) EditorView {
	size := e.Size()
	return EditorView{
		State:      e.State().String(),
		Width:      size.X,
		Height:     size.Y,
		Part:       e.Part(),
		BrushSize:  e.BrushSize(),
		Erasing:    e.Erasing(),
		Cursor:     e.Cursor(),
		HistoryLen: e.HistoryLen(),
	}
}

// Tool is a partial tool update. Nil fields are left unchanged.
type Tool struct {
	Part      *domain.ExteriorPart `json:"part,omitempty"`
	BrushSize *int                 `json:"brush_size,omitempty"`
	Eraser    *bool                `json:"eraser,omitempty"`
}

// PointerKind is a pointer gesture.
type PointerKind string

const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerLeave PointerKind = "leave"
)

// OpenEditor starts a mask editor over the session photo, replacing any
// editor already open.
func (m *Manager) OpenEditor(ctx context.Context, id string, viewport image.Point) (EditorView, error) {
	unlock := m.lock(id)
	defer unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return EditorView{}, err
	}
	if s.Photo == nil {
		return EditorView{}, domain.ErrNoBasePhoto
	}
	e, err := maskedit.Open(image.Pt(s.Photo.Width, s.Photo.Height), viewport)
	if err != nil {
		return EditorView{}, err
	}
	m.dropEditor(id)
	m.mu.Lock()
	m.editors[id] = &editorEntry{editor: e, revision: s.PhotoRevision}
	m.mu.Unlock()
	metrics.OpenEditors.Inc()
	return viewOf(e), nil
}

func (m *Manager) dropEditor(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry, ok := m.editors[id]; ok {
		entry.editor.Cancel()
		delete(m.editors, id)
		metrics.OpenEditors.Dec()
	}
}

// withEditor runs fn on the open editor under the session lock.
func (m *Manager) withEditor(ctx context.Context, id string, fn func(e *maskedit.Editor) error) (EditorView, error) {
	unlock := m.lock(id)
	defer unlock()

	if _, err := m.store.Get(ctx, id); err != nil {
		return EditorView{}, err
	}
	m.mu.Lock()
	entry, ok := m.editors[id]
	m.mu.Unlock()
	if !ok {
		return EditorView{}, domain.ErrEditorNotOpen
	}
	if err := fn(entry.editor); err != nil {
		return EditorView{}, err
	}
	return viewOf(entry.editor), nil
}

// EditorState reports the open editor.
func (m *Manager) EditorState(ctx context.Context, id string) (EditorView, error) {
	return m.withEditor(ctx, id, func(*maskedit.Editor) error { return nil })
}

// EditorCanvas renders the current canvas as PNG.
func (m *Manager) EditorCanvas(ctx context.Context, id string) ([]byte, error) {
	var out []byte
	_, err := m.withEditor(ctx, id, func(e *maskedit.Editor) error {
		data, err := e.CanvasPNG()
		out = data
		return err
	})
	return out, err
}

// SetTool changes the part, brush size or eraser mode.
func (m *Manager) SetTool(ctx context.Context, id string, t Tool) (EditorView, error) {
	return m.withEditor(ctx, id, func(e *maskedit.Editor) error {
		if t.Part != nil {
			if err := e.SelectPart(*t.Part); err != nil {
				return err
			}
		}
		if t.BrushSize != nil {
			if err := e.SetBrushSize(*t.BrushSize); err != nil {
				return err
			}
		}
		if t.Eraser != nil {
			if err := e.SetEraser(*t.Eraser); err != nil {
				return err
			}
		}
		return nil
	})
}

// Pointer feeds one gesture event to the editor.
func (m *Manager) Pointer(ctx context.Context, id string, kind PointerKind, x, y float64) (EditorView, error) {
	return m.withEditor(ctx, id, func(e *maskedit.Editor) error {
		switch kind {
		case PointerDown:
			return e.PointerDown(x, y)
		case PointerMove:
			return e.PointerMove(x, y)
		case PointerUp:
			return e.PointerUp()
		case PointerLeave:
			return e.PointerLeave()
		default:
			return ErrUnknownPointer
		}
	})
}

// Undo steps the editor history back once.
func (m *Manager) Undo(ctx context.Context, id string) (EditorView, bool, error) {
	var moved bool
	v, err := m.withEditor(ctx, id, func(e *maskedit.Editor) error {
		ok, err := e.Undo()
		moved = ok
		return err
	})
	return v, moved, err
}

// ClearEditor wipes the canvas as one undoable step.
func (m *Manager) ClearEditor(ctx context.Context, id string) (EditorView, error) {
	return m.withEditor(ctx, id, func(e *maskedit.Editor) error { return e.Clear() })
}

// ResizeEditor refits the canvas to a new viewport.
func (m *Manager) ResizeEditor(ctx context.Context, id string, viewport image.Point) (EditorView, error) {
	return m.withEditor(ctx, id, func(e *maskedit.Editor) error { return e.Resize(viewport) })
}

// SaveEditor exports the canvas and applies the mask to the session. The
// editor is closed only once the mask is stored.
func (m *Manager) SaveEditor(ctx context.Context, id string) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	m.mu.Lock()
	entry, ok := m.editors[id]
	m.mu.Unlock()
	if !ok {
		return nil, domain.ErrEditorNotOpen
	}
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.PhotoRevision != entry.revision {
		m.dropEditor(id)
		return nil, domain.ErrPhotoChanged
	}
	exp, err := entry.editor.Export()
	if err != nil {
		return nil, err
	}
	saved, err := m.applyMask(ctx, id, exp.PNG, exp.Parts, exp.Width, exp.Height)
	if err != nil {
		// The editor stays open so the painting can be saved again.
		return nil, err
	}
	entry.editor.Close()
	m.mu.Lock()
	delete(m.editors, id)
	m.mu.Unlock()
	metrics.OpenEditors.Dec()
	return saved, nil
}

// CancelEditor discards the editor without touching the session.
func (m *Manager) CancelEditor(ctx context.Context, id string) error {
	unlock := m.lock(id)
	defer unlock()
	if _, err := m.store.Get(ctx, id); err != nil {
		return err
	}
	m.mu.Lock()
	_, ok := m.editors[id]
	m.mu.Unlock()
	if !ok {
		return domain.ErrEditorNotOpen
	}
	m.dropEditor(id)
	return nil
}

// UploadMask applies an externally painted mask.
func (m *Manager) UploadMask(ctx context.Context, id string, data []byte) (*Session, error) {
	exp, err := maskedit.Inspect(data)
	if err != nil {
		return nil, err
	}
	unlock := m.lock(id)
	defer unlock()
	metrics.UploadBytes.WithLabelValues("mask").Observe(float64(len(data)))
	return m.applyMask(ctx, id, exp.PNG, exp.Parts, exp.Width, exp.Height)
}
