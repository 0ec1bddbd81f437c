package handlers

import (
	"image"
	"net/http"

	"housepaint/internal/session"
)

type viewportRequest struct {
	Width  int `json:"viewport_width"`
	Height int `json:"viewport_height"`
}

func (v viewportRequest) point() image.Point {
	return image.Pt(v.Width, v.Height)
}

func (a *App) editorResult(w http.ResponseWriter, r *http.Request, v session.EditorView, err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, v)
}

func (a *App) OpenEditor(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if !a.decode(w, r, &req) {
		return
	}
	v, err := a.Sessions.OpenEditor(r.Context(), sessionID(r), req.point())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusCreated, v)
}

func (a *App) EditorState(w http.ResponseWriter, r *http.Request) {
	v, err := a.Sessions.EditorState(r.Context(), sessionID(r))
	a.editorResult(w, r, v, err)
}

func (a *App) EditorCanvas(w http.ResponseWriter, r *http.Request) {
	data, err := a.Sessions.EditorCanvas(r.Context(), sessionID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.binary(w, "image/png", "", data)
}

func (a *App) EditorTool(w http.ResponseWriter, r *http.Request) {
	var req session.Tool
	if !a.decode(w, r, &req) {
		return
	}
	v, err := a.Sessions.SetTool(r.Context(), sessionID(r), req)
	a.editorResult(w, r, v, err)
}

type pointerRequest struct {
	Type session.PointerKind `json:"type"`
	X    float64             `json:"x"`
	Y    float64             `json:"y"`
}

func (a *App) EditorPointer(w http.ResponseWriter, r *http.Request) {
	var req pointerRequest
	if !a.decode(w, r, &req) {
		return
	}
	v, err := a.Sessions.Pointer(r.Context(), sessionID(r), req.Type, req.X, req.Y)
	a.editorResult(w, r, v, err)
}

func (a *App) EditorUndo(w http.ResponseWriter, r *http.Request) {
	v, moved, err := a.Sessions.Undo(r.Context(), sessionID(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"undone": moved, "editor": v})
}

func (a *App) EditorClear(w http.ResponseWriter, r *http.Request) {
	v, err := a.Sessions.ClearEditor(r.Context(), sessionID(r))
	a.editorResult(w, r, v, err)
}

func (a *App) EditorResize(w http.ResponseWriter, r *http.Request) {
	var req viewportRequest
	if !a.decode(w, r, &req) {
		return
	}
	v, err := a.Sessions.ResizeEditor(r.Context(), sessionID(r), req.point())
	a.editorResult(w, r, v, err)
}

func (a *App) EditorSave(w http.ResponseWriter, r *http.Request) {
	s, err := a.Sessions.SaveEditor(r.Context(), sessionID(r))
	a.respond(w, r, s, err)
}

func (a *App) EditorCancel(w http.ResponseWriter, r *http.Request) {
	if err := a.Sessions.CancelEditor(r.Context(), sessionID(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
