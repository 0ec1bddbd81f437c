package maskedit

import (
	"errors"
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"housepaint/internal/domain"
)

const (
	MinBrushSize     = 1
	MaxBrushSize     = 100
	DefaultBrushSize = 20
)

var (
	ErrNoPhoto     = errors.New("maskedit: no source photo")
	ErrBadViewport = errors.New("maskedit: viewport out of range")
	ErrBrushSize   = errors.New("maskedit: brush size out of range")
	ErrClosed      = errors.New("maskedit: editor is closed")
)

// State is the editor's position in its session lifecycle.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateSaved
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateSaved:
		return "saved"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Editor is one mask painting session. It is not safe for concurrent use;
// callers serialize gestures for a session.
type Editor struct {
	state   State
	source  image.Point
	canvas  *image.NRGBA
	history history

	part    domain.ExteriorPart
	brush   int
	erasing bool

	active stroke
	last   point
	z      *vector.Rasterizer
}

// Open starts a session for a photo of the given pixel size displayed in
// viewport. The canvas starts fully transparent and history holds that
// blank snapshot.
func Open(source, viewport image.Point) (*Editor, error) {
	size, err := FitCanvas(source, viewport)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		state:  StateIdle,
		source: source,
		canvas: image.NewNRGBA(image.Rectangle{Max: size}),
		part:   domain.PartWall,
		brush:  DefaultBrushSize,
		z:      vector.NewRasterizer(size.X, size.Y),
	}
	e.history.reset(e.canvas)
	return e, nil
}

func (e *Editor) open() error {
	if e.state == StateSaved || e.state == StateCancelled {
		return ErrClosed
	}
	return nil
}

// State reports the lifecycle state.
func (e *Editor) State() State { return e.state }

// Size is the canvas size in display pixels.
func (e *Editor) Size() image.Point { return e.canvas.Rect.Size() }

// Cursor is the history index currently shown.
func (e *Editor) Cursor() int { return e.history.cursor }

// HistoryLen is the number of snapshots, including the blank one.
func (e *Editor) HistoryLen() int { return len(e.history.snaps) }

// Part is the part new strokes are tagged with.
func (e *Editor) Part() domain.ExteriorPart { return e.part }

// BrushSize is the stroke width in display pixels.
func (e *Editor) BrushSize() int { return e.brush }

// Erasing reports whether new strokes clear pixels.
func (e *Editor) Erasing() bool { return e.erasing }

// SelectPart chooses the legend color for subsequent strokes.
func (e *Editor) SelectPart(p domain.ExteriorPart) error {
	if err := e.open(); err != nil {
		return err
	}
	if !p.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownPart, p)
	}
	e.part = p
	return nil
}

// SetBrushSize sets the stroke width for subsequent strokes.
func (e *Editor) SetBrushSize(size int) error {
	if err := e.open(); err != nil {
		return err
	}
	if size < MinBrushSize || size > MaxBrushSize {
		return fmt.Errorf("%w: %d", ErrBrushSize, size)
	}
	e.brush = size
	return nil
}

// SetEraser toggles eraser mode for subsequent strokes.
func (e *Editor) SetEraser(on bool) error {
	if err := e.open(); err != nil {
		return err
	}
	e.erasing = on
	return nil
}

// PointerDown begins a stroke at (x, y).
func (e *Editor) PointerDown(x, y float64) error {
	if err := e.open(); err != nil {
		return err
	}
	e.active = stroke{
		color:  e.part.LegendColor(),
		radius: float32(e.brush) / 2,
		erase:  e.erasing,
	}
	e.last = point{x: float32(x), y: float32(y)}
	e.state = StateDrawing
	return nil
}

// PointerMove extends the current stroke to (x, y). Moves without a stroke
// in progress are ignored.
func (e *Editor) PointerMove(x, y float64) error {
	if err := e.open(); err != nil {
		return err
	}
	if e.state != StateDrawing {
		return nil
	}
	next := point{x: float32(x), y: float32(y)}
	paintSegment(e.z, e.canvas, e.active, e.last, next)
	e.last = next
	return nil
}

// PointerUp ends the stroke and commits a snapshot.
func (e *Editor) PointerUp() error {
	if err := e.open(); err != nil {
		return err
	}
	e.endStroke()
	return nil
}

// PointerLeave behaves like PointerUp when the pointer leaves the canvas
// while a stroke is in progress.
func (e *Editor) PointerLeave() error {
	return e.PointerUp()
}

func (e *Editor) endStroke() {
	if e.state != StateDrawing {
		return
	}
	e.state = StateIdle
	e.history.commit(e.canvas)
}

// Undo restores the previous snapshot. It is a no-op on the first one and
// reports whether anything changed.
func (e *Editor) Undo() (bool, error) {
	if err := e.open(); err != nil {
		return false, err
	}
	e.endStroke()
	snap, ok := e.history.undo()
	if !ok {
		return false, nil
	}
	copy(e.canvas.Pix, snap.Pix)
	return true, nil
}

// Clear wipes the canvas and commits the blank state as a new snapshot.
func (e *Editor) Clear() error {
	if err := e.open(); err != nil {
		return err
	}
	e.endStroke()
	clear(e.canvas.Pix)
	e.history.commit(e.canvas)
	return nil
}

// Resize refits the canvas to a new viewport. The canvas and every snapshot
// are rescaled with nearest-neighbor sampling so legend colors stay exact.
func (e *Editor) Resize(viewport image.Point) error {
	if err := e.open(); err != nil {
		return err
	}
	size, err := FitCanvas(e.source, viewport)
	if err != nil {
		return err
	}
	if size == e.Size() {
		return nil
	}
	e.endStroke()

	for i, snap := range e.history.snaps {
		e.history.snaps[i] = rescale(snap, size)
	}
	e.canvas = cloneNRGBA(e.history.current())
	e.z = vector.NewRasterizer(size.X, size.Y)
	return nil
}

func rescale(src *image.NRGBA, size image.Point) *image.NRGBA {
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	xdraw.NearestNeighbor.Scale(dst, dst.Rect, src, src.Rect, xdraw.Src, nil)
	return dst
}

// Snapshot returns a copy of the visible canvas.
func (e *Editor) Snapshot() *image.NRGBA {
	return cloneNRGBA(e.canvas)
}

// CanvasPNG encodes the visible canvas.
func (e *Editor) CanvasPNG() ([]byte, error) {
	return encodePNG(e.canvas)
}

// Export commits a stroke still in progress and exports the mask. The
// editor stays open.
func (e *Editor) Export() (Export, error) {
	if err := e.open(); err != nil {
		return Export{}, err
	}
	e.endStroke()
	return ExportImage(e.canvas)
}

// Close marks the session saved and releases its history.
func (e *Editor) Close() {
	e.state = StateSaved
	e.history.release()
}

// Save exports the mask and closes the session.
func (e *Editor) Save() (Export, error) {
	out, err := e.Export()
	if err != nil {
		return Export{}, err
	}
	e.Close()
	return out, nil
}

// Cancel discards the session.
func (e *Editor) Cancel() {
	e.state = StateCancelled
	e.history.release()
}
