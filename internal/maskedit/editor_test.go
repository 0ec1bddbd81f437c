package maskedit

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housepaint/internal/domain"
)

func openEditor(t *testing.T) *Editor {
	t.Helper()
	e, err := Open(image.Pt(400, 200), image.Pt(200, 100))
	require.NoError(t, err)
	require.Equal(t, image.Pt(200, 100), e.Size())
	return e
}

func drawLine(t *testing.T, e *Editor, x0, y0, x1, y1 float64) {
	t.Helper()
	require.NoError(t, e.PointerDown(x0, y0))
	require.NoError(t, e.PointerMove((x0+x1)/2, (y0+y1)/2))
	require.NoError(t, e.PointerMove(x1, y1))
	require.NoError(t, e.PointerUp())
}

func TestOpenStartsBlank(t *testing.T) {
	e := openEditor(t)
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 0, e.Cursor())
	assert.Equal(t, 1, e.HistoryLen())
	assert.Equal(t, domain.PartWall, e.Part())
	assert.Equal(t, DefaultBrushSize, e.BrushSize())
	assert.Empty(t, DetectParts(e.Snapshot()))
}

func TestOpenWithoutPhoto(t *testing.T) {
	_, err := Open(image.Point{}, image.Pt(100, 100))
	assert.ErrorIs(t, err, ErrNoPhoto)

	_, err = Open(image.Pt(10, 10), image.Pt(0, 100))
	assert.ErrorIs(t, err, ErrBadViewport)
}

func TestStrokeRoundTrip(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartDoor))
	drawLine(t, e, 20, 50, 150, 50)

	got := e.Snapshot().NRGBAAt(80, 50)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}, got)
	assert.Equal(t, uint8(0), e.Snapshot().NRGBAAt(80, 90).A)

	out, err := e.Save()
	require.NoError(t, err)
	assert.Equal(t, []domain.ExteriorPart{domain.PartDoor}, out.Parts)
	assert.Equal(t, 200, out.Width)
	assert.Equal(t, 100, out.Height)

	again, err := Inspect(out.PNG)
	require.NoError(t, err)
	assert.Equal(t, []domain.ExteriorPart{domain.PartDoor}, again.Parts)
	assert.Equal(t, StateSaved, e.State())
}

func TestExportIsIdempotent(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartRailing))
	drawLine(t, e, 10, 10, 190, 90)

	first, err := ExportImage(e.Snapshot())
	require.NoError(t, err)
	second, err := ExportImage(e.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, first.PNG, second.PNG)
	assert.Equal(t, first.Parts, second.Parts)
	assert.Equal(t, []domain.ExteriorPart{domain.PartRailing}, first.Parts)
}

func TestPartsReportedInEnumerationOrder(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartRoof))
	drawLine(t, e, 20, 20, 180, 20)
	require.NoError(t, e.SelectPart(domain.PartWall))
	drawLine(t, e, 20, 80, 180, 80)

	assert.Equal(t, []domain.ExteriorPart{domain.PartWall, domain.PartRoof}, DetectParts(e.Snapshot()))
}

func TestToolChangeMidStrokeKeepsStrokeColor(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartWindow))
	require.NoError(t, e.PointerDown(20, 50))
	require.NoError(t, e.SelectPart(domain.PartRoof))
	require.NoError(t, e.PointerMove(150, 50))
	require.NoError(t, e.PointerUp())

	assert.Equal(t, []domain.ExteriorPart{domain.PartWindow}, DetectParts(e.Snapshot()))
}

func TestMoveWithoutDownIsIgnored(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.PointerMove(50, 50))
	require.NoError(t, e.PointerUp())
	assert.Equal(t, 1, e.HistoryLen())
	assert.Empty(t, DetectParts(e.Snapshot()))
}

func TestPointerLeaveCommitsStroke(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.PointerDown(20, 50))
	require.NoError(t, e.PointerMove(120, 50))
	require.NoError(t, e.PointerLeave())
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 2, e.HistoryLen())
}

func TestEraserRestoresTransparency(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartWall))
	require.NoError(t, e.SetBrushSize(10))
	drawLine(t, e, 20, 50, 180, 50)

	require.NoError(t, e.SetEraser(true))
	require.NoError(t, e.SetBrushSize(60))
	drawLine(t, e, 0, 50, 200, 50)

	assert.Equal(t, uint8(0), e.Snapshot().NRGBAAt(100, 50).A)
	assert.Empty(t, DetectParts(e.Snapshot()))
	assert.Equal(t, 3, e.HistoryLen())
}

func TestUndoAtFirstSnapshotIsNoop(t *testing.T) {
	e := openEditor(t)
	before := e.Snapshot()
	changed, err := e.Undo()
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 0, e.Cursor())
	assert.Equal(t, before.Pix, e.Snapshot().Pix)
}

func TestUndoRestoresPreviousStroke(t *testing.T) {
	e := openEditor(t)
	var states []*image.NRGBA
	parts := []domain.ExteriorPart{domain.PartWall, domain.PartDoor, domain.PartRoof}
	for i, p := range parts {
		require.NoError(t, e.SelectPart(p))
		y := float64(20 + 30*i)
		drawLine(t, e, 20, y, 180, y)
		states = append(states, e.Snapshot())
	}
	require.Equal(t, 3, e.Cursor())

	changed, err := e.Undo()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 2, e.Cursor())
	assert.Equal(t, states[1].Pix, e.Snapshot().Pix)
}

func TestCommitAfterUndoTruncatesHistory(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartWall))
	drawLine(t, e, 20, 20, 180, 20)
	afterA := e.Snapshot()

	require.NoError(t, e.SelectPart(domain.PartDoor))
	drawLine(t, e, 20, 50, 180, 50)
	afterB := e.Snapshot()

	_, err := e.Undo()
	require.NoError(t, err)
	require.NoError(t, e.SelectPart(domain.PartRoof))
	drawLine(t, e, 20, 80, 180, 80)
	assert.Equal(t, 3, e.HistoryLen())

	_, err = e.Undo()
	require.NoError(t, err)
	assert.Equal(t, afterA.Pix, e.Snapshot().Pix)

	_, err = e.Undo()
	require.NoError(t, err)
	assert.Empty(t, DetectParts(e.Snapshot()))

	for _, snap := range e.history.snaps {
		assert.NotEqual(t, afterB.Pix, snap.Pix)
	}
}

func TestClearCommitsBlankSnapshot(t *testing.T) {
	e := openEditor(t)
	drawLine(t, e, 20, 50, 180, 50)
	require.NoError(t, e.Clear())
	assert.Equal(t, 3, e.HistoryLen())
	assert.Empty(t, DetectParts(e.Snapshot()))

	_, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, []domain.ExteriorPart{domain.PartWall}, DetectParts(e.Snapshot()))
}

func TestBrushSizeBounds(t *testing.T) {
	e := openEditor(t)
	assert.ErrorIs(t, e.SetBrushSize(0), ErrBrushSize)
	assert.ErrorIs(t, e.SetBrushSize(101), ErrBrushSize)
	assert.NoError(t, e.SetBrushSize(100))
	assert.Equal(t, 100, e.BrushSize())
}

func TestSelectUnknownPart(t *testing.T) {
	e := openEditor(t)
	assert.ErrorIs(t, e.SelectPart("garage"), domain.ErrUnknownPart)
}

func TestResizeRescalesContentAndHistory(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartDoor))
	drawLine(t, e, 20, 50, 180, 50)

	require.NoError(t, e.Resize(image.Pt(100, 100)))
	assert.Equal(t, image.Pt(100, 50), e.Size())
	assert.Equal(t, 2, e.HistoryLen())
	assert.Equal(t, []domain.ExteriorPart{domain.PartDoor}, DetectParts(e.Snapshot()))

	_, err := e.Undo()
	require.NoError(t, err)
	assert.Equal(t, image.Pt(100, 50), e.Snapshot().Rect.Size())
	assert.Empty(t, DetectParts(e.Snapshot()))
}

func TestExportLeavesEditorOpen(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartRoof))
	require.NoError(t, e.PointerDown(20, 20))
	require.NoError(t, e.PointerMove(120, 20))

	out, err := e.Export()
	require.NoError(t, err)
	assert.Equal(t, []domain.ExteriorPart{domain.PartRoof}, out.Parts)
	assert.Equal(t, StateIdle, e.State())
	assert.Equal(t, 2, e.HistoryLen())

	drawLine(t, e, 20, 80, 120, 80)
	e.Close()
	assert.Equal(t, StateSaved, e.State())
	assert.ErrorIs(t, e.PointerDown(1, 1), ErrClosed)
}

func TestOversizedViewport(t *testing.T) {
	_, err := Open(image.Pt(4000, 3000), image.Pt(1<<40, 1<<40))
	assert.ErrorIs(t, err, ErrBadViewport)

	e := openEditor(t)
	assert.ErrorIs(t, e.Resize(image.Pt(60000, 45000)), ErrBadViewport)
	assert.Equal(t, image.Pt(200, 100), e.Size())

	require.NoError(t, e.Resize(image.Pt(MaxViewportSide, MaxViewportSide)))
	assert.Equal(t, image.Pt(MaxCanvasSide, MaxCanvasSide/2), e.Size())
}

func TestClosedEditorRejectsGestures(t *testing.T) {
	e := openEditor(t)
	_, err := e.Save()
	require.NoError(t, err)
	assert.ErrorIs(t, e.PointerDown(1, 1), ErrClosed)
	_, err = e.Save()
	assert.ErrorIs(t, err, ErrClosed)

	c := openEditor(t)
	c.Cancel()
	assert.Equal(t, StateCancelled, c.State())
	assert.ErrorIs(t, c.Clear(), ErrClosed)
}

func TestSaveCommitsStrokeInProgress(t *testing.T) {
	e := openEditor(t)
	require.NoError(t, e.SelectPart(domain.PartFoliage))
	require.NoError(t, e.PointerDown(20, 50))
	require.NoError(t, e.PointerMove(150, 50))

	out, err := e.Save()
	require.NoError(t, err)
	assert.Equal(t, []domain.ExteriorPart{domain.PartFoliage}, out.Parts)
}
