package maskedit

import "image"

// history is a linear list of full-canvas snapshots with a cursor. Committing
// after an undo drops everything past the cursor; there is no redo.
type history struct {
	snaps  []*image.NRGBA
	cursor int
}

func (h *history) reset(img *image.NRGBA) {
	h.snaps = []*image.NRGBA{cloneNRGBA(img)}
	h.cursor = 0
}

func (h *history) commit(img *image.NRGBA) {
	if h.cursor < len(h.snaps)-1 {
		for i := h.cursor + 1; i < len(h.snaps); i++ {
			h.snaps[i] = nil
		}
		h.snaps = h.snaps[:h.cursor+1]
	}
	h.snaps = append(h.snaps, cloneNRGBA(img))
	h.cursor = len(h.snaps) - 1
}

// undo steps the cursor back and returns the snapshot to restore. It reports
// false at the first snapshot.
func (h *history) undo() (*image.NRGBA, bool) {
	if h.cursor <= 0 {
		return nil, false
	}
	h.cursor--
	return h.snaps[h.cursor], true
}

func (h *history) current() *image.NRGBA {
	if len(h.snaps) == 0 {
		return nil
	}
	return h.snaps[h.cursor]
}

func (h *history) release() {
	h.snaps = nil
	h.cursor = 0
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}
