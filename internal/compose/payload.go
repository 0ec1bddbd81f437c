package compose

import (
	"fmt"

	"housepaint/internal/domain"
)

// Payload is the fully built generation request.
type Payload struct {
	Mode        ModeName
	Instruction string
	Images      []Image
}

// Build selects the mode and assembles images and instruction. The base photo
// is always first; at most one mask or reference image follows.
func Build(in Input) (Payload, error) {
	if in.Base.Empty() {
		return Payload{}, domain.ErrNoBasePhoto
	}
	mode := SelectMode(in)
	images := []Image{in.Base}
	switch m := mode.(type) {
	case MaskMode:
		images = append(images, m.Mask)
	case ReferenceMode:
		images = append(images, m.Reference)
	case PlainMode:
	default:
		return Payload{}, fmt.Errorf("compose: unsupported mode %T", mode)
	}
	return Payload{
		Mode:        mode.Name(),
		Instruction: BuildInstruction(mode, in.Note, in.Logo),
		Images:      images,
	}, nil
}
