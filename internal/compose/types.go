package compose

import (
	"context"
	"time"

	"housepaint/internal/domain"
)

// Image is an inline image payload.
type Image struct {
	Data []byte
	MIME string
}

// Empty reports whether the image carries no bytes.
func (i Image) Empty() bool {
	return len(i.Data) == 0
}

func (i Image) clone() Image {
	data := make([]byte, len(i.Data))
	copy(data, i.Data)
	return Image{Data: data, MIME: i.MIME}
}

// Input is the structural state a generation request is built from.
type Input struct {
	Base      Image
	Colors    domain.ColorSelection
	Enabled   domain.EnabledParts
	Mask      *Image
	Reference *Image
	Note      string
	Logo      bool
	RequestID string
}

// Clone deep-copies the input so later session mutations cannot leak into an
// in-flight request.
func (in Input) Clone() Input {
	out := Input{
		Base:      in.Base.clone(),
		Colors:    in.Colors.Clone(),
		Enabled:   in.Enabled.Clone(),
		Note:      in.Note,
		Logo:      in.Logo,
		RequestID: in.RequestID,
	}
	if in.Mask != nil {
		m := in.Mask.clone()
		out.Mask = &m
	}
	if in.Reference != nil {
		r := in.Reference.clone()
		out.Reference = &r
	}
	return out
}

// PartColor is one projected color instruction.
type PartColor struct {
	Part domain.ExteriorPart
	Hex  string
}

// Request is what a Generator sends to the endpoint: images in order followed
// by one text instruction, asking for image-only output.
type Request struct {
	Images      []Image
	Instruction string
	RequestID   string
}

// Response mirrors the endpoint's envelope.
type Response struct {
	Candidates []Candidate
}

// Candidate is one response alternative.
type Candidate struct {
	Parts []Part
}

// Part is a text or inline-image content part.
type Part struct {
	Text   string
	Inline *Image
}

// Result describes one generation attempt. Image is set only on success;
// Mode, Instruction and Elapsed are filled whenever a request was built.
type Result struct {
	Image       Image
	Mode        ModeName
	Instruction string
	Elapsed     time.Duration
}

// Generator invokes the external generation endpoint once.
type Generator interface {
	GenerateImage(ctx context.Context, req Request) (*Response, error)
	Model() string
}
