package compose

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housepaint/internal/domain"
)

func basePhoto() Image {
	return Image{Data: []byte("jpeg-bytes"), MIME: "image/jpeg"}
}

func colorLines(instruction string) []string {
	var out []string
	for _, line := range strings.Split(instruction, "\n") {
		if strings.HasPrefix(line, "- ") && !strings.HasPrefix(line, "- mask color") {
			out = append(out, line)
		}
	}
	return out
}

func TestSelectModePrecedence(t *testing.T) {
	mask := &Image{Data: []byte{1}, MIME: "image/png"}
	ref := &Image{Data: []byte{2}, MIME: "image/jpeg"}

	cases := []struct {
		name string
		in   Input
		want ModeName
	}{
		{"mask and reference", Input{Mask: mask, Reference: ref}, ModeMask},
		{"mask only", Input{Mask: mask}, ModeMask},
		{"reference only", Input{Reference: ref}, ModeReference},
		{"neither", Input{}, ModePlain},
		{"empty mask falls through", Input{Mask: &Image{}, Reference: ref}, ModeReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SelectMode(tc.in).Name())
		})
	}
}

func TestProjectKeepsEnabledInOrder(t *testing.T) {
	colors := domain.DefaultColors()
	enabled := domain.EnabledOnly([]domain.ExteriorPart{domain.PartRoof, domain.PartWall, domain.PartDoor})

	got := Project(colors, enabled)
	require.Len(t, got, 3)
	assert.Equal(t, domain.PartWall, got[0].Part)
	assert.Equal(t, domain.PartDoor, got[1].Part)
	assert.Equal(t, domain.PartRoof, got[2].Part)
	assert.Equal(t, colors[domain.PartRoof], got[2].Hex)
}

func TestIgnoredPhrasesDeduplicated(t *testing.T) {
	got := IgnoredPhrases(domain.DefaultEnabled())
	assert.Equal(t, []string{
		"any feature or accent walls",
		"the doors",
		"the window frames",
		"the roof",
		"the railings",
		"the plants and foliage",
	}, got)
}

func TestBuildPlainScenario(t *testing.T) {
	colors := domain.DefaultColors()
	colors[domain.PartWall] = "#112233"
	colors[domain.PartRoof] = "#445566"

	p, err := Build(Input{
		Base:    basePhoto(),
		Colors:  colors,
		Enabled: domain.EnabledOnly([]domain.ExteriorPart{domain.PartWall, domain.PartRoof}),
	})
	require.NoError(t, err)

	assert.Equal(t, ModePlain, p.Mode)
	require.Len(t, p.Images, 1)
	assert.Equal(t, []string{
		"- All general exterior walls: #112233",
		"- The entire roof surface: #445566",
	}, colorLines(p.Instruction))
	assert.NotContains(t, p.Instruction, "S/J")
	assert.Contains(t, p.Instruction, "Do not add any text or watermarks.")
	assert.Contains(t, p.Instruction, "Do NOT change the color of the following parts: any feature or accent walls, the doors,")
	assert.NotContains(t, p.Instruction, "the roof, ")
	assert.Contains(t, p.Instruction, "use the main wall color for all walls")
}

func TestBuildMaskScenario(t *testing.T) {
	mask := Image{Data: []byte("png"), MIME: "image/png"}
	p, err := Build(Input{
		Base:    basePhoto(),
		Colors:  domain.DefaultColors(),
		Enabled: domain.EnabledOnly([]domain.ExteriorPart{domain.PartDoor}),
		Mask:    &mask,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeMask, p.Mode)
	require.Len(t, p.Images, 2)
	assert.Equal(t, basePhoto(), p.Images[0])
	assert.Equal(t, mask, p.Images[1])

	for _, part := range domain.AllParts() {
		assert.Contains(t, p.Instruction, "mask color "+part.LegendHex()+" corresponds to "+part.Label())
	}
	assert.Equal(t, []string{"- The main entrance door(s): #374151"}, colorLines(p.Instruction))
	assert.NotContains(t, p.Instruction, "use the main wall color for all walls")
}

func TestBuildReferenceMode(t *testing.T) {
	ref := Image{Data: []byte("ref"), MIME: "image/jpeg"}
	p, err := Build(Input{
		Base:      basePhoto(),
		Colors:    domain.DefaultColors(),
		Enabled:   domain.DefaultEnabled(),
		Reference: &ref,
		Note:      "  make it warm  ",
		Logo:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, ModeReference, p.Mode)
	require.Len(t, p.Images, 2)
	assert.Equal(t, ref, p.Images[1])
	assert.Contains(t, p.Instruction, "style reference")
	assert.Contains(t, p.Instruction, "materials and finishes")
	assert.Contains(t, p.Instruction, `follow this specific user instruction: "  make it warm  "`)
	assert.Contains(t, p.Instruction, `monogram "S/J"`)
	assert.Contains(t, p.Instruction, "#cccccc")
	assert.Contains(t, p.Instruction, "other than the specified 'S/J' monogram")
}

func TestNoteIsInsertedVerbatim(t *testing.T) {
	note := "Paint the \"gate\" C:\\path too\nsecond line"
	text := BuildInstruction(PlainMode{Colors: Project(domain.DefaultColors(), domain.DefaultEnabled())}, note, false)
	assert.Contains(t, text, "follow this specific user instruction: \""+note+"\"\n")

	text = BuildInstruction(PlainMode{Colors: Project(domain.DefaultColors(), domain.DefaultEnabled())}, " \n\t", false)
	assert.NotContains(t, text, "specific user instruction")
}

func TestBuildWithoutBasePhoto(t *testing.T) {
	_, err := Build(Input{Colors: domain.DefaultColors(), Enabled: domain.DefaultEnabled()})
	assert.ErrorIs(t, err, domain.ErrNoBasePhoto)
}

func TestPlainModeFoliageDropsPlantPreservation(t *testing.T) {
	enabled := domain.EnabledOnly([]domain.ExteriorPart{domain.PartWall, domain.PartFoliage})
	text := BuildInstruction(PlainMode{Colors: Project(domain.DefaultColors(), enabled), Ignored: IgnoredPhrases(enabled)}, "", false)
	assert.NotContains(t, text, "plants, or pathways")
	assert.NotContains(t, text, "the plants and foliage")

	text = BuildInstruction(PlainMode{Colors: Project(domain.DefaultColors(), domain.DefaultEnabled())}, "", false)
	assert.Contains(t, text, "plants, or pathways")
}

func TestInputCloneIsIndependent(t *testing.T) {
	mask := Image{Data: []byte{1, 2, 3}, MIME: "image/png"}
	in := Input{Base: basePhoto(), Colors: domain.DefaultColors(), Enabled: domain.DefaultEnabled(), Mask: &mask}
	cp := in.Clone()

	in.Colors[domain.PartWall] = "#000000"
	in.Enabled[domain.PartDoor] = true
	in.Mask.Data[0] = 9
	in.Base.Data[0] = 'X'

	assert.Equal(t, "#f3f4f6", cp.Colors[domain.PartWall])
	assert.False(t, cp.Enabled[domain.PartDoor])
	assert.Equal(t, byte(1), cp.Mask.Data[0])
	assert.Equal(t, byte('j'), cp.Base.Data[0])
}

func TestExtract(t *testing.T) {
	img := &Image{Data: []byte("out"), MIME: "image/png"}
	other := &Image{Data: []byte("second"), MIME: "image/png"}

	_, err := Extract(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyResult)

	_, err = Extract(&Response{})
	assert.ErrorIs(t, err, domain.ErrEmptyResult)

	_, err = Extract(&Response{Candidates: []Candidate{{Parts: []Part{{Text: "sorry"}}}}})
	assert.ErrorIs(t, err, domain.ErrEmptyResult)

	got, err := Extract(&Response{Candidates: []Candidate{
		{Parts: []Part{{Text: "here you go"}}},
		{Parts: []Part{{Text: "preface"}, {Inline: img}, {Inline: other}}},
	}})
	require.NoError(t, err)
	assert.Equal(t, *img, got)
}

type fakeGenerator struct {
	calls int
	req   Request
	resp  *Response
	err   error
}

func (f *fakeGenerator) GenerateImage(_ context.Context, req Request) (*Response, error) {
	f.calls++
	f.req = req
	return f.resp, f.err
}

func (f *fakeGenerator) Model() string { return "fake-model" }

func testInput() Input {
	return Input{Base: basePhoto(), Colors: domain.DefaultColors(), Enabled: domain.DefaultEnabled()}
}

func TestComposerGenerateSuccess(t *testing.T) {
	out := &Image{Data: []byte("png"), MIME: "image/png"}
	gen := &fakeGenerator{resp: &Response{Candidates: []Candidate{{Parts: []Part{{Inline: out}}}}}}
	c := NewComposer(gen, zerolog.Nop())

	res, err := c.Generate(context.Background(), testInput())
	require.NoError(t, err)
	assert.Equal(t, *out, res.Image)
	assert.Equal(t, ModePlain, res.Mode)
	assert.Contains(t, res.Instruction, "All general exterior walls")
	assert.Equal(t, 1, gen.calls)
	require.Len(t, gen.req.Images, 1)
	assert.Equal(t, res.Instruction, gen.req.Instruction)
	assert.Equal(t, "fake-model", c.Model())
}

func TestComposerEmptyResponseFails(t *testing.T) {
	gen := &fakeGenerator{resp: &Response{}}
	c := NewComposer(gen, zerolog.Nop())

	in := testInput()
	res, err := c.Generate(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.ErrorIs(t, err, domain.ErrEmptyResult)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, domain.DefaultColors(), in.Colors)
	assert.True(t, res.Image.Empty())
	assert.Equal(t, ModePlain, res.Mode)
	assert.NotEmpty(t, res.Instruction)
}

func TestComposerTransportErrorWrapped(t *testing.T) {
	cause := errors.New("connection reset")
	gen := &fakeGenerator{err: cause}
	c := NewComposer(gen, zerolog.Nop())

	_, err := c.Generate(context.Background(), testInput())
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, gen.calls)
}

func TestComposerMissingCredentialPassesThrough(t *testing.T) {
	gen := &fakeGenerator{err: domain.ErrMissingCredential}
	c := NewComposer(gen, zerolog.Nop())

	_, err := c.Generate(context.Background(), testInput())
	assert.Equal(t, domain.ErrMissingCredential, err)
	assert.NotErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestComposerNoBasePhotoSkipsGenerator(t *testing.T) {
	gen := &fakeGenerator{}
	c := NewComposer(gen, zerolog.Nop())

	_, err := c.Generate(context.Background(), Input{})
	assert.ErrorIs(t, err, domain.ErrNoBasePhoto)
	assert.Zero(t, gen.calls)
}
