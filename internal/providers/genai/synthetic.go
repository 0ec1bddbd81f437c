package genai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strconv"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"housepaint/internal/compose"
	"housepaint/internal/infra"
)

// SyntheticModel names the deterministic local renderer.
const SyntheticModel = "synthetic"

// Synthetic renders deterministic placeholder repaints so the service can be
// exercised end to end without Gemini. It tints the base photo with the colors
// named in the instruction and overlays diagonal stripes.
type Synthetic struct {
	logger *infra.Logger
}

// NewSynthetic builds the placeholder generator.
func NewSynthetic(logger *infra.Logger) *Synthetic {
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}
	return &Synthetic{logger: logger}
}

// Model returns SyntheticModel.
func (s *Synthetic) Model() string {
	return SyntheticModel
}

var hexColorPattern = regexp.MustCompile(`: (#[0-9a-f]{6})`)

// GenerateImage returns a single-candidate response holding one PNG.
func (s *Synthetic) GenerateImage(ctx context.Context, req compose.Request) (*compose.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var base image.Image
	if len(req.Images) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(req.Images[0].Data)); err == nil {
			base = img
		}
	}

	seed := deterministicSeed(req.RequestID, req.Instruction, len(req.Images))
	var tints []color.NRGBA
	for _, m := range hexColorPattern.FindAllStringSubmatch(req.Instruction, -1) {
		tints = append(tints, parseHex(m[1]))
	}
	if len(tints) == 0 {
		tints = append(tints, colorFromSeed(seed, 0))
	}

	data, err := renderSyntheticImage(base, seed, tints)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("request_id", req.RequestID).
		Str("seed", seed).
		Int("tints", len(tints)).
		Msg("genai: generated synthetic repaint")

	return &compose.Response{Candidates: []compose.Candidate{{
		Parts: []compose.Part{{Inline: &compose.Image{Data: data, MIME: "image/png"}}},
	}}}, nil
}

const syntheticMaxEdge = 1024

func renderSyntheticImage(base image.Image, seed string, tints []color.NRGBA) ([]byte, error) {
	width, height := syntheticMaxEdge, syntheticMaxEdge
	if base != nil {
		b := base.Bounds()
		width, height = fitEdge(b.Dx(), b.Dy(), syntheticMaxEdge)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if base != nil {
		xdraw.ApproxBiLinear.Scale(img, img.Rect, base, base.Bounds(), xdraw.Src, nil)
	} else {
		draw.Draw(img, img.Rect, image.NewUniform(colorFromSeed(seed, 1)), image.Point{}, draw.Src)
	}

	band := maxInt(1, height/len(tints))
	for i, tint := range tints {
		wash := tint
		wash.A = 96
		rect := image.Rect(0, i*band, width, minInt(height, (i+1)*band))
		draw.Draw(img, rect, image.NewUniform(wash), image.Point{}, draw.Over)
	}

	diagonal := colorFromSeed(seed, 2)
	step := maxInt(16, width/32)
	for x0 := 0; x0 < width; x0 += step {
		for y := 0; y < height; y++ {
			x := x0 + y
			if x >= width {
				break
			}
			img.SetNRGBA(x, y, diagonal)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("genai: encode synthetic image: %w", err)
	}
	return buf.Bytes(), nil
}

func fitEdge(w, h, limit int) (int, int) {
	if w <= 0 || h <= 0 {
		return limit, limit
	}
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, maxInt(1, h*limit/w)
	}
	return maxInt(1, w*limit/h), limit
}

func parseHex(s string) color.NRGBA {
	return color.NRGBA{R: mustParseHexByte(s[1:3]), G: mustParseHexByte(s[3:5]), B: mustParseHexByte(s[5:7]), A: 255}
}

func colorFromSeed(seed string, shift int) color.NRGBA {
	if len(seed) < 6 {
		seed = "000000"
	}
	doubled := seed + seed
	start := (shift * 6) % len(seed)
	segment := doubled[start : start+6]
	return color.NRGBA{
		R: mustParseHexByte(segment[0:2]),
		G: mustParseHexByte(segment[2:4]),
		B: mustParseHexByte(segment[4:6]),
		A: 255,
	}
}

func mustParseHexByte(s string) uint8 {
	v, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0
	}
	return uint8(v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func deterministicSeed(parts ...any) string {
	hasher := sha256.New()
	for _, part := range parts {
		hasher.Write([]byte(fmt.Sprintf("%v", part)))
		hasher.Write([]byte{'|'})
	}
	return hex.EncodeToString(hasher.Sum(nil))[:16]
}
