package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"housepaint/internal/compose"
	"housepaint/internal/domain"
)

func writePNG(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestColorFlags(t *testing.T) {
	c := colorFlags{}
	if err := c.Set("door=#ABC"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set("roof=Terracotta"); err != nil {
		t.Fatalf("Set swatch: %v", err)
	}
	if c[domain.PartDoor] != "#aabbcc" || c[domain.PartRoof] != "#e2725b" {
		t.Fatalf("unexpected colors %v", c)
	}
	if err := c.Set("door"); err == nil {
		t.Fatal("expected error for missing value")
	}
	if err := c.Set("chimney=#fff"); err == nil {
		t.Fatal("expected error for unknown part")
	}
}

func TestBuildInputPlain(t *testing.T) {
	dir := t.TempDir()
	photo := writePNG(t, dir, "house.png", color.NRGBA{200, 200, 200, 255})

	in, err := buildInput(photo, "", "", "door,roof", colorFlags{domain.PartDoor: "#123456"})
	if err != nil {
		t.Fatalf("buildInput: %v", err)
	}
	if !in.Enabled[domain.PartWall] || !in.Enabled[domain.PartDoor] || !in.Enabled[domain.PartRoof] {
		t.Fatalf("unexpected toggles %v", in.Enabled)
	}
	if in.Colors[domain.PartDoor] != "#123456" {
		t.Fatalf("color not applied: %v", in.Colors)
	}
	if compose.SelectMode(in).Name() != compose.ModePlain {
		t.Fatalf("expected plain mode")
	}
}

func TestBuildInputMaskReplacesToggles(t *testing.T) {
	dir := t.TempDir()
	photo := writePNG(t, dir, "house.png", color.NRGBA{200, 200, 200, 255})
	mask := writePNG(t, dir, "mask.png", domain.PartWindow.LegendColor())

	in, err := buildInput(photo, mask, "", "door", nil)
	if err != nil {
		t.Fatalf("buildInput: %v", err)
	}
	if in.Mask == nil {
		t.Fatal("expected mask")
	}
	if in.Enabled[domain.PartWall] || !in.Enabled[domain.PartWindow] {
		t.Fatalf("unexpected toggles %v", in.Enabled)
	}
	if compose.SelectMode(in).Name() != compose.ModeMask {
		t.Fatalf("expected mask mode")
	}
}

func TestBuildInputRequiresPhoto(t *testing.T) {
	if _, err := buildInput("", "", "", "", nil); err != domain.ErrNoBasePhoto {
		t.Fatalf("expected ErrNoBasePhoto, got %v", err)
	}
}
