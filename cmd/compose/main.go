// Command compose builds a repaint request from local files. With -dry-run it
// prints the instruction; otherwise it calls the configured provider and
// writes the generated image as PNG.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
	"time"

	"housepaint/internal/compose"
	"housepaint/internal/domain"
	"housepaint/internal/infra"
	"housepaint/internal/maskedit"
	"housepaint/internal/providers/genai"
	"housepaint/internal/upload"
)

// colorFlags collects repeated -color part=value flags.
type colorFlags map[domain.ExteriorPart]string

func (c colorFlags) String() string {
	parts := make([]string, 0, len(c))
	for p, v := range c {
		parts = append(parts, fmt.Sprintf("%s=%s", p, v))
	}
	return strings.Join(parts, ",")
}

func (c colorFlags) Set(raw string) error {
	name, value, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("expected part=color, got %q", raw)
	}
	part, err := domain.ParsePart(name)
	if err != nil {
		return err
	}
	if sw, ok := domain.FindSwatch(value); ok {
		value = sw.Hex
	}
	hex, err := domain.NormalizeHex(value)
	if err != nil {
		return err
	}
	c[part] = hex
	return nil
}

func main() {
	colors := colorFlags{}
	var (
		photoPath = flag.String("photo", "", "Base photo of the house (required)")
		maskPath  = flag.String("mask", "", "Color-coded mask PNG")
		refPath   = flag.String("reference", "", "Style reference photo")
		enable    = flag.String("enable", "", "Comma separated parts to paint besides the wall (ignored with -mask)")
		note      = flag.String("note", "", "Extra instruction for the model")
		logo      = flag.Bool("logo", false, "Add the S/J monogram")
		out       = flag.String("out", "result.png", "Output PNG path")
		dryRun    = flag.Bool("dry-run", false, "Print the mode and instruction without calling the provider")
		timeout   = flag.Duration("timeout", 3*time.Minute, "Generation timeout")
	)
	flag.Var(colors, "color", "Part color as part=#hex or part=<swatch name>; repeatable")
	flag.Parse()

	infra.LoadDotEnv()

	in, err := buildInput(*photoPath, *maskPath, *refPath, *enable, colors)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compose: %v\n", err)
		os.Exit(2)
	}
	in.Note = *note
	in.Logo = *logo

	if *dryRun {
		payload, err := compose.Build(in)
		if err != nil {
			fmt.Fprintf(os.Stderr, "compose: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("mode: %s\nimages: %d\n\n%s", payload.Mode, len(payload.Images), payload.Instruction)
		return
	}

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "compose: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "compose").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var gen compose.Generator
	if cfg.ImageProvider == infra.ProviderSynthetic {
		gen = genai.NewSynthetic(&logger)
	} else {
		gen, err = genai.NewClient(ctx, genai.Options{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Logger:  &logger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "compose: %v\n", err)
			os.Exit(1)
		}
	}

	res, err := compose.NewComposer(gen, logger).Generate(ctx, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compose: %v\n", err)
		os.Exit(1)
	}
	data, err := asPNG(res.Image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "compose: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "compose: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%s mode, %s)\n", *out, res.Mode, res.Elapsed.Round(time.Millisecond))
}

func readImage(path string) (upload.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return upload.Image{}, err
	}
	img, err := upload.Validate(data, "")
	if err != nil {
		return upload.Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func buildInput(photoPath, maskPath, refPath, enable string, colors colorFlags) (compose.Input, error) {
	if photoPath == "" {
		return compose.Input{}, domain.ErrNoBasePhoto
	}
	photo, err := readImage(photoPath)
	if err != nil {
		return compose.Input{}, err
	}
	in := compose.Input{
		Base:    compose.Image{Data: photo.Data, MIME: photo.MIME},
		Colors:  domain.DefaultColors(),
		Enabled: domain.DefaultEnabled(),
	}
	for p, hex := range colors {
		in.Colors[p] = hex
	}

	if maskPath != "" {
		data, err := os.ReadFile(maskPath)
		if err != nil {
			return compose.Input{}, err
		}
		exp, err := maskedit.Inspect(data)
		if err != nil {
			return compose.Input{}, err
		}
		if len(exp.Parts) > 0 {
			in.Mask = &compose.Image{Data: exp.PNG, MIME: "image/png"}
			in.Enabled = domain.EnabledOnly(exp.Parts)
		}
	} else if enable != "" {
		for _, name := range strings.Split(enable, ",") {
			p, err := domain.ParsePart(name)
			if err != nil {
				return compose.Input{}, err
			}
			in.Enabled[p] = true
		}
	}

	if refPath != "" {
		ref, err := readImage(refPath)
		if err != nil {
			return compose.Input{}, err
		}
		in.Reference = &compose.Image{Data: ref.Data, MIME: ref.MIME}
	}
	return in, nil
}

func asPNG(img compose.Image) ([]byte, error) {
	if img.MIME == "image/png" {
		return img.Data, nil
	}
	decoded, _, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, decoded); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
