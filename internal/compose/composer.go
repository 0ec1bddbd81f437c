package compose

import (
	"context"
	"errors"
	"fmt"
	"time"

	"housepaint/internal/domain"
	"housepaint/internal/infra"
	"housepaint/internal/metrics"
)

// Composer turns session state into exactly one generation call.
type Composer struct {
	gen Generator
	log infra.Logger
}

// NewComposer wires a generator.
func NewComposer(gen Generator, log infra.Logger) *Composer {
	return &Composer{gen: gen, log: log}
}

// Model reports the generator's model name.
func (c *Composer) Model() string {
	return c.gen.Model()
}

// Generate clones in, builds the payload and invokes the generator once. A
// missing credential is returned as is; every other failure, including an
// empty response, is reported as domain.ErrGenerationFailed wrapping the
// cause. The returned Result carries mode and instruction even on failure.
func (c *Composer) Generate(ctx context.Context, in Input) (Result, error) {
	snapshot := in.Clone()
	payload, err := Build(snapshot)
	if err != nil {
		return Result{}, err
	}
	res := Result{Mode: payload.Mode, Instruction: payload.Instruction}

	start := time.Now()
	resp, err := c.gen.GenerateImage(ctx, Request{
		Images:      payload.Images,
		Instruction: payload.Instruction,
		RequestID:   snapshot.RequestID,
	})
	if err == nil {
		res.Image, err = Extract(resp)
	}
	res.Elapsed = time.Since(start)

	status := domain.GenerationSucceeded
	if err != nil {
		status = domain.GenerationFailed
	}
	metrics.ObserveGeneration(string(payload.Mode), string(status), res.Elapsed)

	if err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return res, err
		}
		c.log.Error().Err(err).
			Str("request_id", snapshot.RequestID).
			Str("mode", string(payload.Mode)).
			Dur("elapsed", res.Elapsed).
			Msg("image generation failed")
		return res, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	c.log.Info().
		Str("request_id", snapshot.RequestID).
		Str("mode", string(payload.Mode)).
		Int("bytes", len(res.Image.Data)).
		Dur("elapsed", res.Elapsed).
		Msg("image generated")
	return res, nil
}

// Extract returns the first inline image of the first candidate that carries
// one.
func Extract(resp *Response) (Image, error) {
	if resp == nil {
		return Image{}, domain.ErrEmptyResult
	}
	for _, cand := range resp.Candidates {
		for _, part := range cand.Parts {
			if part.Inline != nil && len(part.Inline.Data) > 0 {
				return *part.Inline, nil
			}
		}
	}
	return Image{}, domain.ErrEmptyResult
}
