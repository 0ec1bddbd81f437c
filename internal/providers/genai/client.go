package genai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	sdk "google.golang.org/genai"

	"housepaint/internal/compose"
	"housepaint/internal/domain"
	"housepaint/internal/infra"
)

// DefaultModel is the image-capable Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash-image"

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client sends composed repaint requests to Gemini through the genai SDK. A
// client without an API key is valid to construct but refuses every call with
// domain.ErrMissingCredential before touching the network.
type Client struct {
	apiKey string
	model  string
	sdk    *sdk.Client
	logger *infra.Logger
}

// NewClient constructs a Gemini client. Callers may provide a nil HTTP
// client; one with a generous timeout is created since image edits are slow.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}

	logger := opts.Logger
	if logger == nil {
		l := zerolog.Nop()
		logger = &l
	}

	c := &Client{
		apiKey: strings.TrimSpace(opts.APIKey),
		model:  model,
		logger: logger,
	}
	if c.apiKey == "" {
		return c, nil
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	cfg := &sdk.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    sdk.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.HTTPOptions = sdk.HTTPOptions{BaseURL: strings.TrimRight(base, "/") + "/"}
	}

	client, err := sdk.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: new client: %w", err)
	}
	c.sdk = client
	return c, nil
}

// Model returns the configured Gemini model identifier.
func (c *Client) Model() string {
	return c.model
}

// HasCredential reports whether an API key was configured.
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// GenerateImage sends one user content made of the request images, in order,
// followed by the instruction text, and asks for image-only output.
func (c *Client) GenerateImage(ctx context.Context, req compose.Request) (*compose.Response, error) {
	if c.apiKey == "" || c.sdk == nil {
		return nil, domain.ErrMissingCredential
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parts := make([]*sdk.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		mime := img.MIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, &sdk.Part{InlineData: &sdk.Blob{MIMEType: mime, Data: img.Data}})
	}
	parts = append(parts, sdk.NewPartFromText(req.Instruction))

	contents := []*sdk.Content{sdk.NewContentFromParts(parts, sdk.RoleUser)}
	cfg := &sdk.GenerateContentConfig{ResponseModalities: []string{"IMAGE"}}

	start := time.Now()
	res, err := c.sdk.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("genai: generate content: %w", err)
	}

	out := convertResponse(res)
	c.logger.Debug().
		Str("request_id", req.RequestID).
		Str("model", c.model).
		Int("images", len(req.Images)).
		Int("candidates", len(out.Candidates)).
		Dur("elapsed", time.Since(start)).
		Msg("genai: generate content")
	return out, nil
}

func convertResponse(res *sdk.GenerateContentResponse) *compose.Response {
	out := &compose.Response{}
	if res == nil {
		return out
	}
	for _, cand := range res.Candidates {
		var converted compose.Candidate
		if cand != nil && cand.Content != nil {
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				part := compose.Part{Text: p.Text}
				if p.InlineData != nil && len(p.InlineData.Data) > 0 {
					part.Inline = &compose.Image{Data: p.InlineData.Data, MIME: p.InlineData.MIMEType}
				}
				converted.Parts = append(converted.Parts, part)
			}
		}
		out.Candidates = append(out.Candidates, converted)
	}
	return out
}
