// Package genai drafts task briefings through a Gemini-style generateContent endpoint.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/contentflow/internal/config"
)

// FallbackText is returned whenever a briefing cannot be generated.
const FallbackText = "Unable to generate the briefing automatically. Please write it manually."

const (
	temperature = 0.7
	topP        = 0.8
	topK        = 40
)

var errDisabled = errors.New("genai: no endpoint or api key configured")

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	TopK        int     `json:"topK"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client calls the text generation API with a fasthttp client.
type Client struct {
	http   *fasthttp.Client
	cfg    config.GenAIConfig
	logger *zap.Logger
}

type Option func(*Client)

// WithDial replaces the dialer of the underlying HTTP client.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) {
		c.http.Dial = dial
	}
}

func New(cfg config.GenAIConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	c := &Client{
		http: &fasthttp.Client{
			Name:                "contentflow-genai",
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		cfg:    cfg,
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate drafts a briefing and never fails: any error yields FallbackText.
func (c *Client) Generate(ctx context.Context, title, format, channel string) string {
	text, err := c.generate(ctx, Prompt(title, format, channel))
	if err != nil {
		c.logger.Warn("briefing generation failed",
			zap.String("model", c.cfg.Model),
			zap.String("title", title),
			zap.Error(err),
		)
		return FallbackText
	}
	return text
}

// Prompt builds the instruction sent to the model.
func Prompt(title, format, channel string) string {
	return fmt.Sprintf("Write a creative marketing briefing for a piece of content called %q.\n"+
		"Format: %s. Channel: %s.\n"+
		"The briefing must contain: Objective, Target audience, Visual references and Supporting copy.\n"+
		"Be professional and persuasive.", title, format, channel)
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	if !c.cfg.Enabled() {
		return "", errDisabled
	}

	payload, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature: temperature,
			TopP:        topP,
			TopK:        topK,
		},
	})
	if err != nil {
		return "", err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.endpoint())
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	req.SetBodyRaw(payload)

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return "", fmt.Errorf("genai request: %w", err)
	}
	if status := resp.StatusCode(); status < 200 || status > 299 {
		return "", fmt.Errorf("genai: unexpected status %d", status)
	}

	var out generateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("genai decode: %w", err)
	}
	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", errors.New("genai: empty candidate")
	}
	return text, nil
}

func (c *Client) endpoint() string {
	return strings.TrimRight(c.cfg.URL, "/") + "/models/" + c.cfg.Model + ":generateContent"
}
