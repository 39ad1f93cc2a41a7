package enhance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-3-flash-preview"

// ErrNoCredential is returned by Unavailable when no API key was configured.
var ErrNoCredential = errors.New("no API key configured")

// GenAI generates text with Google's Gemini API.
type GenAI struct {
	client *genai.Client
	model  string
}

// GenAIOptions configures NewGenAI.
type GenAIOptions struct {
	APIKey string
	Model  string
	// Timeout bounds each HTTP request; zero leaves it to the client default.
	Timeout time.Duration
	// BaseURL overrides the API endpoint (proxies, tests).
	BaseURL string
}

// NewGenAI creates a Gemini-backed generator.
func NewGenAI(ctx context.Context, opt GenAIOptions) (*GenAI, error) {
	if opt.APIKey == "" {
		return nil, ErrNoCredential
	}
	model := opt.Model
	if model == "" {
		model = DefaultModel
	}
	cfg := &genai.ClientConfig{
		APIKey:  opt.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opt.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opt.Timeout}
	}
	if opt.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opt.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GenAI{client: client, model: model}, nil
}

func (g *GenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	return resp.Text(), nil
}

// Name returns the generator name.
func (g *GenAI) Name() string {
	return fmt.Sprintf("genai:%s", g.model)
}

// Unavailable always fails with Err. It stands in when the real generator
// could not be built so the enhancer still degrades to the original text.
type Unavailable struct {
	Err error
}

func (u Unavailable) Generate(context.Context, string) (string, error) {
	if u.Err == nil {
		return "", ErrNoCredential
	}
	return "", u.Err
}
