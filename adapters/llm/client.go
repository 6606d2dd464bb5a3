// Package llm implements ports.LanguageService against the Gemini
// generateContent API. Every public method degrades to a deterministic
// fallback in its caller; this package only reports the failure.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"amira/internal"
	"amira/internal/config"
)

// textGenerator is the raw completion surface the service methods build on.
type textGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Service implements ports.LanguageService on top of a text generator.
type Service struct {
	gen    textGenerator
	logger *internal.Logger
}

// NewService creates the language service from configuration.
func NewService(cfg config.AIConfig, logger *internal.Logger) (*Service, error) {
	client, err := newGeminiClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Service{gen: client, logger: logger}, nil
}

// NewServiceWithGenerator wires an explicit generator; tests use this with
// MockGenerator.
func NewServiceWithGenerator(gen textGenerator, logger *internal.Logger) *Service {
	return &Service{gen: gen, logger: logger}
}

func newGeminiClient(cfg config.AIConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing Gemini API key")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiClient{
		APIKey:      cfg.APIKey,
		BaseURL:     baseURL,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}, nil
}

// MockGenerator is a canned text generator for testing
type MockGenerator struct {
	Response string // Set this for testing
	Error    error  // Set this to simulate errors
}

func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	// Default mock response
	return `{
		"primary_emotion": "sadness",
		"emotion_intensity": "medium",
		"mood_state": "low",
		"additional_observations": "mock analysis"
	}`, nil
}

// GeminiClient calls the generateContent endpoint
type GeminiClient struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

func (c *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	if strings.TrimSpace(c.Model) == "" {
		return "", fmt.Errorf("missing model")
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	// generateContent request (kept minimal: system instruction + one user turn)
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature     float64 `json:"temperature,omitempty"`
		MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	}
	type reqBody struct {
		SystemInstruction *content  `json:"system_instruction,omitempty"`
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
	}

	body := reqBody{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: genConfig{
			Temperature:     c.Temperature,
			MaxOutputTokens: maxTokens,
		},
	}
	if system != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: system}}}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	client := &http.Client{Timeout: c.Timeout}
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.BaseURL, "/"), c.Model, c.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(respRaw))
	}

	type respBody struct {
		Candidates []struct {
			Content struct {
				Parts []part `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	var decoded respBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini response missing candidates")
	}
	return decoded.Candidates[0].Content.Parts[0].Text, nil
}

// stripCodeFences removes a markdown code fence wrapper, which the model adds
// despite being asked for bare JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}
