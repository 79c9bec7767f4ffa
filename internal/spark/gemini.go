package spark

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"makeros/internal/core"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	suggestionPrompt = "Generate a creative makerspace project idea. Return instructions as a numbered list inside the description or a separate instructions field."
)

var ErrEmptyResponse = errors.New("gemini: empty response")

// GeminiProvider calls the Gemini generateContent REST endpoint with a JSON
// response schema, so the model replies with a parseable project object.
type GeminiProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

func NewGeminiProvider(apiKey, model string) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// suggestionSchema constrains the model output to the suggestion shape. Every
// field is required; a response missing one fails validation downstream.
var suggestionSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"title": {"type": "STRING"},
		"description": {"type": "STRING"},
		"materials": {"type": "ARRAY", "items": {"type": "STRING"}},
		"difficulty": {"type": "STRING"},
		"vibe": {"type": "STRING"}
	},
	"required": ["title", "description", "materials", "difficulty", "vibe"]
}`)

func (g *GeminiProvider) Generate(ctx context.Context) (core.SuggestedProject, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: suggestionPrompt}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   suggestionSchema,
		},
	})
	if err != nil {
		return core.SuggestedProject{}, fmt.Errorf("gemini: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return core.SuggestedProject{}, fmt.Errorf("gemini: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return core.SuggestedProject{}, fmt.Errorf("gemini: call: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return core.SuggestedProject{}, fmt.Errorf("gemini: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.SuggestedProject{}, fmt.Errorf("gemini: status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var parsed geminiResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return core.SuggestedProject{}, fmt.Errorf("gemini: decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return core.SuggestedProject{}, ErrEmptyResponse
	}

	var project core.SuggestedProject
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if err := json.Unmarshal([]byte(text), &project); err != nil {
		return core.SuggestedProject{}, fmt.Errorf("gemini: decode suggestion: %w", err)
	}
	return project, nil
}
