// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/techpub-engine/internal/httputil"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

// anthropicAPIURL is the Anthropic Messages API endpoint. Package-level var
// for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

const anthropicVersion = "2023-06-01"

// AnthropicText processes text through the Anthropic Messages API.
type AnthropicText struct {
	APIKey     string
	Model      string
	MaxRetries int
	Client     *http.Client
}

// anthropicRequest is the request body for the Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the conversation. Content is a
// plain string for text tasks and a block list for vision tasks.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// anthropicContentBlock is one element of a block-list message.
type anthropicContentBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

// anthropicImageSource is the inline-image payload of a vision block.
type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

// anthropicResponse is the response body from the Messages API.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// anthropicContent is a content block in the API response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (p *AnthropicText) Classify(ctx context.Context, text string) (types.Classification, error) {
	prompt, err := renderPrompt(classifyPromptTmpl, truncate(text, classifyInputLimit))
	if err != nil {
		return types.Classification{}, err
	}
	raw, err := p.complete(ctx, prompt, 500)
	if err != nil {
		return types.Classification{}, err
	}
	var c types.Classification
	if err := decodeResult(raw, &c); err != nil {
		return types.Classification{}, err
	}
	return c, nil
}

func (p *AnthropicText) Extract(ctx context.Context, text string) (types.Extraction, error) {
	prompt, err := renderPrompt(extractPromptTmpl, text)
	if err != nil {
		return types.Extraction{}, err
	}
	raw, err := p.complete(ctx, prompt, 2000)
	if err != nil {
		return types.Extraction{}, err
	}
	var ex types.Extraction
	if err := decodeResult(raw, &ex); err != nil {
		return types.Extraction{}, err
	}
	return ex, nil
}

func (p *AnthropicText) RewriteSimplified(ctx context.Context, text string) (types.Rewrite, error) {
	prompt, err := renderPrompt(rewritePromptTmpl, text)
	if err != nil {
		return types.Rewrite{}, err
	}
	raw, err := p.complete(ctx, prompt, 1500)
	if err != nil {
		return types.Rewrite{}, err
	}
	var rw types.Rewrite
	if err := decodeResult(raw, &rw); err != nil {
		return types.Rewrite{}, err
	}
	return rw, nil
}

func (p *AnthropicText) Review(ctx context.Context, text string) (types.Review, error) {
	prompt, err := renderPrompt(reviewPromptTmpl, text)
	if err != nil {
		return types.Review{}, err
	}
	raw, err := p.complete(ctx, prompt, 1500)
	if err != nil {
		return types.Review{}, err
	}
	var rv types.Review
	if err := decodeResult(raw, &rv); err != nil {
		return types.Review{}, err
	}
	return rv, nil
}

func (p *AnthropicText) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return anthropicComplete(ctx, p.Client, p.APIKey, p.MaxRetries, anthropicRequest{
		Model:       p.Model,
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
}

// AnthropicVision annotates illustrations through the Anthropic Messages API.
type AnthropicVision struct {
	APIKey     string
	Model      string
	MaxRetries int
	Client     *http.Client
}

const (
	captionVisionPrompt  = "Generate a technical caption for this illustration. Focus on technical accuracy and clarity. Respond with the caption text only."
	objectsVisionPrompt  = "Identify all technical objects, components, and parts visible in this image. Respond with a JSON array of object names and no text outside it."
	hotspotsVisionPrompt = `Identify key areas in this technical image that should have interactive hotspots. Respond with JSON and no text outside it: [{"x": 100, "y": 150, "width": 50, "height": 30, "description": "component name"}]`
)

func (p *AnthropicVision) Caption(ctx context.Context, imageData string) (string, error) {
	raw, err := p.complete(ctx, captionVisionPrompt, imageData, 200)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (p *AnthropicVision) Objects(ctx context.Context, imageData string) ([]string, error) {
	raw, err := p.complete(ctx, objectsVisionPrompt, imageData, 300)
	if err != nil {
		return nil, err
	}
	var objects []string
	if err := decodeResult(raw, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

func (p *AnthropicVision) Hotspots(ctx context.Context, imageData string) ([]types.Hotspot, error) {
	raw, err := p.complete(ctx, hotspotsVisionPrompt, imageData, 500)
	if err != nil {
		return nil, err
	}
	var hotspots []types.Hotspot
	if err := decodeResult(raw, &hotspots); err != nil {
		return nil, err
	}
	return hotspots, nil
}

func (p *AnthropicVision) complete(ctx context.Context, prompt, imageData string, maxTokens int) (string, error) {
	blocks := []anthropicContentBlock{
		{Type: "text", Text: prompt},
		{Type: "image", Source: &anthropicImageSource{
			Type:      "base64",
			MediaType: imageMediaType(imageData),
			Data:      imageData,
		}},
	}
	return anthropicComplete(ctx, p.Client, p.APIKey, p.MaxRetries, anthropicRequest{
		Model:       p.Model,
		MaxTokens:   maxTokens,
		Temperature: 0.1,
		Messages:    []anthropicMessage{{Role: "user", Content: blocks}},
	})
}

// anthropicComplete posts one Messages API request and returns the first
// text block of the response.
func anthropicComplete(ctx context.Context, client *http.Client, apiKey string, maxRetries int, reqBody anthropicRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Anthropic API returned %d: %s", resp.StatusCode, string(body))
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", fmt.Errorf("decoding Anthropic response: %w", err)
	}

	for _, block := range aResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in Anthropic API response")
}
