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

// openaiAPIURL is the OpenAI chat completions endpoint. Package-level var
// for test substitution.
var openaiAPIURL = "https://api.openai.com/v1/chat/completions"

// OpenAIText processes text through the OpenAI chat completions API.
type OpenAIText struct {
	APIKey     string
	Model      string
	MaxRetries int
	Client     *http.Client
}

// openaiRequest is the request body for the chat completions API.
type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

// openaiMessage is a single message in the conversation. Content is a plain
// string for text tasks and a part list for vision tasks.
type openaiMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// openaiContentPart is one element of a part-list message.
type openaiContentPart struct {
	Type     string          `json:"type"`
	Text     string          `json:"text,omitempty"`
	ImageURL *openaiImageURL `json:"image_url,omitempty"`
}

// openaiImageURL carries an image as a data URL.
type openaiImageURL struct {
	URL string `json:"url"`
}

// openaiResponse is the response body from the chat completions API.
type openaiResponse struct {
	Choices []openaiChoice `json:"choices"`
}

// openaiChoice is one completion choice.
type openaiChoice struct {
	Message openaiChoiceMessage `json:"message"`
}

// openaiChoiceMessage is the assistant message of a choice.
type openaiChoiceMessage struct {
	Content string `json:"content"`
}

func (p *OpenAIText) Classify(ctx context.Context, text string) (types.Classification, error) {
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

func (p *OpenAIText) Extract(ctx context.Context, text string) (types.Extraction, error) {
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

func (p *OpenAIText) RewriteSimplified(ctx context.Context, text string) (types.Rewrite, error) {
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

func (p *OpenAIText) Review(ctx context.Context, text string) (types.Review, error) {
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

func (p *OpenAIText) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return openaiComplete(ctx, p.Client, p.APIKey, p.MaxRetries, openaiRequest{
		Model:       p.Model,
		Temperature: 0.1,
		MaxTokens:   maxTokens,
		Messages:    []openaiMessage{{Role: "user", Content: prompt}},
	})
}

// OpenAIVision annotates illustrations through the OpenAI chat completions API.
type OpenAIVision struct {
	APIKey     string
	Model      string
	MaxRetries int
	Client     *http.Client
}

func (p *OpenAIVision) Caption(ctx context.Context, imageData string) (string, error) {
	raw, err := p.complete(ctx, captionVisionPrompt, imageData, 200)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (p *OpenAIVision) Objects(ctx context.Context, imageData string) ([]string, error) {
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

func (p *OpenAIVision) Hotspots(ctx context.Context, imageData string) ([]types.Hotspot, error) {
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

func (p *OpenAIVision) complete(ctx context.Context, prompt, imageData string, maxTokens int) (string, error) {
	parts := []openaiContentPart{
		{Type: "text", Text: prompt},
		{Type: "image_url", ImageURL: &openaiImageURL{
			URL: fmt.Sprintf("data:%s;base64,%s", imageMediaType(imageData), imageData),
		}},
	}
	return openaiComplete(ctx, p.Client, p.APIKey, p.MaxRetries, openaiRequest{
		Model:       p.Model,
		Temperature: 0.1,
		MaxTokens:   maxTokens,
		Messages:    []openaiMessage{{Role: "user", Content: parts}},
	})
}

// openaiComplete posts one chat completions request and returns the first
// choice's message content.
func openaiComplete(ctx context.Context, client *http.Client, apiKey string, maxRetries int, reqBody openaiRequest) (string, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openaiAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := httputil.DoWithRetry(ctx, client, req, maxRetries)
	if err != nil {
		return "", fmt.Errorf("calling OpenAI API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("OpenAI API returned %d: %s", resp.StatusCode, string(body))
	}

	var oResp openaiResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", fmt.Errorf("decoding OpenAI response: %w", err)
	}

	if len(oResp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}

	return oResp.Choices[0].Message.Content, nil
}
