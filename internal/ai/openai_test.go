// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// openaiTextResponse builds a chat completions response whose single choice
// carries the given payload.
func openaiTextResponse(payload string) string {
	resp := openaiResponse{Choices: []openaiChoice{{Message: openaiChoiceMessage{Content: payload}}}}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestOpenAIExtractRequest(t *testing.T) {
	var capturedReq *http.Request
	var capturedBody openaiRequest
	payload := `{"sections": [{"type": "paragraph", "title": "Section 1", "content": "Drain the system.", "level": 1}], "references": [{"type": "dmc", "reference": "DMC-TPUB-A-00-00-00-00A-030A-A-00"}], "warnings": ["High pressure."], "cautions": []}`
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		if err := json.NewDecoder(r.Body).Decode(&capturedBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, openaiTextResponse(payload))
	}))
	defer ts.Close()

	old := openaiAPIURL
	openaiAPIURL = ts.URL
	defer func() { openaiAPIURL = old }()

	p := &OpenAIText{APIKey: "sk-test", Model: "test-model", Client: ts.Client()}
	ex, err := p.Extract(context.Background(), "Drain the system before maintenance.")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if got := capturedReq.Header.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("Authorization header = %q, want %q", got, "Bearer sk-test")
	}
	if capturedBody.Model != "test-model" {
		t.Errorf("request model = %q, want %q", capturedBody.Model, "test-model")
	}
	if capturedBody.MaxTokens != 2000 {
		t.Errorf("request max_tokens = %d, want 2000", capturedBody.MaxTokens)
	}

	if len(ex.Sections) != 1 || ex.Sections[0].Content != "Drain the system." {
		t.Errorf("Sections = %+v, want one drained-system section", ex.Sections)
	}
	if len(ex.References) != 1 || ex.References[0].Type != "dmc" {
		t.Errorf("References = %+v, want one dmc reference", ex.References)
	}
	if len(ex.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one entry", ex.Warnings)
	}
}

func TestOpenAIErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "bad key"}}`)
	}))
	defer ts.Close()

	old := openaiAPIURL
	openaiAPIURL = ts.URL
	defer func() { openaiAPIURL = old }()

	p := &OpenAIText{APIKey: "bad", Model: "m", Client: ts.Client()}
	_, err := p.Classify(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "OpenAI API returned 401") {
		t.Errorf("error = %q, want substring 'OpenAI API returned 401'", err.Error())
	}
}

func TestOpenAINoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer ts.Close()

	old := openaiAPIURL
	openaiAPIURL = ts.URL
	defer func() { openaiAPIURL = old }()

	p := &OpenAIText{APIKey: "k", Model: "m", Client: ts.Client()}
	_, err := p.Review(context.Background(), "text")
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
	if !strings.Contains(err.Error(), "no choices") {
		t.Errorf("error = %q, want substring 'no choices'", err.Error())
	}
}

func TestOpenAIVisionObjects(t *testing.T) {
	var capturedRaw map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&capturedRaw); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, openaiTextResponse(`["hydraulic pump", "drain valve", "pressure line"]`))
	}))
	defer ts.Close()

	old := openaiAPIURL
	openaiAPIURL = ts.URL
	defer func() { openaiAPIURL = old }()

	p := &OpenAIVision{APIKey: "k", Model: "m", Client: ts.Client()}
	objects, err := p.Objects(context.Background(), testPNG())
	if err != nil {
		t.Fatalf("Objects: %v", err)
	}
	if len(objects) != 3 {
		t.Fatalf("got %d objects, want 3", len(objects))
	}
	if objects[0] != "hydraulic pump" {
		t.Errorf("objects[0] = %q, want %q", objects[0], "hydraulic pump")
	}

	// The request must carry the image as a data URL part.
	messages := capturedRaw["messages"].([]any)
	parts := messages[0].(map[string]any)["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("got %d content parts, want 2", len(parts))
	}
	image := parts[1].(map[string]any)
	if image["type"] != "image_url" {
		t.Errorf("parts[1].type = %v, want image_url", image["type"])
	}
	url := image["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("image URL prefix = %q, want data:image/png;base64,", url[:min(len(url), 30)])
	}
}
