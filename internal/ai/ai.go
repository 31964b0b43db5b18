// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ai implements the text and vision provider contracts used by
// ingestion, validation, and illustration annotation. Three backends are
// available: anthropic and openai over HTTP, and a deterministic local
// fallback for air-gapped deployments and tests. See docs/ARCHITECTURE
// § AI Providers.
package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// TextProvider is the contract for AI text services. Implementations return
// an error for transport failures and malformed payloads; callers decide
// whether the result is structurally required or can degrade to defaults.
type TextProvider interface {
	// Classify determines the module type and title for raw source text.
	Classify(ctx context.Context, text string) (types.Classification, error)

	// Extract breaks source text into sections, references, and notices.
	Extract(ctx context.Context, text string) (types.Extraction, error)

	// RewriteSimplified produces the simplified-language rendition of module
	// text together with its readability score.
	RewriteSimplified(ctx context.Context, text string) (types.Rewrite, error)

	// Review reports advisory issues with module content.
	Review(ctx context.Context, text string) (types.Review, error)
}

// VisionProvider is the contract for AI vision services operating on
// base64-encoded image data.
type VisionProvider interface {
	// Caption generates an illustration caption.
	Caption(ctx context.Context, imageData string) (string, error)

	// Objects lists the components visible in the image.
	Objects(ctx context.Context, imageData string) ([]string, error)

	// Hotspots suggests callout regions for the image.
	Hotspots(ctx context.Context, imageData string) ([]types.Hotspot, error)
}

// NewTextProvider returns the text provider named by cfg.Provider. An empty
// name selects the local provider.
func NewTextProvider(cfg types.ProviderConfig) (TextProvider, error) {
	switch cfg.Provider {
	case "anthropic":
		return &AnthropicText{APIKey: cfg.APIKey, Model: cfg.Model, MaxRetries: cfg.MaxRetries, Client: newClient(cfg)}, nil
	case "openai":
		return &OpenAIText{APIKey: cfg.APIKey, Model: cfg.Model, MaxRetries: cfg.MaxRetries, Client: newClient(cfg)}, nil
	case "local", "":
		return LocalText{}, nil
	default:
		return nil, fmt.Errorf("unknown text provider %q", cfg.Provider)
	}
}

// NewVisionProvider returns the vision provider named by cfg.Provider. An
// empty name selects the local provider.
func NewVisionProvider(cfg types.ProviderConfig) (VisionProvider, error) {
	switch cfg.Provider {
	case "anthropic":
		return &AnthropicVision{APIKey: cfg.APIKey, Model: cfg.Model, MaxRetries: cfg.MaxRetries, Client: newClient(cfg)}, nil
	case "openai":
		return &OpenAIVision{APIKey: cfg.APIKey, Model: cfg.Model, MaxRetries: cfg.MaxRetries, Client: newClient(cfg)}, nil
	case "local", "":
		return LocalVision{}, nil
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Provider)
	}
}

func newClient(cfg types.ProviderConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// imageMediaType sniffs the media type of base64-encoded image data.
// Undecodable or unrecognized data is reported as image/jpeg.
func imageMediaType(imageData string) string {
	head := make([]byte, 512)
	n, _ := io.ReadFull(base64.NewDecoder(base64.StdEncoding, strings.NewReader(imageData)), head)
	if n == 0 {
		return "image/jpeg"
	}
	if mt := http.DetectContentType(head[:n]); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/jpeg"
}
