package ai

import (
	"encoding/base64"
	"testing"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

func TestNewTextProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{"local", "ai.LocalText", false},
		{"", "ai.LocalText", false},
		{"anthropic", "*ai.AnthropicText", false},
		{"openai", "*ai.OpenAIText", false},
		{"granite", "", true},
	}

	for _, tt := range tests {
		t.Run("provider "+tt.provider, func(t *testing.T) {
			p, err := NewTextProvider(types.ProviderConfig{Provider: tt.provider})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %T", p)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTextProvider: %v", err)
			}
			switch tt.want {
			case "ai.LocalText":
				if _, ok := p.(LocalText); !ok {
					t.Errorf("got %T, want %s", p, tt.want)
				}
			case "*ai.AnthropicText":
				if _, ok := p.(*AnthropicText); !ok {
					t.Errorf("got %T, want %s", p, tt.want)
				}
			case "*ai.OpenAIText":
				if _, ok := p.(*OpenAIText); !ok {
					t.Errorf("got %T, want %s", p, tt.want)
				}
			}
		})
	}
}

func TestNewVisionProvider(t *testing.T) {
	if _, err := NewVisionProvider(types.ProviderConfig{Provider: "granite"}); err == nil {
		t.Error("expected error for unknown provider")
	}

	p, err := NewVisionProvider(types.ProviderConfig{})
	if err != nil {
		t.Fatalf("NewVisionProvider: %v", err)
	}
	if _, ok := p.(LocalVision); !ok {
		t.Errorf("default provider = %T, want ai.LocalVision", p)
	}
}

func TestImageMediaType(t *testing.T) {
	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 32)...)
	jpeg := append([]byte{0xff, 0xd8, 0xff, 0xe0}, make([]byte, 32)...)

	tests := []struct {
		name string
		data string
		want string
	}{
		{"png magic", base64.StdEncoding.EncodeToString(png), "image/png"},
		{"jpeg magic", base64.StdEncoding.EncodeToString(jpeg), "image/jpeg"},
		{"plain text defaults to jpeg", base64.StdEncoding.EncodeToString([]byte("not an image")), "image/jpeg"},
		{"undecodable defaults to jpeg", "!!!not base64!!!", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := imageMediaType(tt.data); got != tt.want {
				t.Errorf("imageMediaType = %q, want %q", got, tt.want)
			}
		})
	}
}
