package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "techpub-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for components that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// ProviderConfig selects and configures one AI provider (text or vision).
type ProviderConfig struct {
	AIConfig `yaml:",inline"`

	// Provider names the backend: anthropic, openai, or local.
	Provider string `json:"provider" yaml:"provider"`

	// Timeout bounds each provider call. Zero means no per-call deadline
	// beyond the HTTP client's.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// StoreConfig holds settings for the document store.
type StoreConfig struct {
	// Path is the SQLite database file (default "data/techpub.db").
	Path string `json:"path" yaml:"path"`
}

// ValidationConfig holds settings for the validation orchestrator.
type ValidationConfig struct {
	// ReviewEnabled turns the external semantic-review step on.
	ReviewEnabled bool `json:"review_enabled" yaml:"review_enabled"`

	// ReviewTimeout bounds the semantic-review call (default 30s). A
	// timed-out review degrades to "no issues reported".
	ReviewTimeout time.Duration `json:"review_timeout" yaml:"review_timeout"`
}

// PublishConfig holds settings for the publication packager.
type PublishConfig struct {
	// WorkDir is the base directory for staging and archives
	// (default "publications").
	WorkDir string `json:"work_dir" yaml:"work_dir"`
}

// IngestConfig holds settings for the ingestion pipeline.
type IngestConfig struct {
	// DefaultSecurity is the classification assigned to new modules.
	DefaultSecurity SecurityLevel `json:"default_security" yaml:"default_security"`
}

// EngineConfig groups all component configurations.
type EngineConfig struct {
	Store      StoreConfig      `json:"store" yaml:"store"`
	Text       ProviderConfig   `json:"text" yaml:"text"`
	Vision     ProviderConfig   `json:"vision" yaml:"vision"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Publish    PublishConfig    `json:"publish" yaml:"publish"`
	Ingest     IngestConfig     `json:"ingest" yaml:"ingest"`
}
