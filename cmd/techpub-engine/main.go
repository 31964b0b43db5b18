// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the techpub-engine CLI.
// See docs/ARCHITECTURE § Pipeline Interface.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/techpub-engine/internal/ai"
	"github.com/pdiddy/techpub-engine/internal/brex"
	"github.com/pdiddy/techpub-engine/internal/dmc"
	"github.com/pdiddy/techpub-engine/internal/secrets"
	"github.com/pdiddy/techpub-engine/internal/store"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns the secret value for key if it exists, or fallback
// otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the techpub-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "techpub-engine",
	Short: "Validation, code generation, and publication for technical documentation",
	Long: `techpub-engine manages structured technical documentation modules: it
ingests source text into coded data modules, validates them against
configurable business rules, maintains cross-reference sets, and compiles
publication archives in markup, hypertext, and paginated formats.

Each operation is a subcommand: ingest, modules, icn, validate, refs, pm,
publish, and rules. State lives in a single SQLite document store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./techpub-engine.yaml or ~/.config/techpub-engine/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "document store path (default: data/techpub.db)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug diagnostics on stderr")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("techpub-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "techpub-engine"))
		}
	}

	viper.SetEnvPrefix("TECHPUB_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openStore opens the document store and seeds the default rule set and
// domain configuration on first use. Existing records are never overwritten.
func openStore(ctx context.Context) (*store.Store, error) {
	path, _ := rootCmd.PersistentFlags().GetString("db")
	if path == "" {
		path = viper.GetString("store.path")
	}

	st, err := store.NewStore(types.StoreConfig{Path: path})
	if err != nil {
		return nil, err
	}
	if err := st.EnsureDefaults(ctx, brex.Default(), dmc.DefaultDomainConfig()); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// logger returns the CLI's diagnostic logger. Warnings and up go to stderr;
// --verbose lowers the floor to debug.
func logger() *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	defaultOpenAIModel    = "gpt-4o"
	defaultCallTimeout    = 120 * time.Second
)

// textProvider builds the text backend selected in settings. API keys come
// from .secrets/ unless set in config.
func textProvider(settings types.Settings) (ai.TextProvider, error) {
	return ai.NewTextProvider(providerConfig(settings.TextProvider, settings.TextModel, "text"))
}

// visionProvider builds the vision backend selected in settings.
func visionProvider(settings types.Settings) (ai.VisionProvider, error) {
	return ai.NewVisionProvider(providerConfig(settings.VisionProvider, settings.VisionModel, "vision"))
}

func providerConfig(provider, model, section string) types.ProviderConfig {
	cfg := types.ProviderConfig{Provider: provider}
	cfg.Model = model
	cfg.MaxRetries = viper.GetInt(section + ".max_retries")
	cfg.APIKey = secretDefault(providerKeyName(provider), viper.GetString(section+".api_key"))
	cfg.Timeout = viper.GetDuration(section + ".timeout")
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultCallTimeout
	}
	if cfg.Model == "" {
		switch provider {
		case "anthropic":
			cfg.Model = defaultAnthropicModel
		case "openai":
			cfg.Model = defaultOpenAIModel
		}
	}
	return cfg
}

func providerKeyName(provider string) string {
	switch provider {
	case "anthropic":
		return "anthropic-api-key"
	case "openai":
		return "openai-api-key"
	}
	return ""
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
