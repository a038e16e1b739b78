package main

import (
	"log"
	"log/slog"

	"github.com/bizvoice/intake/internal/config"
	"github.com/bizvoice/intake/internal/extract"
	"github.com/bizvoice/intake/internal/keyring"
	"github.com/bizvoice/intake/internal/logger"
	"github.com/bizvoice/intake/internal/server"
	"github.com/bizvoice/intake/internal/store"
	"github.com/bizvoice/intake/internal/transcribe"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	lgr := logger.SetupLogger(cfg)

	// Log startup information
	lgr.Info("Starting intake server",
		"env", cfg.Env,
		"port", cfg.Port,
		"data_dir", cfg.DataDir,
	)

	// API keys: environment variables take priority, fallback to keychain
	resolveAPIKeys(cfg, lgr)

	st, err := store.New(cfg.DataDir)
	if err != nil {
		lgr.Error("Failed to open session store", "error", err)
		log.Fatalf("Fatal: %v", err)
	}

	srv := server.New(
		cfg,
		lgr,
		st,
		transcribe.New(cfg.OpenAIAPIKey),
		extract.NewClient(cfg.AnthropicAPIKey),
	)

	if err := server.Run(srv); err != nil {
		lgr.Error("Failed to start server", "error", err)
		log.Fatalf("Fatal: %v", err)
	}
}

// resolveAPIKeys fills in missing API keys from the system keychain. The
// server still starts without them: transcription then fails per request
// and extraction falls back to pattern matching.
func resolveAPIKeys(cfg *config.Config, lgr *slog.Logger) {
	if cfg.OpenAIAPIKey == "" {
		if secret, err := keyring.Get(keyring.OpenAI); err == nil {
			cfg.OpenAIAPIKey = secret
		} else {
			lgr.Debug("keychain lookup failed", "key", "openai", "error", err)
		}
	}

	if cfg.AnthropicAPIKey == "" {
		if secret, err := keyring.Get(keyring.Anthropic); err == nil {
			cfg.AnthropicAPIKey = secret
		} else {
			lgr.Debug("keychain lookup failed", "key", "anthropic", "error", err)
		}
	}

	if cfg.OpenAIAPIKey == "" {
		lgr.Warn("OpenAI API key not configured; audio uploads will fail to transcribe")
	}

	if cfg.AnthropicAPIKey == "" {
		lgr.Warn("Anthropic API key not configured; extraction will use pattern fallback")
	}
}
