package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/abhisek/mathstep/internal/config"
	"github.com/abhisek/mathstep/internal/llm"
	"github.com/abhisek/mathstep/internal/store"
	"github.com/abhisek/mathstep/internal/tutor"
)

// newLogger builds the process logger. With log.file set (or when
// toFile is true) it writes to a file, since the TUI owns the terminal.
func newLogger(cfg config.LogConfig, toFile bool) (*slog.Logger, func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	path := cfg.File
	if path == "" && toFile {
		dir, err := store.DataDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, "mathstep.log")
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}

	if err := store.EnsureDir(path); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }, nil
}

// newClient builds the model client for cfg, with apiKey overriding the
// resolved key when set. Requests are recorded to repo when non-nil.
func newClient(ctx context.Context, cfg config.Config, apiKey string, repo store.EventRepo, logger *slog.Logger) (*tutor.LLMClient, error) {
	lc := cfg.LLMConfig()
	if apiKey != "" {
		lc.SetAPIKey(apiKey)
	}
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(ctx, lc, repo, logger)
	if err != nil {
		return nil, err
	}
	return tutor.NewLLMClient(provider, tutor.ClientOptions{
		Structured: cfg.LLM.Structured,
		MaxTokens:  cfg.LLM.MaxTokens,
	}), nil
}
