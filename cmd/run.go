package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/app"
	"github.com/abhisek/mathstep/internal/screens"
	"github.com/abhisek/mathstep/internal/tutor"
)

// runApp loads config, opens the event store and launches the TUI. A
// missing API key is not an error: the TUI asks for one.
func runApp(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg.Log, true)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()
	repo := st.EventRepo()

	ctx := cmd.Context()
	env := &screens.Env{
		Session:      tutor.New(cfg.Language(), false),
		SolveTimeout: cfg.LLM.Timeout,
		Logger:       logger,
		Connect: func(ctx context.Context, apiKey string) (tutor.ModelClient, error) {
			return newClient(ctx, cfg, apiKey, repo, logger)
		},
	}

	if client, err := newClient(ctx, cfg, "", repo, logger); err != nil {
		logger.Info("no usable API key, starting on key entry", "error", err)
	} else {
		env.Client = client
		env.Session.SetAPIKeyConfigured(true)
		logger.Info("model ready", "model", client.ModelID(), "session_id", env.Session.ID())
	}

	return app.Run(env)
}
