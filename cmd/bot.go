package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/abhisek/mathstep/internal/telegram"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long: "Long-polls Telegram and tutors every chat in its own session. The token comes from\n" +
		"bot.token or MATHSTEP_BOT_TOKEN. /healthz and /metrics are served on bot.addr.",
	RunE: runBot,
}

func init() {
	botCmd.Flags().String("addr", "", "Listen address for /healthz and /metrics (overrides bot.addr; \"off\" disables)")
}

func runBot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		cfg.Bot.Addr = v
	}
	if cfg.Bot.Token == "" {
		return errors.New("telegram token is not set (bot.token or MATHSTEP_BOT_TOKEN)")
	}

	logger, closeLog, err := newLogger(cfg.Log, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := newClient(ctx, cfg, "", st.EventRepo(), logger)
	if err != nil {
		return fmt.Errorf("model client: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Bot.Token)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	api.Debug = cfg.Bot.Debug
	logger.Info("authorized on telegram", "account", api.Self.UserName, "model", client.ModelID(), "store", st.Dialect())

	bot := telegram.New(api, client, telegram.Options{
		Language:     cfg.Language(),
		SessionTTL:   cfg.Bot.SessionTTL,
		SolveTimeout: cfg.LLM.Timeout,
		PollTimeout:  cfg.Bot.PollTimeout,
		Logger:       logger,
	})

	if cfg.Bot.Addr != "" && cfg.Bot.Addr != "off" {
		mux := telegram.NewMux(bot.Metrics(), st.Ping)
		go func() {
			if err := telegram.Serve(ctx, cfg.Bot.Addr, mux, logger); err != nil {
				logger.Error("http server stopped", "error", err)
			}
		}()
	}

	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("bot stopped")
	return nil
}
