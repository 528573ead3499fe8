// Package telegram is the Telegram front end: one tutoring session per
// chat, driven by messages, photos and inline buttons.
package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/tutor"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

var _ API = (*tgbotapi.BotAPI)(nil)

// Options tunes a Bot. Zero values pick defaults.
type Options struct {
	// Language new chats start in.
	Language i18n.Language

	// SessionTTL drops chats idle for longer than this.
	SessionTTL time.Duration

	// SolveTimeout bounds one model call.
	SolveTimeout time.Duration

	// PollTimeout is the long-polling timeout in seconds.
	PollTimeout int

	HTTPClient *http.Client
	Metrics    *Metrics
	Logger     *slog.Logger
}

// Bot routes Telegram updates to per-chat tutor sessions.
type Bot struct {
	api      API
	client   tutor.ModelClient
	sessions *Sessions
	metrics  *Metrics
	logger   *slog.Logger
	http     *http.Client

	solveTimeout time.Duration
	pollTimeout  int

	inflight sync.WaitGroup
}

// New creates a bot answering through api and solving with client.
func New(api API, client tutor.ModelClient, opts Options) *Bot {
	if !opts.Language.Valid() {
		opts.Language = i18n.Default
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 6 * time.Hour
	}
	if opts.SolveTimeout <= 0 {
		opts.SolveTimeout = 2 * time.Minute
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Bot{
		api:          api,
		client:       client,
		sessions:     NewSessions(opts.Language, opts.SessionTTL),
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		http:         opts.HTTPClient,
		solveTimeout: opts.SolveTimeout,
		pollTimeout:  opts.PollTimeout,
	}
}

// Sessions exposes the per-chat session table.
func (b *Bot) Sessions() *Sessions { return b.sessions }

// Metrics returns the bot's collectors.
func (b *Bot) Metrics() *Metrics { return b.metrics }

// Run long-polls for updates until ctx is cancelled, then waits for
// in-flight solves to finish.
func (b *Bot) Run(ctx context.Context) error {
	go b.sweepLoop(ctx)

	onErr := func(error) { b.metrics.PollErrors.Inc() }
	runPolling(ctx, b.api, b.pollTimeout, b.logger, onErr, func(upd tgbotapi.Update) {
		b.HandleUpdate(ctx, upd)
	})

	b.Wait()
	return ctx.Err()
}

// Wait blocks until every dispatched solve has been answered.
func (b *Bot) Wait() {
	b.inflight.Wait()
}

func (b *Bot) sweepLoop(ctx context.Context) {
	t := time.NewTicker(time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := b.sessions.Sweep(now); n > 0 {
				b.logger.Debug("dropped idle chats", "count", n)
			}
			b.metrics.ActiveSessions.Set(float64(b.sessions.Len()))
		}
	}
}
