package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/media"
	"github.com/abhisek/mathstep/internal/tutor"
)

// HandleUpdate routes one update. Model calls run in the background, so
// HandleUpdate returns without waiting for them; use Wait to join.
func (b *Bot) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if cb := upd.CallbackQuery; cb != nil {
		b.metrics.Updates.WithLabelValues("callback").Inc()
		b.handleCallback(cb)
		return
	}
	msg := upd.Message
	if msg == nil || msg.Chat == nil {
		return
	}

	switch {
	case msg.IsCommand():
		b.metrics.Updates.WithLabelValues("command").Inc()
		b.handleCommand(msg)
	default:
		if fileID, ok := attachment(msg); ok {
			b.metrics.Updates.WithLabelValues("photo").Inc()
			b.submit(ctx, msg.Chat.ID, msg.Caption, fileID)
			return
		}
		if strings.TrimSpace(msg.Text) == "" {
			b.metrics.Updates.WithLabelValues("other").Inc()
			return
		}
		b.metrics.Updates.WithLabelValues("text").Inc()
		b.submit(ctx, msg.Chat.ID, msg.Text, "")
	}
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sess := b.sessions.Get(chatID)

	switch msg.Command() {
	case "start":
		kb := langKeyboard(sess.Language())
		b.sendText(chatID, i18n.Lookup(sess.Language(), "bot_start"), &kb)
	case "new":
		sess.NewProblem()
		b.sendText(chatID, i18n.Lookup(sess.Language(), "bot_reset"), nil)
	case "lang":
		b.switchLanguage(chatID, sess, strings.TrimSpace(msg.CommandArguments()))
	case "health":
		b.sendText(chatID, "✅ OK", nil)
	default:
		b.sendText(chatID, i18n.Lookup(sess.Language(), "bot_unknown")+": /"+msg.Command(), nil)
	}
}

// switchLanguage toggles, or sets the language named by arg.
func (b *Bot) switchLanguage(chatID int64, sess *tutor.Session, arg string) {
	if arg == "" {
		sess.ToggleLanguage()
	} else {
		lang, err := i18n.ParseLanguage(arg)
		if err != nil {
			b.sendText(chatID, i18n.Lookup(sess.Language(), "bot_unknown")+": "+arg, nil)
			return
		}
		sess.SetLanguage(lang)
	}
	lang := sess.Language()
	kb := langKeyboard(lang)
	b.sendText(chatID, i18n.Lookup(lang, "bot_lang_switched"), &kb)
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.logger.Warn("callback ack failed", "error", err)
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	sess := b.sessions.Get(chatID)

	// A pressed keyboard is spent whatever the action.
	b.clearKeyboard(chatID, cb.Message.MessageID)

	switch cb.Data {
	case cbNext:
		b.revealNext(chatID, sess)
	case cbNew:
		sess.NewProblem()
		b.sendText(chatID, i18n.Lookup(sess.Language(), "bot_reset"), nil)
	case cbLang:
		b.switchLanguage(chatID, sess, "")
	default:
		b.logger.Debug("unknown callback", "data", cb.Data)
	}
}

func (b *Bot) revealNext(chatID int64, sess *tutor.Session) {
	r, ok := sess.RevealNextStep()
	if !ok {
		if sess.Mode() == tutor.ModeInput {
			b.sendText(chatID, i18n.Lookup(sess.Language(), "bot_start"), nil)
		}
		return
	}
	b.metrics.StepsRevealed.Inc()

	lang := sess.Language()
	body := stepHTML(lang, r.Number, r.Total, r.Step, r.Final())
	if !r.Final() {
		kb := nextKeyboard(lang, r.Number+1)
		b.sendHTML(chatID, body, &kb)
		return
	}
	b.sendHTML(chatID, body, nil)
	kb := doneKeyboard(lang)
	b.sendHTML(chatID, doneHTML(lang), &kb)
}

// submit runs one solve in the background. text may be empty when an
// image is attached.
func (b *Bot) submit(ctx context.Context, chatID int64, text, fileID string) {
	sess := b.sessions.Get(chatID)
	if sess.Loading() {
		b.metrics.Solves.WithLabelValues("busy").Inc()
		b.sendText(chatID, i18n.Lookup(sess.Language(), "bot_busy"), nil)
		return
	}

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		b.solve(ctx, chatID, sess, text, fileID)
	}()
}

func (b *Bot) solve(ctx context.Context, chatID int64, sess *tutor.Session, text, fileID string) {
	ctx, cancel := context.WithTimeout(ctx, b.solveTimeout)
	defer cancel()

	var img *media.Image
	if fileID != "" {
		var err error
		if img, err = b.fetchImage(ctx, fileID); err != nil {
			b.logger.Warn("image download failed", "chat_id", chatID, "error", err)
			b.metrics.Solves.WithLabelValues("bad_image").Inc()
			b.sendText(chatID, tutor.Describe(sess.Language(), err), nil)
			return
		}
	}

	// A new problem replaces the one on screen.
	if sess.Mode() == tutor.ModeResult {
		sess.NewProblem()
	}
	ticket, err := sess.BeginSubmit(text, img)
	if err != nil {
		b.metrics.Solves.WithLabelValues("rejected").Inc()
		b.sendText(chatID, tutor.Describe(sess.Language(), err), nil)
		return
	}

	lang := sess.Language()
	spinnerID := b.sendText(chatID, i18n.Lookup(lang, "spinner"), nil)
	if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug("chat action failed", "error", err)
	}

	start := time.Now()
	raw, callErr := ticket.Dispatch(ctx, b.client)
	b.metrics.SolveDuration.Observe(time.Since(start).Seconds())

	err = sess.CompleteSubmit(ticket, raw, callErr)
	lang = sess.Language()
	if spinnerID != 0 {
		if _, derr := b.api.Request(tgbotapi.NewDeleteMessage(chatID, spinnerID)); derr != nil {
			b.logger.Debug("spinner delete failed", "error", derr)
		}
	}

	switch {
	case errors.Is(err, tutor.ErrStale):
		b.metrics.Solves.WithLabelValues("stale").Inc()
		return
	case err != nil:
		b.logger.Warn("solve failed", "chat_id", chatID, "session_id", ticket.SessionID, "error", err)
		b.metrics.Solves.WithLabelValues("error").Inc()
		b.sendText(chatID, tutor.Describe(lang, err), nil)
		return
	}

	b.metrics.Solves.WithLabelValues("ok").Inc()
	sol := sess.Solution()
	if sol == nil {
		return
	}
	body := analysisHTML(lang, sess.ProblemText(), sol)
	if sol.TotalSteps() == 0 {
		b.sendHTML(chatID, body, nil)
		kb := doneKeyboard(lang)
		b.sendHTML(chatID, doneHTML(lang), &kb)
		return
	}
	kb := keyboardFor(sess)
	b.sendHTML(chatID, body, &kb)
}

// sendText sends plain text and returns the new message ID, or 0.
func (b *Bot) sendText(chatID int64, text string, kb *tgbotapi.InlineKeyboardMarkup) int {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	return b.send(msg)
}

func (b *Bot) sendHTML(chatID int64, html string, kb *tgbotapi.InlineKeyboardMarkup) int {
	text, mode := fitMessage(html)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = mode
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	return b.send(msg)
}

func (b *Bot) send(msg tgbotapi.MessageConfig) int {
	sent, err := b.api.Send(msg)
	if err != nil {
		b.logger.Warn("send failed", "chat_id", msg.ChatID, "error", err)
		return 0
	}
	return sent.MessageID
}

func (b *Bot) clearKeyboard(chatID int64, messageID int) {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	if _, err := b.api.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty)); err != nil {
		b.logger.Debug("keyboard removal failed", "error", err)
	}
}
