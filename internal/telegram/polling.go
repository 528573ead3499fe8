package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	pollBaseDelay = time.Second
	pollMaxDelay  = 15 * time.Second
	pollIdleDelay = 200 * time.Millisecond
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// retryDelayFromError picks how long to back off after a failed
// getUpdates. Flood control replies carry their own delay.
func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return time.Duration(apiErr.RetryAfter) * time.Second
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return time.Second
}

func clampDelay(d time.Duration) time.Duration {
	return min(max(d, pollBaseDelay), pollMaxDelay)
}

// runPolling long-polls api until ctx is done, handing each update to
// handle in order.
func runPolling(ctx context.Context, api API, timeout int, logger *slog.Logger, onErr func(error), handle func(tgbotapi.Update)) {
	offset := 0
	for {
		if ctx.Err() != nil {
			logger.Info("polling stopped")
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = timeout

		updates, err := api.GetUpdates(u)
		if err != nil {
			if onErr != nil {
				onErr(err)
			}
			d := clampDelay(retryDelayFromError(err))
			logger.Warn("polling failed", "error", err, "retry_in", d)
			if !sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 && !sleep(ctx, pollIdleDelay) {
			return
		}
	}
}

// sleep waits for d or until ctx is done, reporting false in the latter case.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
