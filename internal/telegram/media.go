package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/mathstep/internal/media"
)

// attachment picks the file to fetch from a message: the largest photo
// size, or a document whose declared type is an image.
func attachment(msg *tgbotapi.Message) (fileID string, ok bool) {
	// Sizes arrive smallest first.
	if n := len(msg.Photo); n > 0 {
		return msg.Photo[n-1].FileID, true
	}
	if d := msg.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID, true
	}
	return "", false
}

// fetchImage downloads a Telegram file and validates it as a problem image.
func (b *Bot) fetchImage(ctx context.Context, fileID string) (*media.Image, error) {
	if fileID == "" {
		return nil, media.ErrEmpty
	}
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download file: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, media.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	return media.FromBytes(fileID, data)
}
