// Package share posts a rendered preview and caption to a social platform.
// Telegram is the one real integration; every other platform is simulated,
// except Instagram Story which the upstream API forbids outright.
package share

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/phaseloop/curator/internal/model"
)

var ErrPlatformRestricted = errors.New("posting to this platform via API is restricted")

// Sharer is nil-safe: with no bot configured every platform falls back to
// the simulated path.
type Sharer struct {
	bot       *tgbotapi.BotAPI
	channelID int64
	publicDir string
}

func New(bot *tgbotapi.BotAPI, channelID int64, publicDir string) *Sharer {
	return &Sharer{bot: bot, channelID: channelID, publicDir: publicDir}
}

// Share dispatches the request and returns a user-facing status message.
func (s *Sharer) Share(req model.ShareRequest) (string, error) {
	if req.Platform == "Instagram Story" {
		return "", ErrPlatformRestricted
	}

	if s != nil && s.bot != nil && req.Platform == "Telegram" {
		return s.shareTelegram(req)
	}

	log.Printf("[INFO] simulated share to %s: image=%s caption=%q",
		req.Platform, req.ImagePath, truncate(req.Caption, 80))
	return fmt.Sprintf("Successfully simulated sharing to %s!", req.Platform), nil
}

func (s *Sharer) shareTelegram(req model.ShareRequest) (string, error) {
	// Base strips any client-supplied directory parts so the photo path
	// cannot escape the public dir.
	path := filepath.Join(s.publicDir, filepath.Base(req.ImagePath))

	msg := tgbotapi.NewPhoto(s.channelID, tgbotapi.FilePath(path))
	msg.Caption = req.Caption

	if _, err := s.bot.Send(msg); err != nil {
		return "", fmt.Errorf("send to telegram channel: %w", err)
	}

	log.Printf("[INFO] shared %s to telegram channel %d", path, s.channelID)
	return "Shared to Telegram!", nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
