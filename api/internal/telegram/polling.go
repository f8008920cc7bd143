package telegram

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Updater is the long-polling part of *tgbotapi.BotAPI.
type Updater interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

const (
	pollTimeoutSec = 30
	pollBaseDelay  = 1 * time.Second
	pollMaxDelay   = 15 * time.Second
	pollIdleDelay  = 200 * time.Millisecond
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429 from Telegram
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
	return 1 * time.Second
}

func clampDelay(d time.Duration) time.Duration {
	if d < pollBaseDelay {
		return pollBaseDelay
	}
	if d > pollMaxDelay {
		return pollMaxDelay
	}
	return d
}

// RunPolling long-polls until ctx is done. Errors never stop the loop; they
// only delay the next attempt.
func RunPolling(ctx context.Context, bot Updater, handle func(tgbotapi.Update), log logrus.FieldLogger) {
	offset := 0
	for {
		if ctx.Err() != nil {
			log.Info("polling: context cancelled")
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = pollTimeoutSec

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err))
			log.WithError(err).Warnf("polling error; retry in %v", d)
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
