package telegram

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// WebhookPath derives a stable secret path from the bot token.
func WebhookPath(token string) string {
	return "/webhook/" + shortHash(token)
}

// WebhookURL joins the public base URL and the secret path.
func WebhookURL(base, token string) string {
	return strings.TrimRight(base, "/") + WebhookPath(token)
}

// WebhookHandler decodes Telegram updates and hands them off without waiting
// for the correction, so Telegram never retries a slow update.
func WebhookHandler(handle func(tgbotapi.Update), log logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var upd tgbotapi.Update
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&upd); err != nil {
			log.WithError(err).Warn("webhook: bad update")
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		go handle(upd)
		w.WriteHeader(http.StatusOK)
	})
}

func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
