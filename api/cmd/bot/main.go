package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"grammar-proxy/api/internal/app"
	"grammar-proxy/api/internal/config"
	"grammar-proxy/api/internal/handle"
	"grammar-proxy/api/internal/httpserver"
	"grammar-proxy/api/internal/telegram"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := cfg.NewLogger()

	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}

	svc, engines, err := app.NewService(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("startup failed")
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.WithError(err).Fatal("telegram: login failed")
	}
	bot.Debug = false
	log.WithField("bot", bot.Self.UserName).Info("telegram: authorized")

	r := &telegram.Router{
		Bot:     bot,
		Svc:     svc,
		Engines: engines,
		Log:     log.WithField("component", "telegram"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the HTTP API and health endpoints are served in both modes
	mux := http.NewServeMux()
	mux.Handle("/", httpserver.NewMux(handle.New(svc, engines, log), log))

	handleUpdate := func(upd tgbotapi.Update) {
		uctx, cancel := context.WithTimeout(ctx, cfg.ProviderTimeout+15*time.Second)
		defer cancel()
		r.HandleUpdate(uctx, upd)
	}

	if cfg.WebhookURL != "" {
		startWebhookMode(ctx, cfg, bot, mux, handleUpdate, log)
		return
	}
	startPollingMode(ctx, cfg, bot, mux, handleUpdate, log)
}

func startWebhookMode(ctx context.Context, cfg *config.Config, bot *tgbotapi.BotAPI, mux *http.ServeMux, handleUpdate func(tgbotapi.Update), log *logrus.Logger) {
	wh, err := tgbotapi.NewWebhook(telegram.WebhookURL(cfg.WebhookURL, bot.Token))
	if err != nil {
		log.WithError(err).Fatal("telegram: bad webhook url")
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.WithError(err).Fatal("telegram: set webhook")
	}

	path := telegram.WebhookPath(bot.Token)
	mux.Handle(path, telegram.WebhookHandler(handleUpdate, log))
	log.Info("telegram: webhook mode")

	serve(ctx, cfg, mux, log)
}

func startPollingMode(ctx context.Context, cfg *config.Config, bot *tgbotapi.BotAPI, mux *http.ServeMux, handleUpdate func(tgbotapi.Update), log *logrus.Logger) {
	// a webhook left over from an earlier deployment blocks getUpdates
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.WithError(err).Warn("telegram: delete webhook")
	}

	go serve(ctx, cfg, mux, log)

	log.Info("telegram: polling mode")
	telegram.RunPolling(ctx, bot, handleUpdate, log)
}

func serve(ctx context.Context, cfg *config.Config, h http.Handler, log *logrus.Logger) {
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := httpserver.Serve(ctx, srv, 10*time.Second, log); err != nil {
		log.WithError(err).Fatal("http server stopped")
	}
}
