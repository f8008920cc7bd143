package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"grammar-proxy/api/internal/grammar"
	"grammar-proxy/api/internal/llm"
)

// Sender is the part of *tgbotapi.BotAPI the router needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Corrector is satisfied by *grammar.Service.
type Corrector interface {
	Correct(ctx context.Context, req grammar.Request, llmName string) (grammar.Result, error)
}

const helpText = `Send me a sentence and I will correct it.

Commands:
/lang [English|Spanish] - language of your sentences
/tone [neutral|formal|casual] - tone of the corrections
/engine [gpt|gemini|deepseek] - AI provider
/settings - current settings`

type Router struct {
	Bot     Sender
	Svc     Corrector
	Engines *llm.Engines
	Log     logrus.FieldLogger

	prefsMu sync.Mutex
	prefs   sync.Map // chatID -> prefs
}

func (r *Router) log() logrus.FieldLogger {
	if r.Log == nil {
		return logrus.StandardLogger()
	}
	return r.Log
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.Chat == nil {
		return
	}
	if upd.Message.IsCommand() {
		r.HandleCommand(upd.Message)
		return
	}
	if strings.TrimSpace(upd.Message.Text) == "" {
		r.send(upd.Message.Chat.ID, "Please send the sentence as text.")
		return
	}
	r.correct(ctx, upd.Message.Chat.ID, upd.Message.Text)
}

func (r *Router) HandleCommand(msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	arg := strings.TrimSpace(msg.CommandArguments())
	switch msg.Command() {
	case "start":
		r.resetPrefs(cid)
		r.send(cid, "Hi! "+helpText)
	case "help":
		r.send(cid, helpText)
	case "lang":
		if arg == "" {
			r.sendWithKeyboard(cid, "Which language do you write in?", makeLanguageKeyboard())
			return
		}
		r.setLanguage(cid, arg)
	case "tone":
		if arg == "" {
			r.sendWithKeyboard(cid, "Which tone should corrections use?", makeToneKeyboard())
			return
		}
		r.setTone(cid, arg)
	case "engine":
		if arg == "" {
			names := r.Engines.Configured()
			if len(names) == 0 {
				r.send(cid, "❌ No AI provider is configured on this server.")
				return
			}
			r.sendWithKeyboard(cid, "Current engine: "+r.currentEngine(cid)+"\nPick one:", makeEngineKeyboard(names))
			return
		}
		r.setEngine(cid, arg)
	case "settings":
		r.send(cid, formatPrefs(r.getPrefs(cid), r.Engines.Default))
	default:
		r.send(cid, "Unknown command. See /help")
	}
}

func (r *Router) setLanguage(chatID int64, arg string) {
	lang, ok := grammar.ParseLanguage(arg)
	if !ok {
		r.send(chatID, "Unknown language. Available: English | Spanish")
		return
	}
	r.updatePrefs(chatID, func(p *prefs) { p.Language = lang })
	r.send(chatID, "✅ Language: "+string(lang))
}

func (r *Router) setTone(chatID int64, arg string) {
	tone, ok := grammar.ParseTone(arg)
	if !ok {
		r.send(chatID, "Unknown tone. Available: neutral | formal | casual")
		return
	}
	r.updatePrefs(chatID, func(p *prefs) { p.Tone = tone })
	r.send(chatID, "✅ Tone: "+string(tone))
}

func (r *Router) setEngine(chatID int64, arg string) {
	name, ok := llm.Canonical(arg)
	if !ok {
		r.send(chatID, "Unknown engine. Available: gpt | gemini | deepseek")
		return
	}
	eng, err := r.Engines.GetEngine(name)
	if err != nil {
		r.send(chatID, userMessage(err))
		return
	}
	r.updatePrefs(chatID, func(p *prefs) { p.Engine = name })
	r.send(chatID, "✅ Engine: "+name+" ("+eng.GetModel()+")")
}

func (r *Router) currentEngine(chatID int64) string {
	if e := r.getPrefs(chatID).Engine; e != "" {
		return e
	}
	return r.Engines.Default
}

func (r *Router) correct(ctx context.Context, chatID int64, text string) {
	p := r.getPrefs(chatID)
	req, err := grammar.NewRequest(text, string(p.Language), string(p.Tone))
	if err != nil {
		r.send(chatID, userMessage(err))
		return
	}

	_, _ = r.Bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))

	start := time.Now()
	res, err := r.Svc.Correct(ctx, req, p.Engine)
	if err != nil {
		r.log().WithFields(logrus.Fields{
			"chat_id": chatID,
			"engine":  r.currentEngine(chatID),
		}).WithError(err).Warn("telegram: correction failed")
		r.send(chatID, userMessage(err))
		return
	}
	r.log().WithFields(logrus.Fields{
		"chat_id":     chatID,
		"rejected":    res.Rejected(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("telegram: corrected")

	msg := tgbotapi.NewMessage(chatID, formatResult(res))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := r.Bot.Send(msg); err != nil {
		r.log().WithField("chat_id", chatID).WithError(err).Warn("telegram: markdown send failed, retrying as plain text")
		r.send(chatID, formatPlain(res))
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.log().WithField("chat_id", chatID).WithError(err).Warn("telegram: send failed")
	}
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := r.Bot.Send(msg); err != nil {
		r.log().WithField("chat_id", chatID).WithError(err).Warn("telegram: send failed")
	}
}
