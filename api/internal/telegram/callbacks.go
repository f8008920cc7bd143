package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	cid := cb.Message.Chat.ID

	// drop the keyboard so the choice can't be made twice
	edit := tgbotapi.NewEditMessageReplyMarkup(cid, cb.Message.MessageID, tgbotapi.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{},
	})
	_, _ = r.Bot.Send(edit)

	switch data := cb.Data; {
	case strings.HasPrefix(data, cbLang):
		r.setLanguage(cid, strings.TrimPrefix(data, cbLang))
	case strings.HasPrefix(data, cbTone):
		r.setTone(cid, strings.TrimPrefix(data, cbTone))
	case strings.HasPrefix(data, cbEngine):
		r.setEngine(cid, strings.TrimPrefix(data, cbEngine))
	default:
		r.log().WithField("data", data).Debug("telegram: unknown callback")
	}
}
