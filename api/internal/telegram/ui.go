package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"grammar-proxy/api/internal/grammar"
)

// callback data prefixes
const (
	cbLang   = "lang:"
	cbTone   = "tone:"
	cbEngine = "engine:"
)

func makeLanguageKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🇬🇧 English", cbLang+string(grammar.English)),
		tgbotapi.NewInlineKeyboardButtonData("🇪🇸 Spanish", cbLang+string(grammar.Spanish)),
	))
}

func makeToneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Neutral", cbTone+string(grammar.Neutral)),
		tgbotapi.NewInlineKeyboardButtonData("Formal", cbTone+string(grammar.Formal)),
		tgbotapi.NewInlineKeyboardButtonData("Casual", cbTone+string(grammar.Casual)),
	))
}

// makeEngineKeyboard offers only the configured providers.
func makeEngineKeyboard(names []string) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(names))
	for _, n := range names {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(n, cbEngine+n))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// esc escapes legacy Markdown.
func esc(s string) string {
	s = strings.ReplaceAll(s, "`", "'")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "[", "\\[")
	return s
}
