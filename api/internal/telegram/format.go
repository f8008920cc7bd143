package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"grammar-proxy/api/internal/grammar"
	"grammar-proxy/api/internal/llm"
)

const maxMessageLen = 3900

// formatResult renders res as legacy Markdown of at most maxMessageLen
// runes. Fields are clipped before escaping and sections that do not fit are
// dropped whole, so the bold markers always stay paired.
func formatResult(res grammar.Result) string {
	if res.Rejected() {
		s, _ := escClip(res.Explanation, maxMessageLen-3)
		return "⚠️ " + s
	}
	var b strings.Builder
	room := maxMessageLen
	write := func(s string) {
		b.WriteString(s)
		room -= utf8.RuneCountInString(s)
	}

	write("✅ *Corrected:*\n")
	corrected, whole := escClip(res.Corrected, room)
	write(corrected)
	if !whole {
		return b.String()
	}

	const explHead = "\n\n📝 "
	if room <= utf8.RuneCountInString(explHead)+1 {
		return b.String()
	}
	write(explHead)
	expl, whole := escClip(res.Explanation, room)
	write(expl)
	if !whole {
		return b.String()
	}

	const altHead = "\n\n*Alternatives:*"
	var alts []string
	used := utf8.RuneCountInString(altHead)
	for _, a := range res.Alternatives {
		line := "\n• " + esc(a)
		n := utf8.RuneCountInString(line)
		if used+n > room {
			break
		}
		alts = append(alts, line)
		used += n
	}
	if len(alts) > 0 {
		write(altHead)
		for _, line := range alts {
			write(line)
		}
	}
	return b.String()
}

// formatPlain is the markup-free fallback for when Telegram refuses the
// Markdown rendering.
func formatPlain(res grammar.Result) string {
	if res.Rejected() {
		return clipRunes("⚠️ "+res.Explanation, maxMessageLen)
	}
	var b strings.Builder
	b.WriteString("✅ Corrected:\n")
	b.WriteString(res.Corrected)
	b.WriteString("\n\n📝 ")
	b.WriteString(res.Explanation)
	if len(res.Alternatives) > 0 {
		b.WriteString("\n\nAlternatives:")
		for _, a := range res.Alternatives {
			b.WriteString("\n• ")
			b.WriteString(a)
		}
	}
	return clipRunes(b.String(), maxMessageLen)
}

// escClip escapes the longest prefix of s whose escaped form fits in n
// runes. When s is cut the result ends with an ellipsis, which counts
// toward n, and whole is false.
func escClip(s string, n int) (out string, whole bool) {
	if e := esc(s); utf8.RuneCountInString(e) <= n {
		return e, true
	}
	if n <= 0 {
		return "", false
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		cost := 1
		if r == '_' || r == '*' || r == '[' {
			cost = 2
		}
		if used+cost > n-1 {
			break
		}
		used += cost
		b.WriteRune(r)
	}
	return esc(b.String()) + "…", false
}

func clipRunes(s string, n int) string {
	if rs := []rune(s); len(rs) > n {
		return string(rs[:n-1]) + "…"
	}
	return s
}

func formatPrefs(p prefs, defaultEngine string) string {
	engine := p.Engine
	if engine == "" {
		engine = defaultEngine + " (default)"
	}
	return fmt.Sprintf("Language: %s\nTone: %s\nEngine: %s", p.Language, p.Tone, engine)
}

// userMessage turns a correction failure into chat text. Provider details
// are not shown.
func userMessage(err error) string {
	var (
		ve *grammar.ValidationError
		nc *llm.NotConfiguredError
		te *grammar.TimeoutError
		ue *llm.UnknownEngineError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Msg + "."
	case errors.As(err, &nc):
		return fmt.Sprintf("❌ %s is not configured on this server. Pick another one with /engine.", nc.Engine)
	case errors.As(err, &ue):
		return "❌ Unknown engine. Pick one with /engine."
	case errors.As(err, &te), errors.Is(err, context.DeadlineExceeded):
		return "⏳ The AI provider timed out. Please try again."
	default:
		return "❌ Invalid AI response. Please try again."
	}
}
