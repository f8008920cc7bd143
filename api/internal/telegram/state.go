package telegram

import (
	"grammar-proxy/api/internal/grammar"
)

// prefs are per-chat settings. They live for the process lifetime only.
type prefs struct {
	Language grammar.Language
	Tone     grammar.Tone
	Engine   string // "" means the server default
}

func defaultPrefs() prefs {
	return prefs{Language: grammar.English, Tone: grammar.Neutral}
}

func (r *Router) getPrefs(chatID int64) prefs {
	if v, ok := r.prefs.Load(chatID); ok {
		if p, ok := v.(prefs); ok {
			return p
		}
	}
	return defaultPrefs()
}

// updatePrefs is a read-modify-write; prefsMu keeps concurrent updates for
// the same chat from overwriting each other.
func (r *Router) updatePrefs(chatID int64, fn func(*prefs)) prefs {
	r.prefsMu.Lock()
	defer r.prefsMu.Unlock()
	p := r.getPrefs(chatID)
	fn(&p)
	r.prefs.Store(chatID, p)
	return p
}

func (r *Router) resetPrefs(chatID int64) {
	r.prefsMu.Lock()
	defer r.prefsMu.Unlock()
	r.prefs.Delete(chatID)
}
