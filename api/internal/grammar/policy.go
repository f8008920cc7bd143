package grammar

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const spanishMarks = "áéíóúñü¿¡"

// Function words that are common in one language and rare in the other.
// Words shared by both ("no", "a", "me", "he") are left out.
var spanishWords = toSet(
	"el", "la", "los", "las", "un", "una", "unos", "unas", "de", "del", "que", "qué",
	"y", "en", "es", "por", "para", "con", "se", "su", "sus", "lo", "como", "cómo",
	"pero", "muy", "más", "hola", "gracias", "yo", "tú", "tu", "usted", "ella", "ellos",
	"nosotros", "estoy", "estás", "está", "esta", "este", "eso", "soy", "eres", "somos",
	"hoy", "bien", "dónde", "cuando", "cuándo", "porque", "también", "tengo", "tiene",
)

var englishWords = toSet(
	"the", "an", "is", "are", "was", "were", "be", "been", "am", "and", "or", "but",
	"of", "to", "in", "on", "at", "it", "its", "you", "your", "i", "my", "she", "we",
	"they", "their", "there", "this", "that", "these", "those", "with", "for", "from",
	"have", "has", "had", "do", "does", "did", "not", "what", "how", "why", "where",
	"when", "who", "hello", "hi", "can", "will", "would", "should",
)

func toSet(words ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

func containsWord(s string, set map[string]struct{}) bool {
	for _, w := range words(s) {
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}

// LooksSpanish reports Spanish-specific characters or function words.
func LooksSpanish(s string) bool {
	if strings.ContainsAny(strings.ToLower(s), spanishMarks) {
		return true
	}
	return containsWord(s, spanishWords)
}

// LooksEnglish reports common English function words.
func LooksEnglish(s string) bool {
	return containsWord(s, englishWords)
}

// LanguageMismatch is true when the sentence is long enough to judge and
// clearly belongs to the other supported language. Ambiguous sentences (both
// or neither heuristic fires) are accepted.
func LanguageMismatch(sentence string, lang Language) bool {
	sentence = strings.TrimSpace(sentence)
	if utf8.RuneCountInString(sentence) <= MinGuardLength {
		return false
	}
	es, en := LooksSpanish(sentence), LooksEnglish(sentence)
	switch lang {
	case Spanish:
		return en && !es
	case English:
		return es && !en
	}
	return false
}
