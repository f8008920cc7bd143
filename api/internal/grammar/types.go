package grammar

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxAlternatives   = 5
	MaxSentenceLength = 2000
	// sentences up to this many characters are never rejected by the language guard
	MinGuardLength = 10
)

type Language string

const (
	English Language = "English"
	Spanish Language = "Spanish"
)

// ParseLanguage accepts any casing; empty means English.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "english", "en":
		return English, true
	case "spanish", "es", "español", "espanol":
		return Spanish, true
	}
	return "", false
}

type Tone string

const (
	Neutral Tone = "neutral"
	Formal  Tone = "formal"
	Casual  Tone = "casual"
)

// ParseTone accepts any casing; empty means neutral.
func ParseTone(s string) (Tone, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "neutral":
		return Neutral, true
	case "formal":
		return Formal, true
	case "casual":
		return Casual, true
	}
	return "", false
}

// Request is one correction ask: the sentence plus the declared language and
// the desired tone.
type Request struct {
	Sentence string
	Language Language
	Tone     Tone
}

// NewRequest validates raw user input.
func NewRequest(sentence, language, tone string) (Request, error) {
	sentence = strings.TrimSpace(sentence)
	if sentence == "" {
		return Request{}, &ValidationError{Msg: "Sentence is required"}
	}
	if utf8.RuneCountInString(sentence) > MaxSentenceLength {
		return Request{}, &ValidationError{Msg: "Sentence is too long"}
	}
	lang, ok := ParseLanguage(language)
	if !ok {
		return Request{}, &ValidationError{Msg: "Unsupported language"}
	}
	t, ok := ParseTone(tone)
	if !ok {
		return Request{}, &ValidationError{Msg: "Unsupported tone"}
	}
	return Request{Sentence: sentence, Language: lang, Tone: t}, nil
}

// Result is the response contract. Corrected is empty only for the rejection
// sentinel built by Rejection.
type Result struct {
	Corrected    string   `json:"corrected"`
	Explanation  string   `json:"explanation"`
	Alternatives []string `json:"alternatives"`
}

func (r Result) Rejected() bool { return r.Corrected == "" }

func RejectionMessage(lang Language) string {
	return fmt.Sprintf("This sentence doesn't look like %s. Please enter a sentence written in %s.", lang, lang)
}

// Rejection is the sentinel returned when the sentence does not match the
// declared language.
func Rejection(lang Language) Result {
	return Result{
		Corrected:    "",
		Explanation:  RejectionMessage(lang),
		Alternatives: []string{},
	}
}
