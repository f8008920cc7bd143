package grammar

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"grammar-proxy/api/internal/util"
)

const promptName = "correct"

const DefaultSystemPrompt = `You are a careful grammar assistant. You correct single sentences and always answer with one raw JSON object: no markdown fences, no text before or after it.`

// DefaultUserPrompt is rendered with .Sentence, .Language, .Tone and
// .MaxAlternatives; sprig functions are available.
const DefaultUserPrompt = `Correct the grammar, spelling and punctuation of the following {{ .Language }} sentence and rewrite it in a {{ .Tone | lower }} tone.

Sentence: {{ .Sentence | quote }}

If the sentence is not written in {{ .Language }}, do not correct it: set "corrected" to an empty string and say in "explanation" that the sentence doesn't look like {{ .Language }}.

Respond with raw JSON only, exactly in this shape:
{"corrected": "<the corrected sentence>", "explanation": "<a short explanation of the changes>", "alternatives": ["<up to {{ .MaxAlternatives }} alternative phrasings in a {{ .Tone | lower }} tone>"]}`

// Prompter renders the outbound prompt. Templates come from PROMPT_DIR
// (correct.system.txt, correct.user.txt) when present.
type Prompter struct {
	system string
	user   *template.Template
}

func NewPrompter(dir string) (*Prompter, error) {
	system, err := util.LoadPrompt(dir, promptName, "system")
	if err != nil {
		return nil, err
	}
	if system == "" {
		system = DefaultSystemPrompt
	}
	user, err := util.LoadPrompt(dir, promptName, "user")
	if err != nil {
		return nil, err
	}
	if user == "" {
		user = DefaultUserPrompt
	}
	tpl, err := template.New(promptName).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(user)
	if err != nil {
		return nil, fmt.Errorf("prompt: parse %s.user: %w", promptName, err)
	}
	return &Prompter{system: system, user: tpl}, nil
}

// MustPrompter returns the built-in prompts.
func MustPrompter() *Prompter {
	p, err := NewPrompter("")
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Prompter) System() string { return p.system }

func (p *Prompter) Build(req Request) (string, error) {
	var b strings.Builder
	err := p.user.Execute(&b, struct {
		Sentence        string
		Language        string
		Tone            string
		MaxAlternatives int
	}{
		Sentence:        req.Sentence,
		Language:        string(req.Language),
		Tone:            string(req.Tone),
		MaxAlternatives: MaxAlternatives,
	})
	if err != nil {
		return "", fmt.Errorf("prompt: render: %w", err)
	}
	return b.String(), nil
}
