package grammar

import (
	"strings"

	"github.com/tidwall/gjson"

	"grammar-proxy/api/internal/util"
)

// Normalize turns raw provider text into a Result for req.
//
// The language guard runs first, so a mismatched sentence yields the
// rejection sentinel whatever the provider sent. Otherwise the reply is
// unfenced, a JSON object is extracted from it and coerced:
//   - corrected must be a string; an empty one is the model rejecting the
//     sentence and becomes the sentinel;
//   - explanation must be a non-empty string;
//   - alternatives keeps only non-blank strings, at most MaxAlternatives;
//     anything that is not an array becomes [].
func Normalize(raw string, req Request) (Result, error) {
	if LanguageMismatch(req.Sentence, req.Language) {
		return Rejection(req.Language), nil
	}

	obj, err := extractObject(raw)
	if err != nil {
		return Result{}, err
	}

	c := obj.Get("corrected")
	if c.Type != gjson.String {
		return Result{}, &ParseError{Kind: InvalidShape, Reason: "corrected is missing or not a string", Raw: raw}
	}
	corrected := strings.TrimSpace(c.Str)
	if corrected == "" {
		return Rejection(req.Language), nil
	}

	e := obj.Get("explanation")
	if e.Type != gjson.String || strings.TrimSpace(e.Str) == "" {
		return Result{}, &ParseError{Kind: InvalidShape, Reason: "explanation is missing or empty", Raw: raw}
	}

	return Result{
		Corrected:    corrected,
		Explanation:  strings.TrimSpace(e.Str),
		Alternatives: alternatives(obj.Get("alternatives")),
	}, nil
}

func extractObject(raw string) (gjson.Result, error) {
	cleaned := util.StripCodeFences(raw)
	if obj, ok := parseObject(cleaned); ok {
		return obj, nil
	}
	if sub, ok := util.OuterBraces(cleaned); ok {
		if obj, ok := parseObject(sub); ok {
			return obj, nil
		}
	}
	return gjson.Result{}, &ParseError{Kind: Unparsable, Raw: raw}
}

func parseObject(s string) (gjson.Result, bool) {
	if !gjson.Valid(s) {
		return gjson.Result{}, false
	}
	obj := gjson.Parse(s)
	return obj, obj.IsObject()
}

func alternatives(v gjson.Result) []string {
	out := make([]string, 0, MaxAlternatives)
	if !v.IsArray() {
		return out
	}
	v.ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.String {
			if s := strings.TrimSpace(item.Str); s != "" {
				out = append(out, s)
			}
		}
		return len(out) < MaxAlternatives
	})
	return out
}
