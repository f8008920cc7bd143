package util

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var promptNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// LoadPrompt reads <dir>/<name>.<tp>.txt. It returns ("", nil) when dir is
// empty or the file is absent so callers can fall back to a built-in prompt.
func LoadPrompt(dir, name, tp string) (string, error) {
	if dir == "" {
		return "", nil
	}
	if !promptNameRe.MatchString(name) || !promptNameRe.MatchString(tp) {
		return "", fmt.Errorf("prompt: invalid name %q.%q", name, tp)
	}
	p := filepath.Join(dir, fmt.Sprintf("%s.%s.txt", name, tp))
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("prompt: read %s: %w", p, err)
	}
	return strings.TrimSpace(string(b)), nil
}
