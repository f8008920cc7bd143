package handle

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"grammar-proxy/api/internal/grammar"
	"grammar-proxy/api/internal/llm"
)

// Corrector is satisfied by *grammar.Service.
type Corrector interface {
	Correct(ctx context.Context, req grammar.Request, llmName string) (grammar.Result, error)
}

type Handle struct {
	svc  Corrector
	engs *llm.Engines
	log  logrus.FieldLogger
}

func New(svc Corrector, engs *llm.Engines, log logrus.FieldLogger) *Handle {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handle{
		svc:  svc,
		engs: engs,
		log:  log,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}
