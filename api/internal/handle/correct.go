package handle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"grammar-proxy/api/internal/grammar"
	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/util"
)

const maxBodyBytes = 64 << 10

const (
	msgMethodNotAllowed = "Method not allowed"
	msgInvalidJSON      = "Invalid JSON body"
	msgTooLarge         = "Request body too large"
	msgUnknownProvider  = "Unknown provider"
	msgInvalidResponse  = "Invalid AI response"
	msgTimeout          = "AI provider timed out"
)

// CorrectRequest is the inbound body. Sentence is decoded loosely so that a
// non-string value reads as missing rather than as malformed JSON.
type CorrectRequest struct {
	Sentence any    `json:"sentence"`
	Language string `json:"language"`
	Tone     string `json:"tone"`
	LLMName  string `json:"llm_name"`
}

// Correct serves POST /api/correct.
func (h *Handle) Correct(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body CorrectRequest
	if err := decodeBody(r.Body, &body); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return
	}

	sentence, _ := body.Sentence.(string)
	req, err := grammar.NewRequest(sentence, body.Language, body.Tone)
	if err != nil {
		h.writeCorrectError(w, r, err)
		return
	}
	if name := strings.TrimSpace(body.LLMName); name != "" {
		if _, ok := llm.Canonical(name); !ok {
			writeError(w, http.StatusBadRequest, msgUnknownProvider)
			return
		}
	}

	res, err := h.svc.Correct(r.Context(), req, body.LLMName)
	if err != nil {
		h.writeCorrectError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

var errTrailingData = errors.New("trailing data after JSON body")

// decodeBody reads exactly one JSON value from r. An empty body decodes to
// the zero value; anything after the value other than whitespace is an error.
func decodeBody(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	var extra json.RawMessage
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return nil
	case err != nil:
		return err
	default:
		return errTrailingData
	}
}

// writeCorrectError maps the error taxonomy onto status codes. Provider and
// parse details stay in the server log.
func (h *Handle) writeCorrectError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *grammar.ValidationError
		ue *llm.UnknownEngineError
		nc *llm.NotConfiguredError
		te *grammar.TimeoutError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Msg)
	case errors.As(err, &ue):
		writeError(w, http.StatusBadRequest, msgUnknownProvider)
	case errors.As(err, &nc):
		h.log.WithField("request_id", util.RequestID(r.Context())).WithError(err).Error("provider credential missing")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("API key not configured. Set %s on the server.", nc.EnvVar))
	case errors.As(err, &te):
		writeError(w, http.StatusGatewayTimeout, msgTimeout)
	case errors.Is(err, context.Canceled):
		h.log.WithField("request_id", util.RequestID(r.Context())).Info("client went away")
		writeError(w, http.StatusServiceUnavailable, "Request cancelled")
	default:
		writeError(w, http.StatusInternalServerError, msgInvalidResponse)
	}
}
