package handle

import "net/http"

type healthResponse struct {
	Status    string          `json:"status"`
	Default   string          `json:"default"`
	Providers map[string]bool `json:"providers"`
}

func (h *Handle) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Default:   h.engs.Default,
		Providers: h.engs.Available(),
	})
}
