package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Envelope wraps every JSON response.
type Envelope struct {
	Status    string    `json:"status"` // success | error
	Data      any       `json:"data,omitempty"`
	Error     *apiError `json:"error,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func success(w http.ResponseWriter, r *http.Request, log *logrus.Entry, status int, data any) {
	writeJSON(w, log, status, Envelope{Status: "success", Data: data, RequestID: r.Header.Get(requestIDHeader)})
}

func fail(w http.ResponseWriter, r *http.Request, log *logrus.Entry, status int, e apiError) {
	writeJSON(w, log, status, Envelope{Status: "error", Error: &e, RequestID: r.Header.Get(requestIDHeader)})
}
