package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"jobclaim-engine/internal/extract"
)

// SuccessHandler parses job-assignment confirmation emails into structured
// job info. Parsing only; nothing is claimed or persisted here.
type SuccessHandler struct{}

func (h SuccessHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"message": "POST success email here to parse job info",
	})
}

func (h SuccessHandler) Process(w http.ResponseWriter, r *http.Request) {
	var p mailPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]any{
			"status":  "error",
			"message": "invalid JSON: " + err.Error(),
		})
		return
	}

	html := p.html()
	if html == "" {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]any{
			"status":  "error",
			"message": "No HTML body found in the payload",
		})
		return
	}

	job := extract.ParseSuccess(html)
	log.Printf("[success] parsed assignment email subject=%q assignedTo=%q", p.subject(), job.AssignedTo)

	writeJSON(w, map[string]any{
		"status":     "ok",
		"message":    "Success email parsed",
		"subject":    p.subject(),
		"receivedAt": time.Now().UTC().Format(time.RFC3339),
		"job":        job,
	})
}
