package httpapi

import (
	"net/http"
	"time"
)

type HealthHandler struct{}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}

// Info describes the service surface, handy when pointing a mail provider at
// the webhook for the first time.
func (h HealthHandler) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name": "jobclaim-engine",
		"endpoints": map[string]string{
			"health":  "GET  /health",
			"webhook": "POST /api/webhook",
			"success": "POST /api/success",
			"logs":    "GET  /api/logs",
			"events":  "GET  /events",
		},
	})
}
