package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"jobclaim-engine/internal/claim"
	"jobclaim-engine/internal/events"
	"jobclaim-engine/internal/pipeline"
	"jobclaim-engine/internal/policy"
)

type WebhookHandler struct {
	Pipeline *pipeline.Pipeline
	Hub      *events.Hub
}

// Status answers mail-provider health probes and shows the service area.
func (h WebhookHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":          "ok",
		"message":         "jobclaim-engine is running",
		"allowedZipCodes": policy.AllowedZipCodes,
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

// Process runs one inbound offer email through the claim pipeline.
//
// Skips (no accept link, zip outside the service area) are 200s: the pipeline
// did its job, there was just nothing to claim. A failed claim attempt is also
// a 200 carrying the attempt's outcome. Only a missing HTML body (400) or an
// audit-store fault (500) is an error to the caller.
func (h WebhookHandler) Process(w http.ResponseWriter, r *http.Request) {
	var p mailPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]any{
			"status":  "error",
			"message": "invalid JSON: " + err.Error(),
		})
		return
	}

	subject := p.subject()
	html := p.html()
	log.Printf("[webhook] received subject=%q html_len=%d", subject, len(html))

	if html == "" {
		log.Printf("[webhook] no HTML body, aborting")
		w.WriteHeader(http.StatusBadRequest)
		writeJSON(w, map[string]any{
			"status":  "error",
			"message": "No HTML body found in the payload",
		})
		return
	}

	disp, err := h.Pipeline.Handle(r.Context(), html)
	if err != nil {
		log.Printf("[webhook] pipeline error: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]any{
			"status":  "error",
			"message": "Internal server error",
			"detail":  err.Error(),
		})
		return
	}

	reqID := RequestIDFrom(r.Context())

	switch disp.Status {
	case pipeline.StatusNoLink:
		log.Printf("[webhook] no accept link, skipping")
		h.publish(reqID, events.TypeOfferSkipped, map[string]any{
			"reason":  "no_link",
			"subject": subject,
		})
		writeJSON(w, map[string]any{
			"status":  "skipped",
			"reason":  "No Accept Job link found in the email",
			"subject": subject,
		})

	case pipeline.StatusIneligible:
		log.Printf("[webhook] zip %q not allowed, skipping", disp.Offer.ZipCode)
		h.publish(reqID, events.TypeOfferSkipped, map[string]any{
			"reason":  "zip_not_allowed",
			"zipCode": disp.Offer.ZipCode,
			"subject": subject,
		})
		writeJSON(w, map[string]any{
			"status":          "skipped",
			"reason":          "Zip code not in allowed list",
			"zipCode":         disp.Offer.ZipCode,
			"allowedZipCodes": policy.AllowedZipCodes,
			"subject":         subject,
			"appliances":      disp.Offer.Appliances,
		})

	case pipeline.StatusClaimed:
		res := disp.Claim
		status := "completed"
		evType := events.TypeClaimFailed
		if res.Outcome == claim.OutcomeAccepted {
			status = "accepted"
			evType = events.TypeClaimAccepted
		}
		log.Printf("[webhook] done, outcome=%s", res.Outcome)
		h.publish(reqID, evType, map[string]any{
			"outcome":    string(res.Outcome),
			"zipCode":    disp.Offer.ZipCode,
			"jobAddress": disp.Offer.JobAddress,
			"url":        res.URL,
		})
		writeJSON(w, map[string]any{
			"status":       status,
			"subject":      subject,
			"zipCode":      disp.Offer.ZipCode,
			"jobAddress":   disp.Offer.JobAddress,
			"appliances":   disp.Offer.Appliances,
			"acceptUrl":    disp.Offer.AcceptURL,
			"acceptResult": res,
			"receivedAt":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h WebhookHandler) publish(reqID, typ string, data map[string]any) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(events.MakeEvent(reqID, typ, 1, data))
}
