package imapwatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Payload is one matched email, ready for the pipeline. The duplicated field
// spellings match the two naming conventions the webhook endpoint accepts.
type Payload struct {
	Subject  string `json:"subject"`
	Subject2 string `json:"Subject"`
	Text     string `json:"text"`
	TextBody string `json:"TextBody"`
	HTML     string `json:"html"`
	HTMLBody string `json:"HtmlBody"`
}

func NewPayload(subject, text, html string) Payload {
	return Payload{
		Subject:  subject,
		Subject2: subject,
		Text:     text,
		TextBody: text,
		HTML:     html,
		HTMLBody: html,
	}
}

var forwardClient = &http.Client{Timeout: 15 * time.Second}

// forwardToWebhook POSTs the payload to webhookURL. Failures are logged, not
// retried; the claim window is short and a stale retry claims nothing.
func forwardToWebhook(ctx context.Context, webhookURL string, p Payload) error {
	if !strings.HasPrefix(webhookURL, "http") {
		return fmt.Errorf("webhook url %q is not http(s)", webhookURL)
	}

	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := forwardClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	log.Printf("[imap] webhook %s -> %d %s", webhookURL, res.StatusCode, clip(string(respBody), 200))
	return nil
}
