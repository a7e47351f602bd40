// Package auditlog persists one record per claim attempt: successes keep a
// body preview, failures additionally keep the raw page HTML for inspection.
package auditlog

import "context"

const (
	TypeError   = "error"
	TypeSuccess = "success"
)

// Entry is one claim attempt's outcome.
type Entry struct {
	ID          string `json:"id"`
	Timestamp   string `json:"timestamp"` // RFC3339
	Type        string `json:"type"`      // "error" or "success"
	URL         string `json:"url"`
	PageTitle   string `json:"pageTitle"`
	Reason      string `json:"reason,omitempty"`
	BodyPreview string `json:"bodyPreview,omitempty"`
	RawHTML     string `json:"rawHtml,omitempty"` // error entries only
	JobAddress  string `json:"jobAddress,omitempty"`
}

// Store is the audit sink. Recent returns entries newest first, capped at 50.
type Store interface {
	Insert(ctx context.Context, e Entry) (id string, err error)
	Recent(ctx context.Context, limit int) ([]Entry, error)
	ByID(ctx context.Context, id string) (*Entry, error)
}
