package claim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jobclaim-engine/internal/auditlog"
)

func newTestExecutor(audit auditlog.Store) *Executor {
	return NewExecutor(audit, Options{
		Timeout:    2 * time.Second,
		RatePerSec: 1000, // don't slow tests down
		RateBurst:  1000,
	})
}

func TestExecutor_Accepted(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "Chrome") {
			t.Errorf("missing browser User-Agent, got %q", ua)
		}
		w.Write([]byte(`<html><head><title>Dispatch</title></head><body><h1>Job accepted!</h1></body></html>`))
	}))
	defer srv.Close()

	audit := auditlog.NewMemoryStore()
	res, err := newTestExecutor(audit).Run(context.Background(), srv.URL, "1611 lacey ave")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Outcome != OutcomeAccepted {
		t.Fatalf("Outcome = %q, want accepted", res.Outcome)
	}
	if res.HTTPStatus != 200 || res.PageTitle != "Dispatch" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.SuccessLogID == "" || res.ErrorLogID != "" {
		t.Fatalf("want success log id only, got %+v", res)
	}

	if audit.Len() != 1 {
		t.Fatalf("audit entries = %d, want exactly 1", audit.Len())
	}
	e, _ := audit.ByID(context.Background(), res.SuccessLogID)
	if e == nil || e.Type != auditlog.TypeSuccess {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	// Success entries never keep the page HTML.
	if e.RawHTML != "" {
		t.Fatalf("success entry stored raw HTML: %q", e.RawHTML)
	}
	if e.JobAddress != "1611 lacey ave" {
		t.Fatalf("JobAddress = %q", e.JobAddress)
	}
}

func TestExecutor_AlreadyTaken(t *testing.T) {
	t.Parallel()

	page := `<html><title>Dispatch</title><body>Job accepted! Wait, no: already claimed by another tech.</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	audit := auditlog.NewMemoryStore()
	res, err := newTestExecutor(audit).Run(context.Background(), srv.URL, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Outcome != OutcomeAlreadyTaken {
		t.Fatalf("Outcome = %q, want already_taken", res.Outcome)
	}
	e, _ := audit.ByID(context.Background(), res.ErrorLogID)
	if e == nil || e.Type != auditlog.TypeError {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	if e.Reason != "Job already taken or expired" {
		t.Fatalf("Reason = %q", e.Reason)
	}
	// Error entries keep the full page for inspection.
	if !strings.Contains(e.RawHTML, "already claimed") {
		t.Fatalf("RawHTML not preserved: %q", e.RawHTML)
	}
}

func TestExecutor_UnexpectedPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Please sign in to your account to continue.</body></html>`))
	}))
	defer srv.Close()

	audit := auditlog.NewMemoryStore()
	res, err := newTestExecutor(audit).Run(context.Background(), srv.URL, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Outcome != OutcomeError {
		t.Fatalf("Outcome = %q, want error", res.Outcome)
	}
	e, _ := audit.ByID(context.Background(), res.ErrorLogID)
	if e == nil || !strings.HasPrefix(e.Reason, "Unexpected response: ") {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	if !strings.Contains(e.Reason, "Please sign in") {
		t.Fatalf("Reason should carry the preview: %q", e.Reason)
	}
}

func TestExecutor_Non2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	audit := auditlog.NewMemoryStore()
	res, err := newTestExecutor(audit).Run(context.Background(), srv.URL, "addr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Outcome != OutcomeError || res.HTTPStatus != http.StatusGone {
		t.Fatalf("unexpected result: %+v", res)
	}
	e, _ := audit.ByID(context.Background(), res.ErrorLogID)
	if e == nil || !strings.HasPrefix(e.Reason, "Request failed: 410") {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	if e.PageTitle != "" || e.RawHTML != "" {
		t.Fatalf("transport failures must not store a page: %+v", e)
	}
	if audit.Len() != 1 {
		t.Fatalf("audit entries = %d, want exactly 1", audit.Len())
	}
}

func TestExecutor_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	audit := auditlog.NewMemoryStore()
	ex := NewExecutor(audit, Options{Timeout: 100 * time.Millisecond, RatePerSec: 1000, RateBurst: 10})

	res, err := ex.Run(context.Background(), srv.URL, "addr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Outcome != OutcomeError || res.HTTPStatus != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	e, _ := audit.ByID(context.Background(), res.ErrorLogID)
	if e == nil || !strings.HasPrefix(e.Reason, "Request failed:") {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
}

func TestExecutor_FollowsRedirects(t *testing.T) {
	t.Parallel()

	var final *httptest.Server
	final = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>Job accepted!</body></html>`))
	}))
	defer final.Close()

	hop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/done", http.StatusFound)
	}))
	defer hop.Close()

	audit := auditlog.NewMemoryStore()
	res, err := newTestExecutor(audit).Run(context.Background(), hop.URL, "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Outcome != OutcomeAccepted {
		t.Fatalf("Outcome = %q", res.Outcome)
	}
	// Result and audit entry carry the post-redirect URL.
	if res.URL != final.URL+"/done" {
		t.Fatalf("URL = %q, want %q", res.URL, final.URL+"/done")
	}
}
