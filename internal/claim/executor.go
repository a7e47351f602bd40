// internal/claim/executor.go
package claim

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"jobclaim-engine/internal/auditlog"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultMaxRedirects = 5
	previewLen          = 500
	reasonClipLen       = 200
	maxBodyBytes        = 4 << 20
)

// browserHeaders make the claim GET look like a normal browser visit; the
// dispatch platform serves an interstitial to obvious bots.
var browserHeaders = map[string]string{
	"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
}

// Result is what one claim attempt produced. Exactly one audit entry backs it:
// SuccessLogID for accepted claims, ErrorLogID for everything else.
type Result struct {
	HTTPStatus   int     `json:"httpStatus"`
	URL          string  `json:"url"` // final URL after redirects
	PageTitle    string  `json:"pageTitle,omitempty"`
	Outcome      Outcome `json:"outcome"`
	BodyPreview  string  `json:"bodyPreview,omitempty"`
	Detail       string  `json:"error,omitempty"`
	ErrorLogID   string  `json:"errorLogId,omitempty"`
	SuccessLogID string  `json:"successLogId,omitempty"`
}

// Executor visits accept URLs, classifies the response and writes the audit
// trail. Safe for concurrent use.
type Executor struct {
	client  *http.Client
	limiter *HostLimiter
	audit   auditlog.Store
}

type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	RatePerSec   float64
	RateBurst    int
}

func NewExecutor(audit auditlog.Store, opts Options) *Executor {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = defaultMaxRedirects
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 1
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 2
	}

	return &Executor{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= opts.MaxRedirects {
					return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
				}
				return nil
			},
		},
		limiter: NewHostLimiter(opts.RatePerSec, opts.RateBurst),
		audit:   audit,
	}
}

// Run visits url once, classifies the page, and writes exactly one audit
// entry. Claim-level failures (network, timeout, non-2xx, "already taken",
// unreadable page) come back as a Result, not an error; the returned error is
// reserved for the audit store itself failing.
func (e *Executor) Run(ctx context.Context, url, jobAddress string) (Result, error) {
	if err := e.limiter.WaitURL(ctx, url); err != nil {
		return e.requestFailed(ctx, url, jobAddress, 0, err.Error())
	}

	log.Printf("[claim] visiting accept URL: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return e.requestFailed(ctx, url, jobAddress, 0, err.Error())
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return e.requestFailed(ctx, url, jobAddress, 0, err.Error())
	}
	defer resp.Body.Close()

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return e.requestFailed(ctx, finalURL, jobAddress, resp.StatusCode, resp.Status)
	}

	rawHTML, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return e.requestFailed(ctx, finalURL, jobAddress, resp.StatusCode, "read body: "+err.Error())
	}

	pageTitle, bodyText := renderPage(string(rawHTML))
	preview := clip(bodyText, previewLen)

	log.Printf("[claim] response: HTTP %d, title=%q finalURL=%s", resp.StatusCode, pageTitle, finalURL)

	res := Result{
		HTTPStatus:  resp.StatusCode,
		URL:         finalURL,
		PageTitle:   pageTitle,
		Outcome:     Classify(bodyText),
		BodyPreview: preview,
	}

	if res.Outcome == OutcomeAccepted {
		id, err := e.audit.Insert(ctx, auditlog.Entry{
			Type:        auditlog.TypeSuccess,
			URL:         finalURL,
			PageTitle:   pageTitle,
			BodyPreview: preview,
			JobAddress:  jobAddress,
		})
		if err != nil {
			return res, fmt.Errorf("log success: %w", err)
		}
		res.SuccessLogID = id
		log.Printf("[claim] outcome=accepted logId=%s", id)
		return res, nil
	}

	reason := "Job already taken or expired"
	if res.Outcome != OutcomeAlreadyTaken {
		reason = "Unexpected response: " + clip(preview, reasonClipLen)
	}

	// Failures keep the whole page so the incident can be inspected later.
	id, err := e.audit.Insert(ctx, auditlog.Entry{
		Type:        auditlog.TypeError,
		URL:         finalURL,
		PageTitle:   pageTitle,
		Reason:      reason,
		BodyPreview: preview,
		RawHTML:     string(rawHTML),
		JobAddress:  jobAddress,
	})
	if err != nil {
		return res, fmt.Errorf("log incident: %w", err)
	}
	res.ErrorLogID = id
	log.Printf("[claim] outcome=%s logId=%s", res.Outcome, id)
	return res, nil
}

// requestFailed records a transport-level failure (no page to show) and
// returns the matching error result.
func (e *Executor) requestFailed(ctx context.Context, url, jobAddress string, status int, detail string) (Result, error) {
	statusPart := "network"
	if status != 0 {
		statusPart = fmt.Sprintf("%d", status)
	}
	reason := fmt.Sprintf("Request failed: %s — %s", statusPart, detail)
	log.Printf("[claim] %s", reason)

	// The request context may already be dead (timeout); the audit write still
	// has to land.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}

	id, err := e.audit.Insert(ctx, auditlog.Entry{
		Type:       auditlog.TypeError,
		URL:        url,
		Reason:     reason,
		JobAddress: jobAddress,
	})
	if err != nil {
		return Result{}, fmt.Errorf("log incident: %w", err)
	}

	return Result{
		HTTPStatus: status,
		URL:        url,
		Outcome:    OutcomeError,
		Detail:     detail,
		ErrorLogID: id,
	}, nil
}

// renderPage parses the response HTML and returns the document title plus the
// visible body text with whitespace collapsed.
func renderPage(html string) (title, bodyText string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", strings.Join(strings.Fields(html), " ")
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	bodyText = strings.Join(strings.Fields(doc.Find("body").Text()), " ")
	return title, bodyText
}

func clip(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
