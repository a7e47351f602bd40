package httpapi

import (
	"fmt"
	"html/template"
	"net/http"

	"jobclaim-engine/internal/auditlog"
)

// LogsHandler is a read-only browser over the claim audit trail.
//
//	GET /api/logs              — HTML list page
//	GET /api/logs?id=X         — HTML detail page
//	GET /api/logs?id=X&raw=1   — the stored page HTML, rendered directly
//	GET /api/logs?json=1       — JSON list (rawHtml elided, htmlLength added)
//	GET /api/logs?id=X&json=1  — JSON single entry, rawHtml included
type LogsHandler struct {
	Audit auditlog.Store
}

type logListItem struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	JobAddress  string `json:"jobAddress,omitempty"`
	Timestamp   string `json:"timestamp"`
	URL         string `json:"url"`
	PageTitle   string `json:"pageTitle"`
	Reason      string `json:"reason,omitempty"`
	BodyPreview string `json:"bodyPreview,omitempty"`
	HTMLLength  int    `json:"htmlLength"`
}

func (h LogsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("id")

	if q.Get("json") == "1" {
		h.serveJSON(w, r, id)
		return
	}
	if id != "" && q.Get("raw") == "1" {
		h.serveRaw(w, r, id)
		return
	}
	if id != "" {
		h.serveDetail(w, r, id)
		return
	}
	h.serveList(w, r)
}

func (h LogsHandler) serveJSON(w http.ResponseWriter, r *http.Request, id string) {
	if id != "" {
		entry, err := h.Audit.ByID(r.Context(), id)
		if err != nil {
			WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
			return
		}
		if entry == nil {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]string{"error": fmt.Sprintf("Log %q not found", id)})
			return
		}
		writeJSON(w, entry)
		return
	}

	entries, err := h.Audit.Recent(r.Context(), 50)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	items := make([]logListItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, logListItem{
			ID:          e.ID,
			Type:        e.Type,
			JobAddress:  e.JobAddress,
			Timestamp:   e.Timestamp,
			URL:         e.URL,
			PageTitle:   e.PageTitle,
			Reason:      e.Reason,
			BodyPreview: e.BodyPreview,
			HTMLLength:  len(e.RawHTML),
		})
	}
	writeJSON(w, map[string]any{"count": len(items), "logs": items})
}

func (h LogsHandler) serveRaw(w http.ResponseWriter, r *http.Request, id string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	entry, err := h.Audit.ByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<h1>Log entry not found</h1>")
		return
	}
	if entry.RawHTML == "" {
		// Success entries never store page HTML.
		fmt.Fprintf(w, `<p>No raw HTML for this log (success entries do not store page HTML).</p><p><a href="/api/logs?id=%s">Back to log</a></p>`, template.URLQueryEscaper(id))
		return
	}
	fmt.Fprint(w, entry.RawHTML)
}

func (h LogsHandler) serveDetail(w http.ResponseWriter, r *http.Request, id string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	entry, err := h.Audit.ByID(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entry == nil {
		w.WriteHeader(http.StatusNotFound)
		_ = notFoundTmpl.Execute(w, id)
		return
	}
	_ = detailTmpl.Execute(w, newLogView(*entry))
}

func (h LogsHandler) serveList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Audit.Recent(r.Context(), 50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	views := make([]logView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newLogView(e))
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = listTmpl.Execute(w, views)
}

type logView struct {
	auditlog.Entry
	Title   string
	Badge   string
	HTMLLen int
}

func newLogView(e auditlog.Entry) logView {
	v := logView{Entry: e, Badge: "Error", Title: e.Reason, HTMLLen: len(e.RawHTML)}
	if e.Type == auditlog.TypeSuccess {
		v.Badge = "Success"
		v.Title = "Job accepted"
	}
	if v.Title == "" {
		v.Title = "Unknown error"
	}
	return v
}

var tmplFuncs = template.FuncMap{
	"kb": func(n int) string { return fmt.Sprintf("%.1f KB", float64(n)/1024) },
	"truncate": func(max int, s string) string {
		if len(s) > max {
			return s[:max] + "..."
		}
		return s
	},
}

const pageShell = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{template "title" .}} — jobclaim-engine</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 24px;
       background: #0f1117; color: #e1e4e8; line-height: 1.6; }
a { color: #58a6ff; text-decoration: none; }
a:hover { text-decoration: underline; }
h1 { font-size: 1.5rem; margin: 0 0 24px; color: #fff; }
.badge { display: inline-block; padding: 2px 8px; border-radius: 12px; font-size: 0.75rem; font-weight: 600; }
.badge-Error { background: #da3633; color: #fff; }
.badge-Success { background: #238636; color: #fff; }
.card { background: #161b22; border: 1px solid #30363d; border-radius: 8px; padding: 16px; margin-bottom: 12px; }
.card:hover { border-color: #58a6ff; }
.card-title { font-weight: 600; color: #fff; margin-bottom: 4px; }
.meta { font-size: 0.85rem; color: #8b949e; }
.meta span { margin-right: 16px; }
.empty { text-align: center; padding: 48px; color: #8b949e; background: #161b22;
         border-radius: 8px; border: 1px solid #30363d; }
.row { margin-bottom: 12px; }
.label { font-size: 0.8rem; text-transform: uppercase; color: #8b949e; }
.value { color: #e1e4e8; word-break: break-all; }
iframe { width: 100%; height: 600px; border: 1px solid #30363d; border-radius: 8px; background: #fff; }
</style>
</head>
<body>{{template "body" .}}</body>
</html>`

var listTmpl = template.Must(template.New("list").Funcs(tmplFuncs).Parse(pageShell + `
{{define "title"}}Job Logs{{end}}
{{define "body"}}
<h1>Job Logs</h1>
{{if not .}}
<div class="empty">
<p>No job logs yet.</p>
<p>Successes and failures are logged when the webhook processes job-offer emails.</p>
</div>
{{end}}
{{range .}}
<a href="/api/logs?id={{.ID}}" style="color:inherit;">
<div class="card">
<div class="card-title"><span class="badge badge-{{.Badge}}">{{.Badge}}</span> {{.Title}}</div>
<div class="meta">
<span>{{.Timestamp}}</span>
{{if .JobAddress}}<span>{{truncate 50 .JobAddress}}</span>{{end}}
<span>{{if .PageTitle}}{{.PageTitle}}{{else}}No title{{end}}</span>
{{if .HTMLLen}}<span>{{kb .HTMLLen}}</span>{{end}}
</div>
<div class="meta"><span>{{truncate 80 .URL}}</span></div>
</div>
</a>
{{end}}
{{end}}`))

var detailTmpl = template.Must(template.New("detail").Funcs(tmplFuncs).Parse(pageShell + `
{{define "title"}}Log {{.ID}}{{end}}
{{define "body"}}
<p><a href="/api/logs">&larr; Back to list</a></p>
<h1><span class="badge badge-{{.Badge}}">{{.Badge}}</span> {{.Title}}</h1>
<div class="row"><div class="label">Timestamp</div><div class="value">{{.Timestamp}}</div></div>
{{if .JobAddress}}<div class="row"><div class="label">Job Address</div><div class="value">{{.JobAddress}}</div></div>{{end}}
<div class="row"><div class="label">Page Title</div><div class="value">{{if .PageTitle}}{{.PageTitle}}{{else}}(none){{end}}</div></div>
<div class="row"><div class="label">URL</div><div class="value"><a href="{{.URL}}" target="_blank" rel="noopener">{{if .URL}}{{.URL}}{{else}}(none){{end}}</a></div></div>
{{if .BodyPreview}}<div class="row"><div class="label">Body Preview</div><div class="value">{{truncate 500 .BodyPreview}}</div></div>{{end}}
{{if .HTMLLen}}
<div class="row"><div class="label">Raw HTML Size</div><div class="value">{{kb .HTMLLen}}</div></div>
<p><a href="/api/logs?id={{.ID}}&raw=1" target="_blank">Open Raw HTML</a>
<a href="/api/logs?id={{.ID}}&json=1" target="_blank">View JSON</a></p>
<div class="row"><div class="label">HTML Preview</div>
<iframe src="/api/logs?id={{.ID}}&raw=1" sandbox="allow-same-origin"></iframe></div>
{{else}}
<p><a href="/api/logs?id={{.ID}}&json=1" target="_blank">View JSON</a></p>
{{end}}
{{end}}`))

var notFoundTmpl = template.Must(template.New("notfound").Funcs(tmplFuncs).Parse(pageShell + `
{{define "title"}}Log Not Found{{end}}
{{define "body"}}
<h1>Log Not Found</h1>
<p>No log entry with id <code>{{.}}</code></p>
<a href="/api/logs">&larr; Back to list</a>
{{end}}`))
