package httpapi

import "net/http"

// NewMux returns the raw mux so main() can wrap it in middleware and attach
// anything process-level (shutdown, pprof) itself.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Health + service info
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	mux.HandleFunc("/api", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Info,
	}))

	// Webhook: mail payload in, claim disposition out
	wh := WebhookHandler{Pipeline: d.Pipeline, Hub: d.Hub}
	mux.HandleFunc("/api/webhook", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  wh.Status,
		http.MethodPost: wh.Process,
	}))

	// Success (job-assigned) email parser
	suh := SuccessHandler{}
	mux.HandleFunc("/api/success", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  suh.Info,
		http.MethodPost: suh.Process,
	}))

	// Audit log browser
	lh := LogsHandler{Audit: d.Audit}
	mux.HandleFunc("/api/logs", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: lh.Serve,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
