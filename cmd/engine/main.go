package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"jobclaim-engine/internal/auditlog"
	"jobclaim-engine/internal/claim"
	"jobclaim-engine/internal/config"
	"jobclaim-engine/internal/dedup"
	"jobclaim-engine/internal/events"
	"jobclaim-engine/internal/httpapi"
	"jobclaim-engine/internal/imapwatch"
	"jobclaim-engine/internal/pipeline"
	"jobclaim-engine/internal/secrets"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[engine] %v", err)
	}
}

func run() error {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("[engine] loaded .env")
	}

	dataDir := os.Getenv("JOBCLAIM_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	// One claimer per data dir. The in-memory dedup set does not coordinate
	// across processes, and two watchers on one mailbox would double-claim.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !locked {
		log.Printf("[engine] another instance holds %s, exiting", lock.Path())
		return errors.New("data dir already locked")
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		return err
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, warning := range vr.Warnings {
			log.Printf("[config] warning: %s", warning)
		}
		if !vr.OK() {
			for _, e := range vr.Errors {
				log.Printf("[config] error: %s", e)
			}
			return cfg, errors.New("config invalid, fix " + userCfgPath)
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		return err
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "jobclaim.db")
	audit, err := auditlog.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer audit.Close()

	exec := claim.NewExecutor(audit, claim.Options{
		Timeout:      time.Duration(cfg.Claim.TimeoutSeconds) * time.Second,
		MaxRedirects: cfg.Claim.MaxRedirects,
		RatePerSec:   cfg.Claim.RatePerSec,
		RateBurst:    cfg.Claim.RateBurst,
	})
	pipe := pipeline.New(exec)
	hub := events.NewHub()

	mux := httpapi.NewMux(httpapi.Deps{
		Pipeline:    pipe,
		Audit:       audit,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.Recover,
		httpapi.AccessLog,
		httpapi.Cors,
	)

	addr := net.JoinHostPort("", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[engine] listening on http://localhost:%d (db=%s)", cfg.App.Port, dbPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	})

	if cfg.IMAP.Enabled {
		password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(cfg))
		if err != nil {
			return err
		}
		seen := newDedupStore(cfg)
		watcher := imapwatch.New(cfg, password, seen, func(ctx context.Context, p imapwatch.Payload) {
			handleInProcess(ctx, pipe, hub, p)
		})
		g.Go(func() error {
			// Watcher failure is fatal: a claimer that cannot see mail is
			// not degraded, it is down.
			return watcher.Run(ctx)
		})
	} else {
		log.Printf("[engine] imap watcher disabled, webhook-only mode")
	}

	return g.Wait()
}

// newDedupStore picks the shared redis set when configured, else the
// per-process bounded set.
func newDedupStore(cfg config.Config) dedup.Store {
	if cfg.Dedup.RedisAddr != "" {
		log.Printf("[engine] dedup via redis at %s", cfg.Dedup.RedisAddr)
		return dedup.NewRedisSet(cfg.Dedup.RedisAddr, cfg.Dedup.RedisKey, 0)
	}
	return dedup.NewSeenSet(cfg.IMAP.DedupeMax)
}

func handleInProcess(ctx context.Context, pipe *pipeline.Pipeline, hub *events.Hub, p imapwatch.Payload) {
	disp, err := pipe.Handle(ctx, p.HTML)
	if err != nil {
		log.Printf("[engine] pipeline error: %v", err)
		return
	}
	switch disp.Status {
	case pipeline.StatusNoLink:
		log.Printf("[engine] offer skipped: no accept link")
		hub.Publish(events.MakeEvent("", events.TypeOfferSkipped, 1, map[string]any{"reason": "no_link"}))
	case pipeline.StatusIneligible:
		log.Printf("[engine] offer skipped: zip %q not in service area", disp.Offer.ZipCode)
		hub.Publish(events.MakeEvent("", events.TypeOfferSkipped, 1, map[string]any{
			"reason":  "zip_not_allowed",
			"zipCode": disp.Offer.ZipCode,
		}))
	case pipeline.StatusClaimed:
		log.Printf("[engine] claim finished: outcome=%s url=%s", disp.Claim.Outcome, disp.Claim.URL)
		typ := events.TypeClaimFailed
		if disp.Claim.Outcome == claim.OutcomeAccepted {
			typ = events.TypeClaimAccepted
		}
		hub.Publish(events.MakeEvent("", typ, 1, map[string]any{
			"outcome":    string(disp.Claim.Outcome),
			"zipCode":    disp.Offer.ZipCode,
			"jobAddress": disp.Offer.JobAddress,
			"url":        disp.Claim.URL,
		}))
	}
}
