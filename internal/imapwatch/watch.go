// Package imapwatch keeps an IMAP connection open, watches the mailbox for
// new messages, and routes matching offer emails into the claim pipeline —
// either in-process or via webhook POST to another instance.
package imapwatch

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"jobclaim-engine/internal/config"
	"jobclaim-engine/internal/dedup"
)

// HandlerFunc consumes one matched email in-process. Used when no webhook
// forwarding target is configured.
type HandlerFunc func(ctx context.Context, p Payload)

// Watcher is the long-lived mail front end. One instance per process; the
// dedup store is injected so a shared one can replace the in-memory set.
type Watcher struct {
	cfg     config.Config
	pass    string
	seen    dedup.Store
	handler HandlerFunc

	client      *imapclient.Client
	lastCount   uint32
	uidValidity uint32

	mu      sync.Mutex
	pending uint32
	kick    chan struct{}
}

func New(cfg config.Config, password string, seen dedup.Store, handler HandlerFunc) *Watcher {
	return &Watcher{
		cfg:     cfg,
		pass:    password,
		seen:    seen,
		handler: handler,
		kick:    make(chan struct{}, 1),
	}
}

// Bounded-retry connect states. Connecting loops until an attempt succeeds or
// RetryMax attempts have failed; Failed is terminal.
type connState int

const (
	stateConnecting connState = iota
	stateConnected
	stateFailed
)

// withRetry drives one named step (dial, select) through the retry state
// machine: RetryMax attempts, RetryDelaySeconds apart, then a terminal error.
func (w *Watcher) withRetry(ctx context.Context, name string, attempt func() error) error {
	delay := time.Duration(w.cfg.IMAP.RetryDelaySeconds) * time.Second
	state := stateConnecting
	tries := 0
	var lastErr error

	for {
		switch state {
		case stateConnecting:
			tries++
			err := attempt()
			if err == nil {
				state = stateConnected
				continue
			}
			lastErr = err
			log.Printf("[imap] %s failed (attempt %d/%d): %v", name, tries, w.cfg.IMAP.RetryMax, err)
			if tries >= w.cfg.IMAP.RetryMax {
				state = stateFailed
				continue
			}
			log.Printf("[imap] retrying in %s...", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}

		case stateConnected:
			return nil

		case stateFailed:
			return fmt.Errorf("%s: giving up after %d attempts: %w", name, tries, lastErr)
		}
	}
}

// noteExists records a new message count from the server and wakes the watch
// loop. Counts coalesce: only the highest seen so far matters.
func (w *Watcher) noteExists(n uint32) {
	w.mu.Lock()
	if n > w.pending {
		w.pending = n
	}
	w.mu.Unlock()

	select {
	case w.kick <- struct{}{}:
	default:
	}
}

// Run connects (with bounded retry), selects the mailbox and watches it until
// ctx is cancelled or the connection drops. The mailbox is unselected and the
// session logged out on every exit path, in that order.
func (w *Watcher) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", w.cfg.IMAP.Host, w.cfg.IMAP.Port)
	log.Printf("[imap] connecting to %s as %s (pass: %s)...", addr, w.cfg.IMAP.Username, maskPass(w.pass))

	err := w.withRetry(ctx, "connect", func() error {
		c, err := imapclient.DialTLS(addr, &imapclient.Options{
			TLSConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: w.cfg.IMAP.Host,
			},
			UnilateralDataHandler: &imapclient.UnilateralDataHandler{
				Mailbox: func(d *imapclient.UnilateralDataMailbox) {
					if d.NumMessages != nil {
						w.noteExists(*d.NumMessages)
					}
				},
			},
		})
		if err != nil {
			return fmt.Errorf("dial tls: %w", err)
		}
		if err := c.Login(w.cfg.IMAP.Username, w.pass).Wait(); err != nil {
			_ = c.Close()
			return fmt.Errorf("login: %w", err)
		}
		w.client = c
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("[imap] connected as %s@%s", w.cfg.IMAP.Username, w.cfg.IMAP.Host)

	defer func() {
		// Release the mailbox before the session, whatever ended the loop.
		if err := w.client.Unselect().Wait(); err != nil {
			log.Printf("[imap] unselect: %v", err)
		}
		if err := w.client.Logout().Wait(); err != nil {
			log.Printf("[imap] logout: %v", err)
		}
		_ = w.client.Close()
		log.Printf("[imap] watch stopped.")
	}()

	err = w.withRetry(ctx, "select mailbox", func() error {
		data, err := w.client.Select(w.cfg.IMAP.Mailbox, &imap.SelectOptions{ReadOnly: true}).Wait()
		if err != nil {
			return err
		}
		w.lastCount = data.NumMessages
		w.uidValidity = data.UIDValidity
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[imap] mailbox %q opened, message count: %d", w.cfg.IMAP.Mailbox, w.lastCount)
	if w.cfg.IMAP.WebhookURL != "" {
		log.Printf("[imap] webhook forwarding ON -> %s", w.cfg.IMAP.WebhookURL)
	} else {
		log.Printf("[imap] webhook forwarding OFF, handling offers in-process")
	}
	log.Printf("[imap] watching for new messages")

	return w.watch(ctx)
}

// watch alternates between IDLE and batch processing. New EXISTS counts that
// arrive mid-batch coalesce into the next wake-up rather than a parallel scan.
func (w *Watcher) watch(ctx context.Context) error {
	for {
		idleCmd, err := w.client.Idle()
		if err != nil {
			return fmt.Errorf("imap idle: %w", err)
		}

		idleDone := make(chan error, 1)
		go func() { idleDone <- idleCmd.Wait() }()

		select {
		case <-ctx.Done():
			_ = idleCmd.Close()
			<-idleDone
			return nil

		case err := <-idleDone:
			// Idle ended on its own: server hangup or dropped connection.
			if err != nil {
				return fmt.Errorf("imap connection lost: %w", err)
			}

		case <-w.kick:
			if err := idleCmd.Close(); err != nil {
				return fmt.Errorf("imap idle stop: %w", err)
			}
			<-idleDone
			w.processNew(ctx)
		}
	}
}

// processNew fetches every message past the last known count and runs each
// through dedup, filters and routing. Fetch errors skip the batch; the next
// EXISTS retries it because lastCount only advances on success.
func (w *Watcher) processNew(ctx context.Context) {
	w.mu.Lock()
	count := w.pending
	w.mu.Unlock()
	if count <= w.lastCount {
		return
	}

	var set imap.SeqSet
	set.AddRange(w.lastCount+1, 0)

	bodyAll := &imap.FetchItemBodySection{
		Specifier: imap.PartSpecifierNone,
		Peek:      true,
	}
	fetchCmd := w.client.Fetch(set, &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})

	for {
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			log.Printf("[imap] fetch collect: %v", err)
			continue
		}
		w.handleMessage(ctx, buf, bodyAll)
	}

	if err := fetchCmd.Close(); err != nil {
		log.Printf("[imap] fetch new messages failed: %v", err)
		return
	}
	w.lastCount = count
}

func (w *Watcher) handleMessage(ctx context.Context, buf *imapclient.FetchMessageBuffer, bodyAll *imap.FetchItemBodySection) {
	var raw []byte
	if b := buf.FindBodySection(bodyAll); b != nil {
		raw = b
	}

	var envSubject, envMessageID string
	var from []imap.Address
	if buf.Envelope != nil {
		envSubject = buf.Envelope.Subject
		envMessageID = buf.Envelope.MessageID
		from = buf.Envelope.From
	}

	parsedID, bodyText, htmlBody, subject := parseRFC822(raw, envSubject)
	if envMessageID != "" {
		parsedID = envMessageID
	}
	subject = decodeRFC2047(subject)

	key := messageKey(parsedID, buf.UID, w.uidValidity)
	added, err := w.seen.Add(ctx, key)
	if err != nil {
		// A broken dedup store must not silently drop offers; process anyway.
		log.Printf("[imap] dedup store error for %s: %v", key, err)
	} else if !added {
		return
	}

	if !subjectMatches(subject, w.cfg.IMAP.SubjectKeywords) {
		return
	}
	if !senderMatches(from, w.cfg.IMAP.AllowedSenders) {
		return
	}

	preview := bodyText
	if preview == "" {
		preview = htmlToText(htmlBody)
	}
	log.Printf("[imap] matched email uid=%d subject=%q from=%s", buf.UID, subject, joinAddrs(from))
	log.Printf("[imap]   body preview: %s", clip(preview, 200))

	p := NewPayload(subject, bodyText, htmlBody)
	if w.cfg.IMAP.WebhookURL != "" {
		if err := forwardToWebhook(ctx, w.cfg.IMAP.WebhookURL, p); err != nil {
			log.Printf("[imap] webhook forward failed: %v", err)
		}
		return
	}
	if w.handler != nil {
		w.handler(ctx, p)
	}
}

func joinAddrs(addrs []imap.Address) string {
	parts := make([]string, 0, len(addrs))
	for i := range addrs {
		if a := addrs[i].Addr(); a != "" {
			parts = append(parts, a)
		}
	}
	if len(parts) == 0 {
		return "(unknown)"
	}
	return parts[0]
}

func maskPass(pass string) string {
	if pass == "" {
		return "(empty)"
	}
	if len(pass) <= 2 {
		return "**"
	}
	n := len(pass) - 1
	if n > 8 {
		n = 8
	}
	out := pass[:1]
	for i := 0; i < n; i++ {
		out += "*"
	}
	return out
}
