package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleYAML = `
app:
  port: 3100
imap:
  enabled: true
  host: imap.gmail.com
  username: dispatch@example.com
  subject_keywords: ["New Job", " new job ", ""]
  allowed_senders: ["dispatch.example.com"]
  webhook_url: " http://localhost:3100/api/webhook "
claim:
  timeout_seconds: 15
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadAndNormalize(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeTemp(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	out, vr := NormalizeAndValidate(cfg)
	if !vr.OK() {
		t.Fatalf("validation errors: %v", vr.Errors)
	}

	// Keyword list is trimmed and case-insensitively deduped.
	if len(out.IMAP.SubjectKeywords) != 1 || out.IMAP.SubjectKeywords[0] != "New Job" {
		t.Fatalf("SubjectKeywords = %v", out.IMAP.SubjectKeywords)
	}
	if out.IMAP.WebhookURL != "http://localhost:3100/api/webhook" {
		t.Fatalf("WebhookURL = %q", out.IMAP.WebhookURL)
	}

	// Defaults fill in.
	if out.IMAP.Port != 993 || out.IMAP.Mailbox != "INBOX" {
		t.Fatalf("imap defaults missing: %+v", out.IMAP)
	}
	if out.IMAP.RetryMax != 5 || out.IMAP.RetryDelaySeconds != 5 || out.IMAP.DedupeMax != 10_000 {
		t.Fatalf("retry defaults missing: %+v", out.IMAP)
	}
	if out.Claim.MaxRedirects != 5 || out.Claim.RatePerSec != 1 {
		t.Fatalf("claim defaults missing: %+v", out.Claim)
	}
}

func TestNormalizeAndValidate_Errors(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.IMAP.Enabled = true
	cfg.IMAP.WebhookURL = "localhost:3000" // missing scheme

	_, vr := NormalizeAndValidate(cfg)
	if vr.OK() {
		t.Fatal("expected validation errors")
	}
	if len(vr.Errors) != 3 {
		t.Fatalf("errors = %v, want host/username/webhook_url", vr.Errors)
	}
}

func TestEnsureUserConfig_CopiesDefaultOnce(t *testing.T) {
	t.Parallel()

	defaultPath := writeTemp(t, sampleYAML)
	dataDir := t.TempDir()

	p1, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		t.Fatalf("EnsureUserConfig: %v", err)
	}

	// A second call must not clobber user edits.
	if err := os.WriteFile(p1, []byte("app:\n  port: 9999\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p2, err := EnsureUserConfig(dataDir, defaultPath)
	if err != nil {
		t.Fatalf("EnsureUserConfig (2nd): %v", err)
	}
	if p1 != p2 {
		t.Fatalf("paths differ: %q vs %q", p1, p2)
	}
	cfg, err := Load(p2)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.App.Port != 9999 {
		t.Fatalf("user config was overwritten: %+v", cfg.App)
	}
}

func TestSaveAtomic_RejectsInvalid(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.IMAP.Enabled = true // no host/username

	if err := SaveAtomic(filepath.Join(t.TempDir(), "config.yml"), cfg); err == nil {
		t.Fatal("SaveAtomic should refuse an invalid config")
	}
}
