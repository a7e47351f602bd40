package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims and dedupes list fields, fills defaults, and
// reports anything that would keep the engine from starting.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.IMAP.SubjectKeywords = trimList(out.IMAP.SubjectKeywords)
	out.IMAP.AllowedSenders = trimList(out.IMAP.AllowedSenders)
	out.IMAP.WebhookURL = strings.TrimSpace(out.IMAP.WebhookURL)

	// ---- Defaults ----

	if out.App.Port == 0 {
		out.App.Port = 3000
	}
	if out.IMAP.Port == 0 {
		out.IMAP.Port = 993
	}
	if out.IMAP.Mailbox == "" {
		out.IMAP.Mailbox = "INBOX"
	}
	if out.IMAP.RetryMax == 0 {
		out.IMAP.RetryMax = 5
	}
	if out.IMAP.RetryDelaySeconds == 0 {
		out.IMAP.RetryDelaySeconds = 5
	}
	if out.IMAP.DedupeMax == 0 {
		out.IMAP.DedupeMax = 10_000
	}
	if out.Claim.TimeoutSeconds == 0 {
		out.Claim.TimeoutSeconds = 15
	}
	if out.Claim.MaxRedirects == 0 {
		out.Claim.MaxRedirects = 5
	}
	if out.Claim.RatePerSec == 0 {
		out.Claim.RatePerSec = 1
	}
	if out.Claim.RateBurst == 0 {
		out.Claim.RateBurst = 2
	}

	// ---- Validation rules ----

	if out.App.Port < 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.IMAP.Enabled {
		if strings.TrimSpace(out.IMAP.Host) == "" {
			res.addErr("imap.host is required when imap.enabled=true")
		}
		if strings.TrimSpace(out.IMAP.Username) == "" {
			res.addErr("imap.username is required when imap.enabled=true")
		}
		if len(out.IMAP.SubjectKeywords) == 0 {
			res.addWarn("imap.subject_keywords is empty; every email will be considered an offer.")
		}
		if len(out.IMAP.AllowedSenders) == 0 {
			res.addWarn("imap.allowed_senders is empty; sender filtering is off.")
		}
		if wh := out.IMAP.WebhookURL; wh != "" && !strings.HasPrefix(wh, "http") {
			res.addErr("imap.webhook_url must be an http(s) URL, got %q", wh)
		}
	}

	if out.IMAP.RetryMax < 1 {
		res.addErr("imap.retry_max must be >= 1")
	}
	if out.Claim.TimeoutSeconds < 1 {
		res.addErr("claim.timeout_seconds must be >= 1")
	} else if out.Claim.TimeoutSeconds > 60 {
		res.addWarn("claim.timeout_seconds is very high (%d); offers go stale fast.", out.Claim.TimeoutSeconds)
	}

	return out, res
}
