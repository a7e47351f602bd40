package imapwatch

import (
	"fmt"
	"strings"

	"github.com/emersion/go-imap/v2"
)

// messageKey derives a stable dedup id for a message: the Message-Id header
// when present, else a synthetic key from UID and the mailbox's UIDVALIDITY
// (Message-Id-less mail does exist in the wild).
func messageKey(messageID string, uid imap.UID, uidValidity uint32) string {
	if id := strings.ToLower(strings.TrimSpace(messageID)); id != "" {
		return id
	}
	return fmt.Sprintf("uid:%d:%d", uid, uidValidity)
}

// subjectMatches: case-insensitive substring test against the keyword list.
// An empty list matches everything.
func subjectMatches(subject string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	s := strings.ToLower(subject)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// senderMatches accepts an exact address or an "ends with @domain" entry.
// An empty allow-list matches everything.
func senderMatches(from []imap.Address, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for i := range from {
		addr := strings.ToLower(strings.TrimSpace(from[i].Addr()))
		if addr == "" {
			continue
		}
		for _, a := range allowed {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			if addr == a || strings.HasSuffix(addr, "@"+strings.TrimPrefix(a, "@")) {
				return true
			}
		}
	}
	return false
}
