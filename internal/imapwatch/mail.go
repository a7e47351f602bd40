package imapwatch

import (
	"bytes"
	"encoding/base64"
	"html"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"regexp"
	"strings"
)

var reTags = regexp.MustCompile(`(?is)<[^>]+>`)

// parseRFC822 splits a raw message into message id, plain text body, HTML body
// and subject. Parsing failures degrade to treating the raw bytes as text.
func parseRFC822(raw []byte, fallbackSubject string) (messageID, bodyText, htmlBody, subject string) {
	if len(raw) == 0 {
		return "", "", "", fallbackSubject
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", string(raw), "", fallbackSubject
	}

	messageID = strings.TrimSpace(msg.Header.Get("Message-Id"))
	if messageID == "" {
		messageID = strings.TrimSpace(msg.Header.Get("Message-ID"))
	}

	subject = strings.TrimSpace(msg.Header.Get("Subject"))
	if subject == "" {
		subject = fallbackSubject
	}

	bodyRaw, _ := io.ReadAll(io.LimitReader(msg.Body, 25<<20))

	plain, htmlPart := extractMIMETextParts(msg.Header, bodyRaw)

	bodyText = plain
	htmlBody = htmlPart

	if bodyText == "" && htmlBody == "" {
		bodyText = string(bodyRaw)
	}

	return messageID, bodyText, htmlBody, subject
}

func extractMIMETextParts(h mail.Header, body []byte) (plain, htmlPart string) {
	ct := h.Get("Content-Type")
	cte := strings.ToLower(strings.TrimSpace(h.Get("Content-Transfer-Encoding")))

	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		s := decodeTransferEncoding(body, cte)
		return string(s), ""
	}
	mediaType = strings.ToLower(mediaType)

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			s := decodeTransferEncoding(body, cte)
			return string(s), ""
		}
		mr := multipart.NewReader(bytes.NewReader(body), boundary)

		var bestPlain, bestHTML string
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			partCTE := strings.ToLower(strings.TrimSpace(p.Header.Get("Content-Transfer-Encoding")))
			partCT := p.Header.Get("Content-Type")
			pMedia, _, _ := mime.ParseMediaType(partCT)
			pMedia = strings.ToLower(pMedia)

			b, _ := io.ReadAll(io.LimitReader(p, 20<<20))
			b = decodeTransferEncoding(b, partCTE)

			if strings.HasPrefix(pMedia, "multipart/") {
				pl, ht := extractMIMETextParts(mail.Header(p.Header), b)
				if len(pl) > len(bestPlain) {
					bestPlain = pl
				}
				if len(ht) > len(bestHTML) {
					bestHTML = ht
				}
				continue
			}

			switch {
			case strings.HasPrefix(pMedia, "text/plain"):
				if len(b) > len(bestPlain) {
					bestPlain = string(b)
				}
			case strings.HasPrefix(pMedia, "text/html"):
				if len(b) > len(bestHTML) {
					bestHTML = string(b)
				}
			}
		}
		return bestPlain, bestHTML
	}

	s := decodeTransferEncoding(body, cte)
	if strings.HasPrefix(mediaType, "text/html") {
		return "", string(s)
	}
	return string(s), ""
}

func decodeTransferEncoding(b []byte, cte string) []byte {
	switch cte {
	case "base64":
		dec := base64.NewDecoder(base64.StdEncoding, bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	case "quoted-printable":
		dec := quotedprintable.NewReader(bytes.NewReader(b))
		out, _ := io.ReadAll(io.LimitReader(dec, 6<<20))
		return out
	default:
		return b
	}
}

func decodeRFC2047(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}

// htmlToText strips tags for log previews only; real extraction goes through
// the pipeline's goquery parser.
func htmlToText(s string) string {
	s = reTags.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
