// internal/extract/offer.go
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// AcceptJobBaseURL is the canonical accept endpoint. The token found in the
// email links gets appended as the final path segment.
const AcceptJobBaseURL = "https://login.theappliancerepairmen.com/job/accept"

// Offer is everything we can pull out of one dispatch email.
// Fields are zero-valued when the email didn't contain them.
type Offer struct {
	AcceptURL  string
	ZipCode    string
	JobAddress string
	Appliances []string
}

var (
	reAccept    = regexp.MustCompile(`(?i)accept`)
	reDecline   = regexp.MustCompile(`(?i)decline`)
	reToken     = regexp.MustCompile(`/(ey[^/?#]+)([/?#]|$)`)
	reZip       = regexp.MustCompile(`\b(\d{5})\b`)
	reAddrLabel = regexp.MustCompile(`(?i)^Address:\s*`)
	reApplLabel = regexp.MustCompile(`(?i)^Appliance:\s*`)
)

// ParseOffer extracts the accept URL, zip code, job address and appliance list
// from a dispatch email. Malformed markup never fails; missing fields stay empty.
func ParseOffer(html string) Offer {
	var o Offer

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return o
	}

	var acceptHref, declineHref string
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		href, _ := sel.Attr("href")
		switch {
		case reAccept.MatchString(text):
			if acceptHref == "" {
				acceptHref = href
			}
		case reDecline.MatchString(text):
			if declineHref == "" {
				declineHref = href
			}
		}
	})

	// Prefer the token from the accept link, then the decline link; both point
	// at the same job. The raw accept href is only a fallback.
	token := tokenFromHref(acceptHref)
	if token == "" {
		token = tokenFromHref(declineHref)
	}
	switch {
	case token != "":
		o.AcceptURL = AcceptJobBaseURL + "/" + token
	case acceptHref != "":
		o.AcceptURL = acceptHref
	}

	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())

		if reAddrLabel.MatchString(text) {
			o.JobAddress = strings.TrimSpace(reAddrLabel.ReplaceAllString(text, ""))
			if m := reZip.FindStringSubmatch(text); m != nil {
				o.ZipCode = m[1]
			}
		}

		if reApplLabel.MatchString(text) {
			if v := strings.TrimSpace(reApplLabel.ReplaceAllString(text, "")); v != "" {
				o.Appliances = append(o.Appliances, v)
			}
		}
	})

	return o
}

// tokenFromHref pulls the JWT-style path segment (starts with "ey") out of an
// accept/decline URL. Empty when the href doesn't carry one.
func tokenFromHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	m := reToken.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}
