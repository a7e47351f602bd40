// Package claim performs the single HTTP action that claims a job and turns
// the free-text confirmation page into a definite outcome.
package claim

import (
	"regexp"
	"strings"
)

// Outcome of one claim attempt, read off the confirmation page.
type Outcome string

const (
	OutcomeAccepted     Outcome = "accepted"
	OutcomeAlreadyTaken Outcome = "already_taken"
	OutcomeError        Outcome = "error"
)

var reJobAccepted = regexp.MustCompile(`(?i)job\s+accepted\s*!?`)

// Classify sniffs the visible text of the claim-result page. The page is not a
// stable API: a body reading "This job has already been accepted!" matches the
// accepted pattern too, so any already/taken/expired term vetoes acceptance.
func Classify(bodyText string) Outcome {
	lower := strings.ToLower(bodyText)
	taken := strings.Contains(lower, "already") ||
		strings.Contains(lower, "taken") ||
		strings.Contains(lower, "expired")

	switch {
	case taken:
		return OutcomeAlreadyTaken
	case reJobAccepted.MatchString(bodyText):
		return OutcomeAccepted
	default:
		return OutcomeError
	}
}
