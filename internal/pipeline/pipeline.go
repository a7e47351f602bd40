// Package pipeline wires extractor, eligibility filter and claim executor
// into the one decision that matters: claim this job or leave it alone.
package pipeline

import (
	"context"
	"log"

	"jobclaim-engine/internal/claim"
	"jobclaim-engine/internal/extract"
	"jobclaim-engine/internal/policy"
)

// Status of one processed offer email.
type Status string

const (
	// StatusNoLink: the email carried no accept link; nothing was done.
	StatusNoLink Status = "no_link"
	// StatusIneligible: job is outside the service area; nothing was done.
	StatusIneligible Status = "ineligible"
	// StatusClaimed: the claim HTTP action ran; see Claim for how it went.
	StatusClaimed Status = "claimed"
)

// Disposition is the pipeline's terminal state for one email. Claim is set
// only for StatusClaimed.
type Disposition struct {
	Status Status
	Offer  extract.Offer
	Claim  *claim.Result
}

// Pipeline handles offer emails end to end. Stateless; safe for concurrent use.
type Pipeline struct {
	executor *claim.Executor
}

func New(executor *claim.Executor) *Pipeline {
	return &Pipeline{executor: executor}
}

// Handle runs extract → filter → claim for one raw HTML email body.
//
// The two skip branches deliberately have no side effects: mail that isn't a
// claimable offer, or advertises a job outside the service area, is frequent
// and expected, and must not pollute the audit log. Only an actual claim
// attempt writes an entry (exactly one, success or failure).
func (p *Pipeline) Handle(ctx context.Context, rawHTML string) (Disposition, error) {
	offer := extract.ParseOffer(rawHTML)
	log.Printf("[pipeline] parsed zip=%q address=%q appliances=%d acceptURL=%v",
		offer.ZipCode, offer.JobAddress, len(offer.Appliances), offer.AcceptURL != "")

	if offer.AcceptURL == "" {
		return Disposition{Status: StatusNoLink, Offer: offer}, nil
	}

	if !policy.Allowed(offer.ZipCode) {
		log.Printf("[pipeline] zip %q not in allowed list, skipping", offer.ZipCode)
		return Disposition{Status: StatusIneligible, Offer: offer}, nil
	}

	log.Printf("[pipeline] zip %s allowed, claiming", offer.ZipCode)
	res, err := p.executor.Run(ctx, offer.AcceptURL, offer.JobAddress)
	if err != nil {
		return Disposition{Status: StatusClaimed, Offer: offer}, err
	}
	return Disposition{Status: StatusClaimed, Offer: offer, Claim: &res}, nil
}
