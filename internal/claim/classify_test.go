package claim

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want Outcome
	}{
		{"plain accept", "Job accepted!", OutcomeAccepted},
		{"accept with whitespace", "Congratulations. Job   accepted", OutcomeAccepted},
		{"accept mixed case", "JOB ACCEPTED!", OutcomeAccepted},
		{"already taken", "Sorry, this job was already taken.", OutcomeAlreadyTaken},
		{"expired", "This offer has EXPIRED.", OutcomeAlreadyTaken},
		{"taken alone", "Job taken by another provider", OutcomeAlreadyTaken},
		{"veto beats accept", "Job accepted! ...but it was already claimed", OutcomeAlreadyTaken},
		{"accepted page mentioning expired", "Job accepted! Link expired after use.", OutcomeAlreadyTaken},
		{"unrelated page", "Please log in to continue", OutcomeError},
		{"empty body", "", OutcomeError},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(c.body); got != c.want {
				t.Fatalf("Classify(%q) = %q, want %q", c.body, got, c.want)
			}
		})
	}
}
