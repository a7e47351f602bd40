package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SuccessFields is the structured content of a job-assignment confirmation
// email. Every field is optional; whatever the email didn't mention stays "".
type SuccessFields struct {
	AssignedTo      string `json:"assignedTo"`
	Address         string `json:"address"`
	RoadDistance    string `json:"roadDistance"`
	ReferenceNo     string `json:"referenceNo"`
	AppointmentDate string `json:"appointmentDate"`
	ModeOfPayment   string `json:"modeOfPayment"`
	Service         string `json:"service"`
	Appliance       string `json:"appliance"`
	Brand           string `json:"brand"`
	Model           string `json:"model"`
	Symptom         string `json:"symptom"`
	ProblemDetail   string `json:"problemDetail"`
	ServiceFee      string `json:"serviceFee"`
	JobType         string `json:"jobType"`
	DispatchTeam    string `json:"dispatchTeam"`
}

// successLabels maps the bold lead text of a <li> to a setter. New labels are
// additive: register them here instead of branching in the parser.
var successLabels = map[string]func(*SuccessFields, string){
	"Address":          func(f *SuccessFields, v string) { f.Address = v },
	"Road Distance":    func(f *SuccessFields, v string) { f.RoadDistance = v },
	"Reference No":     func(f *SuccessFields, v string) { f.ReferenceNo = v },
	"Appointment Date": func(f *SuccessFields, v string) { f.AppointmentDate = v },
	"Mode of Payment":  func(f *SuccessFields, v string) { f.ModeOfPayment = v },
	"Service":          func(f *SuccessFields, v string) { f.Service = v },
	"Appliance":        func(f *SuccessFields, v string) { f.Appliance = v },
	"Brand":            func(f *SuccessFields, v string) { f.Brand = v },
	"Model":            func(f *SuccessFields, v string) { f.Model = v },
	"Symptom":          func(f *SuccessFields, v string) { f.Symptom = v },
	"Problem Detail":   func(f *SuccessFields, v string) { f.ProblemDetail = v },
	"Problem Details":  func(f *SuccessFields, v string) { f.ProblemDetail = v },
	"Service Fee":      func(f *SuccessFields, v string) { f.ServiceFee = v },
	"Job Type":         func(f *SuccessFields, v string) { f.JobType = v },
	"Dispatch Team":    func(f *SuccessFields, v string) { f.DispatchTeam = v },
}

var reAssignedTo = regexp.MustCompile(`(?i)assigned to ([^:]+):?$`)

// ParseSuccess extracts job details from a "job has been assigned" email.
// Labels come from <li><b>Label:</b> value</li> items; the assignee from the
// first <h2>. Unknown labels are ignored.
func ParseSuccess(html string) SuccessFields {
	var f SuccessFields

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return f
	}

	// "We would like to inform you that a job has been assigned to Jane Doe:"
	h2 := strings.TrimSpace(doc.Find("h2").First().Text())
	if m := reAssignedTo.FindStringSubmatch(h2); m != nil {
		f.AssignedTo = strings.TrimSpace(m[1])
	}

	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		bold := strings.TrimSpace(sel.Find("b").First().Text())
		if bold == "" {
			return
		}

		label := strings.TrimSpace(strings.TrimSuffix(bold, ":"))
		set, ok := successLabels[label]
		if !ok {
			// Tolerate "Reference No." style labels too.
			set, ok = successLabels[strings.TrimSuffix(label, ".")]
		}
		if !ok {
			return
		}

		value := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(sel.Text()), bold))
		set(&f, value)
	})

	return f
}
