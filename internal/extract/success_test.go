package extract

import "testing"

const successEmail = `
<html><body>
<h2>We would like to inform you that a job has been assigned to Festus Muberuka:</h2>
<ul>
  <li><b>Address:</b> 1611 lacey ave, Lisle, Illinois 60532</li>
  <li><b>Road Distance:</b> 12.4 mi</li>
  <li><b>Reference No.:</b> REF-44821</li>
  <li><b>Appointment Date:</b> 2026-09-02 10:00</li>
  <li><b>Mode of Payment:</b> COD</li>
  <li><b>Service:</b> Repair</li>
  <li><b>Appliance:</b> Refrigerator</li>
  <li><b>Brand:</b> Samsung</li>
  <li><b>Problem Details:</b> Not cooling</li>
  <li><b>Service Fee:</b> $89</li>
  <li><b>Warranty Status:</b> n/a</li>
</ul>
</body></html>`

func TestParseSuccess(t *testing.T) {
	t.Parallel()

	f := ParseSuccess(successEmail)

	if f.AssignedTo != "Festus Muberuka" {
		t.Fatalf("AssignedTo = %q", f.AssignedTo)
	}
	if f.Address != "1611 lacey ave, Lisle, Illinois 60532" {
		t.Fatalf("Address = %q", f.Address)
	}
	if f.RoadDistance != "12.4 mi" {
		t.Fatalf("RoadDistance = %q", f.RoadDistance)
	}
	// "Reference No." must resolve despite the trailing period.
	if f.ReferenceNo != "REF-44821" {
		t.Fatalf("ReferenceNo = %q", f.ReferenceNo)
	}
	// "Problem Details" is an alias of "Problem Detail".
	if f.ProblemDetail != "Not cooling" {
		t.Fatalf("ProblemDetail = %q", f.ProblemDetail)
	}
	if f.ServiceFee != "$89" {
		t.Fatalf("ServiceFee = %q", f.ServiceFee)
	}
	// Unknown labels are ignored, unlisted fields stay empty.
	if f.Symptom != "" || f.JobType != "" || f.DispatchTeam != "" {
		t.Fatalf("unexpected fields set: %+v", f)
	}
}

// TestParseSuccess_NoHeading: without the "assigned to" heading the assignee
// stays empty and the list items still parse.
func TestParseSuccess_NoHeading(t *testing.T) {
	t.Parallel()

	f := ParseSuccess(`<ul><li><b>Brand:</b> LG</li></ul>`)
	if f.AssignedTo != "" {
		t.Fatalf("AssignedTo = %q, want empty", f.AssignedTo)
	}
	if f.Brand != "LG" {
		t.Fatalf("Brand = %q", f.Brand)
	}
}

// TestParseSuccess_EmptyValue: a labelled item with no value yields "".
func TestParseSuccess_EmptyValue(t *testing.T) {
	t.Parallel()

	f := ParseSuccess(`<li><b>Model:</b></li>`)
	if f.Model != "" {
		t.Fatalf("Model = %q, want empty", f.Model)
	}
}
