package httpapi

// mailPayload is an inbound email webhook body. Two field-naming conventions
// exist in the wild; both are accepted, lowercase winning when both are set.
type mailPayload struct {
	Subject   string `json:"subject"`
	SubjectV2 string `json:"Subject"`
	Text      string `json:"text"`
	TextBody  string `json:"TextBody"`
	HTML      string `json:"html"`
	HTMLBody  string `json:"HtmlBody"`
}

func (p mailPayload) subject() string {
	if p.Subject != "" {
		return p.Subject
	}
	return p.SubjectV2
}

func (p mailPayload) html() string {
	if p.HTML != "" {
		return p.HTML
	}
	return p.HTMLBody
}
