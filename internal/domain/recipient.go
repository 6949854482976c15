package domain

import "strings"

// NameSource classifies how a recipient's display name was obtained.
// The wire values match what the dashboard shows next to each address.
type NameSource string

const (
	SourceOSINT     NameSource = "OSINT (Gravatar)"
	SourceHeuristic NameSource = "Heuristic"
	SourceFallback  NameSource = "fallback"
)

// ResolvedRecipient is one parsed, validated, name-enriched address.
// Created once by the resolver and immutable afterwards. Name is
// best-effort and may be empty.
type ResolvedRecipient struct {
	Email  string     `json:"email"`
	Name   string     `json:"name,omitempty"`
	Source NameSource `json:"source"`
}

// Greeting renders the salutation line used in previews and composed mail.
func (r ResolvedRecipient) Greeting() string {
	if r.Name != "" {
		return "Dear " + r.Name + ","
	}
	return "Hello,"
}

// Attachment is an opaque reference to a previously uploaded file.
// Upload handling lives outside this service.
type Attachment struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// SenderDetails identifies the message author.
type SenderDetails struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Designation string `json:"designation"`
	Contact     string `json:"contact"`
}

// Footer holds the signature block fields. Rendering order is fixed:
// name, designation, company, contact.
type Footer struct {
	Name        string `json:"name"`
	Company     string `json:"company"`
	Designation string `json:"designation"`
	Contact     string `json:"contact"`
	Disclaimer  bool   `json:"disclaimer"`
}

// IsEmpty reports whether no footer at all should be rendered.
func (f Footer) IsEmpty() bool {
	return strings.TrimSpace(f.Name) == "" &&
		strings.TrimSpace(f.Designation) == "" &&
		strings.TrimSpace(f.Company) == "" &&
		strings.TrimSpace(f.Contact) == "" &&
		!f.Disclaimer
}

// CampaignSpec is the immutable input to one dispatch run.
type CampaignSpec struct {
	Subject       string        `json:"subject"`
	BodyTemplate  string        `json:"body"`
	SenderDetails SenderDetails `json:"senderDetails"`
	Footer        Footer        `json:"footer"`
	Attachments   []Attachment  `json:"attachments,omitempty"`
}

// FromName returns the display name for the From header: the footer
// signature name when present, else the sender's own name.
func (s CampaignSpec) FromName() string {
	if strings.TrimSpace(s.Footer.Name) != "" {
		return strings.TrimSpace(s.Footer.Name)
	}
	return s.SenderDetails.Name
}
