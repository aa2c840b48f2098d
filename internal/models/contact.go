package models

import "time"

// Accepted values of ContactSubmission.ContactMethod
const (
	ContactMethodPhone    = "Phone"
	ContactMethodText     = "Text message"
	ContactMethodWhatsApp = "WhatsApp"
	ContactMethodEmail    = "Email"
)

// ContactMethods lists every accepted contact method in display order
var ContactMethods = []string{ContactMethodPhone, ContactMethodText, ContactMethodWhatsApp, ContactMethodEmail}

// ContactSubmission represents a contact form submission
type ContactSubmission struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	Role          string `json:"role" binding:"required,min=1,max=100"`
	Clinic        string `json:"clinic" binding:"required,min=1,max=200"`
	CityCountry   string `json:"cityCountry" binding:"required,min=1,max=100"`
	ContactMethod string `json:"contactMethod" binding:"required,contactmethod"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email" binding:"required,email"`
	Message       string `json:"message,omitempty" binding:"omitempty,max=1000"`
}

// RequestMeta describes where a submission came from
type RequestMeta struct {
	SourceIP   string
	UserAgent  string
	ReceivedAt time.Time
}

// LeadRecord is one line of leads.csv. Column order is fixed because the
// file carries no header row.
type LeadRecord struct {
	Timestamp time.Time
	Contact   ContactSubmission
	Meta      RequestMeta
}

// CSVFields returns the lead columns in file order
func (r LeadRecord) CSVFields() []string {
	return []string{
		r.Timestamp.UTC().Format(TimestampLayout),
		r.Contact.Name,
		r.Contact.Role,
		r.Contact.Clinic,
		r.Contact.CityCountry,
		r.Contact.ContactMethod,
		r.Contact.Phone,
		r.Contact.Email,
		r.Contact.Message,
		r.Meta.SourceIP,
		r.Meta.UserAgent,
	}
}

// TimestampLayout is the ISO-8601 UTC layout with milliseconds used in
// every persisted record
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
