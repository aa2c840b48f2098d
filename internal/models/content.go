package models

// Answer is the short machine-readable summary served at /api/answer
type Answer struct {
	Summary string `json:"summary"`
	Policy  string `json:"policy"`
	Updated string `json:"updated"`
}

// Facts is the default brand sheet served at /api/facts
type Facts struct {
	Brand          string             `json:"brand"`
	BookingLink    string             `json:"booking_link"`
	IntakeFormLink string             `json:"intake_form_link"`
	ContactEmail   string             `json:"contact_email"`
	ContactPhone   string             `json:"contact_phone"`
	InstagramURL   string             `json:"instagram_url"`
	Countries      map[string]Country `json:"countries"`
	LastUpdated    string             `json:"last_updated"`
}

// Country lists the cities served in one country
type Country struct {
	Cities   []string `json:"cities"`
	Currency string   `json:"currency"`
}

// QAItem is one entry of /api/qa
type QAItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Health is the /healthz response
type Health struct {
	OK     bool    `json:"ok"`
	Uptime float64 `json:"uptime"`
	Now    string  `json:"now"`
}
