package models

import (
	"net/http"
	"time"
)

// WebhookEvent is an inbound webhook delivery. Body holds the bytes exactly
// as received because signatures are computed over them.
type WebhookEvent struct {
	Source     string
	Headers    http.Header
	Body       []byte
	ReceivedAt time.Time
}

// CalendlyRecord is one line of calendly.log
type CalendlyRecord struct {
	Timestamp time.Time
	Event     string
}

// CSVFields returns the calendly columns in file order
func (r CalendlyRecord) CSVFields() []string {
	return []string{r.Timestamp.UTC().Format(TimestampLayout), r.Event}
}
