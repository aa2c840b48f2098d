package notify

import (
	"bytes"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
)

// DateLayout is the RFC 1123 date used in message headers, always in GMT
const DateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

const subjectPrefix = "New Contact Form Submission - "

var headerStripper = strings.NewReplacer("\r", "", "\n", "")

// EmailMessage is a plain-text email
type EmailMessage struct {
	From     string
	FromName string
	To       string
	ToName   string
	Subject  string
	Body     string
	Date     time.Time
}

// ContactSubject returns the subject line for a contact submission
func ContactSubject(clinic string) string {
	return subjectPrefix + clinic
}

// ContactBody renders the plain-text notification for a submission. Phone
// and message lines are left out when empty.
func ContactBody(sub models.ContactSubmission, meta models.RequestMeta) string {
	var b strings.Builder
	b.WriteString("New contact form submission from DentClinicAI website:\n\n")
	fmt.Fprintf(&b, "Name: %s\n", sub.Name)
	fmt.Fprintf(&b, "Role: %s\n", sub.Role)
	fmt.Fprintf(&b, "Clinic: %s\n", sub.Clinic)
	fmt.Fprintf(&b, "Location: %s\n", sub.CityCountry)
	fmt.Fprintf(&b, "Preferred Contact: %s\n", sub.ContactMethod)
	fmt.Fprintf(&b, "Email: %s\n", sub.Email)
	if sub.Phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", sub.Phone)
	}
	if sub.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", sub.Message)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Source IP: %s\n", meta.SourceIP)
	fmt.Fprintf(&b, "User Agent: %s\n", meta.UserAgent)
	fmt.Fprintf(&b, "Timestamp: %s", meta.ReceivedAt.UTC().Format(models.TimestampLayout))
	return b.String()
}

// EML renders the message as an outbox file: Subject, From, To and Date
// headers, a blank line, then the body
func (m EmailMessage) EML() []byte {
	var b bytes.Buffer
	writeHeader(&b, "Subject", m.Subject)
	writeHeader(&b, "From", m.From)
	writeHeader(&b, "To", m.To)
	writeHeader(&b, "Date", m.Date.UTC().Format(DateLayout))
	b.WriteString("\n")
	b.WriteString(m.Body)
	return b.Bytes()
}

// MIME renders the message for SMTP submission with encoded headers. Line
// endings are normalized to CRLF by the SMTP data writer.
func (m EmailMessage) MIME() []byte {
	from := (&mail.Address{Name: cleanHeader(m.FromName), Address: cleanHeader(m.From)}).String()
	to := (&mail.Address{Name: cleanHeader(m.ToName), Address: cleanHeader(m.To)}).String()

	var b bytes.Buffer
	writeHeader(&b, "Subject", mime.QEncoding.Encode("utf-8", cleanHeader(m.Subject)))
	writeHeader(&b, "From", from)
	writeHeader(&b, "To", to)
	writeHeader(&b, "Date", m.Date.UTC().Format(DateLayout))
	writeHeader(&b, "MIME-Version", "1.0")
	writeHeader(&b, "Content-Type", `text/plain; charset="utf-8"`)
	writeHeader(&b, "Content-Transfer-Encoding", "8bit")
	b.WriteString("\n")
	b.WriteString(m.Body)
	return b.Bytes()
}

func writeHeader(b *bytes.Buffer, name, value string) {
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(cleanHeader(value))
	b.WriteString("\n")
}

// cleanHeader drops CR and LF so user input cannot add headers
func cleanHeader(v string) string {
	return headerStripper.Replace(v)
}
