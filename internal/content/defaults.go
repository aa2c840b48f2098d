package content

import (
	"fmt"
	"path/filepath"

	"github.com/dentclinicai/dentclinicai-api/config"
	"github.com/dentclinicai/dentclinicai-api/internal/models"
)

// LastUpdated is the revision date of the built-in content
const LastUpdated = "2025-08-24"

// File locations relative to the public directory
const (
	FactsFile   = "facts.json"
	QAFile      = "qa.json"
	DatasetFile = "dataset/response-time-and-bookings.csv"
)

// DefaultDataset is served when the dataset file is missing
const DefaultDataset = `metric,before,after,period
time_to_first_reply_seconds,10020,35,week_one
booked_consults_count,0,12,week_one`

// DefaultAnswer is the /api/answer payload
var DefaultAnswer = models.Answer{
	Summary: "Dental booking automation links your calendar and forms, asks two short questions by message, " +
		"then offers three times. Straight requests book instantly; edge cases hand off to your front desk. " +
		"One channel goes live in seven days. We operate inside your systems and store only event timestamps " +
		"and status for reporting.",
	Policy:  "/.well-known/ai.txt",
	Updated: LastUpdated,
}

// DefaultQA is served when qa.json is missing
var DefaultQA = []models.QAItem{
	{
		Question: "What is DentClinicAI?",
		Answer: "DentClinicAI is a cutting-edge platform designed to revolutionize dental clinic management. " +
			"It leverages artificial intelligence to streamline operations, enhance patient care, and boost overall " +
			"efficiency. Our service offers a suite of tools, including automated scheduling, patient communication, " +
			"and data analytics, all tailored to meet the unique needs of dental practices worldwide.",
	},
	{
		Question: "How does DentClinicAI work?",
		Answer: "Our platform integrates seamlessly with your existing systems. The AI analyzes your clinic's data " +
			"to automate appointment scheduling based on practitioner availability and treatment duration. It also " +
			"handles patient reminders and follow-ups via personalized messages, reducing no-shows and improving " +
			"patient engagement.",
	},
	{
		Question: "What are the benefits?",
		Answer: "Key benefits include significant time savings for your staff, reduced administrative errors, " +
			"increased patient satisfaction, and data-driven insights to optimize your clinic's performance and " +
			"profitability.",
	},
	{
		Question: "How do I get started?",
		Answer: "Getting started is easy! You can sign up for a free trial directly from our website or schedule " +
			"a demo with one of our specialists who will walk you through the platform and answer all your questions.",
	},
}

// DefaultFacts builds the brand sheet from site configuration
func DefaultFacts(site config.SiteConfig) models.Facts {
	return models.Facts{
		Brand:          "DentClinicAI",
		BookingLink:    site.BookingLink,
		IntakeFormLink: site.IntakeLink,
		ContactEmail:   site.ContactEmail,
		ContactPhone:   site.ContactPhone,
		InstagramURL:   site.InstagramURL,
		Countries: map[string]models.Country{
			"united-kingdom":       {Cities: nonNil(site.CitiesUK), Currency: "£"},
			"united-states":        {Cities: nonNil(site.CitiesUS), Currency: "$"},
			"united-arab-emirates": {Cities: nonNil(site.CitiesUAE), Currency: "د.إ"},
		},
		LastUpdated: LastUpdated,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Set holds the providers behind the content endpoints
type Set struct {
	Facts   Provider
	QA      Provider
	Dataset Provider
	Answer  models.Answer
}

// NewSet picks file or default providers for every document under publicDir
func NewSet(publicDir string, site config.SiteConfig) (*Set, error) {
	facts, err := NewStaticJSONProvider(DefaultFacts(site))
	if err != nil {
		return nil, fmt.Errorf("failed to encode default facts: %w", err)
	}
	qa, err := NewStaticJSONProvider(DefaultQA)
	if err != nil {
		return nil, fmt.Errorf("failed to encode default qa: %w", err)
	}
	dataset := NewStaticProvider([]byte(DefaultDataset))

	return &Set{
		Facts:   Select(filepath.Join(publicDir, FactsFile), facts, RequireJSON()),
		QA:      Select(filepath.Join(publicDir, QAFile), qa, RequireJSON()),
		Dataset: Select(filepath.Join(publicDir, DatasetFile), dataset),
		Answer:  DefaultAnswer,
	}, nil
}
