package services

import (
	"context"
	"errors"
	"math"

	"github.com/dentclinicai/dentclinicai-api/internal/models"
	"github.com/dentclinicai/dentclinicai-api/internal/validation"
	apperrors "github.com/dentclinicai/dentclinicai-api/pkg/errors"
	"github.com/dentclinicai/dentclinicai-api/pkg/metrics"
	"github.com/dentclinicai/dentclinicai-api/pkg/tracing"
)

// daysPerMonth converts daily missed calls into a monthly estimate
const daysPerMonth = 30

// RoiService estimates monthly bookings and revenue recovered from missed
// enquiries
type RoiService struct {
	validator *validation.Validator
}

// NewRoiService creates a new ROI service instance
func NewRoiService(validator *validation.Validator) *RoiService {
	return &RoiService{validator: validator}
}

// Calculate validates body and returns the rounded estimate
func (s *RoiService) Calculate(ctx context.Context, body []byte) (*models.RoiResult, error) {
	_, span := tracing.StartSpan(ctx, "RoiService.Calculate")
	defer span.End()

	in, err := s.validator.RoiInput(body)
	if err != nil {
		metrics.ROICalculations.WithLabelValues("invalid").Inc()
		return nil, err
	}

	result := CalculateRoi(*in.RevenuePerPatient, *in.MissedPerDay, *in.CapturePct, *in.ShowRatePct)
	if !isFinite(result.AdditionalBookings) || !isFinite(result.AddedRevenue) {
		// JSON cannot carry Inf or NaN
		metrics.ROICalculations.WithLabelValues("invalid").Inc()
		return nil, apperrors.NewValidationError([]apperrors.FieldError{{
			Field:   "body",
			Message: "Inputs are too large to estimate",
		}}, errors.New("roi estimate is not finite"))
	}
	metrics.ROICalculations.WithLabelValues("success").Inc()
	return &result, nil
}

// CalculateRoi applies bookings = missed * 30 * capture% * show% and
// revenue = bookings * revenue per patient, both rounded to cents
func CalculateRoi(revenuePerPatient, missedPerDay, capturePct, showRatePct float64) models.RoiResult {
	bookings := missedPerDay * daysPerMonth * (capturePct / 100) * (showRatePct / 100)
	revenue := bookings * revenuePerPatient

	return models.RoiResult{
		AdditionalBookings: round2(bookings),
		AddedRevenue:       round2(revenue),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}
