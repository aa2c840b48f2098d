package models

// RoiInput represents an ROI calculator request. Pointers distinguish a
// missing field from an explicit zero.
type RoiInput struct {
	RevenuePerPatient *float64 `json:"revenuePerPatient" binding:"required,min=0"`
	MissedPerDay      *float64 `json:"missedPerDay" binding:"required,min=0"`
	CapturePct        *float64 `json:"capturePct" binding:"required,min=0,max=100"`
	ShowRatePct       *float64 `json:"showRatePct" binding:"required,min=0,max=100"`
}

// RoiResult is the monthly estimate returned by the ROI calculator
type RoiResult struct {
	AdditionalBookings float64 `json:"additionalBookings"`
	AddedRevenue       float64 `json:"addedRevenue"`
}
