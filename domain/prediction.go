package domain

import (
	"errors"
	"fmt"
)

type OptimizationMode string

const (
	ModeNormal OptimizationMode = "NORMAL"
	ModeExam   OptimizationMode = "EXAM"
	ModeFest   OptimizationMode = "FEST"
)

type ForecastSource string

const (
	SourceAI       ForecastSource = "AI"
	SourceFallback ForecastSource = "FALLBACK"
)

var (
	MessageSuccessGenerateForecast = "forecast generated successfully"
	MessageSuccessGetMode          = "optimization mode retrieved successfully"
	MessageSuccessSetMode          = "optimization mode updated successfully"
	MessageFailedGenerateForecast  = "failed to generate forecast"
	MessageFailedGetMode           = "failed to retrieve optimization mode"
	MessageFailedSetMode           = "failed to update optimization mode"

	ErrInvalidMode       = errors.New("invalid optimization mode")
	ErrInvalidTargetDate = errors.New("invalid forecast target date")
	ErrEmptyCatalog      = errors.New("catalog is empty")
)

func (m OptimizationMode) Valid() bool {
	switch m {
	case ModeNormal, ModeExam, ModeFest:
		return true
	}
	return false
}

// Factor is the fixed demand multiplier for the mode.
func (m OptimizationMode) Factor() float64 {
	switch m {
	case ModeExam:
		return 1.25
	case ModeFest:
		return 1.6
	}
	return 1.0
}

type (
	PortionDistribution struct {
		Small   int `json:"small"`
		Regular int `json:"regular"`
		Large   int `json:"large"`
	}

	PredictionResult struct {
		MenuItemID          string              `json:"menuItemId"`
		Name                string              `json:"name"`
		PredictedQuantity   int                 `json:"predictedQuantity"`
		PortionDistribution PortionDistribution `json:"portionDistribution"`
		ConfidenceScore     float64             `json:"confidenceScore"`
		Reasoning           string              `json:"reasoning"`
		CarbonImpactSaved   float64             `json:"carbonImpactSaved"`
	}

	ForecastRequest struct {
		TargetDate string           `json:"targetDate" validate:"omitempty,datetime=2006-01-02"`
		Mode       OptimizationMode `json:"mode" validate:"omitempty,oneof=NORMAL EXAM FEST"`
	}

	ForecastResponse struct {
		TargetDate  string             `json:"targetDate"`
		Mode        OptimizationMode   `json:"mode"`
		Source      ForecastSource     `json:"source"`
		Predictions []PredictionResult `json:"predictions"`
	}

	SetModeRequest struct {
		Mode OptimizationMode `json:"mode" validate:"required,oneof=NORMAL EXAM FEST"`
	}

	ModeResponse struct {
		Mode   OptimizationMode `json:"mode"`
		Factor float64          `json:"factor"`
	}
)

func (d PortionDistribution) Sum() int {
	return d.Small + d.Regular + d.Large
}

func (d PortionDistribution) Validate() error {
	if d.Small < 0 || d.Regular < 0 || d.Large < 0 {
		return errors.New("portion distribution must not be negative")
	}
	return nil
}

// Validate checks the shape an externally produced prediction must have to be trusted.
func (p PredictionResult) Validate() error {
	if p.MenuItemID == "" {
		return errors.New("prediction is missing menuItemId")
	}
	if p.PredictedQuantity < 0 {
		return fmt.Errorf("prediction for %s has negative quantity", p.MenuItemID)
	}
	if err := p.PortionDistribution.Validate(); err != nil {
		return fmt.Errorf("prediction for %s: %w", p.MenuItemID, err)
	}
	if p.ConfidenceScore < 0 || p.ConfidenceScore > 1 {
		return fmt.Errorf("prediction for %s has confidence outside [0,1]", p.MenuItemID)
	}
	return nil
}
