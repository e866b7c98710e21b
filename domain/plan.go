package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	MessageSuccessApplyPlan = "production plan applied successfully"
	MessageSuccessGetPlan   = "production plan retrieved successfully"
	MessageFailedApplyPlan  = "failed to apply production plan"
	MessageFailedGetPlan    = "failed to retrieve production plan"

	ErrInvalidPlan = errors.New("invalid production plan")
)

type (
	AppliedPlanItem struct {
		Quantity     int                 `json:"quantity"`
		Distribution PortionDistribution `json:"distribution"`
	}

	// ProductionPlan maps menu item id to its binding quantity and split.
	ProductionPlan map[string]AppliedPlanItem

	AppliedPlan struct {
		Items     ProductionPlan `json:"items"`
		AppliedAt time.Time      `json:"appliedAt"`
	}

	// ApplyPlanRequest carries either forecast output or an externally built plan, never both.
	ApplyPlanRequest struct {
		Predictions []PredictionResult `json:"predictions"`
		Plan        ProductionPlan     `json:"plan"`
	}
)

// PlanFromPredictions keeps only quantity and distribution of each prediction.
func PlanFromPredictions(predictions []PredictionResult) ProductionPlan {
	plan := make(ProductionPlan, len(predictions))
	for _, p := range predictions {
		plan[p.MenuItemID] = AppliedPlanItem{
			Quantity:     p.PredictedQuantity,
			Distribution: p.PortionDistribution,
		}
	}
	return plan
}

func (p ProductionPlan) Validate() error {
	for id, item := range p {
		if id == "" {
			return fmt.Errorf("%w: empty menu item id", ErrInvalidPlan)
		}
		if item.Quantity < 0 {
			return fmt.Errorf("%w: negative quantity for %s", ErrInvalidPlan, id)
		}
		if err := item.Distribution.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPlan, id, err)
		}
	}
	return nil
}

// Resolve turns the request into a plan, rejecting requests that carry both forms or neither.
func (r ApplyPlanRequest) Resolve() (ProductionPlan, error) {
	hasPredictions := len(r.Predictions) > 0
	hasPlan := len(r.Plan) > 0
	if hasPredictions == hasPlan {
		return nil, fmt.Errorf("%w: provide exactly one of predictions or plan", ErrInvalidPlan)
	}

	var plan ProductionPlan
	if hasPredictions {
		for _, p := range r.Predictions {
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPlan, err)
			}
		}
		plan = PlanFromPredictions(r.Predictions)
	} else {
		plan = r.Plan
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

// QuantityFor returns the planned quantity, or fallback when the plan has no entry.
func (p ProductionPlan) QuantityFor(itemID string, fallback int) (int, bool) {
	if item, ok := p[itemID]; ok {
		return item.Quantity, true
	}
	return fallback, false
}
