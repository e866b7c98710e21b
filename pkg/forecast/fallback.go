package forecast

import (
	"SmartCanteen-Backend/domain"
	"fmt"
	"math"
)

const (
	minWasteBuffer        = 5.0
	wasteBufferRatio      = 0.5
	smallShare            = 0.25
	regularShare          = 0.55
	largeShare            = 0.20
	highConfidence        = 0.92
	lowConfidence         = 0.78
	highConfidenceSamples = 5
	carbonSavedRatio      = 0.15
)

// Input is everything a forecast reads. History must already be restricted to catalog items.
type Input struct {
	Menu       []domain.MenuItem
	History    []domain.DailyEntry
	Orders     domain.OrderMap
	Mode       domain.OptimizationMode
	TargetDate string
}

// Fallback is the deterministic forecast: one prediction per catalog item, in catalog order.
func Fallback(in Input) []domain.PredictionResult {
	mode := in.Mode
	if !mode.Valid() {
		mode = domain.ModeNormal
	}

	byItem := make(map[string][]domain.DailyEntry)
	for _, entry := range in.History {
		byItem[entry.MenuItemID] = append(byItem[entry.MenuItemID], entry)
	}

	results := make([]domain.PredictionResult, 0, len(in.Menu))
	for _, item := range in.Menu {
		results = append(results, predictItem(item, byItem[item.ID], in.Orders.QuantityFor(item.ID), mode))
	}
	return results
}

func predictItem(item domain.MenuItem, history []domain.DailyEntry, currentOrders int, mode domain.OptimizationMode) domain.PredictionResult {
	avgConsumed := float64(item.BaseQuantity)
	avgWaste := 0.0
	if n := len(history); n > 0 {
		consumed, waste := 0, 0
		for _, entry := range history {
			consumed += entry.Consumed
			waste += entry.Waste
		}
		avgConsumed = float64(consumed) / float64(n)
		avgWaste = float64(waste) / float64(n)
	}

	buffer := math.Max(minWasteBuffer, avgWaste*wasteBufferRatio)
	predicted := int(math.Round((avgConsumed + buffer) * mode.Factor()))
	if currentOrders > predicted {
		predicted = currentOrders
	}

	confidence := lowConfidence
	if len(history) > highConfidenceSamples {
		confidence = highConfidence
	}

	return domain.PredictionResult{
		MenuItemID:        item.ID,
		Name:              item.Name,
		PredictedQuantity: predicted,
		PortionDistribution: domain.PortionDistribution{
			Small:   roundShare(predicted, smallShare),
			Regular: roundShare(predicted, regularShare),
			Large:   roundShare(predicted, largeShare),
		},
		ConfidenceScore:   confidence,
		Reasoning:         fmt.Sprintf("Smart Fallback: Based on %d historical logs and confirmed orders. %s mode adjustment applied.", len(history), mode),
		CarbonImpactSaved: math.Round(float64(predicted) * carbonSavedRatio * (item.CarbonGrams / 100)),
	}
}

// Portions are rounded independently and are not reconciled with the total.
func roundShare(quantity int, share float64) int {
	return int(math.Round(float64(quantity) * share))
}
