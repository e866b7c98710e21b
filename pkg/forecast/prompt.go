package forecast

import (
	"SmartCanteen-Backend/domain"
	"encoding/json"
	"fmt"
)

// PromptHistoryRecords is how many of the newest ledger entries the prompt carries.
const PromptHistoryRecords = 10

type (
	promptMenuItem struct {
		ID           string  `json:"id"`
		Name         string  `json:"name"`
		BaseQuantity int     `json:"base"`
		CarbonGrams  float64 `json:"carbon"`
	}

	promptHistoryRecord struct {
		ItemID   string `json:"item"`
		Prepared int    `json:"prep"`
		Consumed int    `json:"cons"`
		Waste    int    `json:"waste"`
	}
)

// BuildPrompt renders the demand prediction request for the text service.
func BuildPrompt(in Input) (string, error) {
	menu := make([]promptMenuItem, 0, len(in.Menu))
	for _, item := range in.Menu {
		menu = append(menu, promptMenuItem{
			ID:           item.ID,
			Name:         item.Name,
			BaseQuantity: item.BaseQuantity,
			CarbonGrams:  item.CarbonGrams,
		})
	}

	recent := in.History
	if len(recent) > PromptHistoryRecords {
		recent = recent[len(recent)-PromptHistoryRecords:]
	}
	history := make([]promptHistoryRecord, 0, len(recent))
	for _, entry := range recent {
		history = append(history, promptHistoryRecord{
			ItemID:   entry.MenuItemID,
			Prepared: entry.Prepared,
			Consumed: entry.Consumed,
			Waste:    entry.Waste,
		})
	}

	orders := in.Orders
	if orders == nil {
		orders = domain.OrderMap{}
	}

	menuJSON, err := json.Marshal(menu)
	if err != nil {
		return "", err
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	ordersJSON, err := json.Marshal(orders)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"Context: You are the forecasting core of SmartCanteen, a zero-waste dining system.\n"+
			"Objective: Predict demand for %s to minimize food waste.\n"+
			"Current Mode: %s\n\n"+
			"Menu Data:\n%s\n\n"+
			"Historical Performance (Last %d Shifts):\n%s\n\n"+
			"Current Confirmed Orders (Portion Breakdown, keys are itemId:SIZE):\n%s\n\n"+
			"Instructions:\n"+
			"1. Analyze the waste and consumed trends for each item.\n"+
			"2. Consider the mode: NORMAL is standard optimization, EXAM increases comfort food (Main, Dessert) by 15-20%%, FEST increases all quantities by 40-50%%.\n"+
			"3. Treat confirmed orders as a guaranteed minimum.\n"+
			"4. Return one object per menu item with these fields: menuItemId (string), name (string), predictedQuantity (integer), "+
			"portionDistribution (object with integer small, regular, large), confidenceScore (number between 0 and 1), reasoning (string), carbonImpactSaved (number).\n"+
			"Return ONLY the JSON array. Do not include markdown formatting or extra text.",
		in.TargetDate,
		in.Mode,
		string(menuJSON),
		PromptHistoryRecords,
		string(historyJSON),
		string(ordersJSON),
	), nil
}
