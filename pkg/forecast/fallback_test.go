package forecast

import (
	"SmartCanteen-Backend/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(itemID string, prepared, consumed int) domain.DailyEntry {
	e, err := domain.NewDailyEntry("id", "2026-03-01", itemID, prepared, consumed, 0, false, "")
	if err != nil {
		panic(err)
	}
	return e
}

func TestFallback_SingleEntryScenario(t *testing.T) {
	in := Input{
		Menu:    []domain.MenuItem{{ID: "1", Name: "Rice Bowl", BaseQuantity: 50, CarbonGrams: 120}},
		History: []domain.DailyEntry{entry("1", 100, 85)},
		Orders:  domain.OrderMap{},
		Mode:    domain.ModeNormal,
	}

	results := Fallback(in)
	require.Len(t, results, 1)
	got := results[0]
	assert.Equal(t, "1", got.MenuItemID)
	assert.Equal(t, "Rice Bowl", got.Name)
	assert.Equal(t, 93, got.PredictedQuantity)
	assert.Equal(t, domain.PortionDistribution{Small: 23, Regular: 51, Large: 19}, got.PortionDistribution)
	assert.Equal(t, 0.78, got.ConfidenceScore)
	assert.Equal(t, 17.0, got.CarbonImpactSaved)
	assert.Equal(t, "Smart Fallback: Based on 1 historical logs and confirmed orders. NORMAL mode adjustment applied.", got.Reasoning)

	in.Mode = domain.ModeFest
	assert.Equal(t, 148, Fallback(in)[0].PredictedQuantity)
}

func TestFallback_NoHistoryUsesBaseQuantityAndBufferFloor(t *testing.T) {
	menu := []domain.MenuItem{{ID: "7", Name: "Samosa", BaseQuantity: 30}}

	cases := []struct {
		mode     domain.OptimizationMode
		expected int
	}{
		{domain.ModeNormal, 35},
		{domain.ModeExam, 44},
		{domain.ModeFest, 56},
	}
	for _, tc := range cases {
		t.Run(string(tc.mode), func(t *testing.T) {
			results := Fallback(Input{Menu: menu, Mode: tc.mode})
			require.Len(t, results, 1)
			assert.Equal(t, tc.expected, results[0].PredictedQuantity)
			assert.Equal(t, 0.78, results[0].ConfidenceScore)
		})
	}
}

func TestFallback_CurrentOrdersAreALowerBound(t *testing.T) {
	in := Input{
		Menu:   []domain.MenuItem{{ID: "3", Name: "Paneer Wrap", BaseQuantity: 10}},
		Orders: domain.OrderMap{
			domain.NewOrderKey("3", domain.SizeLarge):  40,
			domain.NewOrderKey("3", domain.SizeSmall):  2,
			domain.NewOrderKey("33", domain.SizeSmall): 90,
		},
		Mode: domain.ModeNormal,
	}

	results := Fallback(in)
	assert.Equal(t, 42, results[0].PredictedQuantity)
}

func TestFallback_SplitsCompositeKeysByBaseItem(t *testing.T) {
	orders := domain.OrderMap{
		domain.NewOrderKey("3", domain.SizeLarge): 4,
		domain.NewOrderKey("3", domain.SizeSmall): 2,
	}
	assert.Equal(t, 6, orders.QuantityFor("3"))
}

func TestFallback_ConfidenceTiers(t *testing.T) {
	history := make([]domain.DailyEntry, 0, 6)
	for i := 0; i < 5; i++ {
		history = append(history, entry("1", 50, 40))
	}
	in := Input{Menu: []domain.MenuItem{{ID: "1", BaseQuantity: 50}}, History: history}
	assert.Equal(t, 0.78, Fallback(in)[0].ConfidenceScore)

	in.History = append(in.History, entry("1", 50, 40))
	assert.Equal(t, 0.92, Fallback(in)[0].ConfidenceScore)
}

func TestFallback_ModeScalingIsMonotonic(t *testing.T) {
	in := Input{
		Menu: []domain.MenuItem{
			{ID: "1", BaseQuantity: 50},
			{ID: "2", BaseQuantity: 12},
		},
		History: []domain.DailyEntry{entry("1", 70, 61), entry("1", 80, 52), entry("2", 20, 19)},
		Orders:  domain.OrderMap{domain.NewOrderKey("2", domain.SizeRegular): 25},
	}

	quantities := func(mode domain.OptimizationMode) []int {
		in.Mode = mode
		var out []int
		for _, p := range Fallback(in) {
			out = append(out, p.PredictedQuantity)
		}
		return out
	}
	normal, exam, fest := quantities(domain.ModeNormal), quantities(domain.ModeExam), quantities(domain.ModeFest)
	for i := range normal {
		assert.GreaterOrEqual(t, exam[i], normal[i])
		assert.GreaterOrEqual(t, fest[i], exam[i])
		assert.GreaterOrEqual(t, normal[i], in.Orders.QuantityFor(in.Menu[i].ID))
	}
}

func TestFallback_KeepsCatalogOrderAndPortionTolerance(t *testing.T) {
	menu := []domain.MenuItem{{ID: "b", BaseQuantity: 17}, {ID: "a", BaseQuantity: 203}, {ID: "c", BaseQuantity: 1}}

	results := Fallback(Input{Menu: menu, Mode: domain.ModeExam})
	require.Len(t, results, 3)
	for i, p := range results {
		assert.Equal(t, menu[i].ID, p.MenuItemID)
		assert.InDelta(t, p.PredictedQuantity, p.PortionDistribution.Sum(), 2)
	}
}
