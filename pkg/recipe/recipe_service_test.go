package recipe

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"SmartCanteen-Backend/internal/utils/gemini"
	"SmartCanteen-Backend/pkg/history"
	"SmartCanteen-Backend/pkg/menu"
	"SmartCanteen-Backend/pkg/state"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	prompts []string
	text    string
	err     error
}

func (c *stubClient) GenerateText(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	return c.text, c.err
}

type fixture struct {
	svc   RecipeService
	menu  menu.MenuService
	state state.StateService
}

func newFixture(t *testing.T, client gemini.Client, ledger ...*entities.DailyEntry) fixture {
	t.Helper()
	stateService := state.NewStateService(state.NewMemoryRepository())
	menuService := menu.NewMenuService(menu.NewMemoryRepository(
		&entities.MenuItem{ID: "1", Name: "Rice Bowl", Category: "Main", BaseQuantity: 50},
		&entities.MenuItem{ID: "2", Name: "Samosa", Category: "Side", BaseQuantity: 30},
	), stateService)

	return fixture{
		svc:   NewRecipeService(menuService, history.NewMemoryRepository(ledger...), stateService, client),
		menu:  menuService,
		state: stateService,
	}
}

func TestGenerateSurpriseDish_UsesProposedDish(t *testing.T) {
	client := &stubClient{text: "```json\n{\"name\":\"Samosa Chaat Bowl\",\"description\":\"Crushed samosa over rice\",\"calories\":610,\"allergens\":[\"gluten\"],\"ingredients\":[\"Samosa\",\"Rice Bowl\"]}\n```"}
	f := newFixture(t, client)

	dish, err := f.svc.GenerateSurpriseDish(context.Background(), domain.SurpriseDishRequest{MenuItemIDs: []string{"1", "2"}})
	require.NoError(t, err)
	assert.Equal(t, "Samosa Chaat Bowl", dish.Name)
	assert.Equal(t, 610, dish.Calories)
	assert.Equal(t, []string{"gluten"}, dish.Allergens)
	assert.True(t, dish.IsSurpriseDish)
	assert.Equal(t, menu.SurpriseDishFlashPercent, dish.FlashDiscountPercent())

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "- Rice Bowl\n- Samosa")

	catalog, err := f.menu.GetMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 3)
	assert.Equal(t, dish.ID, catalog[0].ID)
}

func TestGenerateSurpriseDish_FallsBackOnBadResponse(t *testing.T) {
	cases := map[string]*stubClient{
		"transport": {err: &gemini.Error{Kind: gemini.KindTransport, Err: errors.New("connection reset")}},
		"not json":  {text: "A lovely fusion!"},
		"no name":   {text: `{"description":"nameless"}`},
	}

	for name, client := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, client)

			dish, err := f.svc.GenerateSurpriseDish(context.Background(), domain.SurpriseDishRequest{MenuItemIDs: []string{"2"}})
			require.NoError(t, err)
			assert.Equal(t, "Chef's Daily Surprise Fusion", dish.Name)
			assert.Equal(t, 550, dish.Calories)
			assert.Equal(t, []string{"Samosa"}, dish.Ingredients)
		})
	}
}

func TestGenerateSurpriseDish_DefaultsToPreparedItems(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.svc.GenerateSurpriseDish(ctx, domain.SurpriseDishRequest{})
	assert.ErrorIs(t, err, domain.ErrNoLeftovers)

	require.NoError(t, f.state.Save(ctx, state.DocKitchenPrepared, map[string]int{"2": 4, "1": 0}))
	dish, err := f.svc.GenerateSurpriseDish(ctx, domain.SurpriseDishRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Samosa"}, dish.Ingredients)

	_, err = f.svc.GenerateSurpriseDish(ctx, domain.SurpriseDishRequest{MenuItemIDs: []string{"404"}})
	assert.ErrorIs(t, err, domain.ErrMenuItemNotFound)
}

func TestAnalyzeWaste(t *testing.T) {
	ctx := context.Background()
	entry, err := domain.NewDailyEntry("e1", "2026-03-09", "1", 100, 80, 0, false, "")
	require.NoError(t, err)

	client := &stubClient{text: "Cut rice by 10% on Mondays."}
	f := newFixture(t, client, history.ToEntity(entry))
	resp, err := f.svc.AnalyzeWaste(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Cut rice by 10% on Mondays.", resp.Strategy)
	assert.Contains(t, client.prompts[0], `"waste":20`)

	failing := newFixture(t, &stubClient{err: &gemini.Error{Kind: gemini.KindStatus, StatusCode: 500, Err: errors.New("boom")}}, history.ToEntity(entry))
	_, err = failing.svc.AnalyzeWaste(ctx)
	assert.ErrorIs(t, err, domain.ErrGeminiAPIFailed)

	empty := newFixture(t, client)
	_, err = empty.svc.AnalyzeWaste(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	offline := newFixture(t, nil, history.ToEntity(entry))
	_, err = offline.svc.AnalyzeWaste(ctx)
	assert.ErrorIs(t, err, domain.ErrGeminiAPIFailed)
}
