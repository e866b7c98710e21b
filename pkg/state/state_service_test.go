package state

import (
	"SmartCanteen-Backend/domain"
	"SmartCanteen-Backend/entities"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateService_LoadMissingLeavesZeroValue(t *testing.T) {
	svc := NewStateService(NewMemoryRepository())

	orders := domain.OrderMap{}
	require.NoError(t, svc.Load(context.Background(), DocPreOrdersToday, &orders))
	assert.Empty(t, orders)
}

func TestStateService_RoundTripsCompositeKeys(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewStateService(repo)

	orders := domain.OrderMap{
		domain.NewOrderKey("3", domain.SizeLarge): 2,
		domain.NewOrderKey("3", ""):               1,
	}
	require.NoError(t, svc.Save(ctx, DocPreOrdersToday, orders))

	doc, err := repo.GetDocument(ctx, DocPreOrdersToday)
	require.NoError(t, err)
	assert.JSONEq(t, `{"3:LARGE":2,"3":1}`, doc.Payload)
	assert.Equal(t, SchemaVersion, doc.SchemaVersion)

	loaded := domain.OrderMap{}
	require.NoError(t, svc.Load(ctx, DocPreOrdersToday, &loaded))
	assert.Equal(t, orders, loaded)
}

func TestStateService_RejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.SaveDocument(ctx, &entities.StateDocument{
		Name:          DocOptimizationMode,
		SchemaVersion: SchemaVersion + 1,
		Payload:       `"FEST"`,
	}))

	var mode domain.OptimizationMode
	err := NewStateService(repo).Load(ctx, DocOptimizationMode, &mode)
	assert.ErrorIs(t, err, ErrUnsupportedSchema)
}

func TestStateService_UpdateAbortsOnMutateError(t *testing.T) {
	ctx := context.Background()
	svc := NewStateService(NewMemoryRepository())
	require.NoError(t, svc.Save(ctx, DocPreOrdersToday, domain.OrderMap{domain.NewOrderKey("1", domain.SizeSmall): 1}))

	orders := domain.OrderMap{}
	err := svc.Update(ctx, DocPreOrdersToday, &orders, func() error {
		orders.Add(domain.NewOrderKey("1", domain.SizeSmall), 5)
		return errors.New("boom")
	})
	require.Error(t, err)

	stored := domain.OrderMap{}
	require.NoError(t, svc.Load(ctx, DocPreOrdersToday, &stored))
	assert.Equal(t, 1, stored.Total())
}

func TestStateService_UpdateSerializesWriters(t *testing.T) {
	ctx := context.Background()
	svc := NewStateService(NewMemoryRepository())
	key := domain.NewOrderKey("7", domain.SizeRegular)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			orders := domain.OrderMap{}
			assert.NoError(t, svc.Update(ctx, DocPreOrdersToday, &orders, func() error {
				orders.Add(key, 1)
				return nil
			}))
		}()
	}
	wg.Wait()

	stored := domain.OrderMap{}
	require.NoError(t, svc.Load(ctx, DocPreOrdersToday, &stored))
	assert.Equal(t, 50, stored[key])
}
