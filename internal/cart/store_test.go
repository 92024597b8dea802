package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineteca/cineteca-api/internal/model"
)

func fullPriceItem() model.CartItem {
	return model.CartItem{
		MovieID:        1,
		Title:          "Central do Brasil",
		SessionDate:    "2026-09-05",
		SessionTime:    "18:00",
		Room:           "Sala 1",
		Seats:          []string{"C4"},
		TicketType:     model.TicketFull,
		UnitPriceCents: 3200,
		Quantity:       1,
	}
}

func halfPriceItem() model.CartItem {
	return model.CartItem{
		MovieID:        2,
		Title:          "Cidade de Deus",
		SessionDate:    "2026-09-06",
		SessionTime:    "21:00",
		Room:           "Sala 2",
		Seats:          []string{"F10"},
		TicketType:     model.TicketHalf,
		UnitPriceCents: 3500,
		Quantity:       1,
	}
}

func TestTotalMixesFullAndHalfFares(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryPersister())

	require.NoError(t, s.Add(ctx, 7, fullPriceItem()))
	require.NoError(t, s.Add(ctx, 7, halfPriceItem()))

	// 3200 full + 3500/2 half = 4950.
	assert.Equal(t, uint32(4950), s.TotalCents(7))
}

func TestTotalIsOrderIndependent(t *testing.T) {
	ctx := context.Background()
	a := NewStore(NewMemoryPersister())
	b := NewStore(NewMemoryPersister())

	require.NoError(t, a.Add(ctx, 1, fullPriceItem()))
	require.NoError(t, a.Add(ctx, 1, halfPriceItem()))
	require.NoError(t, b.Add(ctx, 1, halfPriceItem()))
	require.NoError(t, b.Add(ctx, 1, fullPriceItem()))

	assert.Equal(t, a.TotalCents(1), b.TotalCents(1))
}

func TestRemoveKeepsMemoryAndPersistenceInStep(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := NewStore(p)

	require.NoError(t, s.Add(ctx, 3, fullPriceItem()))
	require.NoError(t, s.Add(ctx, 3, halfPriceItem()))
	require.NoError(t, s.Remove(ctx, 3, 0))

	items := s.Items(3)
	require.Len(t, items, 1)
	assert.Equal(t, "Cidade de Deus", items[0].Title)

	persisted, err := p.Load(ctx, 3)
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "Cidade de Deus", persisted[0].Title)

	assert.ErrorIs(t, s.Remove(ctx, 3, 5), ErrBadIndex)
	assert.ErrorIs(t, s.Remove(ctx, 3, -1), ErrBadIndex)
}

func TestClearEmptiesBothSides(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := NewStore(p)

	require.NoError(t, s.Add(ctx, 9, fullPriceItem()))
	require.NoError(t, s.Clear(ctx, 9))

	assert.Empty(t, s.Items(9))
	assert.Zero(t, s.TotalCents(9))
	persisted, err := p.Load(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestHydrateRestoresPersistedCart(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	require.NoError(t, p.Save(ctx, 5, []model.CartItem{fullPriceItem(), halfPriceItem()}))

	s := NewStore(p)
	assert.Empty(t, s.Items(5))
	require.NoError(t, s.Hydrate(ctx, 5))
	assert.Len(t, s.Items(5), 2)
	assert.Equal(t, uint32(4950), s.TotalCents(5))
}

func TestQuantityMultipliesSubtotal(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryPersister())

	it := halfPriceItem()
	it.Quantity = 3
	require.NoError(t, s.Add(ctx, 2, it))
	assert.Equal(t, uint32(5250), s.TotalCents(2))
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryPersister())

	require.NoError(t, s.Add(ctx, 1, fullPriceItem()))
	assert.Empty(t, s.Items(2))
	require.NoError(t, s.Clear(ctx, 2))
	assert.Len(t, s.Items(1), 1)
}
