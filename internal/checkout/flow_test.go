package checkout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineteca/cineteca-api/internal/model"
)

func testOrder() Order {
	return Order{
		MovieID:        7,
		MovieTitle:     "O Auto da Compadecida",
		SessionID:      42,
		SessionDate:    "2026-09-05",
		SessionTime:    "20:30",
		Room:           "Sala 3",
		UnitPriceCents: 3200,
	}
}

func TestFlowHappyPath(t *testing.T) {
	c := NewController()
	f := c.Open(10, testOrder())
	assert.Equal(t, StepReview, f.Step)
	assert.Equal(t, uint32(MinQuantity), f.Quantity)
	assert.Equal(t, model.TicketFull, f.TicketType)

	require.NoError(t, f.SetQuantity(2))
	require.NoError(t, f.Advance())
	assert.Equal(t, StepPayment, f.Step)

	require.NoError(t, f.SetPaymentMethod(MethodPix))
	require.NoError(t, f.Advance())
	assert.Equal(t, StepConfirmation, f.Step)
	assert.True(t, strings.HasPrefix(f.Code, "CNT"))
	assert.Equal(t, uint32(6400), f.TotalCents())
}

func TestAdvanceBlockedWithoutPaymentMethod(t *testing.T) {
	f := NewController().Open(10, testOrder())
	require.NoError(t, f.Advance())
	assert.ErrorIs(t, f.Advance(), ErrNoPaymentMethod)
	assert.Equal(t, StepPayment, f.Step)
	assert.Empty(t, f.Code)
}

func TestPaymentMethodOnlyAtPaymentStep(t *testing.T) {
	f := NewController().Open(10, testOrder())
	assert.ErrorIs(t, f.SetPaymentMethod(MethodCard), ErrBadStep)
	require.NoError(t, f.Advance())
	assert.ErrorIs(t, f.SetPaymentMethod("cheque"), ErrBadMethod)
	require.NoError(t, f.SetPaymentMethod(MethodBoleto))
}

func TestBackOnlyFromPayment(t *testing.T) {
	f := NewController().Open(10, testOrder())
	assert.ErrorIs(t, f.Back(), ErrBadStep)

	require.NoError(t, f.Advance())
	require.NoError(t, f.Back())
	assert.Equal(t, StepReview, f.Step)

	require.NoError(t, f.Advance())
	require.NoError(t, f.SetPaymentMethod(MethodCard))
	require.NoError(t, f.Advance())
	// Confirmed orders are final.
	assert.ErrorIs(t, f.Back(), ErrBadStep)
	assert.ErrorIs(t, f.Advance(), ErrBadStep)
}

func TestQuantityBounds(t *testing.T) {
	f := NewController().Open(10, testOrder())
	assert.ErrorIs(t, f.SetQuantity(0), ErrBadQuantity)
	assert.ErrorIs(t, f.SetQuantity(7), ErrBadQuantity)
	require.NoError(t, f.SetQuantity(6))
	assert.Equal(t, uint32(6), f.Quantity)
}

func TestHalfFareTotal(t *testing.T) {
	f := NewController().Open(10, testOrder())
	require.NoError(t, f.SetTicketType(model.TicketHalf))
	require.NoError(t, f.SetQuantity(3))
	assert.Equal(t, uint32(1600), f.EffectivePriceCents())
	assert.Equal(t, uint32(4800), f.TotalCents())

	assert.ErrorIs(t, f.SetTicketType("estudante"), ErrBadTicketType)
}

func TestCloseDiscardsFlow(t *testing.T) {
	c := NewController()
	f := c.Open(10, testOrder())
	require.NoError(t, f.SetQuantity(4))
	require.NoError(t, f.Advance())

	c.Close(10)
	_, err := c.Flow(10)
	assert.ErrorIs(t, err, ErrNoFlow)

	// Reopening starts from scratch.
	f2 := c.Open(10, testOrder())
	assert.Equal(t, StepReview, f2.Step)
	assert.Equal(t, uint32(MinQuantity), f2.Quantity)
	assert.Empty(t, f2.PaymentMethod)
}

func TestFlowsAreIsolatedPerUser(t *testing.T) {
	c := NewController()
	a := c.Open(1, testOrder())
	b := c.Open(2, testOrder())
	require.NoError(t, a.SetQuantity(5))
	assert.Equal(t, uint32(MinQuantity), b.Quantity)

	c.Close(1)
	_, err := c.Flow(2)
	assert.NoError(t, err)
}
