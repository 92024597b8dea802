package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineteca/cineteca-api/internal/checkout"
)

func TestChargeApprovesKnownMethods(t *testing.T) {
	g := NewMockGateway(0)
	for _, method := range []string{checkout.MethodPix, checkout.MethodCard, checkout.MethodBoleto} {
		resp, err := g.Charge(context.Background(), ChargeRequest{
			UserID: 1, AmountCents: 4950, Method: method, OrderCode: "CNTTEST",
		})
		require.NoError(t, err, method)
		assert.True(t, resp.Success)
		assert.Equal(t, "completed", resp.Status)
		assert.True(t, strings.HasPrefix(resp.TransactionID, "mock_txn_"))
	}
}

func TestChargeRejectsBadInput(t *testing.T) {
	g := NewMockGateway(0)

	_, err := g.Charge(context.Background(), ChargeRequest{UserID: 1, AmountCents: 100, Method: "cheque"})
	assert.Error(t, err)

	_, err = g.Charge(context.Background(), ChargeRequest{UserID: 1, AmountCents: 0, Method: checkout.MethodPix})
	assert.Error(t, err)
}

func TestRefundFlipsTransactionStatus(t *testing.T) {
	g := NewMockGateway(0)
	resp, err := g.Charge(context.Background(), ChargeRequest{UserID: 1, AmountCents: 3200, Method: checkout.MethodCard})
	require.NoError(t, err)

	require.NoError(t, g.Refund(context.Background(), resp.TransactionID))
	info, err := g.GetTransaction(context.Background(), resp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "refunded", info.Status)

	assert.Error(t, g.Refund(context.Background(), "mock_txn_missing"))
}
