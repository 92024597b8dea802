// Package payment charges orders.  The only gateway today is a mock
// that approves pix, card and boleto charges; the Gateway interface is
// the seam a real processor plugs into later.
package payment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cineteca/cineteca-api/internal/checkout"
)

// ChargeRequest describes one charge in integer cents.
type ChargeRequest struct {
	UserID      uint64
	AmountCents uint32
	Method      string // pix, card or boleto
	OrderCode   string
}

// ChargeResponse reports the gateway outcome.  TransactionID is set on
// success and failure alike so declined charges stay traceable.
type ChargeResponse struct {
	Success       bool
	TransactionID string
	Status        string
	FailureReason string
}

// Gateway is the processor surface.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResponse, error)
	Name() string
}

// TransactionInfo is what the mock remembers about a processed charge.
type TransactionInfo struct {
	TransactionID string
	Status        string
	AmountCents   uint32
	Method        string
	OrderCode     string
	CreatedAt     string
}

// MockGateway approves every well-formed charge after a configurable
// delay and keeps transactions in memory for lookups and refunds.
type MockGateway struct {
	delay        time.Duration
	transactions sync.Map
}

func NewMockGateway(delay time.Duration) *MockGateway {
	return &MockGateway{delay: delay}
}

// Charge validates the method and amount, then records and approves the
// transaction.
func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (ChargeResponse, error) {
	switch req.Method {
	case checkout.MethodPix, checkout.MethodCard, checkout.MethodBoleto:
	default:
		return ChargeResponse{}, fmt.Errorf("unsupported payment method: %q", req.Method)
	}
	if req.AmountCents == 0 {
		return ChargeResponse{}, fmt.Errorf("charge amount must be positive")
	}

	if g.delay > 0 {
		select {
		case <-ctx.Done():
			return ChargeResponse{}, ctx.Err()
		case <-time.After(g.delay):
		}
	}

	txnID := fmt.Sprintf("mock_txn_%s", uuid.New().String()[:8])
	g.transactions.Store(txnID, &TransactionInfo{
		TransactionID: txnID,
		Status:        "completed",
		AmountCents:   req.AmountCents,
		Method:        req.Method,
		OrderCode:     req.OrderCode,
		CreatedAt:     time.Now().Format(time.RFC3339),
	})
	return ChargeResponse{Success: true, TransactionID: txnID, Status: "completed"}, nil
}

// Refund marks a processed transaction refunded.
func (g *MockGateway) Refund(ctx context.Context, transactionID string) error {
	if transactionID == "" {
		return fmt.Errorf("transaction ID is required")
	}
	txn, ok := g.transactions.Load(transactionID)
	if !ok {
		return fmt.Errorf("transaction not found: %s", transactionID)
	}
	info := txn.(*TransactionInfo)
	info.Status = "refunded"
	g.transactions.Store(transactionID, info)
	return nil
}

// GetTransaction retrieves a processed transaction.
func (g *MockGateway) GetTransaction(_ context.Context, transactionID string) (*TransactionInfo, error) {
	txn, ok := g.transactions.Load(transactionID)
	if !ok {
		return nil, fmt.Errorf("transaction not found: %s", transactionID)
	}
	return txn.(*TransactionInfo), nil
}

func (g *MockGateway) Name() string { return "mock" }
