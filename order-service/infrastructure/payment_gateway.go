package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mercato/order-system/order-service/domain"
	"github.com/mercato/order-system/shared/models"
	"github.com/pkg/errors"
)

// SimulatedPaymentGateway stands in for the external payment provider.
// Charges above DeclineOver are declined, modeling the provider's risk
// rules; FailRefunds makes every refund fail, for exercising the critical
// compensation path locally.
type SimulatedPaymentGateway struct {
	DeclineOver int64 // 0 means never decline
	FailRefunds bool

	mu      sync.Mutex
	charges map[string]models.Money
}

// NewSimulatedPaymentGateway creates a SimulatedPaymentGateway
func NewSimulatedPaymentGateway(declineOver int64, failRefunds bool) *SimulatedPaymentGateway {
	return &SimulatedPaymentGateway{
		DeclineOver: declineOver,
		FailRefunds: failRefunds,
		charges:     make(map[string]models.Money),
	}
}

// Charge authorizes and captures the amount, returning the provider's
// transaction id. Declines are reported through ErrPaymentDeclined.
func (g *SimulatedPaymentGateway) Charge(ctx context.Context, orderID models.ID, amount models.Money) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if g.DeclineOver > 0 && amount.Amount > g.DeclineOver {
		return "", errors.Wrapf(domain.ErrPaymentDeclined, "amount %d %s over limit", amount.Amount, amount.Currency)
	}

	externalID := fmt.Sprintf("ch_%s", uuid.New().String())

	g.mu.Lock()
	g.charges[externalID] = amount
	g.mu.Unlock()

	return externalID, nil
}

// Refund returns a captured charge
func (g *SimulatedPaymentGateway) Refund(ctx context.Context, externalTransactionID string, amount models.Money) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if g.FailRefunds {
		return errors.New("refund rejected by provider")
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.charges[externalTransactionID]; !ok {
		return errors.Errorf("unknown transaction %s", externalTransactionID)
	}
	delete(g.charges, externalTransactionID)

	return nil
}
