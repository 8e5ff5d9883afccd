package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/toroprop/toro-api/internal/models"
)

// PaymentFSM wraps a payment with its state machine. The billing core never
// transitions a payment; settlement is always an external action.
type PaymentFSM struct {
	payment *models.Payment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a new payment state machine
func NewPaymentFSM(payment *models.Payment) *PaymentFSM {
	pfsm := &PaymentFSM{
		payment: payment,
	}

	pfsm.fsm = fsm.NewFSM(
		payment.Status,
		fsm.Events{
			// pending/partial → settled
			{Name: "settle", Src: []string{models.PaymentStatusPending, models.PaymentStatusPartial}, Dst: models.PaymentStatusSettled},

			// pending → partial
			{Name: "settle_partial", Src: []string{models.PaymentStatusPending}, Dst: models.PaymentStatusPartial},

			// settled/partial → pending (undo)
			{Name: "reopen", Src: []string{models.PaymentStatusSettled, models.PaymentStatusPartial}, Dst: models.PaymentStatusPending},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Settle transitions payment to settled state
func (p *PaymentFSM) Settle(ctx context.Context) error {
	if !p.payment.MaySettle() {
		return fmt.Errorf("payment cannot be settled in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "settle"); err != nil {
		return fmt.Errorf("failed to settle payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// SettlePartial transitions payment to partial state
func (p *PaymentFSM) SettlePartial(ctx context.Context) error {
	if !p.payment.MaySettlePartial() {
		return fmt.Errorf("payment cannot be partially settled in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "settle_partial"); err != nil {
		return fmt.Errorf("failed to partially settle payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Reopen undoes a settlement and returns the payment to pending
func (p *PaymentFSM) Reopen(ctx context.Context) error {
	if !p.payment.MayReopen() {
		return fmt.Errorf("payment cannot be reopened in current state: %s", p.payment.Status)
	}

	if err := p.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("failed to reopen payment: %w", err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition is possible
func (p *PaymentFSM) Can(event string) bool {
	return p.fsm.Can(event)
}
