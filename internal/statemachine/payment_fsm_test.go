package statemachine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/toroprop/toro-api/internal/models"
)

func TestPaymentFSM_SettleFromPending(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusPending}
	pfsm := NewPaymentFSM(payment)

	err := pfsm.Settle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSettled, payment.Status)
}

func TestPaymentFSM_SettleFromPartial(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusPartial}
	pfsm := NewPaymentFSM(payment)

	err := pfsm.Settle(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusSettled, payment.Status)
}

func TestPaymentFSM_SettleTwiceFails(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusSettled}
	pfsm := NewPaymentFSM(payment)

	err := pfsm.Settle(context.Background())
	assert.Error(t, err)
	assert.Equal(t, models.PaymentStatusSettled, payment.Status)
}

func TestPaymentFSM_SettlePartialOnlyFromPending(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusPending}
	pfsm := NewPaymentFSM(payment)

	err := pfsm.SettlePartial(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartial, payment.Status)

	// Already partial, cannot go partial again
	pfsm = NewPaymentFSM(payment)
	err = pfsm.SettlePartial(context.Background())
	assert.Error(t, err)
}

func TestPaymentFSM_ReopenReturnsToPending(t *testing.T) {
	for _, status := range []string{models.PaymentStatusSettled, models.PaymentStatusPartial} {
		payment := &models.Payment{Status: status}
		pfsm := NewPaymentFSM(payment)

		err := pfsm.Reopen(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
	}
}

func TestPaymentFSM_ReopenPendingFails(t *testing.T) {
	payment := &models.Payment{Status: models.PaymentStatusPending}
	pfsm := NewPaymentFSM(payment)

	err := pfsm.Reopen(context.Background())
	assert.Error(t, err)
}

func TestContractFSM_Transitions(t *testing.T) {
	contract := &models.Contract{Status: models.ContractStatusActive}
	cfsm := NewContractFSM(contract)

	assert.NoError(t, cfsm.Expire(context.Background()))
	assert.Equal(t, models.ContractStatusExpired, contract.Status)

	// Terminal states reject further transitions
	cfsm = NewContractFSM(contract)
	assert.Error(t, cfsm.Terminate(context.Background()))
	assert.Error(t, cfsm.Expire(context.Background()))

	contract = &models.Contract{Status: models.ContractStatusActive}
	cfsm = NewContractFSM(contract)
	assert.NoError(t, cfsm.Terminate(context.Background()))
	assert.Equal(t, models.ContractStatusTerminated, contract.Status)
}
