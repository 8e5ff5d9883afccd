package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentPrincipalExcludesLateFee(t *testing.T) {
	payment := &Payment{
		RentAmount:      decimal.NewFromInt(100000),
		CommonCharges:   decimal.NewFromInt(30000),
		UtilitiesAmount: decimal.NewFromInt(20000),
		LateFeeAmount:   decimal.NewFromInt(5000),
	}

	assert.True(t, payment.Principal().Equal(decimal.NewFromInt(150000)))
	assert.True(t, payment.TotalDue().Equal(decimal.NewFromInt(155000)))
}

func TestPaymentIsOverdue(t *testing.T) {
	payment := &Payment{
		Period: "2025-01",
		Status: PaymentStatusPending,
	}

	assert.False(t, payment.IsOverdue(10, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)))
	assert.True(t, payment.IsOverdue(10, time.Date(2025, time.January, 11, 0, 0, 0, 0, time.UTC)))

	payment.Status = PaymentStatusSettled
	assert.False(t, payment.IsOverdue(10, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))

	payment.Status = PaymentStatusPending
	payment.Period = "not-a-period"
	assert.False(t, payment.IsOverdue(10, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
}
