package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCashbackFor(t *testing.T) {
	percent := Professional{
		CashbackEnabled: true,
		CashbackMode:    CashbackPercent,
		CashbackPercent: 10,
	}
	assert.EqualValues(t, 2000, percent.CashbackFor(20000))
	assert.EqualValues(t, 0, percent.CashbackFor(0))

	fixed := Professional{
		CashbackEnabled:    true,
		CashbackMode:       CashbackFixed,
		CashbackFixedCents: 500,
	}
	assert.EqualValues(t, 500, fixed.CashbackFor(20000))
	assert.EqualValues(t, 0, fixed.CashbackFor(0))

	disabled := Professional{CashbackPercent: 10}
	assert.EqualValues(t, 0, disabled.CashbackFor(20000))
}

func TestPaysRental(t *testing.T) {
	assert.True(t, Professional{CommissionModel: ModelRental, RentalAmountCents: 80000}.PaysRental())
	assert.True(t, Professional{CommissionModel: ModelHybrid, RentalAmountCents: 50000}.PaysRental())
	assert.False(t, Professional{CommissionModel: ModelCommissioned, RentalAmountCents: 80000}.PaysRental())
	assert.False(t, Professional{CommissionModel: ModelRental}.PaysRental())
}
