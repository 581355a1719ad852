package service

import "github.com/shopspring/decimal"

// FeePolicy computes the platform service fee: Flat + amount*Percent, in cents.
// Unpaid jobs carry no fee.
type FeePolicy struct {
	Flat    decimal.Decimal
	Percent decimal.Decimal
}

func DefaultFeePolicy() FeePolicy {
	return FeePolicy{Flat: decimal.RequireFromString("2.50"), Percent: decimal.Zero}
}

func (p FeePolicy) Fee(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() {
		return decimal.Zero
	}
	return p.Flat.Add(amount.Mul(p.Percent)).Round(2)
}
