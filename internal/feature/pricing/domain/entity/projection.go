package entity

import (
	"math"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Projection は購入日の価格から現在価格までの損益見込みです。
// Knownがfalseの場合は購入価格または現在価格が未確定で、数値はすべて0です。
type Projection struct {
	Known         bool
	Amount        decimal.Decimal
	PurchasePrice decimal.Decimal
	CurrentPrice  decimal.Decimal
	Shares        decimal.Decimal // 4 decimal places
	CurrentValue  decimal.Decimal // cents
	Profit        decimal.Decimal // cents
	ReturnPercent decimal.Decimal // 2 decimal places
}

// Project computes what amount invested at purchasePrice is worth at currentPrice.
func Project(amount, purchasePrice, currentPrice float64) Projection {
	p := Projection{
		Amount:        toDecimal(amount),
		PurchasePrice: toDecimal(purchasePrice),
		CurrentPrice:  toDecimal(currentPrice),
	}
	if !positive(amount) || !positive(purchasePrice) || !positive(currentPrice) {
		return p
	}

	shares := p.Amount.Div(p.PurchasePrice)
	value := shares.Mul(p.CurrentPrice)
	profit := value.Sub(p.Amount)

	p.Known = true
	p.Shares = shares.Round(4)
	p.CurrentValue = value.Round(2)
	p.Profit = profit.Round(2)
	p.ReturnPercent = profit.Div(p.Amount).Mul(hundred).Round(2)
	return p
}

// TargetProjection は現在価格で購入し目標価格に到達した場合の見込みです。
type TargetProjection struct {
	Known          bool
	Amount         decimal.Decimal
	CurrentPrice   decimal.Decimal
	TargetPrice    decimal.Decimal
	Shares         decimal.Decimal
	ProjectedValue decimal.Decimal
	Profit         decimal.Decimal
	ReturnPercent  decimal.Decimal
}

// ProjectTarget computes the outcome of buying at currentPrice and selling at target.
func ProjectTarget(amount, currentPrice, target float64) TargetProjection {
	p := TargetProjection{
		Amount:       toDecimal(amount),
		CurrentPrice: toDecimal(currentPrice),
		TargetPrice:  toDecimal(target),
	}
	if !positive(amount) || !positive(currentPrice) || !finite(target) || target < 0 {
		return p
	}

	shares := p.Amount.Div(p.CurrentPrice)
	value := shares.Mul(p.TargetPrice)

	p.Known = true
	p.Shares = shares.Round(4)
	p.ProjectedValue = value.Round(2)
	p.Profit = value.Sub(p.Amount).Round(2)
	p.ReturnPercent = p.TargetPrice.Sub(p.CurrentPrice).Div(p.CurrentPrice).Mul(hundred).Round(2)
	return p
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func positive(v float64) bool { return finite(v) && v > 0 }

// toDecimal は非有限値を0として扱います。decimal.NewFromFloatはNaN/Infでpanicします。
func toDecimal(v float64) decimal.Decimal {
	if !finite(v) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}
