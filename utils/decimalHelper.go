package utils

import "github.com/shopspring/decimal"

var (
	DecimalZero       = decimal.Zero
	DecimalOneHundred = decimal.NewFromInt(100)
)

// RoundMoney rounds half away from zero to 2 places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func ClampDecimal(d decimal.Decimal, lo decimal.Decimal, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}

// ClampPercent clamps to [0,100] and rounds to a whole percent.
func ClampPercent(d decimal.Decimal) int {
	return int(ClampDecimal(d, DecimalZero, DecimalOneHundred).Round(0).IntPart())
}

func ClampPercentInt(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// PercentOf returns part/whole*100 rounded to the given places, or nil when whole is zero.
func PercentOf(part decimal.Decimal, whole decimal.Decimal, places int32) *decimal.Decimal {
	if whole.IsZero() {
		return nil
	}
	p := part.Div(whole).Mul(DecimalOneHundred).Round(places)
	return &p
}

func SumDecimals(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
