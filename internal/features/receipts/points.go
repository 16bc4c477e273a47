package receipts

import "github.com/shopspring/decimal"

// PointsForAmount - баллы за сумму чека: floor(amount / amountPerPoint).
func PointsForAmount(amount decimal.Decimal, amountPerPoint int64) int64 {
	if amountPerPoint <= 0 || !amount.IsPositive() {
		return 0
	}
	return amount.Div(decimal.NewFromInt(amountPerPoint)).Floor().IntPart()
}
