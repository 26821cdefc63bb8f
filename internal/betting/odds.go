package betting

import (
	"math"

	"github.com/shopspring/decimal"
)

const (
	// OddsScale is the fixed-point factor for decimal odds: 2.960 -> 2960.
	OddsScale = 1000

	// UnitScale converts whole native tokens to base units.
	UnitScale = 1_000_000_000
)

// Deposit converts a stake in whole tokens to base units.
func Deposit(stake uint64) (int64, error) {
	if stake > math.MaxInt64/UnitScale {
		return 0, ErrStakeTooHigh
	}

	return int64(stake) * UnitScale, nil
}

// Payout computes stake * UnitScale * odds / OddsScale in base units.
// The intermediate product can exceed 64 bits, so it is carried in a
// decimal and narrowed afterwards. Division truncates toward zero.
func Payout(stake uint64, odds uint32) (int64, error) {
	if stake > math.MaxInt64 {
		return 0, ErrStakeTooHigh
	}

	p := decimal.NewFromInt(int64(stake)).
		Mul(decimal.NewFromInt(UnitScale)).
		Mul(decimal.NewFromInt(int64(odds)))

	q, _ := p.QuoRem(decimal.NewFromInt(OddsScale), 0)

	bi := q.BigInt()
	if !bi.IsInt64() {
		return 0, ErrStakeTooHigh
	}

	return bi.Int64(), nil
}

// MaxWin ratchets the recorded single-bet liability ceiling. It is an upper
// bound on one bet's payout, not an aggregate.
func MaxWin(existing, payout int64) int64 {
	if payout > existing {
		return payout
	}

	return existing
}
