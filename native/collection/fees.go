package collection

import (
	"math/big"

	"modelmarket/native/token"
)

// Lane identifies which fee configuration applies to a purchase. The lane is
// resolved once, at purchase time, from the payment-token kind and the
// referral status.
type Lane uint8

const (
	// LaneStandard routes the fee share to the fee splitter with no dividend.
	LaneStandard Lane = iota
	// LaneReferral routes a reduced fee share to the fee splitter and pays a
	// dividend to the referrer.
	LaneReferral
	// LanePrimary applies to primary-token purchases: the fee share routes to
	// the farm address and no dividend is paid.
	LanePrimary
)

// Fee percentages, derived from the observed balance deltas on a price-100
// sale: standard 15/85, referral 10/5/85, primary 15/85 (to the farm).
const (
	standardFeePct      = 15
	referralFeePct      = 10
	referralDividendPct = 5
)

func (l Lane) String() string {
	switch l {
	case LaneStandard:
		return "standard"
	case LaneReferral:
		return "referral"
	case LanePrimary:
		return "primary"
	default:
		return "unknown"
	}
}

// ResolveLane selects the fee lane for a purchase.
func ResolveLane(kind token.Kind, referralActive bool) Lane {
	if kind == token.KindPrimary {
		return LanePrimary
	}
	if referralActive {
		return LaneReferral
	}
	return LaneStandard
}

// Split is the outcome of dividing a sale price across its recipients. The
// operator share absorbs any truncation remainder so that
// Fee + Dividend + Operator always equals the price exactly.
type Split struct {
	Fee      *big.Int
	Dividend *big.Int
	Operator *big.Int
}

func pctShare(price *big.Int, pct int64) *big.Int {
	share := new(big.Int).Mul(price, big.NewInt(pct))
	return share.Div(share, big.NewInt(100))
}

// SplitPrice computes the fee distribution for a price under the given lane
// using truncating integer division.
func SplitPrice(price *big.Int, lane Lane) Split {
	if price == nil || price.Sign() <= 0 {
		return Split{Fee: big.NewInt(0), Dividend: big.NewInt(0), Operator: big.NewInt(0)}
	}
	split := Split{Dividend: big.NewInt(0)}
	switch lane {
	case LaneReferral:
		split.Fee = pctShare(price, referralFeePct)
		split.Dividend = pctShare(price, referralDividendPct)
	default:
		split.Fee = pctShare(price, standardFeePct)
	}
	split.Operator = new(big.Int).Sub(price, split.Fee)
	split.Operator.Sub(split.Operator, split.Dividend)
	return split
}
