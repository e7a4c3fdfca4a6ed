package collection

import (
	"math/big"
	"testing"

	"modelmarket/native/token"
)

func TestResolveLane(t *testing.T) {
	cases := []struct {
		name           string
		kind           token.Kind
		referralActive bool
		want           Lane
	}{
		{"secondary without referral", token.KindSecondary, false, LaneStandard},
		{"secondary with referral", token.KindSecondary, true, LaneReferral},
		{"primary without referral", token.KindPrimary, false, LanePrimary},
		{"primary ignores referral", token.KindPrimary, true, LanePrimary},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveLane(tc.kind, tc.referralActive); got != tc.want {
				t.Fatalf("ResolveLane(%v, %v) = %v, want %v", tc.kind, tc.referralActive, got, tc.want)
			}
		})
	}
}

func TestSplitPrice(t *testing.T) {
	cases := []struct {
		name     string
		price    int64
		lane     Lane
		fee      int64
		dividend int64
		operator int64
	}{
		{"standard round", 100, LaneStandard, 15, 0, 85},
		{"primary round", 100, LanePrimary, 15, 0, 85},
		{"referral round", 100, LaneReferral, 10, 5, 85},
		{"standard truncates", 33, LaneStandard, 4, 0, 29},
		{"referral truncates", 33, LaneReferral, 3, 1, 29},
		{"tiny price all to operator", 1, LaneReferral, 0, 0, 1},
		{"seven", 7, LaneStandard, 1, 0, 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			split := SplitPrice(big.NewInt(tc.price), tc.lane)
			if split.Fee.Int64() != tc.fee || split.Dividend.Int64() != tc.dividend || split.Operator.Int64() != tc.operator {
				t.Fatalf("SplitPrice(%d, %v) = fee %v dividend %v operator %v, want %d/%d/%d",
					tc.price, tc.lane, split.Fee, split.Dividend, split.Operator, tc.fee, tc.dividend, tc.operator)
			}
			total := new(big.Int).Add(split.Fee, split.Dividend)
			total.Add(total, split.Operator)
			if total.Int64() != tc.price {
				t.Fatalf("shares sum to %v, want %d", total, tc.price)
			}
		})
	}
}

func TestSplitPriceNonPositive(t *testing.T) {
	for _, price := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		split := SplitPrice(price, LaneReferral)
		if split.Fee.Sign() != 0 || split.Dividend.Sign() != 0 || split.Operator.Sign() != 0 {
			t.Fatalf("expected zero split for price %v, got %+v", price, split)
		}
	}
}
