package token

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"modelmarket/core/types"
)

// Kind selects one of the two fungible payment tokens accepted by the
// marketplace.
type Kind uint8

const (
	// KindPrimary is the platform's main token.
	KindPrimary Kind = iota
	// KindSecondary is the alternate accepted token.
	KindSecondary
)

var (
	ErrUnknownKind           = errors.New("token: unknown token kind")
	ErrInvalidAmount         = errors.New("token: amount must be non-negative")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)

// String renders the kind using the symbolic names accepted by ParseKind.
func (k Kind) String() string {
	switch k {
	case KindPrimary:
		return "primary"
	case KindSecondary:
		return "secondary"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind resolves a symbolic token name to its kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "primary":
		return KindPrimary, nil
	case "secondary":
		return KindSecondary, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Valid reports whether the kind names one of the two accepted tokens.
func (k Kind) Valid() bool {
	return k == KindPrimary || k == KindSecondary
}

// Adapter exposes the fungible-token primitives the marketplace depends on.
// TransferFrom enforces the spender's allowance granted by the owner; any
// failure aborts the enclosing operation with no effects.
type Adapter interface {
	BalanceOf(kind Kind, account types.Address) (*big.Int, error)
	Allowance(kind Kind, owner, spender types.Address) (*big.Int, error)
	Approve(kind Kind, owner, spender types.Address, amount *big.Int) error
	Transfer(kind Kind, from, to types.Address, amount *big.Int) error
	TransferFrom(kind Kind, spender, owner, to types.Address, amount *big.Int) error
}
