package token

import (
	"errors"
	"math/big"

	"modelmarket/core/types"
)

var errNilState = errors.New("token ledger: state not configured")

// State is the persistence surface the ledger requires. Balances and
// allowances are stored per token kind.
type State interface {
	TokenBalanceGet(kind Kind, account types.Address) (*big.Int, error)
	TokenBalancePut(kind Kind, account types.Address, amount *big.Int) error
	TokenAllowanceGet(kind Kind, owner, spender types.Address) (*big.Int, error)
	TokenAllowancePut(kind Kind, owner, spender types.Address, amount *big.Int) error
}

// Ledger is the state-backed implementation of the payment-token adapter used
// by the node. Tests may substitute any Adapter.
type Ledger struct {
	st State
}

// NewLedger constructs a ledger over the supplied state backend.
func NewLedger(st State) *Ledger {
	return &Ledger{st: st}
}

func cloneAmount(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// BalanceOf returns the current balance for the account.
func (l *Ledger) BalanceOf(kind Kind, account types.Address) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	bal, err := l.st.TokenBalanceGet(kind, account)
	if err != nil {
		return nil, err
	}
	return cloneAmount(bal), nil
}

// Allowance returns the remaining amount the spender may pull from the owner.
func (l *Ledger) Allowance(kind Kind, owner, spender types.Address) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, errNilState
	}
	if !kind.Valid() {
		return nil, ErrUnknownKind
	}
	allowance, err := l.st.TokenAllowanceGet(kind, owner, spender)
	if err != nil {
		return nil, err
	}
	return cloneAmount(allowance), nil
}

// Approve sets the spender's allowance, replacing any previous value.
func (l *Ledger) Approve(kind Kind, owner, spender types.Address, amount *big.Int) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return l.st.TokenAllowancePut(kind, owner, spender, cloneAmount(amount))
}

// Transfer moves funds between accounts.
func (l *Ledger) Transfer(kind Kind, from, to types.Address, amount *big.Int) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return l.move(kind, from, to, amount)
}

// TransferFrom moves funds from the owner to the recipient on behalf of the
// spender, consuming the spender's allowance. Both an insufficient balance and
// an insufficient allowance fail the call without any effect.
func (l *Ledger) TransferFrom(kind Kind, spender, owner, to types.Address, amount *big.Int) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	allowance, err := l.st.TokenAllowanceGet(kind, owner, spender)
	if err != nil {
		return err
	}
	allowance = cloneAmount(allowance)
	if allowance.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := l.move(kind, owner, to, amount); err != nil {
		return err
	}
	return l.st.TokenAllowancePut(kind, owner, spender, allowance.Sub(allowance, amount))
}

// Mint credits freshly issued funds to an account. Used for genesis
// allocations only.
func (l *Ledger) Mint(kind Kind, account types.Address, amount *big.Int) error {
	if l == nil || l.st == nil {
		return errNilState
	}
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	bal, err := l.st.TokenBalanceGet(kind, account)
	if err != nil {
		return err
	}
	bal = cloneAmount(bal)
	return l.st.TokenBalancePut(kind, account, bal.Add(bal, amount))
}

func (l *Ledger) move(kind Kind, from, to types.Address, amount *big.Int) error {
	fromBal, err := l.st.TokenBalanceGet(kind, from)
	if err != nil {
		return err
	}
	fromBal = cloneAmount(fromBal)
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	toBal, err := l.st.TokenBalanceGet(kind, to)
	if err != nil {
		return err
	}
	toBal = cloneAmount(toBal)
	if from == to {
		return nil
	}
	if err := l.st.TokenBalancePut(kind, from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	return l.st.TokenBalancePut(kind, to, toBal.Add(toBal, amount))
}
