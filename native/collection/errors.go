package collection

import "errors"

var (
	// ErrAlreadyInitialized is returned when a collection address is deployed
	// a second time, regardless of caller.
	ErrAlreadyInitialized = errors.New("collection: already initialized")
	// ErrUnauthorized is returned when the caller lacks the required role.
	ErrUnauthorized = errors.New("collection: unauthorized")
	// ErrUnknownCollection is returned for operations against an address with
	// no deployed collection.
	ErrUnknownCollection = errors.New("collection: unknown collection")
	// ErrInvalidIndex is returned for a catalog index out of range.
	ErrInvalidIndex = errors.New("collection: invalid catalog index")
	// ErrSoldOut is returned when the entry's remaining supply is zero.
	ErrSoldOut = errors.New("collection: sold out")
	// ErrPaymentFailed is returned when the token pull fails, either for an
	// insufficient balance or an insufficient prior approval.
	ErrPaymentFailed = errors.New("collection: payment failed")
	// ErrUnknownAsset is returned for lookups of an id that was never minted.
	ErrUnknownAsset = errors.New("collection: unknown asset")
	// ErrInvalidPrice is returned when a catalog entry is added with a nil or
	// negative price.
	ErrInvalidPrice = errors.New("collection: invalid price")

	errNilState    = errors.New("collection engine: state not configured")
	errNilTokens   = errors.New("collection engine: token adapter not configured")
	errNilRegistry = errors.New("collection engine: registry view not configured")
)
