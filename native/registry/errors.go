package registry

import "errors"

var (
	// ErrUnauthorized is returned when the caller lacks the administrator role.
	ErrUnauthorized = errors.New("registry: unauthorized")
	// ErrNotVerified is returned when an unverified account attempts to
	// provision a collection.
	ErrNotVerified = errors.New("registry: operator not verified")
	// ErrAlreadyProvisioned is returned when a verified operator attempts to
	// provision a second collection.
	ErrAlreadyProvisioned = errors.New("registry: operator already provisioned")
	// ErrNotInitialized is returned when an operation runs before the
	// registry has been initialized with its parameters.
	ErrNotInitialized = errors.New("registry: not initialized")
	// ErrAlreadyInitialized is returned on a second initialization attempt.
	ErrAlreadyInitialized = errors.New("registry: already initialized")

	errNilState    = errors.New("registry: state not configured")
	errNilDeployer = errors.New("registry: collection deployer not configured")
)
