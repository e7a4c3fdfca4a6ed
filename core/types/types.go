package types

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Address identifies an account in the marketplace. The zero value is the
// sentinel "no account".
type Address [20]byte

// ZeroAddress is the absent-account sentinel.
var ZeroAddress Address

// IsZero reports whether the address is the sentinel zero value.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Hex renders the address as a 0x-prefixed lowercase hex string.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string { return a.Hex() }

// MarshalText implements encoding.TextMarshaler so addresses serialize as hex
// in JSON records and TOML config.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAddress decodes a 20-byte hex address with optional 0x prefix. An empty
// string decodes to the zero address.
func ParseAddress(s string) (Address, error) {
	var addr Address
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return addr, nil
	}
	trimmed = strings.TrimPrefix(trimmed, "0x")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return addr, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("invalid address %q: want %d bytes, got %d", s, len(addr), len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// Event represents a structured state change emitted by the marketplace
// engines for downstream subscribers (RPC, logs, metrics).
type Event struct {
	Type       string
	Attributes map[string]string
}
