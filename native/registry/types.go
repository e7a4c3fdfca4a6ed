package registry

import "modelmarket/core/types"

// Params holds the process-wide marketplace configuration set exactly once at
// initialization time. Routing addresses remain mutable by the administrator.
type Params struct {
	Admin          types.Address `json:"admin"`
	PrimaryToken   string        `json:"primaryToken"`
	SecondaryToken string        `json:"secondaryToken"`
	FeeAggregator  types.Address `json:"feeAggregator"`
	FarmAddress    types.Address `json:"farmAddress"`
	FeeSplitter    types.Address `json:"feeSplitter"`
	Platform       types.Address `json:"platform"`
}

// Clone returns a copy of the params so callers can mutate safely.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

// Operator records the marketplace's knowledge of a model account: whether it
// has been verified, whether it is blacklisted, and the collection bound to
// it. The collection binding is set once and immutable thereafter.
type Operator struct {
	Address       types.Address `json:"address"`
	Verified      bool          `json:"verified"`
	Blacklisted   bool          `json:"blacklisted"`
	Collection    types.Address `json:"collection"`
	VerifiedAt    int64         `json:"verifiedAt"`
	BlacklistedAt int64         `json:"blacklistedAt"`
}

// Clone returns a copy of the operator record.
func (o *Operator) Clone() *Operator {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}
