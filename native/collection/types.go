package collection

import (
	"math/big"

	"modelmarket/core/types"
	"modelmarket/native/token"
)

// Entry is a sellable item template in a collection's catalog. Only the
// supply counters mutate after creation, and only through purchases.
type Entry struct {
	URI             string     `json:"uri"`
	Token           token.Kind `json:"token"`
	Price           *big.Int   `json:"price"`
	RemainingSupply uint64     `json:"remainingSupply"`
	TotalMinted     uint64     `json:"totalMinted"`
}

// Collection is the per-operator catalog and sale engine state. Metadata and
// the referrer binding are immutable after deployment.
type Collection struct {
	Address     types.Address `json:"address"`
	Operator    types.Address `json:"operator"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Gender      string        `json:"gender"`
	Referrer    types.Address `json:"referrer"`
	CreatedAt   int64         `json:"createdAt"`
	Catalog     []Entry       `json:"catalog"`
}

// Clone returns a deep copy of the collection so callers can safely mutate
// the copy without affecting the stored instance.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Catalog = make([]Entry, len(c.Catalog))
	for i, entry := range c.Catalog {
		clone.Catalog[i] = entry
		if entry.Price != nil {
			clone.Catalog[i].Price = new(big.Int).Set(entry.Price)
		}
	}
	return &clone
}

// Asset is one minted purchase outcome. The URI is snapshotted from the
// catalog entry at mint time and never changes; ownership may move via
// TransferAsset.
type Asset struct {
	ID         uint64        `json:"id"`
	Collection types.Address `json:"collection"`
	Owner      types.Address `json:"owner"`
	Approved   types.Address `json:"approved"`
	URI        string        `json:"uri"`
	MintedAt   int64         `json:"mintedAt"`
}

// Clone returns a copy of the asset record.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}
