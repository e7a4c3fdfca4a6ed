package collection

import (
	"strconv"

	"modelmarket/core/events"
	"modelmarket/core/types"
)

const (
	// EventTypeDeployed is emitted when a collection instance is created.
	EventTypeDeployed = "collection.deployed"
	// EventTypeNftAdded is emitted when the operator appends a catalog entry.
	EventTypeNftAdded = "collection.nft.added"
	// EventTypeNftPurchased is emitted on every successful purchase.
	EventTypeNftPurchased = "collection.nft.purchased"
	// EventTypeAssetTransferred is emitted when a minted asset changes owner.
	EventTypeAssetTransferred = "collection.asset.transferred"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func deployedEvent(collection, operator, referrer types.Address) *types.Event {
	return &types.Event{
		Type: EventTypeDeployed,
		Attributes: map[string]string{
			"collection": collection.Hex(),
			"operator":   operator.Hex(),
			"referrer":   referrer.Hex(),
		},
	}
}

func nftAddedEvent(collection types.Address, index int, uri string, price string) *types.Event {
	return &types.Event{
		Type: EventTypeNftAdded,
		Attributes: map[string]string{
			"collection": collection.Hex(),
			"index":      strconv.Itoa(index),
			"uri":        uri,
			"price":      price,
		},
	}
}

func nftPurchasedEvent(collection, buyer types.Address, assetID uint64, lane Lane, price string) *types.Event {
	return &types.Event{
		Type: EventTypeNftPurchased,
		Attributes: map[string]string{
			"collection": collection.Hex(),
			"buyer":      buyer.Hex(),
			"assetId":    strconv.FormatUint(assetID, 10),
			"lane":       lane.String(),
			"price":      price,
		},
	}
}

func assetTransferredEvent(assetID uint64, from, to types.Address) *types.Event {
	return &types.Event{
		Type: EventTypeAssetTransferred,
		Attributes: map[string]string{
			"assetId": strconv.FormatUint(assetID, 10),
			"from":    from.Hex(),
			"to":      to.Hex(),
		},
	}
}
