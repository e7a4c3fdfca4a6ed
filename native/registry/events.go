package registry

import (
	"modelmarket/core/events"
	"modelmarket/core/types"
)

const (
	// EventTypeModelVerified is emitted when the administrator verifies a model.
	EventTypeModelVerified = "registry.model.verified"
	// EventTypeCollectionCreated is emitted when an operator provisions a collection.
	EventTypeCollectionCreated = "registry.collection.created"
	// EventTypeModelBlacklisted is emitted when the administrator blacklists an account.
	EventTypeModelBlacklisted = "registry.model.blacklisted"
	// EventTypeAddressUpdated is emitted when a global routing address changes.
	EventTypeAddressUpdated = "registry.address.updated"
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

func modelVerifiedEvent(account types.Address) *types.Event {
	return &types.Event{
		Type: EventTypeModelVerified,
		Attributes: map[string]string{
			"account": account.Hex(),
		},
	}
}

func collectionCreatedEvent(operator, collection, referrer types.Address, name string) *types.Event {
	return &types.Event{
		Type: EventTypeCollectionCreated,
		Attributes: map[string]string{
			"operator":   operator.Hex(),
			"collection": collection.Hex(),
			"referrer":   referrer.Hex(),
			"name":       name,
		},
	}
}

func modelBlacklistedEvent(account types.Address) *types.Event {
	return &types.Event{
		Type: EventTypeModelBlacklisted,
		Attributes: map[string]string{
			"account": account.Hex(),
		},
	}
}

func addressUpdatedEvent(field string, addr types.Address) *types.Event {
	return &types.Event{
		Type: EventTypeAddressUpdated,
		Attributes: map[string]string{
			"field":   field,
			"address": addr.Hex(),
		},
	}
}
