package ecs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPrefab    = errors.New("ecs: invalid prefab")
	ErrUnknownPrefab    = errors.New("ecs: unknown prefab")
	ErrUnknownComponent = errors.New("ecs: unknown component kind")
	ErrDuplicateKind    = errors.New("ecs: entity already has this component kind")
)

// Component is the contract every attachment fulfills: a stable kind
// tag, a deep-copy clone, lifecycle hooks, and document (de)serialization.
type Component interface {
	Kind() Kind
	// Clone deep-copies the component for prefab instantiation.
	Clone() Component
	// Init runs once the owning entity is fully assembled.
	Init(owner *GameObject)
	// Update ticks the component from the factory update.
	Update(dt float64)
	// Load fills the component from a prefab or snapshot body.
	Load(f *Fields) error
	// Save returns the body persisted by snapshots.
	Save() map[string]any
}

// Ctor builds a blank component of one kind.
type Ctor func() Component

var ctors [kindCount]Ctor

// RegisterComponent binds a constructor to a kind. Registration is
// idempotent; re-registering a kind replaces its constructor.
func RegisterComponent(kind Kind, ctor Ctor) {
	if kind <= KindInvalid || kind >= kindCount || ctor == nil {
		return
	}
	ctors[kind] = ctor
}

// NewComponent constructs a blank component for kind.
func NewComponent(kind Kind) (Component, error) {
	if kind <= KindInvalid || kind >= kindCount || ctors[kind] == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownComponent, kind)
	}
	return ctors[kind](), nil
}
