package domain

import (
	"context"
	"time"
)

// Item represents a tenant-owned inventory record
type Item struct {
	ID          string  // UUID assigned by the store
	OwnerID     string  // User.ID of the creator, immutable
	Name        string  // Required, non-empty
	Description string  // Optional
	Price       float64 // Non-negative, defaults to 0
	Quantity    int     // Non-negative, defaults to 0
	CreatedAt   time.Time
}

// ItemRepository defines data access for items. Every operation is scoped to
// an owner: Get, Update, and Delete match on (id AND owner_id) in a single
// predicate so a foreign-owned row is indistinguishable from a missing one.
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Item, error)
	GetByID(ctx context.Context, ownerID, id string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, ownerID, id string) error
	CountAll(ctx context.Context) (int, error)
}
