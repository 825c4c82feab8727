package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/itemvault/internal/domain"
	"github.com/yourorg/itemvault/internal/events"
	"github.com/yourorg/itemvault/internal/observability/metrics"
)

// Cache is the byte cache the item service uses for list results. Both the
// Redis client and the in-memory fallback satisfy it; all calls are
// best-effort.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Publisher emits item change events for live subscribers
type Publisher interface {
	Publish(ownerID string, event events.ItemEvent)
}

// ItemService implements the ownership-scoped item operations. The owner id
// always comes from the authenticated caller, never from request input.
type ItemService struct {
	itemRepo domain.ItemRepository
	cache    Cache
	cacheTTL time.Duration
	bus      Publisher
	logger   *slog.Logger
}

// NewItemService creates a new item service
func NewItemService(
	itemRepo domain.ItemRepository,
	cache Cache,
	cacheTTL time.Duration,
	bus Publisher,
	logger *slog.Logger,
) *ItemService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ItemService{
		itemRepo: itemRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		bus:      bus,
		logger:   logger,
	}
}

// CreateItemInput carries raw item fields. Price and Quantity are kept as raw
// JSON so malformed numeric input can be normalized instead of rejected.
type CreateItemInput struct {
	Name        string
	Description string
	Price       json.RawMessage
	Quantity    json.RawMessage
}

// Create inserts a new item owned by ownerID
func (s *ItemService) Create(ctx context.Context, ownerID string, input CreateItemInput) (*domain.Item, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	item := &domain.Item{
		OwnerID:     ownerID,
		Name:        name,
		Description: input.Description,
		Price:       CoercePrice(input.Price),
		Quantity:    CoerceQuantity(input.Quantity),
	}

	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	s.publish(ownerID, "created", item)

	s.logger.Info("item created",
		slog.String("item_id", item.ID),
		slog.String("owner_id", ownerID),
	)

	return item, nil
}

// List returns all items owned by ownerID
func (s *ItemService) List(ctx context.Context, ownerID string) ([]*domain.Item, error) {
	key := listCacheKey(ownerID)

	if s.cache != nil {
		if data, ok := s.cache.Get(ctx, key); ok {
			var items []*domain.Item
			if err := json.Unmarshal(data, &items); err == nil {
				metrics.ObserveCacheLookup("hit")
				return items, nil
			}
			// corrupt entry, fall through to the store
			s.cache.Delete(ctx, key)
		}
		metrics.ObserveCacheLookup("miss")
	}

	items, err := s.itemRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			s.cache.Set(ctx, key, data, s.cacheTTL)
		}
	}

	return items, nil
}

// Get returns a single item, scoped to its owner
func (s *ItemService) Get(ctx context.Context, ownerID, id string) (*domain.Item, error) {
	return s.itemRepo.GetByID(ctx, ownerID, id)
}

// Update rewrites an item's name and description. Price and quantity are
// immutable through this path.
func (s *ItemService) Update(ctx context.Context, ownerID, id, name, description string) (*domain.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrValidation)
	}

	item := &domain.Item{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	s.publish(ownerID, "updated", item)

	return item, nil
}

// Delete hard-deletes an item, scoped to its owner
func (s *ItemService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.itemRepo.Delete(ctx, ownerID, id); err != nil {
		return err
	}

	s.invalidate(ctx, ownerID)
	s.publish(ownerID, "deleted", &domain.Item{ID: id})

	s.logger.Info("item deleted",
		slog.String("item_id", id),
		slog.String("owner_id", ownerID),
	)

	return nil
}

func (s *ItemService) invalidate(ctx context.Context, ownerID string) {
	if s.cache != nil {
		s.cache.Delete(ctx, listCacheKey(ownerID))
	}
}

func (s *ItemService) publish(ownerID, action string, item *domain.Item) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ownerID, events.ItemEvent{
		Action:    action,
		ItemID:    item.ID,
		Name:      item.Name,
		Timestamp: time.Now().UTC(),
	})
}

func listCacheKey(ownerID string) string {
	return "items:" + ownerID
}
