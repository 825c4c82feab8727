package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/itemvault/internal/domain"
	"github.com/yourorg/itemvault/internal/events"
)

type memItemRepo struct {
	mu    sync.Mutex
	items map[string]*domain.Item
	seq   int
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: map[string]*domain.Item{}}
}

func (m *memItemRepo) Create(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	item.ID = fmt.Sprintf("item-%d", m.seq)
	item.CreatedAt = time.Now().UTC()
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *memItemRepo) ListByOwner(_ context.Context, ownerID string) ([]*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Item{}
	for i := 1; i <= m.seq; i++ {
		if item, ok := m.items[fmt.Sprintf("item-%d", i)]; ok && item.OwnerID == ownerID {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memItemRepo) GetByID(_ context.Context, ownerID, id string) (*domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok && item.OwnerID == ownerID {
		cp := *item
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (m *memItemRepo) Update(_ context.Context, item *domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.items[item.ID]
	if !ok || existing.OwnerID != item.OwnerID {
		return domain.ErrNotFound
	}
	existing.Name = item.Name
	existing.Description = item.Description
	item.Price = existing.Price
	item.Quantity = existing.Quantity
	item.CreatedAt = existing.CreatedAt
	return nil
}

func (m *memItemRepo) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok && item.OwnerID == ownerID {
		delete(m.items, id)
		return nil
	}
	return domain.ErrNotFound
}

func (m *memItemRepo) CountAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.ItemEvent
	owners []string
}

func (b *recordingBus) Publish(ownerID string, event events.ItemEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.owners = append(b.owners, ownerID)
	b.events = append(b.events, event)
}

func rawJSON(s string) json.RawMessage {
	return json.RawMessage(s)
}

func newItemService() (*ItemService, *memItemRepo, *recordingBus) {
	repo := newMemItemRepo()
	bus := &recordingBus{}
	return NewItemService(repo, nil, 0, bus, nil), repo, bus
}

func TestCreateItemCoercion(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newItemService()

	tests := []struct {
		name         string
		price        json.RawMessage
		quantity     json.RawMessage
		wantPrice    float64
		wantQuantity int
	}{
		{"numeric values", rawJSON(`19.99`), rawJSON(`3`), 19.99, 3},
		{"string values", rawJSON(`"19.99"`), rawJSON(`"3"`), 19.99, 3},
		{"garbage price", rawJSON(`"not-a-number"`), rawJSON(`2`), 0, 2},
		{"absent values", nil, nil, 0, 0},
		{"null values", rawJSON(`null`), rawJSON(`null`), 0, 0},
		{"negative values", rawJSON(`-5`), rawJSON(`-2`), 0, 0},
		{"fractional quantity", rawJSON(`1`), rawJSON(`3.7`), 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := s.Create(ctx, "owner-1", CreateItemInput{
				Name:     "Widget",
				Price:    tt.price,
				Quantity: tt.quantity,
			})
			if err != nil {
				t.Fatalf("create failed: %v", err)
			}
			if item.Price != tt.wantPrice {
				t.Errorf("price = %v, want %v", item.Price, tt.wantPrice)
			}
			if item.Quantity != tt.wantQuantity {
				t.Errorf("quantity = %v, want %v", item.Quantity, tt.wantQuantity)
			}
		})
	}
}

func TestCreateItemRequiresName(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newItemService()

	for _, name := range []string{"", "   "} {
		if _, err := s.Create(ctx, "owner-1", CreateItemInput{Name: name}); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("expected validation error for name %q, got %v", name, err)
		}
	}
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newItemService()

	created, err := s.Create(ctx, "owner-a", CreateItemInput{Name: "A's item"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// B's list never contains A's item
	items, err := s.List(ctx, "owner-b")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty list for owner-b, got %d items", len(items))
	}

	// B's get/update/delete on A's id all read as not found
	if _, err := s.Get(ctx, "owner-b", created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on foreign get, got %v", err)
	}
	if _, err := s.Update(ctx, "owner-b", created.ID, "stolen", ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on foreign update, got %v", err)
	}
	if err := s.Delete(ctx, "owner-b", created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on foreign delete, got %v", err)
	}

	// A still owns the record, untouched
	got, err := s.Get(ctx, "owner-a", created.ID)
	if err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if got.Name != "A's item" {
		t.Fatalf("item mutated across tenants: %q", got.Name)
	}
}

func TestUpdateLeavesPriceAndQuantity(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newItemService()

	created, err := s.Create(ctx, "owner-1", CreateItemInput{
		Name:     "Widget",
		Price:    rawJSON(`19.99`),
		Quantity: rawJSON(`3`),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := s.Update(ctx, "owner-1", created.ID, "Widget v2", "better")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Widget v2" || updated.Description != "better" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Price != 19.99 || updated.Quantity != 3 {
		t.Fatalf("price/quantity changed through update path: %+v", updated)
	}

	if _, err := s.Update(ctx, "owner-1", created.ID, "  ", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}
}

func TestDeleteTwice(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newItemService()

	created, err := s.Create(ctx, "owner-1", CreateItemInput{Name: "Doomed"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.Delete(ctx, "owner-1", created.ID); err != nil {
		t.Fatalf("first delete failed: %v", err)
	}
	if err := s.Delete(ctx, "owner-1", created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	ctx := context.Background()
	s, _, bus := newItemService()

	created, _ := s.Create(ctx, "owner-1", CreateItemInput{Name: "Widget"})
	s.Update(ctx, "owner-1", created.ID, "Widget v2", "")
	s.Delete(ctx, "owner-1", created.ID)

	bus.mu.Lock()
	defer bus.mu.Unlock()
	if len(bus.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(bus.events))
	}
	for i, action := range []string{"created", "updated", "deleted"} {
		if bus.events[i].Action != action {
			t.Errorf("event %d action = %q, want %q", i, bus.events[i].Action, action)
		}
		if bus.owners[i] != "owner-1" {
			t.Errorf("event %d published to %q", i, bus.owners[i])
		}
	}
}

func TestListUsesCache(t *testing.T) {
	ctx := context.Background()
	repo := newMemItemRepo()
	c := &countingCache{data: map[string][]byte{}}
	s := NewItemService(repo, c, time.Minute, nil, nil)

	if _, err := s.Create(ctx, "owner-1", CreateItemInput{Name: "Widget"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := s.List(ctx, "owner-1"); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if c.sets != 1 {
		t.Fatalf("expected list result cached, sets = %d", c.sets)
	}

	// Second list served from cache
	if _, err := s.List(ctx, "owner-1"); err != nil {
		t.Fatalf("cached list failed: %v", err)
	}
	if c.hits != 1 {
		t.Fatalf("expected a cache hit, hits = %d", c.hits)
	}

	// Mutation invalidates
	if _, err := s.Create(ctx, "owner-1", CreateItemInput{Name: "Gadget"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if c.deletes == 0 {
		t.Fatalf("expected cache invalidation after create")
	}
}

type countingCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	sets    int
	hits    int
	deletes int
}

func (c *countingCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.data[key]; ok {
		c.hits++
		return v, true
	}
	return nil, false
}

func (c *countingCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = value
}

func (c *countingCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deletes++
	delete(c.data, key)
}
