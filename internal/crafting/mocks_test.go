package crafting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tapcraft/crafting-service/internal/models"
	"github.com/tapcraft/crafting-service/internal/storage"
)

// fakeItemRepo is an in-memory ItemRepository with the same semantics as the
// SQL implementation: lookups deduplicate ids, and ExchangeItems either
// applies completely or not at all.
type fakeItemRepo struct {
	mu           sync.Mutex
	items        map[uuid.UUID]models.InventoryItem
	failExchange error
}

func newFakeItemRepo(items ...models.InventoryItem) *fakeItemRepo {
	repo := &fakeItemRepo{items: make(map[uuid.UUID]models.InventoryItem)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *fakeItemRepo) GetItemsByIDs(_ context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[uuid.UUID]bool, len(ids))
	var out []models.InventoryItem
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) GetPlayerItems(_ context.Context, playerID uuid.UUID) ([]models.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.InventoryItem
	for _, item := range r.items {
		if item.PlayerID == playerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) ExchangeItems(_ context.Context, playerID uuid.UUID, consumedIDs []uuid.UUID, minted *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failExchange != nil {
		return r.failExchange
	}

	seen := make(map[uuid.UUID]bool, len(consumedIDs))
	matched := 0
	for _, id := range consumedIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		if item, ok := r.items[id]; ok && item.PlayerID == playerID {
			matched++
		}
	}
	if matched != len(consumedIDs) {
		return storage.ErrItemsNotFound
	}

	for _, id := range consumedIDs {
		delete(r.items, id)
	}
	r.items[minted.ID] = *minted
	return nil
}

func (r *fakeItemRepo) countOwnedBy(playerID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, item := range r.items {
		if item.PlayerID == playerID {
			n++
		}
	}
	return n
}

func (r *fakeItemRepo) snapshot() map[uuid.UUID]models.InventoryItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[uuid.UUID]models.InventoryItem, len(r.items))
	for id, item := range r.items {
		out[id] = item
	}
	return out
}

// fakeLimiter returns a fixed verdict.
type fakeLimiter struct {
	allow bool
	err   error
}

func (l *fakeLimiter) Allow(context.Context, uuid.UUID, time.Time) (bool, error) {
	return l.allow, l.err
}

// recordingAwarder captures XP awards on a channel so tests can wait for the
// asynchronous hook.
type recordingAwarder struct {
	awards chan int
	err    error
}

func newRecordingAwarder() *recordingAwarder {
	return &recordingAwarder{awards: make(chan int, 8)}
}

func (a *recordingAwarder) IncrementXP(_ context.Context, _ uuid.UUID, amount int) error {
	if a.err != nil {
		return a.err
	}
	a.awards <- amount
	return nil
}

func itemOf(playerID uuid.UUID, tier models.Rarity) models.InventoryItem {
	return models.InventoryItem{
		ID:        uuid.New(),
		PlayerID:  playerID,
		Rarity:    tier,
		Name:      "Test Item",
		Icon:      "icons/items/test.png",
		Source:    "Airdrop",
		CreatedAt: time.Now().UTC(),
	}
}
