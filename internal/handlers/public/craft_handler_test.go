package public

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tapcraft/crafting-service/internal/auth"
	"github.com/tapcraft/crafting-service/internal/crafting"
	"github.com/tapcraft/crafting-service/internal/models"
	"github.com/tapcraft/crafting-service/internal/storage"
)

// memoryItemRepo backs the handler tests without a database.
type memoryItemRepo struct {
	mu           sync.Mutex
	items        map[uuid.UUID]models.InventoryItem
	failExchange error
	failReads    error
}

func newMemoryItemRepo(items ...models.InventoryItem) *memoryItemRepo {
	repo := &memoryItemRepo{items: make(map[uuid.UUID]models.InventoryItem)}
	for _, item := range items {
		repo.items[item.ID] = item
	}
	return repo
}

func (r *memoryItemRepo) GetItemsByIDs(_ context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failReads != nil {
		return nil, r.failReads
	}

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

func (r *memoryItemRepo) GetPlayerItems(_ context.Context, playerID uuid.UUID) ([]models.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failReads != nil {
		return nil, r.failReads
	}

	var out []models.InventoryItem
	for _, item := range r.items {
		if item.PlayerID == playerID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memoryItemRepo) ExchangeItems(_ context.Context, playerID uuid.UUID, consumedIDs []uuid.UUID, minted *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failExchange != nil {
		return r.failExchange
	}

	for _, id := range consumedIDs {
		item, ok := r.items[id]
		if !ok || item.PlayerID != playerID {
			return storage.ErrItemsNotFound
		}
	}
	for _, id := range consumedIDs {
		delete(r.items, id)
	}
	r.items[minted.ID] = *minted
	return nil
}

type stubLimiter struct {
	allow bool
}

func (l *stubLimiter) Allow(context.Context, uuid.UUID, time.Time) (bool, error) {
	return l.allow, nil
}

type noopAwarder struct{}

func (noopAwarder) IncrementXP(context.Context, uuid.UUID, int) error { return nil }

func rareItems(playerID uuid.UUID, n int) []models.InventoryItem {
	items := make([]models.InventoryItem, n)
	for i := range items {
		items[i] = models.InventoryItem{
			ID:        uuid.New(),
			PlayerID:  playerID,
			Rarity:    models.RarityRare,
			Name:      "Rare Relic",
			Icon:      "icons/items/rare.png",
			Source:    "Quest",
			CreatedAt: time.Now().UTC(),
		}
	}
	return items
}

func craftBody(t *testing.T, items []models.InventoryItem) *bytes.Buffer {
	t.Helper()
	ids := make([]uuid.UUID, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	body, err := json.Marshal(models.CraftRequest{ItemIDs: ids})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func authedRequest(method, target string, body *bytes.Buffer, playerID uuid.UUID) *http.Request {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	ctx := auth.WithPlayer(req.Context(), &auth.PlayerContext{PlayerID: playerID})
	return req.WithContext(ctx)
}

func newCraftHandler(repo storage.ItemRepository, limiter crafting.Limiter) *CraftHandler {
	svc := crafting.NewService(repo, limiter, noopAwarder{}, zap.NewNop())
	return NewCraftHandler(svc, zap.NewNop())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCraftHandler_Merge_Success(t *testing.T) {
	playerID := uuid.New()
	items := rareItems(playerID, 3)
	handler := newCraftHandler(newMemoryItemRepo(items...), &stubLimiter{allow: true})

	rec := httptest.NewRecorder()
	handler.Merge(rec, authedRequest(http.MethodPost, "/game/crafting/merge", craftBody(t, items), playerID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.CraftResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.CraftedItem)
	assert.Equal(t, models.RarityEpic, resp.CraftedItem.Rarity)
	assert.Equal(t, playerID, resp.CraftedItem.PlayerID)
	assert.Equal(t, 75, resp.XPEarned)
}

func TestCraftHandler_Merge_Unauthenticated(t *testing.T) {
	handler := newCraftHandler(newMemoryItemRepo(), &stubLimiter{allow: true})

	req := httptest.NewRequest(http.MethodPost, "/game/crafting/merge", bytes.NewBufferString(`{"item_ids":[]}`))
	rec := httptest.NewRecorder()
	handler.Merge(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, models.ErrorCodeUnauthorized, decodeError(t, rec).Error)
}

func TestCraftHandler_Merge_InvalidJSON(t *testing.T) {
	handler := newCraftHandler(newMemoryItemRepo(), &stubLimiter{allow: true})

	req := authedRequest(http.MethodPost, "/game/crafting/merge", bytes.NewBufferString(`{not json`), uuid.New())
	rec := httptest.NewRecorder()
	handler.Merge(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ErrorCodeBadRequest, decodeError(t, rec).Error)
}

func TestCraftHandler_Merge_EmptySelection(t *testing.T) {
	handler := newCraftHandler(newMemoryItemRepo(), &stubLimiter{allow: true})

	req := authedRequest(http.MethodPost, "/game/crafting/merge", bytes.NewBufferString(`{"item_ids":[]}`), uuid.New())
	rec := httptest.NewRecorder()
	handler.Merge(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ErrorCodeEmptySelection, decodeError(t, rec).Error)
}

func TestCraftHandler_Merge_ErrorMapping(t *testing.T) {
	playerID := uuid.New()

	tests := []struct {
		name       string
		items      int
		limiter    *stubLimiter
		wantStatus int
		wantCode   string
	}{
		{
			name:       "rate limited",
			items:      3,
			limiter:    &stubLimiter{allow: false},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   models.ErrorCodeRateLimited,
		},
		{
			name:       "wrong item count",
			items:      2,
			limiter:    &stubLimiter{allow: true},
			wantStatus: http.StatusBadRequest,
			wantCode:   models.ErrorCodeWrongItemCount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := rareItems(playerID, tt.items)
			handler := newCraftHandler(newMemoryItemRepo(items...), tt.limiter)

			rec := httptest.NewRecorder()
			handler.Merge(rec, authedRequest(http.MethodPost, "/game/crafting/merge", craftBody(t, items), playerID))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Error)
		})
	}
}

func TestCraftHandler_Merge_ItemsNotFound(t *testing.T) {
	playerID := uuid.New()
	items := rareItems(playerID, 3)
	// Repository knows nothing about these items
	handler := newCraftHandler(newMemoryItemRepo(), &stubLimiter{allow: true})

	rec := httptest.NewRecorder()
	handler.Merge(rec, authedRequest(http.MethodPost, "/game/crafting/merge", craftBody(t, items), playerID))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ErrorCodeItemsNotFound, decodeError(t, rec).Error)
}

func TestCraftHandler_Merge_StorageFailureIsOpaque(t *testing.T) {
	playerID := uuid.New()
	items := rareItems(playerID, 3)
	repo := newMemoryItemRepo(items...)
	repo.failExchange = errors.New("pq: connection reset by peer")
	handler := newCraftHandler(repo, &stubLimiter{allow: true})

	rec := httptest.NewRecorder()
	handler.Merge(rec, authedRequest(http.MethodPost, "/game/crafting/merge", craftBody(t, items), playerID))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, models.ErrorCodeInternalError, resp.Error)
	assert.Equal(t, "Internal server error", resp.Message)
	assert.NotContains(t, resp.Message, "pq:")
}

func TestCraftHandler_Recipes(t *testing.T) {
	handler := newCraftHandler(newMemoryItemRepo(), &stubLimiter{allow: true})

	rec := httptest.NewRecorder()
	handler.Recipes(rec, authedRequest(http.MethodGet, "/game/crafting/recipes", nil, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RecipesResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Recipes, 6)
}

func TestInventoryHandler_List(t *testing.T) {
	playerID := uuid.New()
	items := rareItems(playerID, 2)
	// A foreign item that must not leak into the listing
	foreign := rareItems(uuid.New(), 1)

	repo := newMemoryItemRepo(append(items, foreign...)...)
	handler := NewInventoryHandler(repo, zap.NewNop())

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/game/inventory", nil, playerID))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.InventoryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Items, 2)
}

func TestInventoryHandler_List_EmptyIsArray(t *testing.T) {
	handler := NewInventoryHandler(newMemoryItemRepo(), zap.NewNop())

	rec := httptest.NewRecorder()
	handler.List(rec, authedRequest(http.MethodGet, "/game/inventory", nil, uuid.New()))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
}
