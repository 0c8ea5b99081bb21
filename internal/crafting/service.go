package crafting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tapcraft/crafting-service/internal/models"
	"github.com/tapcraft/crafting-service/internal/storage"
	"github.com/tapcraft/crafting-service/pkg/metrics"
)

// SourceCrafted labels items minted by the crafting engine.
const SourceCrafted = "Crafted"

// xpAwardTimeout bounds the async reward call so it never outlives the host
// process shutdown grace period.
const xpAwardTimeout = 10 * time.Second

// Cosmetic metadata for minted items, keyed by the target tier only. The
// consumed items never influence the output's appearance.
var craftedNames = map[models.Rarity]string{
	models.RarityUncommon:      "Uncommon Relic",
	models.RarityRare:          "Rare Relic",
	models.RarityEpic:          "Epic Relic",
	models.RarityLegendary:     "Legendary Relic",
	models.RarityLegendaryPlus: "Legendary+ Relic",
	models.RarityMythic:        "Mythic Relic",
}

// Result is the outcome of a successful craft.
type Result struct {
	Item     models.InventoryItem
	XPEarned int
}

// Service runs the craft state transition: rate limit, validate, look up the
// recipe, atomically exchange the items, then award XP best-effort. Every
// failure before the exchange leaves the inventory byte-for-byte unchanged.
type Service struct {
	items   storage.ItemRepository
	limiter Limiter
	xp      XPAwarder
	logger  *zap.Logger

	now func() time.Time
}

// NewService wires the craft orchestrator.
func NewService(items storage.ItemRepository, limiter Limiter, xp XPAwarder, logger *zap.Logger) *Service {
	return &Service{
		items:   items,
		limiter: limiter,
		xp:      xp,
		logger:  logger,
		now:     time.Now,
	}
}

// Craft consumes the submitted same-rarity items and mints one item of the
// next tier. Returns one of the sentinel errors from errors.go for every
// expected rejection; any other error is a storage failure.
//
// Crafting is intentionally not idempotent: replaying a successful request
// fails with ErrItemsNotFound because the inputs no longer exist.
func (s *Service) Craft(ctx context.Context, playerID uuid.UUID, itemIDs []uuid.UUID) (*Result, error) {
	allowed, err := s.limiter.Allow(ctx, playerID, s.now())
	if err != nil {
		return nil, fmt.Errorf("craft limiter unavailable: %w", err)
	}
	if !allowed {
		metrics.RecordRateLimitRejection()
		return nil, ErrRateLimited
	}

	_, tier, err := validateSelection(ctx, s.items, playerID, itemIDs)
	if err != nil {
		return nil, err
	}

	recipe, ok := RecipeFor(tier)
	if !ok {
		return nil, ErrNoRecipe
	}

	if len(itemIDs) != recipe.RequiredCount {
		// Exact match only: accepting extras would silently destroy them.
		return nil, ErrWrongItemCount
	}

	minted := newCraftedItem(playerID, recipe.Target, s.now())

	if err := s.items.ExchangeItems(ctx, playerID, itemIDs, &minted); err != nil {
		if errors.Is(err, storage.ErrItemsNotFound) {
			// Lost the race against a concurrent craft spending the same
			// items; the transaction rolled back with nothing written.
			return nil, ErrItemsNotFound
		}
		metrics.RecordCraft(recipe.Target.String(), "error")
		return nil, err
	}

	xpEarned := recipe.RequiredCount * XPPerItem
	s.awardAsync(playerID, xpEarned)

	metrics.RecordCraft(recipe.Target.String(), "success")
	s.logger.Info("Craft completed",
		zap.String("player_id", playerID.String()),
		zap.String("source_rarity", tier.String()),
		zap.String("target_rarity", recipe.Target.String()),
		zap.Int("consumed", recipe.RequiredCount),
		zap.Int("xp_earned", xpEarned),
	)

	return &Result{Item: minted, XPEarned: xpEarned}, nil
}

// awardAsync credits XP without participating in the craft transaction. The
// craft already committed; a failed award is logged and counted for
// reconciliation but never surfaces to the caller.
func (s *Service) awardAsync(playerID uuid.UUID, amount int) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), xpAwardTimeout)
		defer cancel()

		if err := s.xp.IncrementXP(ctx, playerID, amount); err != nil {
			metrics.RecordXPAward("error")
			s.logger.Error("Failed to award craft XP",
				zap.Error(err),
				zap.String("player_id", playerID.String()),
				zap.Int("amount", amount),
			)
			return
		}
		metrics.RecordXPAward("success")
	}()
}

// newCraftedItem builds the minted output for the target tier. Cosmetics are
// derived from the tier alone; the item starts unequipped.
func newCraftedItem(playerID uuid.UUID, target models.Rarity, now time.Time) models.InventoryItem {
	return models.InventoryItem{
		ID:        uuid.New(),
		PlayerID:  playerID,
		Rarity:    target,
		Name:      craftedNames[target],
		Icon:      fmt.Sprintf("icons/items/%s.png", target),
		Source:    SourceCrafted,
		Equipped:  false,
		CreatedAt: now.UTC(),
	}
}
