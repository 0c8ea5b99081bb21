package crafting

import (
	"context"

	"github.com/google/uuid"

	"github.com/tapcraft/crafting-service/internal/models"
	"github.com/tapcraft/crafting-service/internal/storage"
)

// validateSelection resolves the submitted item ids and confirms that every
// one exists, belongs to the player, and that all share a single rarity.
// Checks run in that order and short-circuit; nothing is mutated. Duplicate
// ids resolve to fewer rows than submitted and are rejected as not found.
func validateSelection(ctx context.Context, items storage.ItemRepository, playerID uuid.UUID, itemIDs []uuid.UUID) ([]models.InventoryItem, models.Rarity, error) {
	if len(itemIDs) == 0 {
		return nil, 0, ErrEmptySelection
	}

	resolved, err := items.GetItemsByIDs(ctx, itemIDs)
	if err != nil {
		return nil, 0, err
	}

	if len(resolved) != len(itemIDs) {
		return nil, 0, ErrItemsNotFound
	}
	for _, item := range resolved {
		if item.PlayerID != playerID {
			return nil, 0, ErrItemsNotFound
		}
	}

	tier := resolved[0].Rarity
	for _, item := range resolved[1:] {
		if item.Rarity != tier {
			return nil, 0, ErrMixedRarity
		}
	}

	return resolved, tier, nil
}
