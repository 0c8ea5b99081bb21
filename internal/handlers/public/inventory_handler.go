package public

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/tapcraft/crafting-service/internal/auth"
	"github.com/tapcraft/crafting-service/internal/models"
	"github.com/tapcraft/crafting-service/internal/storage"
)

// InventoryHandler serves the read-only inventory listing.
type InventoryHandler struct {
	items  storage.ItemRepository
	logger *zap.Logger
}

func NewInventoryHandler(items storage.ItemRepository, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		items:  items,
		logger: logger,
	}
}

// List handles GET /game/inventory
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playerID, err := auth.GetPlayerID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, models.ErrorCodeUnauthorized, "Player not found in context")
		return
	}

	items, err := h.items.GetPlayerItems(ctx, playerID)
	if err != nil {
		h.logger.Error("Failed to list inventory", zap.Error(err), zap.String("player_id", playerID.String()))
		writeError(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
		return
	}

	if items == nil {
		items = []models.InventoryItem{}
	}

	writeJSON(w, http.StatusOK, models.InventoryResponse{Items: items})
}
