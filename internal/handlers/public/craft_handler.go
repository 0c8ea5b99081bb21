package public

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tapcraft/crafting-service/internal/auth"
	"github.com/tapcraft/crafting-service/internal/crafting"
	"github.com/tapcraft/crafting-service/internal/models"
)

// CraftHandler serves the crafting endpoints.
type CraftHandler struct {
	craftService *crafting.Service
	logger       *zap.Logger
	validator    *validator.Validate
}

func NewCraftHandler(craftService *crafting.Service, logger *zap.Logger) *CraftHandler {
	return &CraftHandler{
		craftService: craftService,
		logger:       logger,
		validator:    validator.New(),
	}
}

// Merge handles POST /game/crafting/merge
func (h *CraftHandler) Merge(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playerID, err := auth.GetPlayerID(ctx)
	if err != nil {
		writeError(w, http.StatusUnauthorized, models.ErrorCodeUnauthorized, "Player not found in context")
		return
	}

	var request models.CraftRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		// min=1 catches the empty selection before the service does
		writeError(w, http.StatusBadRequest, models.ErrorCodeEmptySelection, "item_ids must contain at least one item id")
		return
	}

	result, err := h.craftService.Craft(ctx, playerID, request.ItemIDs)
	if err != nil {
		h.writeCraftError(w, r, err, playerID.String())
		return
	}

	response := models.CraftResponse{
		Success:     true,
		CraftedItem: &result.Item,
		Message:     "Crafted 1 " + result.Item.Rarity.String() + " item",
		XPEarned:    result.XPEarned,
	}

	writeJSON(w, http.StatusOK, response)
}

// Recipes handles GET /game/crafting/recipes
func (h *CraftHandler) Recipes(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetPlayerID(r.Context()); err != nil {
		writeError(w, http.StatusUnauthorized, models.ErrorCodeUnauthorized, "Player not found in context")
		return
	}

	writeJSON(w, http.StatusOK, models.RecipesResponse{Recipes: crafting.Recipes()})
}

// writeCraftError maps the crafting error taxonomy onto HTTP statuses. Only
// expected outcomes carry detail; storage failures stay generic.
func (h *CraftHandler) writeCraftError(w http.ResponseWriter, r *http.Request, err error, playerID string) {
	switch {
	case errors.Is(err, crafting.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, models.ErrorCodeRateLimited, "Too many crafts. Please try again later.")
	case errors.Is(err, crafting.ErrEmptySelection):
		writeError(w, http.StatusBadRequest, models.ErrorCodeEmptySelection, err.Error())
	case errors.Is(err, crafting.ErrItemsNotFound):
		writeError(w, http.StatusBadRequest, models.ErrorCodeItemsNotFound, err.Error())
	case errors.Is(err, crafting.ErrMixedRarity):
		writeError(w, http.StatusBadRequest, models.ErrorCodeMixedRarity, err.Error())
	case errors.Is(err, crafting.ErrWrongItemCount):
		writeError(w, http.StatusBadRequest, models.ErrorCodeWrongItemCount, err.Error())
	case errors.Is(err, crafting.ErrNoRecipe):
		writeError(w, http.StatusBadRequest, models.ErrorCodeNoRecipe, err.Error())
	default:
		h.logger.Error("Craft failed",
			zap.Error(err),
			zap.String("player_id", playerID),
			zap.String("path", r.URL.Path),
		)
		writeError(w, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, statusCode int, errorCode string, message string) {
	writeJSON(w, statusCode, models.ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
