package models

import (
	"github.com/google/uuid"
)

// CraftRequest is the body of POST /game/crafting/merge
type CraftRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids" validate:"required,min=1,dive,required"`
}

// CraftResponse is the success payload of POST /game/crafting/merge
type CraftResponse struct {
	Success     bool           `json:"success"`
	CraftedItem *InventoryItem `json:"crafted_item"`
	Message     string         `json:"message"`
	XPEarned    int            `json:"xp_earned"`
}

// RecipesResponse is the payload of GET /game/crafting/recipes
type RecipesResponse struct {
	Recipes []MergeRecipe `json:"recipes"`
}

// InventoryResponse is the payload of GET /game/inventory
type InventoryResponse struct {
	Items []InventoryItem `json:"items"`
}

// ErrorResponse is the shape of every non-2xx body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Error codes returned in ErrorResponse.Error
const (
	ErrorCodeUnauthorized   = "UNAUTHORIZED"
	ErrorCodeBadRequest     = "BAD_REQUEST"
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeEmptySelection = "EMPTY_SELECTION"
	ErrorCodeItemsNotFound  = "ITEMS_NOT_FOUND"
	ErrorCodeMixedRarity    = "MIXED_RARITY"
	ErrorCodeWrongItemCount = "WRONG_ITEM_COUNT"
	ErrorCodeNoRecipe       = "NO_RECIPE"
	ErrorCodeRateLimited    = "RATE_LIMITED"
	ErrorCodeInternalError  = "INTERNAL_ERROR"
)
