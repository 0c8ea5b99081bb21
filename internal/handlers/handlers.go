package handlers

import (
	"go.uber.org/zap"

	"github.com/tapcraft/crafting-service/internal/crafting"
	"github.com/tapcraft/crafting-service/internal/database"
	"github.com/tapcraft/crafting-service/internal/handlers/public"
	"github.com/tapcraft/crafting-service/internal/storage"
)

// Handlers holds every HTTP handler of the service.
type Handlers struct {
	Health    *HealthHandler
	Craft     *public.CraftHandler
	Inventory *public.InventoryHandler
}

// HandlerDependencies contains what NewHandlers needs to wire the handlers.
type HandlerDependencies struct {
	CraftService *crafting.Service
	Items        storage.ItemRepository
	DB           *database.DB
	Redis        *database.RedisClient
	Logger       *zap.Logger
}

func NewHandlers(deps *HandlerDependencies) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(deps.DB, deps.Redis),
		Craft:     public.NewCraftHandler(deps.CraftService, deps.Logger),
		Inventory: public.NewInventoryHandler(deps.Items, deps.Logger),
	}
}
