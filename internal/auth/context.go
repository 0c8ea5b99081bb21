package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type contextKey string

const playerContextKey contextKey = "player"

// PlayerContext is the authenticated caller identity resolved from the JWT.
type PlayerContext struct {
	PlayerID uuid.UUID
	Wallet   string
}

func WithPlayer(ctx context.Context, player *PlayerContext) context.Context {
	return context.WithValue(ctx, playerContextKey, player)
}

func GetPlayer(ctx context.Context) (*PlayerContext, error) {
	player, ok := ctx.Value(playerContextKey).(*PlayerContext)
	if !ok || player == nil {
		return nil, fmt.Errorf("player not found in context")
	}
	return player, nil
}

func GetPlayerID(ctx context.Context) (uuid.UUID, error) {
	player, err := GetPlayer(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	return player.PlayerID, nil
}
