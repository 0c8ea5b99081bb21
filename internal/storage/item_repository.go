package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/tapcraft/crafting-service/internal/database"
	"github.com/tapcraft/crafting-service/internal/models"
	"github.com/tapcraft/crafting-service/pkg/metrics"
)

// ErrItemsNotFound is returned by ExchangeItems when the consumed rows no
// longer all exist under the given player at commit time. Callers treat it
// the same as a failed ownership lookup.
var ErrItemsNotFound = errors.New("items not found")

// ItemRepository provides access to the inventory_items table.
type ItemRepository interface {
	// GetItemsByIDs returns the items matching the given ids. Missing ids
	// are simply absent from the result; the caller decides what that means.
	GetItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error)

	// GetPlayerItems returns every item owned by the player.
	GetPlayerItems(ctx context.Context, playerID uuid.UUID) ([]models.InventoryItem, error)

	// ExchangeItems deletes all consumed items and inserts the minted item
	// in one transaction. The delete re-checks existence and ownership via
	// its affected-row count, so two overlapping exchanges can never both
	// commit; the loser gets ErrItemsNotFound and nothing is written.
	ExchangeItems(ctx context.Context, playerID uuid.UUID, consumedIDs []uuid.UUID, minted *models.InventoryItem) error
}

type itemRepository struct {
	db *database.DB
}

// NewItemRepository creates an ItemRepository backed by PostgreSQL.
func NewItemRepository(db *database.DB) ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = "id, player_id, rarity, name, icon, source, equipped, created_at"

func scanItem(row pgx.Row) (models.InventoryItem, error) {
	var item models.InventoryItem
	err := row.Scan(
		&item.ID, &item.PlayerID, &item.Rarity,
		&item.Name, &item.Icon, &item.Source,
		&item.Equipped, &item.CreatedAt,
	)
	return item, err
}

// uuidStrings converts ids for the ::uuid[] casts in the queries below.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (r *itemRepository) GetItemsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE id = ANY($1::uuid[])
	`

	start := time.Now()
	rows, err := r.db.Pool().Query(ctx, query, uuidStrings(ids))
	metrics.RecordDBQuery("select", "inventory_items", time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query items by ids")
	}
	defer rows.Close()

	items := make([]models.InventoryItem, 0, len(ids))
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan inventory item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read inventory items")
	}

	return items, nil
}

func (r *itemRepository) GetPlayerItems(ctx context.Context, playerID uuid.UUID) ([]models.InventoryItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM inventory_items
		WHERE player_id = $1
		ORDER BY created_at DESC, id
	`

	start := time.Now()
	rows, err := r.db.Pool().Query(ctx, query, playerID)
	metrics.RecordDBQuery("select", "inventory_items", time.Since(start).Seconds())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query player items")
	}
	defer rows.Close()

	var items []models.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan inventory item")
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read player items")
	}

	return items, nil
}

func (r *itemRepository) ExchangeItems(ctx context.Context, playerID uuid.UUID, consumedIDs []uuid.UUID, minted *models.InventoryItem) error {
	deleteQuery := `
		DELETE FROM inventory_items
		WHERE id = ANY($1::uuid[]) AND player_id = $2
	`
	insertQuery := `
		INSERT INTO inventory_items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	start := time.Now()
	err := r.db.ExecTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, deleteQuery, uuidStrings(consumedIDs), playerID)
		if err != nil {
			return errors.Wrap(err, "failed to delete consumed items")
		}

		// The ownership re-check: a concurrent exchange that already
		// consumed any of these rows makes the count fall short, and the
		// whole transaction rolls back.
		if int(tag.RowsAffected()) != len(consumedIDs) {
			return ErrItemsNotFound
		}

		_, err = tx.Exec(ctx, insertQuery,
			minted.ID, minted.PlayerID, minted.Rarity,
			minted.Name, minted.Icon, minted.Source,
			minted.Equipped, minted.CreatedAt,
		)
		return errors.Wrap(err, "failed to insert minted item")
	})
	metrics.RecordDBQuery("exchange", "inventory_items", time.Since(start).Seconds())

	return err
}
