package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Rarity is one tier of the rarity ladder. Tiers form a strict total order;
// comparing two Rarity values with < and > follows ladder order.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
	RarityLegendaryPlus
	RarityMythic
)

var rarityCodes = map[Rarity]string{
	RarityCommon:        "common",
	RarityUncommon:      "uncommon",
	RarityRare:          "rare",
	RarityEpic:          "epic",
	RarityLegendary:     "legendary",
	RarityLegendaryPlus: "legendary_plus",
	RarityMythic:        "mythic",
}

var rarityByCode = func() map[string]Rarity {
	m := make(map[string]Rarity, len(rarityCodes))
	for r, code := range rarityCodes {
		m[code] = r
	}
	return m
}()

// ParseRarity converts a stored rarity code into a Rarity value
func ParseRarity(code string) (Rarity, error) {
	r, ok := rarityByCode[code]
	if !ok {
		return 0, fmt.Errorf("unknown rarity code: %q", code)
	}
	return r, nil
}

// IsValid reports whether r is one of the ladder tiers
func (r Rarity) IsValid() bool {
	_, ok := rarityCodes[r]
	return ok
}

func (r Rarity) String() string {
	if code, ok := rarityCodes[r]; ok {
		return code
	}
	return fmt.Sprintf("rarity(%d)", int(r))
}

// MarshalJSON encodes the rarity as its code string
func (r Rarity) MarshalJSON() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("cannot marshal invalid rarity %d", int(r))
	}
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a rarity code string
func (r *Rarity) UnmarshalJSON(data []byte) error {
	var code string
	if err := json.Unmarshal(data, &code); err != nil {
		return err
	}
	parsed, err := ParseRarity(code)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Value implements driver.Valuer, storing the rarity as its code
func (r Rarity) Value() (driver.Value, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("cannot store invalid rarity %d", int(r))
	}
	return r.String(), nil
}

// Scan implements sql.Scanner
func (r *Rarity) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		parsed, err := ParseRarity(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		parsed, err := ParseRarity(string(v))
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Rarity", value)
	}
}

// InventoryItem is one item owned by a player. Name, Icon and Source are
// cosmetic and opaque to the crafting engine; Equipped must survive crafting
// untouched on items that are not consumed.
type InventoryItem struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PlayerID  uuid.UUID `json:"player_id" db:"player_id"`
	Rarity    Rarity    `json:"rarity" db:"rarity"`
	Name      string    `json:"name" db:"name"`
	Icon      string    `json:"icon" db:"icon"`
	Source    string    `json:"source" db:"source"`
	Equipped  bool      `json:"equipped" db:"equipped"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MergeRecipe maps a source tier to the tier minted when RequiredCount items
// of the source tier are consumed. Exactly one recipe exists per non-terminal
// tier; the top tier has none.
type MergeRecipe struct {
	Source        Rarity `json:"source"`
	Target        Rarity `json:"target"`
	RequiredCount int    `json:"required_count"`
}
