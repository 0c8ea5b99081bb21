package crafting

import "errors"

// Expected craft outcomes. All of these are user-facing results, not faults:
// the caller can self-correct and resubmit (or wait, for ErrRateLimited).
// Anything else returned by Craft is a storage failure and must not leak
// internal detail to the caller.
var (
	// ErrRateLimited means the player exhausted the craft cap for the
	// current window.
	ErrRateLimited = errors.New("craft rate limit exceeded")

	// ErrEmptySelection means no item ids were submitted.
	ErrEmptySelection = errors.New("no items selected")

	// ErrItemsNotFound means at least one submitted item does not exist or
	// belongs to another player. The two cases are deliberately not
	// distinguished so the response never reveals other players' items.
	ErrItemsNotFound = errors.New("one or more items not found")

	// ErrMixedRarity means the submitted items span more than one tier.
	ErrMixedRarity = errors.New("items do not share a single rarity")

	// ErrWrongItemCount means the number of submitted items does not match
	// the recipe exactly.
	ErrWrongItemCount = errors.New("item count does not match the recipe")

	// ErrNoRecipe means the items' tier has no outgoing merge recipe.
	ErrNoRecipe = errors.New("no merge recipe for this rarity")
)
