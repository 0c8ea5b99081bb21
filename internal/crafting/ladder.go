package crafting

import (
	"github.com/tapcraft/crafting-service/internal/models"
)

// XP awarded per consumed item on a successful craft.
const XPPerItem = 25

// mergeRecipes is the rarity ladder: one recipe per non-terminal tier,
// consuming RequiredCount same-tier items and minting one item of the next
// tier. Mythic is terminal and has no entry.
var mergeRecipes = []models.MergeRecipe{
	{Source: models.RarityCommon, Target: models.RarityUncommon, RequiredCount: 3},
	{Source: models.RarityUncommon, Target: models.RarityRare, RequiredCount: 3},
	{Source: models.RarityRare, Target: models.RarityEpic, RequiredCount: 3},
	{Source: models.RarityEpic, Target: models.RarityLegendary, RequiredCount: 3},
	{Source: models.RarityLegendary, Target: models.RarityLegendaryPlus, RequiredCount: 3},
	{Source: models.RarityLegendaryPlus, Target: models.RarityMythic, RequiredCount: 3},
}

// RecipeFor returns the merge recipe whose source is the given tier. The
// second return value is false for the terminal tier and for values outside
// the ladder. Safe for concurrent use; the table is never mutated.
func RecipeFor(tier models.Rarity) (models.MergeRecipe, bool) {
	for _, r := range mergeRecipes {
		if r.Source == tier {
			return r, true
		}
	}
	return models.MergeRecipe{}, false
}

// Recipes returns a copy of the full merge recipe table in ladder order.
func Recipes() []models.MergeRecipe {
	out := make([]models.MergeRecipe, len(mergeRecipes))
	copy(out, mergeRecipes)
	return out
}
