package crafting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapcraft/crafting-service/internal/models"
)

func TestRecipeFor_EveryNonTerminalTier(t *testing.T) {
	tiers := []models.Rarity{
		models.RarityCommon, models.RarityUncommon, models.RarityRare,
		models.RarityEpic, models.RarityLegendary, models.RarityLegendaryPlus,
	}

	for _, tier := range tiers {
		t.Run(tier.String(), func(t *testing.T) {
			recipe, ok := RecipeFor(tier)
			require.True(t, ok)

			assert.Equal(t, tier, recipe.Source)
			assert.True(t, recipe.Target > recipe.Source, "target must be strictly higher in ladder order")
			assert.Equal(t, tier+1, recipe.Target, "target must be the immediately next tier")
			assert.GreaterOrEqual(t, recipe.RequiredCount, 2, "no free or self-loop upgrades")
		})
	}
}

func TestRecipeFor_TerminalTier(t *testing.T) {
	_, ok := RecipeFor(models.RarityMythic)
	assert.False(t, ok)
}

func TestRecipeFor_UnknownTier(t *testing.T) {
	_, ok := RecipeFor(models.Rarity(99))
	assert.False(t, ok)
}

func TestRecipes_ReturnsCopy(t *testing.T) {
	recipes := Recipes()
	require.Len(t, recipes, 6)

	recipes[0].RequiredCount = 999

	fresh, ok := RecipeFor(models.RarityCommon)
	require.True(t, ok)
	assert.Equal(t, 3, fresh.RequiredCount)
}
