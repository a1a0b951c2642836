package usecase

import (
	"testing"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator() *Aggregator {
	return NewAggregator(NewUnitConverter(DefaultKitchenDenominator), zerolog.Nop())
}

func ingredient(id int64, name, category string, q domain.Quantity, unit domain.Unit, prep string) domain.RecipeIngredient {
	return domain.RecipeIngredient{
		IngredientID: id,
		Name:         name,
		Category:     category,
		Quantity:     q,
		Unit:         unit,
		PrepNote:     prep,
	}
}

func meal(name string, ingredients ...domain.RecipeIngredient) domain.Meal {
	return domain.Meal{RecipeName: name, DefaultServings: 4, Ingredients: ingredients}
}

func TestAggregator_SameUnitSum(t *testing.T) {
	agg := newTestAggregator()

	list, err := agg.Generate([]domain.Meal{
		meal("Pancakes", ingredient(1, "Flour", "Baking", domain.WholeQuantity(2), domain.Cup, "")),
		meal("Bread", ingredient(1, "Flour", "Baking", domain.NewQuantity(1, 1, 2), domain.Cup, "")),
	}, nil)
	require.NoError(t, err)

	require.Len(t, list.AllIngredients, 1)
	flour := list.AllIngredients[0]
	assert.Equal(t, domain.NewQuantity(3, 1, 2), flour.Quantity)
	assert.Equal(t, domain.Cup, flour.Unit)
	assert.Equal(t, domain.SameUnitSum, flour.Accumulation)
	assert.Equal(t, domain.Milliliter, flour.BaseUnit)
	assert.True(t, flour.BaseValue.Equal(decimal.RequireFromString("828.06")), "base = %s", flour.BaseValue)
	require.Len(t, flour.RecipeReferences, 2)
	assert.Equal(t, "Pancakes", flour.RecipeReferences[0].RecipeName)
	assert.Equal(t, "Bread", flour.RecipeReferences[1].RecipeName)
	assert.Equal(t, 2, list.TotalMeals)
}

func TestAggregator_CrossUnitBaseSum(t *testing.T) {
	agg := newTestAggregator()

	list, err := agg.Generate([]domain.Meal{
		meal("Cereal", ingredient(2, "Milk", "Dairy", domain.WholeQuantity(1), domain.Cup, "")),
		meal("Sauce", ingredient(2, "Milk", "Dairy", domain.WholeQuantity(2), domain.Tablespoon, "")),
		meal("Latte", ingredient(2, "Milk", "Dairy", domain.WholeQuantity(1), domain.Cup, "")),
	}, nil)
	require.NoError(t, err)

	require.Len(t, list.AllIngredients, 1)
	milk := list.AllIngredients[0]
	assert.Equal(t, domain.CrossUnitBaseSum, milk.Accumulation)
	assert.Equal(t, domain.Cup, milk.Unit)
	assert.Equal(t, domain.WholeQuantity(2), milk.Quantity)
	// 236.59 + 29.57 + 236.59
	assert.True(t, milk.BaseValue.Equal(decimal.RequireFromString("502.75")), "base = %s", milk.BaseValue)
	assert.Len(t, milk.RecipeReferences, 3)
}

func TestAggregator_CrossFamilyFails(t *testing.T) {
	agg := newTestAggregator()

	_, err := agg.Generate([]domain.Meal{
		meal("Cookies", ingredient(3, "Butter", "Dairy", domain.WholeQuantity(1), domain.Cup, "")),
		meal("Toast", ingredient(3, "Butter", "Dairy", domain.WholeQuantity(100), domain.Gram, "")),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrCrossFamilyConversion)
}

func TestAggregator_Scaling(t *testing.T) {
	tests := []struct {
		name     string
		servings int64
		want     domain.Quantity
	}{
		{name: "doubled", servings: 8, want: domain.NewQuantity(1, 1, 2)},
		{name: "halved", servings: 2, want: domain.NewQuantity(0, 3, 8)},
		{name: "zero means default", servings: 0, want: domain.NewQuantity(0, 3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := meal("Soup", ingredient(4, "Stock", "Pantry", domain.NewQuantity(0, 3, 4), domain.Cup, ""))
			m.Servings = tt.servings

			list, err := newTestAggregator().Generate([]domain.Meal{m}, nil)
			require.NoError(t, err)
			require.Len(t, list.AllIngredients, 1)
			assert.Equal(t, tt.want, list.AllIngredients[0].Quantity)
			assert.Equal(t, tt.want, list.AllIngredients[0].RecipeReferences[0].Quantity)
		})
	}
}

func TestAggregator_InvalidInput(t *testing.T) {
	t.Run("negative servings", func(t *testing.T) {
		m := meal("Soup", ingredient(4, "Stock", "", domain.WholeQuantity(1), domain.Cup, ""))
		m.Servings = -1
		_, err := newTestAggregator().Generate([]domain.Meal{m}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidServings)
	})

	t.Run("zero default servings", func(t *testing.T) {
		m := meal("Soup", ingredient(4, "Stock", "", domain.WholeQuantity(1), domain.Cup, ""))
		m.DefaultServings = 0
		_, err := newTestAggregator().Generate([]domain.Meal{m}, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidServings)
	})

	t.Run("zero denominator", func(t *testing.T) {
		m := meal("Soup", ingredient(4, "Stock", "", domain.NewQuantity(1, 1, 0), domain.Cup, ""))
		_, err := newTestAggregator().Generate([]domain.Meal{m}, nil)
		assert.ErrorIs(t, err, domain.ErrZeroDenominator)
	})

	t.Run("unknown unit", func(t *testing.T) {
		m := meal("Soup", ingredient(4, "Salt", "", domain.WholeQuantity(1), domain.Unit("pinch"), ""))
		_, err := newTestAggregator().Generate([]domain.Meal{m}, nil)
		assert.ErrorIs(t, err, domain.ErrUnknownUnit)
	})
}

func TestAggregator_IngredientID(t *testing.T) {
	tests := []struct {
		name string
		id   int64
	}{
		{name: "zero", id: 0},
		{name: "negative", id: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := meal("Soup", ingredient(tt.id, "Stock", "", domain.WholeQuantity(1), domain.Cup, ""))
			_, err := newTestAggregator().Generate([]domain.Meal{m}, nil)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}

	t.Run("distinct positive ids stay separate", func(t *testing.T) {
		list, err := newTestAggregator().Generate([]domain.Meal{
			meal("Soup",
				ingredient(1, "Stock", "", domain.WholeQuantity(1), domain.Cup, ""),
				ingredient(2, "Water", "", domain.WholeQuantity(1), domain.Cup, ""),
			),
		}, nil)
		require.NoError(t, err)
		assert.Len(t, list.AllIngredients, 2)
	})
}

func TestAggregator_TotalOutOfRange(t *testing.T) {
	huge := domain.WholeQuantity(1 << 62)

	_, err := newTestAggregator().Generate([]domain.Meal{
		meal("Brine", ingredient(6, "Salt", "", huge, domain.Gram, "")),
		meal("Cure", ingredient(6, "Salt", "", huge, domain.Gram, "")),
	}, nil)
	assert.ErrorIs(t, err, domain.ErrQuantityOutOfRange)
}

func TestAggregator_PrepNotes(t *testing.T) {
	list, err := newTestAggregator().Generate([]domain.Meal{
		meal("Salsa", ingredient(5, "Onion", "Produce", domain.WholeQuantity(1), domain.Cup, "diced")),
		meal("Chili", ingredient(5, "Onion", "Produce", domain.WholeQuantity(1), domain.Cup, "diced")),
		meal("Burgers", ingredient(5, "Onion", "Produce", domain.NewQuantity(0, 1, 2), domain.Cup, "sliced")),
		meal("Stew", ingredient(5, "Onion", "Produce", domain.NewQuantity(0, 1, 2), domain.Cup, "")),
	}, nil)
	require.NoError(t, err)

	onion := list.AllIngredients[0]
	assert.Equal(t, []string{"diced", "sliced"}, onion.PrepNotes)
	assert.Len(t, onion.RecipeReferences, 4)
	assert.Equal(t, domain.WholeQuantity(3), onion.Quantity)
}

func TestAggregator_Grouping(t *testing.T) {
	list, err := newTestAggregator().Generate([]domain.Meal{
		meal("Dinner",
			ingredient(10, "carrot", "Produce", domain.WholeQuantity(1), domain.Cup, ""),
			ingredient(11, "Apple", "Produce", domain.WholeQuantity(1), domain.Cup, ""),
			ingredient(12, "Cream", "Dairy", domain.WholeQuantity(1), domain.Cup, ""),
			ingredient(13, "Cumin", "Spices", domain.WholeQuantity(1), domain.Teaspoon, ""),
			ingredient(14, "Mystery", "", domain.WholeQuantity(1), domain.Gram, ""),
		),
	}, map[string]int{"Produce": 1, "Dairy": 0})
	require.NoError(t, err)

	var names []string
	var orders []int
	for _, g := range list.IngredientsByCategory {
		names = append(names, g.Category)
		orders = append(orders, g.DisplayOrder)
	}
	assert.Equal(t, []string{"Dairy", "Produce", domain.DefaultCategory, "Spices"}, names)
	assert.Equal(t, []int{0, 1, domain.UnrankedCategoryOrder, domain.UnrankedCategoryOrder}, orders)

	produce := list.IngredientsByCategory[1].Ingredients
	require.Len(t, produce, 2)
	assert.Equal(t, "Apple", produce[0].IngredientName)
	assert.Equal(t, "carrot", produce[1].IngredientName)

	assert.Len(t, list.AllIngredients, 5)
	assert.Equal(t, "Apple", list.AllIngredients[0].IngredientName)
}

func TestAggregator_Empty(t *testing.T) {
	list, err := newTestAggregator().Generate(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, list.TotalMeals)
	assert.Empty(t, list.AllIngredients)
	assert.Empty(t, list.IngredientsByCategory)
}

func TestScaleFactor(t *testing.T) {
	got, err := ScaleFactor(6, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.NewQuantity(1, 1, 2), got)

	got, err = ScaleFactor(0, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.WholeQuantity(1), got)

	_, err = ScaleFactor(2, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidServings)
}
