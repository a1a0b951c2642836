package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
categories:
  - name: Produce
    display_order: 1
  - name: Dairy
    display_order: 2
  - name: Dairy
    display_order: 0
    user_id: 7
ingredients:
  - id: 1
    name: Flour
    category: Baking
  - id: 2
    name: Milk
    category: Dairy
recipes:
  - id: 10
    name: Pancakes
    servings: 4
    ingredients:
      - ingredient_id: 2
        quantity_whole: 1
        quantity_num: 1
        quantity_denom: 2
        unit: cups
        display_order: 2
      - ingredient_id: 1
        quantity_whole: 2
        quantity_denom: 1
        unit: cup
        prep_note: sifted
        display_order: 1
meal_plans:
  - user_id: 7
    recipe_id: 10
    date: "2024-03-05"
    meal_type: breakfast
  - user_id: 7
    recipe_id: 10
    date: "2024-03-04"
    meal_type: dinner
    servings: 8
  - user_id: 7
    recipe_id: 10
    date: "2024-03-20"
    meal_type: lunch
  - user_id: 8
    recipe_id: 10
    date: "2024-03-04"
    meal_type: lunch
`

func writeCatalog(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func openSample(t *testing.T) *Store {
	t.Helper()
	path := writeCatalog(t, t.TempDir(), sampleCatalog)
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	return store
}

func TestStore_MealsInRange(t *testing.T) {
	store := openSample(t)
	ctx := context.Background()

	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)

	meals, err := store.MealsInRange(ctx, 7, start, end)
	require.NoError(t, err)
	require.Len(t, meals, 2)

	// sorted by date
	assert.Equal(t, "dinner", meals[0].MealType)
	require.NotNil(t, meals[0].ServingOverride)
	assert.Equal(t, int64(8), *meals[0].ServingOverride)
	assert.Nil(t, meals[1].ServingOverride)

	// ingredient rows ordered by display order and joined with names
	rows := meals[0].Ingredients
	require.Len(t, rows, 2)
	assert.Equal(t, "Flour", rows[0].IngredientName)
	assert.Equal(t, "Baking", rows[0].Category)
	assert.Equal(t, "sifted", rows[0].PrepNote)
	assert.Equal(t, "Milk", rows[1].IngredientName)
	assert.Equal(t, int64(4), meals[0].DefaultServings)

	other, err := store.MealsInRange(ctx, 8, start, end)
	require.NoError(t, err)
	assert.Len(t, other, 1)

	none, err := store.MealsInRange(ctx, 99, start, end)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_MealsInRange_ReturnsCopies(t *testing.T) {
	store := openSample(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	meals, err := store.MealsInRange(ctx, 7, day, day)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	meals[0].Ingredients[0].Unit = "tsp"

	again, err := store.MealsInRange(ctx, 7, day, day)
	require.NoError(t, err)
	assert.Equal(t, "cup", again[0].Ingredients[0].Unit)
}

func TestStore_CategoryOrders(t *testing.T) {
	store := openSample(t)
	ctx := context.Background()

	system, err := store.CategoryOrders(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Produce": 1, "Dairy": 2}, system)

	custom, err := store.CategoryOrders(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Produce": 1, "Dairy": 0}, custom)
}

func TestStore_Checklist(t *testing.T) {
	store := openSample(t)
	ctx := context.Background()

	require.NoError(t, store.SetChecked(ctx, 7, 1, true))
	require.NoError(t, store.SetChecked(ctx, 7, 2, true))
	require.NoError(t, store.SetChecked(ctx, 7, 2, false))
	require.NoError(t, store.SetChecked(ctx, 8, 2, true))

	checks, err := store.Checked(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, map[int64]bool{1: true}, checks)

	require.NoError(t, store.Clear(ctx, 7))
	checks, err = store.Checked(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, checks)

	checks, _ = store.Checked(ctx, 8)
	assert.Equal(t, map[int64]bool{2: true}, checks)
}

func TestIndex_Validation(t *testing.T) {
	row := func(unit string, denom int64) RecipeEntry {
		return RecipeEntry{ID: 1, Name: "Soup", Servings: 2, Ingredients: []domain.IngredientRow{{IngredientID: 1, QuantityWhole: 1, QuantityDenom: denom, Unit: unit}}}
	}
	ingredients := []IngredientEntry{{ID: 1, Name: "Stock"}}

	tests := []struct {
		name    string
		file    File
		wantErr error
	}{
		{
			name:    "duplicate ingredient",
			file:    File{Ingredients: []IngredientEntry{{ID: 1}, {ID: 1}}},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "zero ingredient id",
			file:    File{Ingredients: []IngredientEntry{{ID: 0, Name: "Stock"}}},
			wantErr: domain.ErrInvalidRequest,
		},
		{
			name:    "unknown unit",
			file:    File{Ingredients: ingredients, Recipes: []RecipeEntry{row("pinch", 1)}},
			wantErr: domain.ErrUnknownUnit,
		},
		{
			name:    "zero denominator",
			file:    File{Ingredients: ingredients, Recipes: []RecipeEntry{row("cup", 0)}},
			wantErr: domain.ErrZeroDenominator,
		},
		{
			name:    "missing ingredient",
			file:    File{Recipes: []RecipeEntry{row("cup", 1)}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "invalid servings",
			file:    File{Recipes: []RecipeEntry{{ID: 1, Name: "Soup"}}},
			wantErr: domain.ErrInvalidServings,
		},
		{
			name:    "unknown recipe in plan",
			file:    File{MealPlans: []MealPlanEntry{{RecipeID: 3, Date: "2024-03-04"}}},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "bad date",
			file:    File{Ingredients: ingredients, Recipes: []RecipeEntry{row("cup", 1)}, MealPlans: []MealPlanEntry{{RecipeID: 1, Date: "03/04/2024"}}},
			wantErr: domain.ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.file, zerolog.Nop())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStore_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, sampleCatalog)
	store, err := Open(path, zerolog.Nop())
	require.NoError(t, err)

	t.Run("broken file keeps previous data", func(t *testing.T) {
		writeCatalog(t, dir, "recipes: [")
		assert.Error(t, store.Reload())

		orders, err := store.CategoryOrders(context.Background(), 0)
		require.NoError(t, err)
		assert.Len(t, orders, 2)
	})

	t.Run("valid file replaces data", func(t *testing.T) {
		writeCatalog(t, dir, "categories:\n  - name: Bakery\n    display_order: 5\n")
		require.NoError(t, store.Reload())

		orders, err := store.CategoryOrders(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, map[string]int{"Bakery": 5}, orders)
	})
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "absent.yaml"), zerolog.Nop())
	assert.Error(t, err)
}
