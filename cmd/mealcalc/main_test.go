package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `
categories:
  - name: Dairy
    display_order: 1
  - name: Baking
    display_order: 2
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
      - ingredient_id: 1
        quantity_whole: 2
        quantity_denom: 1
        unit: cup
      - ingredient_id: 2
        quantity_whole: 1
        quantity_denom: 1
        unit: cup
        prep_note: warm
meal_plans:
  - user_id: 1
    recipe_id: 10
    date: "2024-03-04"
    meal_type: breakfast
    servings: 8
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out)
	app.ErrWriter = io.Discard
	err := app.Run(append([]string{"mealcalc"}, args...))
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{name: "mixed number", args: []string{"parse", "1 1/2"}, want: "1 1/2\t(1.5)\n"},
		{name: "split arguments", args: []string{"parse", "2", "3/4"}, want: "2 3/4\t(2.75)\n"},
		{name: "improper fraction", args: []string{"parse", "6/4"}, want: "1 1/2\t(1.5)\n"},
		{name: "decimal mode", args: []string{"parse", "--mode", "decimal", "0.25"}, want: "1/4\t(0.25)\n"},
		{name: "decimal mode rejects fractions", args: []string{"parse", "--mode", "decimal", "1/2"}, wantErr: domain.ErrFractionNotSupported},
		{name: "empty", args: []string{"parse"}, wantErr: domain.ErrEmptyInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestFormatCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{name: "normalizes", args: []string{"format", "--num", "6", "--denom", "4"}, want: "1 1/2\n"},
		{name: "whole only", args: []string{"format", "--whole", "3"}, want: "3\n"},
		{name: "with unit", args: []string{"format", "--whole", "1", "--num", "3", "--denom", "4", "--unit", "cup", "--long"}, want: "1 3/4 cups\n"},
		{name: "decimal display", args: []string{"--display", "decimal", "format", "--num", "1", "--denom", "3"}, want: "0.3333\n"},
		{name: "zero denominator", args: []string{"format", "--num", "1", "--denom", "0"}, wantErr: domain.ErrZeroDenominator},
		{name: "unknown unit", args: []string{"format", "--whole", "1", "--unit", "pinch"}, wantErr: domain.ErrUnknownUnit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestConvertCommand(t *testing.T) {
	out, err := run(t, "convert", "--from", "cup", "--to", "ml", "1")
	require.NoError(t, err)
	assert.Equal(t, "1 cup = 236 9/16 ml (236.59 ml)\n", out)

	out, err = run(t, "--display", "decimal", "convert", "--from", "cups", "--to", "tbsp", "1/2")
	require.NoError(t, err)
	assert.Equal(t, "0.5 cups = 8 tablespoons (8.00 tbsp)\n", out)

	_, err = run(t, "convert", "--from", "cup", "--to", "g", "1")
	assert.ErrorIs(t, err, domain.ErrCrossFamilyConversion)

	_, err = run(t, "convert", "--from", "pinch", "--to", "g", "1")
	assert.ErrorIs(t, err, domain.ErrUnknownUnit)
}

func TestScaleCommand(t *testing.T) {
	out, err := run(t, "scale", "--from", "4", "--to", "6", "3/4")
	require.NoError(t, err)
	assert.Equal(t, "1 1/8\n", out)

	_, err = run(t, "scale", "--from", "0", "--to", "6", "3/4")
	assert.ErrorIs(t, err, domain.ErrInvalidServings)

	_, err = run(t, "scale", "--from", "1", "--to", "2", "9223372036854775807")
	assert.ErrorIs(t, err, domain.ErrQuantityOutOfRange)
}

func TestShoppingListCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o644))

	t.Run("text", func(t *testing.T) {
		out, err := run(t, "shopping-list", "--catalog", path, "--user", "1", "--week", "2024-03-04")
		require.NoError(t, err)

		assert.Contains(t, out, "Shopping list 2024-03-04 to 2024-03-10 (1 meals)")
		assert.Contains(t, out, "  [ ] 2 cups Milk - warm")
		assert.Contains(t, out, "  [ ] 4 cups Flour")
		assert.Less(t, bytes.Index([]byte(out), []byte("Dairy")), bytes.Index([]byte(out), []byte("Baking")))
	})

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "shopping-list", "-c", path, "-u", "1", "--start", "2024-03-01", "--end", "2024-03-04", "-f", "json")
		require.NoError(t, err)

		var list domain.ShoppingList
		require.NoError(t, json.Unmarshal([]byte(out), &list))
		assert.Equal(t, 1, list.TotalMeals)
		require.Len(t, list.AllIngredients, 2)
		assert.Equal(t, domain.WholeQuantity(4), list.AllIngredients[0].Quantity.Normalize())
	})

	t.Run("other user has nothing planned", func(t *testing.T) {
		out, err := run(t, "shopping-list", "-c", path, "-u", "2", "--week", "2024-03-04")
		require.NoError(t, err)
		assert.Contains(t, out, "(0 meals)")
	})

	t.Run("requires a range", func(t *testing.T) {
		_, err := run(t, "shopping-list", "-c", path, "-u", "1")
		assert.Error(t, err)
	})

	t.Run("missing catalog", func(t *testing.T) {
		_, err := run(t, "shopping-list", "-c", filepath.Join(t.TempDir(), "none.yaml"), "-u", "1", "--week", "2024-03-04")
		assert.Error(t, err)
	})
}
