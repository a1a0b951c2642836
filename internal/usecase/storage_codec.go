package usecase

import (
	"fmt"

	"github.com/mealplanner/backend/internal/domain"
)

// DBToQuantity builds a Quantity from the stored whole/num/denom columns
func DBToQuantity(whole, num, denom int64) (domain.Quantity, error) {
	if denom == 0 {
		return domain.Quantity{}, fmt.Errorf("%w: stored quantity %d %d/%d", domain.ErrZeroDenominator, whole, num, denom)
	}
	return domain.NewQuantity(whole, num, denom), nil
}

// QuantityToDB returns the stored columns for q (pure field copy)
func QuantityToDB(q domain.Quantity) (whole, num, denom int64) {
	return q.Whole, q.Num, q.Denom
}

// RowToIngredient converts a persisted ingredient row into a recipe ingredient
func RowToIngredient(row domain.IngredientRow) (domain.RecipeIngredient, error) {
	q, err := DBToQuantity(row.QuantityWhole, row.QuantityNum, row.QuantityDenom)
	if err != nil {
		return domain.RecipeIngredient{}, err
	}
	unit, err := domain.ParseUnit(row.Unit)
	if err != nil {
		return domain.RecipeIngredient{}, fmt.Errorf("ingredient %d: %w", row.IngredientID, err)
	}

	return domain.RecipeIngredient{
		IngredientID: row.IngredientID,
		Name:         row.IngredientName,
		Category:     row.Category,
		Quantity:     q,
		Unit:         unit,
		PrepNote:     row.PrepNote,
		DisplayOrder: row.DisplayOrder,
	}, nil
}

// IngredientToRow converts a recipe ingredient into its persisted row
func IngredientToRow(ing domain.RecipeIngredient) domain.IngredientRow {
	whole, num, denom := QuantityToDB(ing.Quantity)
	return domain.IngredientRow{
		IngredientID:   ing.IngredientID,
		QuantityWhole:  whole,
		QuantityNum:    num,
		QuantityDenom:  denom,
		Unit:           string(ing.Unit),
		PrepNote:       ing.PrepNote,
		DisplayOrder:   ing.DisplayOrder,
		IngredientName: ing.Name,
		Category:       ing.Category,
	}
}
