package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is used for ingredients without a category
const DefaultCategory = "Other"

// UnrankedCategoryOrder is the display order of categories missing from the lookup
const UnrankedCategoryOrder = 999

// Accumulation tags how an aggregated ingredient's total was built
type Accumulation string

const (
	// SameUnitSum means every contribution shared the display unit and Quantity is exact
	SameUnitSum Accumulation = "same_unit_sum"

	// CrossUnitBaseSum means contributions used different units of one family;
	// Quantity only holds the display-unit contributions and BaseValue is the true total
	CrossUnitBaseSum Accumulation = "cross_unit_base_sum"
)

// RecipeIngredient is one scaled-by-nothing ingredient line of a recipe
type RecipeIngredient struct {
	IngredientID int64    `json:"ingredientId"`
	Name         string   `json:"name"`
	Category     string   `json:"category,omitempty"`
	Quantity     Quantity `json:"quantity"`
	Unit         Unit     `json:"unit"`
	PrepNote     string   `json:"prepNote,omitempty"`
	DisplayOrder int      `json:"displayOrder"`
}

// Meal is a recipe planned for a number of servings
type Meal struct {
	RecipeName      string             `json:"recipeName"`
	DefaultServings int64              `json:"defaultServings"`
	Servings        int64              `json:"servings,omitempty"` // 0 means DefaultServings
	Ingredients     []RecipeIngredient `json:"ingredients"`
}

// RecipeReference records one recipe's contribution to an aggregated ingredient
type RecipeReference struct {
	RecipeName string   `json:"recipeName"`
	Quantity   Quantity `json:"quantity"`
	Unit       Unit     `json:"unit"`
	PrepNote   string   `json:"prepNote,omitempty"`
}

// AggregatedIngredient is one shopping-list line
type AggregatedIngredient struct {
	IngredientID     int64             `json:"ingredientId"`
	IngredientName   string            `json:"ingredientName"`
	Category         string            `json:"category,omitempty"`
	Quantity         Quantity          `json:"quantity"`
	Unit             Unit              `json:"unit"`
	BaseValue        decimal.Decimal   `json:"baseValue"`
	BaseUnit         Unit              `json:"baseUnit"`
	Accumulation     Accumulation      `json:"accumulation"`
	PrepNotes        []string          `json:"prepNotes"`
	RecipeReferences []RecipeReference `json:"recipeReferences"`
	Checked          bool              `json:"checked"`
}

// CategoryGroup holds the ingredients of one category
type CategoryGroup struct {
	Category     string                 `json:"category"`
	DisplayOrder int                    `json:"displayOrder"`
	Ingredients  []AggregatedIngredient `json:"ingredients"`
}

// ShoppingList is the read-only result of one aggregation pass
type ShoppingList struct {
	StartDate             time.Time              `json:"startDate"`
	EndDate               time.Time              `json:"endDate"`
	TotalMeals            int                    `json:"totalMeals"`
	IngredientsByCategory []CategoryGroup        `json:"ingredientsByCategory"`
	AllIngredients        []AggregatedIngredient `json:"allIngredients"`
}

// IngredientRow is a recipe ingredient as stored by the persistence layer
type IngredientRow struct {
	IngredientID   int64  `json:"ingredientId" yaml:"ingredient_id"`
	QuantityWhole  int64  `json:"quantityWhole" yaml:"quantity_whole"`
	QuantityNum    int64  `json:"quantityNum" yaml:"quantity_num"`
	QuantityDenom  int64  `json:"quantityDenom" yaml:"quantity_denom"`
	Unit           string `json:"unit" yaml:"unit"`
	PrepNote       string `json:"prepNote,omitempty" yaml:"prep_note"`
	DisplayOrder   int    `json:"displayOrder" yaml:"display_order"`
	IngredientName string `json:"ingredientName" yaml:"-"`
	Category       string `json:"category,omitempty" yaml:"-"`
}

// PlannedMeal is a meal-plan row joined with its recipe
type PlannedMeal struct {
	RecipeID        int64           `json:"recipeId"`
	RecipeName      string          `json:"recipeName"`
	Date            time.Time       `json:"date"`
	MealType        string          `json:"mealType"`
	ServingOverride *int64          `json:"servingOverride,omitempty"`
	DefaultServings int64           `json:"defaultServings"`
	Ingredients     []IngredientRow `json:"ingredients"`
}
