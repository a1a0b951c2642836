package usecase

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Aggregator merges scaled recipe quantities across meals into shopping-list lines.
// It keeps no state between calls; every Generate owns its own accumulator.
type Aggregator struct {
	converter *UnitConverter
	logger    zerolog.Logger
}

// NewAggregator creates an aggregator that uses converter for base-unit totals
func NewAggregator(converter *UnitConverter, logger zerolog.Logger) *Aggregator {
	if converter == nil {
		converter = NewUnitConverter(DefaultKitchenDenominator)
	}
	return &Aggregator{converter: converter, logger: logger}
}

// Generate aggregates every ingredient of every meal. categoryOrder maps category
// names to display ranks; categories missing from it sort last.
func (a *Aggregator) Generate(meals []domain.Meal, categoryOrder map[string]int) (*domain.ShoppingList, error) {
	acc := make(map[int64]*domain.AggregatedIngredient)

	for _, meal := range meals {
		scale, err := ScaleFactor(meal.Servings, meal.DefaultServings)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: %w", meal.RecipeName, err)
		}

		for _, ing := range meal.Ingredients {
			if err := a.accumulate(acc, meal.RecipeName, ing, scale); err != nil {
				return nil, fmt.Errorf("ingredient %q in recipe %q: %w", ing.Name, meal.RecipeName, err)
			}
		}
	}

	ingredients := make([]domain.AggregatedIngredient, 0, len(acc))
	for _, agg := range acc {
		ingredients = append(ingredients, *agg)
	}
	sortByName(ingredients)

	a.logger.Debug().
		Int("meals", len(meals)).
		Int("ingredients", len(ingredients)).
		Msg("aggregated shopping list")

	return &domain.ShoppingList{
		TotalMeals:            len(meals),
		IngredientsByCategory: groupByCategory(ingredients, categoryOrder),
		AllIngredients:        ingredients,
	}, nil
}

// accumulate folds one scaled contribution into the accumulator
func (a *Aggregator) accumulate(acc map[int64]*domain.AggregatedIngredient, recipeName string, ing domain.RecipeIngredient, scale domain.Quantity) error {
	if ing.IngredientID <= 0 {
		return fmt.Errorf("%w: ingredient id must be positive, got %d", domain.ErrInvalidRequest, ing.IngredientID)
	}
	if err := ing.Quantity.Validate(); err != nil {
		return err
	}
	scaled, err := ing.Quantity.Mul(scale)
	if err != nil {
		return err
	}

	base, err := a.converter.ToBaseUnits(scaled, ing.Unit)
	if err != nil {
		return err
	}

	agg, ok := acc[ing.IngredientID]
	if !ok {
		category := ing.Category
		if category == "" {
			category = domain.DefaultCategory
		}
		agg = &domain.AggregatedIngredient{
			IngredientID:     ing.IngredientID,
			IngredientName:   ing.Name,
			Category:         category,
			Quantity:         scaled,
			Unit:             ing.Unit,
			BaseValue:        base.Value,
			BaseUnit:         base.Unit,
			Accumulation:     domain.SameUnitSum,
			PrepNotes:        []string{},
			RecipeReferences: []domain.RecipeReference{},
		}
		acc[ing.IngredientID] = agg
	} else {
		if base.Unit != agg.BaseUnit {
			return fmt.Errorf("%w: %s and %s", domain.ErrCrossFamilyConversion, agg.Unit, ing.Unit)
		}

		switch {
		case ing.Unit == agg.Unit && agg.Accumulation == domain.SameUnitSum:
			if agg.Quantity, err = agg.Quantity.Add(scaled); err != nil {
				return err
			}
			total, err := a.converter.ToBaseUnits(agg.Quantity, agg.Unit)
			if err != nil {
				return err
			}
			agg.BaseValue = total.Value
		case ing.Unit == agg.Unit:
			if agg.Quantity, err = agg.Quantity.Add(scaled); err != nil {
				return err
			}
			agg.BaseValue = agg.BaseValue.Add(base.Value)
		default:
			// The display quantity keeps its unit; only the base total sees this contribution.
			agg.Accumulation = domain.CrossUnitBaseSum
			agg.BaseValue = agg.BaseValue.Add(base.Value)
		}
	}

	if ing.PrepNote != "" && !containsString(agg.PrepNotes, ing.PrepNote) {
		agg.PrepNotes = append(agg.PrepNotes, ing.PrepNote)
	}

	agg.RecipeReferences = append(agg.RecipeReferences, domain.RecipeReference{
		RecipeName: recipeName,
		Quantity:   scaled,
		Unit:       ing.Unit,
		PrepNote:   ing.PrepNote,
	})
	return nil
}

// ScaleFactor returns servings/defaultServings as an exact fraction.
// servings == 0 means the recipe's default.
func ScaleFactor(servings, defaultServings int64) (domain.Quantity, error) {
	if defaultServings <= 0 {
		return domain.Quantity{}, fmt.Errorf("%w: default servings %d", domain.ErrInvalidServings, defaultServings)
	}
	if servings < 0 {
		return domain.Quantity{}, fmt.Errorf("%w: servings %d", domain.ErrInvalidServings, servings)
	}
	if servings == 0 {
		servings = defaultServings
	}
	return domain.Fraction(servings, defaultServings)
}

// groupByCategory buckets ingredients by category and orders the buckets by rank
func groupByCategory(ingredients []domain.AggregatedIngredient, categoryOrder map[string]int) []domain.CategoryGroup {
	byCategory := make(map[string][]domain.AggregatedIngredient)
	for _, ing := range ingredients {
		byCategory[ing.Category] = append(byCategory[ing.Category], ing)
	}

	groups := make([]domain.CategoryGroup, 0, len(byCategory))
	for name, items := range byCategory {
		order, ok := categoryOrder[name]
		if !ok {
			order = domain.UnrankedCategoryOrder
		}
		sortByName(items)
		groups = append(groups, domain.CategoryGroup{
			Category:     name,
			DisplayOrder: order,
			Ingredients:  items,
		})
	}

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].DisplayOrder != groups[j].DisplayOrder {
			return groups[i].DisplayOrder < groups[j].DisplayOrder
		}
		return groups[i].Category < groups[j].Category
	})
	return groups
}

// sortByName orders ingredients alphabetically, ignoring case
func sortByName(items []domain.AggregatedIngredient) {
	sort.Slice(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].IngredientName), strings.ToLower(items[j].IngredientName)
		if a != b {
			return a < b
		}
		return items[i].IngredientID < items[j].IngredientID
	})
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
