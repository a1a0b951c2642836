package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/rs/zerolog"
)

// shoppingCacheKeyPrefix namespaces generated lists in the cache
const shoppingCacheKeyPrefix = "shopping:"

// ShoppingListServiceConfig holds configuration for the shopping list service
type ShoppingListServiceConfig struct {
	CacheTTL time.Duration
}

// ShoppingListService builds shopping lists for a user's planned meals
type ShoppingListService struct {
	plans      domain.MealPlanRepository
	categories domain.CategoryRepository
	checklist  domain.ChecklistRepository
	cache      domain.CacheRepository
	aggregator *Aggregator
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewShoppingListService creates a new shopping list service with dependencies
func NewShoppingListService(
	plans domain.MealPlanRepository,
	categories domain.CategoryRepository,
	checklist domain.ChecklistRepository,
	cache domain.CacheRepository,
	aggregator *Aggregator,
	config ShoppingListServiceConfig,
	logger zerolog.Logger,
) *ShoppingListService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 15 * time.Minute
	}

	return &ShoppingListService{
		plans:      plans,
		categories: categories,
		checklist:  checklist,
		cache:      cache,
		aggregator: aggregator,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "shopping_list").Logger(),
	}
}

// Generate returns the shopping list for every meal planned between start and end
// (inclusive), with check-off status merged in.
// Flow: check cache -> load meals -> aggregate -> cache -> apply checks
func (s *ShoppingListService) Generate(ctx context.Context, userID int64, start, end time.Time) (*domain.ShoppingList, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date before start date", domain.ErrInvalidRequest)
	}

	cacheKey := s.generateCacheKey(userID, start, end)

	list, err := s.getFromCache(ctx, cacheKey)
	if err != nil {
		list, err = s.build(ctx, userID, start, end)
		if err != nil {
			return nil, err
		}

		if err := s.setInCache(ctx, cacheKey, list); err != nil {
			s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache shopping list")
		}
	}

	if err := s.applyChecks(ctx, userID, list); err != nil {
		return nil, err
	}
	return list, nil
}

// GenerateWeekly covers seven calendar days starting at start's day
func (s *ShoppingListService) GenerateWeekly(ctx context.Context, userID int64, start time.Time) (*domain.ShoppingList, error) {
	from, to := WeekRange(start)
	return s.Generate(ctx, userID, from, to)
}

// GenerateMonthly covers one calendar month
func (s *ShoppingListService) GenerateMonthly(ctx context.Context, userID int64, year int, month time.Month) (*domain.ShoppingList, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("%w: month %d", domain.ErrInvalidRequest, month)
	}
	from, to := MonthRange(year, month, time.UTC)
	return s.Generate(ctx, userID, from, to)
}

// ToggleItem marks an ingredient as checked or unchecked for a user
func (s *ShoppingListService) ToggleItem(ctx context.Context, userID, ingredientID int64, checked bool) error {
	return s.checklist.SetChecked(ctx, userID, ingredientID, checked)
}

// ClearChecked removes every check mark of a user (after shopping)
func (s *ShoppingListService) ClearChecked(ctx context.Context, userID int64) error {
	return s.checklist.Clear(ctx, userID)
}

// InvalidateCache drops every cached shopping list, e.g. after the catalog changed
func (s *ShoppingListService) InvalidateCache(ctx context.Context) error {
	return s.cache.DeletePrefix(ctx, shoppingCacheKeyPrefix)
}

// WeekRange returns start-of-day of t through the end of the sixth following day
func WeekRange(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	to := time.Date(y, m, d+6, 23, 59, 59, 999999999, t.Location())
	return from, to
}

// MonthRange returns the first and last instant of a calendar month
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	to := time.Date(year, month+1, 0, 23, 59, 59, 999999999, loc)
	return from, to
}

// build loads the planned meals and runs the aggregator
func (s *ShoppingListService) build(ctx context.Context, userID int64, start, end time.Time) (*domain.ShoppingList, error) {
	planned, err := s.plans.MealsInRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load meal plans: %w", err)
	}

	orders, err := s.categories.CategoryOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	meals, err := PlannedMealsToMeals(planned)
	if err != nil {
		return nil, err
	}

	list, err := s.aggregator.Generate(meals, orders)
	if err != nil {
		return nil, err
	}
	list.StartDate = start
	list.EndDate = end

	s.logger.Debug().
		Int64("user_id", userID).
		Time("start", start).
		Time("end", end).
		Int("meals", list.TotalMeals).
		Msg("generated shopping list")

	return list, nil
}

// PlannedMealsToMeals decodes persisted meal rows into aggregator input
func PlannedMealsToMeals(planned []domain.PlannedMeal) ([]domain.Meal, error) {
	meals := make([]domain.Meal, 0, len(planned))
	for _, p := range planned {
		servings := p.DefaultServings
		if p.ServingOverride != nil && *p.ServingOverride > 0 {
			servings = *p.ServingOverride
		}

		ingredients := make([]domain.RecipeIngredient, 0, len(p.Ingredients))
		for _, row := range p.Ingredients {
			ing, err := RowToIngredient(row)
			if err != nil {
				return nil, fmt.Errorf("recipe %q: %w", p.RecipeName, err)
			}
			ingredients = append(ingredients, ing)
		}

		meals = append(meals, domain.Meal{
			RecipeName:      p.RecipeName,
			DefaultServings: p.DefaultServings,
			Servings:        servings,
			Ingredients:     ingredients,
		})
	}
	return meals, nil
}

// applyChecks merges the user's check marks into list
func (s *ShoppingListService) applyChecks(ctx context.Context, userID int64, list *domain.ShoppingList) error {
	checks, err := s.checklist.Checked(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load checked items: %w", err)
	}

	for i := range list.AllIngredients {
		list.AllIngredients[i].Checked = checks[list.AllIngredients[i].IngredientID]
	}
	for g := range list.IngredientsByCategory {
		items := list.IngredientsByCategory[g].Ingredients
		for i := range items {
			items[i].Checked = checks[items[i].IngredientID]
		}
	}
	return nil
}

// generateCacheKey creates a cache key from user and date range.
// Format: "shopping:{user}:{start}:{end}"
func (s *ShoppingListService) generateCacheKey(userID int64, start, end time.Time) string {
	return fmt.Sprintf("%s%d:%s:%s", shoppingCacheKeyPrefix, userID,
		start.UTC().Format(time.RFC3339Nano), end.UTC().Format(time.RFC3339Nano))
}

// getFromCache retrieves a shopping list from cache
func (s *ShoppingListService) getFromCache(ctx context.Context, key string) (*domain.ShoppingList, error) {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var list domain.ShoppingList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode cached shopping list: %w", err)
	}
	return &list, nil
}

// setInCache stores a shopping list in cache
func (s *ShoppingListService) setInCache(ctx context.Context, key string, list *domain.ShoppingList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
