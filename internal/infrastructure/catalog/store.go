// Package catalog is a file-backed store of recipes, meal plans and categories.
// It implements the domain repository ports for single-node deployments and the CLI.
package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/mealplanner/backend/internal/domain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// dateLayout is the format of meal plan dates in the catalog file
const dateLayout = "2006-01-02"

// File is the on-disk catalog document
type File struct {
	Categories  []CategoryEntry   `yaml:"categories"`
	Ingredients []IngredientEntry `yaml:"ingredients"`
	Recipes     []RecipeEntry     `yaml:"recipes"`
	MealPlans   []MealPlanEntry   `yaml:"meal_plans"`
}

// CategoryEntry is a shopping category. UserID 0 marks a system category;
// a user's own entry with the same name overrides the system order.
type CategoryEntry struct {
	Name         string `yaml:"name"`
	DisplayOrder int    `yaml:"display_order"`
	UserID       int64  `yaml:"user_id"`
}

// IngredientEntry is a catalog ingredient
type IngredientEntry struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

// RecipeEntry is a recipe with its stored ingredient rows
type RecipeEntry struct {
	ID          int64                  `yaml:"id"`
	Name        string                 `yaml:"name"`
	Servings    int64                  `yaml:"servings"`
	Ingredients []domain.IngredientRow `yaml:"ingredients"`
}

// MealPlanEntry schedules a recipe for a user on a date
type MealPlanEntry struct {
	UserID   int64  `yaml:"user_id"`
	RecipeID int64  `yaml:"recipe_id"`
	Date     string `yaml:"date"`
	MealType string `yaml:"meal_type"`
	Servings *int64 `yaml:"servings"`
}

// snapshot is an immutable, indexed view of one successfully loaded file
type snapshot struct {
	ingredients map[int64]IngredientEntry
	recipes     map[int64]RecipeEntry
	categories  []CategoryEntry
	plans       []plannedEntry
}

type plannedEntry struct {
	MealPlanEntry
	date time.Time
}

// Store serves repository reads from the last successfully loaded catalog.
// Check-off state lives in memory only.
type Store struct {
	path   string
	logger zerolog.Logger

	mutex  sync.RWMutex
	data   *snapshot
	checks map[int64]map[int64]bool
}

// Open loads the catalog at path
func Open(path string, logger zerolog.Logger) (*Store, error) {
	s := &Store{
		path:   path,
		logger: logger.With().Str("component", "catalog").Logger(),
		checks: make(map[int64]map[int64]bool),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// New builds a store from an already decoded document
func New(file File, logger zerolog.Logger) (*Store, error) {
	snap, err := index(file)
	if err != nil {
		return nil, err
	}
	return &Store{
		logger: logger.With().Str("component", "catalog").Logger(),
		data:   snap,
		checks: make(map[int64]map[int64]bool),
	}, nil
}

// Path returns the file the store was opened from
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the catalog file. On error the previous data stays in place.
func (s *Store) Reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}

	file, err := Parse(raw)
	if err != nil {
		return err
	}
	snap, err := index(file)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	s.data = snap
	s.mutex.Unlock()

	s.logger.Info().
		Str("path", s.path).
		Int("recipes", len(snap.recipes)).
		Int("meal_plans", len(snap.plans)).
		Msg("catalog loaded")
	return nil
}

// Parse decodes a YAML catalog document
func Parse(raw []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return file, nil
}

// index validates file and builds lookup tables
func index(file File) (*snapshot, error) {
	snap := &snapshot{
		ingredients: make(map[int64]IngredientEntry, len(file.Ingredients)),
		recipes:     make(map[int64]RecipeEntry, len(file.Recipes)),
		categories:  file.Categories,
	}

	for _, ing := range file.Ingredients {
		if ing.ID <= 0 {
			return nil, fmt.Errorf("%w: ingredient %q needs a positive id, got %d", domain.ErrInvalidRequest, ing.Name, ing.ID)
		}
		if _, dup := snap.ingredients[ing.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate ingredient id %d", domain.ErrInvalidRequest, ing.ID)
		}
		snap.ingredients[ing.ID] = ing
	}

	for _, r := range file.Recipes {
		if _, dup := snap.recipes[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate recipe id %d", domain.ErrInvalidRequest, r.ID)
		}
		if r.Servings <= 0 {
			return nil, fmt.Errorf("recipe %q: %w: %d", r.Name, domain.ErrInvalidServings, r.Servings)
		}
		r.Ingredients = append([]domain.IngredientRow(nil), r.Ingredients...)
		for i, row := range r.Ingredients {
			ing, ok := snap.ingredients[row.IngredientID]
			if !ok {
				return nil, fmt.Errorf("recipe %q: %w: ingredient %d", r.Name, domain.ErrNotFound, row.IngredientID)
			}
			if row.QuantityDenom == 0 {
				return nil, fmt.Errorf("recipe %q ingredient %q: %w", r.Name, ing.Name, domain.ErrZeroDenominator)
			}
			if _, err := domain.ParseUnit(row.Unit); err != nil {
				return nil, fmt.Errorf("recipe %q ingredient %q: %w", r.Name, ing.Name, err)
			}
			r.Ingredients[i].IngredientName = ing.Name
			r.Ingredients[i].Category = ing.Category
		}
		sort.SliceStable(r.Ingredients, func(i, j int) bool {
			return r.Ingredients[i].DisplayOrder < r.Ingredients[j].DisplayOrder
		})
		snap.recipes[r.ID] = r
	}

	for _, p := range file.MealPlans {
		if _, ok := snap.recipes[p.RecipeID]; !ok {
			return nil, fmt.Errorf("meal plan on %s: %w: recipe %d", p.Date, domain.ErrNotFound, p.RecipeID)
		}
		date, err := time.ParseInLocation(dateLayout, p.Date, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: meal plan date %q", domain.ErrInvalidFormat, p.Date)
		}
		snap.plans = append(snap.plans, plannedEntry{MealPlanEntry: p, date: date})
	}

	sort.SliceStable(snap.plans, func(i, j int) bool {
		return snap.plans[i].date.Before(snap.plans[j].date)
	})
	return snap, nil
}

func (s *Store) current() *snapshot {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data
}

// MealsInRange returns the user's planned meals dated within [start, end]
func (s *Store) MealsInRange(ctx context.Context, userID int64, start, end time.Time) ([]domain.PlannedMeal, error) {
	snap := s.current()

	var out []domain.PlannedMeal
	for _, p := range snap.plans {
		if p.UserID != userID || p.date.Before(start) || p.date.After(end) {
			continue
		}
		recipe := snap.recipes[p.RecipeID]

		rows := make([]domain.IngredientRow, len(recipe.Ingredients))
		copy(rows, recipe.Ingredients)

		out = append(out, domain.PlannedMeal{
			RecipeID:        recipe.ID,
			RecipeName:      recipe.Name,
			Date:            p.date,
			MealType:        p.MealType,
			ServingOverride: p.Servings,
			DefaultServings: recipe.Servings,
			Ingredients:     rows,
		})
	}
	return out, nil
}

// CategoryOrders returns system category orders overlaid with the user's own
func (s *Store) CategoryOrders(ctx context.Context, userID int64) (map[string]int, error) {
	snap := s.current()

	orders := make(map[string]int, len(snap.categories))
	for _, c := range snap.categories {
		if c.UserID == 0 {
			orders[c.Name] = c.DisplayOrder
		}
	}
	if userID != 0 {
		for _, c := range snap.categories {
			if c.UserID == userID {
				orders[c.Name] = c.DisplayOrder
			}
		}
	}
	return orders, nil
}

// SetChecked records whether an ingredient has been picked up
func (s *Store) SetChecked(ctx context.Context, userID, ingredientID int64, checked bool) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !checked {
		delete(s.checks[userID], ingredientID)
		return nil
	}
	if s.checks[userID] == nil {
		s.checks[userID] = make(map[int64]bool)
	}
	s.checks[userID][ingredientID] = true
	return nil
}

// Checked returns a copy of the user's check marks
func (s *Store) Checked(ctx context.Context, userID int64) (map[int64]bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make(map[int64]bool, len(s.checks[userID]))
	for id, v := range s.checks[userID] {
		out[id] = v
	}
	return out, nil
}

// Clear drops every check mark of the user
func (s *Store) Clear(ctx context.Context, userID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.checks, userID)
	return nil
}
