package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// MealPlanRepository supplies planned meals with their recipe ingredient rows
type MealPlanRepository interface {
	MealsInRange(ctx context.Context, userID int64, start, end time.Time) ([]PlannedMeal, error)
}

// CategoryRepository supplies category display orders visible to a user
type CategoryRepository interface {
	CategoryOrders(ctx context.Context, userID int64) (map[string]int, error)
}

// ChecklistRepository tracks shopping-list items checked off while shopping
type ChecklistRepository interface {
	SetChecked(ctx context.Context, userID, ingredientID int64, checked bool) error
	Checked(ctx context.Context, userID int64) (map[int64]bool, error)
	Clear(ctx context.Context, userID int64) error
}
