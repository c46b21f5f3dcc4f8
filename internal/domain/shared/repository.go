package shared

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope narrows a query, e.g. a Where or Order clause
type Scope = func(*gorm.DB) *gorm.DB

// Repository is the generic data access contract shared by every aggregate.
// Table exposes a query builder scoped to the entity table for reads that
// go beyond lookups by id.
type Repository[T any] interface {
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Find(ctx context.Context, scopes ...Scope) ([]*T, error)
	First(ctx context.Context, scopes ...Scope) (*T, error)
	Count(ctx context.Context, scopes ...Scope) (int64, error)
	GetPaged(ctx context.Context, pageIndex, pageSize int, scopes ...Scope) (*PagedList[*T], error)

	Insert(ctx context.Context, entity *T) error
	InsertMany(ctx context.Context, entities []*T) error
	Update(ctx context.Context, entity *T) error
	UpdateMany(ctx context.Context, entities []*T) error
	Delete(ctx context.Context, entity *T) error
	DeleteMany(ctx context.Context, entities []*T) error

	Table(ctx context.Context) *gorm.DB
	TableNoTracking(ctx context.Context) *gorm.DB
}
