package pickupinstore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/persistence"
)

// Cache keys
const (
	PickupPointsPatternKey = "storefront.pickuppoint."
	pickupPointsAllKey     = "storefront.pickuppoint.all-%s"
)

// StorePickupPointService manages pickup points
type StorePickupPointService struct {
	points    shared.Repository[StorePickupPoint]
	cache     cache.Manager
	cacheTime time.Duration
}

// NewStorePickupPointService creates a new StorePickupPointService.
// A non-positive cacheTime falls back to cache.DefaultCacheTime.
func NewStorePickupPointService(points shared.Repository[StorePickupPoint], cacheManager cache.Manager, cacheTime time.Duration) *StorePickupPointService {
	if cacheTime <= 0 {
		cacheTime = cache.DefaultCacheTime
	}
	return &StorePickupPointService{points: points, cache: cacheManager, cacheTime: cacheTime}
}

// GetAll returns a page of the points available in a store, ordered by
// display order and name. uuid.Nil returns the points of every store.
func (s *StorePickupPointService) GetAll(ctx context.Context, storeID uuid.UUID, pageIndex, pageSize int) (*shared.PagedList[*StorePickupPoint], error) {
	all, err := cache.GetOrAcquire(ctx, s.cache, fmt.Sprintf(pickupPointsAllKey, storeID), s.cacheTime,
		func(ctx context.Context) ([]*StorePickupPoint, error) {
			return s.points.Find(ctx, func(db *gorm.DB) *gorm.DB {
				if storeID != uuid.Nil {
					db = db.Where("store_id IS NULL OR store_id = @store", persistence.GUIDParameter("store", &storeID))
				}
				return db.Order("display_order, name")
			})
		})
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = math.MaxInt32
	}
	return shared.PagedListFromSlice(all, pageIndex, pageSize), nil
}

// GetByID returns a pickup point
func (s *StorePickupPointService) GetByID(ctx context.Context, id uuid.UUID) (*StorePickupPoint, error) {
	return s.points.GetByID(ctx, id)
}

// Insert stores a new pickup point
func (s *StorePickupPointService) Insert(ctx context.Context, point *StorePickupPoint) error {
	if point == nil {
		return fmt.Errorf("%w: pickup point is required", shared.ErrInvalidInput)
	}
	if err := point.Validate(); err != nil {
		return err
	}
	if err := s.points.Insert(ctx, point); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, PickupPointsPatternKey)
}

// Update saves a pickup point
func (s *StorePickupPointService) Update(ctx context.Context, point *StorePickupPoint) error {
	if point == nil {
		return fmt.Errorf("%w: pickup point is required", shared.ErrInvalidInput)
	}
	if err := point.Validate(); err != nil {
		return err
	}
	point.Touch()
	if err := s.points.Update(ctx, point); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, PickupPointsPatternKey)
}

// Delete removes a pickup point
func (s *StorePickupPointService) Delete(ctx context.Context, point *StorePickupPoint) error {
	if point == nil {
		return fmt.Errorf("%w: pickup point is required", shared.ErrInvalidInput)
	}
	if err := s.points.Delete(ctx, point); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, PickupPointsPatternKey)
}
