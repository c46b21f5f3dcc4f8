package stores

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/webcontext"
)

// Cache keys
const (
	StoresPatternKey = "storefront.stores."
	storesAllKey     = "storefront.stores.all"
	storeByIDKey     = "storefront.stores.byid-%s"
	currentStoreKey  = "storefront.stores.current"

	// StoreIDQueryParam selects the store an administrator configures
	StoreIDQueryParam = "storeId"
)

// ErrNoStore is returned when no store exists at all
var ErrNoStore = shared.NewDomainError("STORE_NOT_LOADED", "Current store cannot be loaded")

// StoreService manages stores and resolves the store serving a request
type StoreService struct {
	stores shared.Repository[stores.Store]
	cache  cache.Manager
	logger *zap.Logger
}

// NewStoreService creates a new StoreService
func NewStoreService(repo shared.Repository[stores.Store], cacheManager cache.Manager, logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{
		stores: repo,
		cache:  cacheManager,
		logger: logger,
	}
}

// GetAllStores returns every store in display order
func (s *StoreService) GetAllStores(ctx context.Context) ([]*stores.Store, error) {
	return cache.GetOrAcquireDefault(ctx, s.cache, storesAllKey, func(ctx context.Context) ([]*stores.Store, error) {
		return s.stores.Find(ctx, func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order, name")
		})
	})
}

// GetStoreByID returns a store
func (s *StoreService) GetStoreByID(ctx context.Context, id uuid.UUID) (*stores.Store, error) {
	if id == uuid.Nil {
		return nil, shared.ErrNotFound
	}
	return cache.GetOrAcquireDefault(ctx, s.cache, fmt.Sprintf(storeByIDKey, id), func(ctx context.Context) (*stores.Store, error) {
		return s.stores.GetByID(ctx, id)
	})
}

// InsertStore stores a new store
func (s *StoreService) InsertStore(ctx context.Context, store *stores.Store) error {
	if err := s.stores.Insert(ctx, store); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, StoresPatternKey)
}

// UpdateStore saves a store
func (s *StoreService) UpdateStore(ctx context.Context, store *stores.Store) error {
	if store == nil {
		return shared.ErrInvalidInput
	}
	store.Touch()
	if err := s.stores.Update(ctx, store); err != nil {
		return err
	}
	return s.cache.RemoveByPattern(ctx, StoresPatternKey)
}

// CurrentStore returns the store whose hosts contain the request host,
// or the first store when none matches. The result is kept for the rest of
// the request.
func (s *StoreService) CurrentStore(ctx context.Context) (*stores.Store, error) {
	perRequest := cache.PerRequest(ctx)

	var current *stores.Store
	if found, err := perRequest.Get(ctx, currentStoreKey, &current); err == nil && found && current != nil {
		return current, nil
	}

	all, err := s.GetAllStores(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, ErrNoStore
	}

	current = all[0]
	if req, ok := webcontext.From(ctx); ok && req.Host != "" {
		if store := matchHost(all, req.Host); store != nil {
			current = store
		}
	}

	if err := perRequest.Set(ctx, currentStoreKey, current, cache.PerRequestCacheTime); err != nil {
		s.logger.Warn("Failed to cache current store", zap.Error(err))
	}
	return current, nil
}

// ActiveStoreScopeConfiguration returns the store an administrator selected
// with the storeId query parameter. With a single store, or for anyone who
// is not an administrator, it is uuid.Nil.
func (s *StoreService) ActiveStoreScopeConfiguration(ctx context.Context) (uuid.UUID, error) {
	req, ok := webcontext.From(ctx)
	if !ok || !req.IsAdmin {
		return uuid.Nil, nil
	}

	all, err := s.GetAllStores(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if len(all) < 2 {
		return uuid.Nil, nil
	}

	id, err := uuid.Parse(req.QueryValue(StoreIDQueryParam))
	if err != nil {
		return uuid.Nil, nil
	}
	store, err := s.GetStoreByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return store.ID, nil
}

// matchHost finds the store listing host, with or without its port
func matchHost(all []*stores.Store, host string) *stores.Store {
	candidates := []string{host}
	if h, _, err := net.SplitHostPort(host); err == nil {
		candidates = append(candidates, h)
	}
	for _, candidate := range candidates {
		for _, store := range all {
			if store.ContainsHostValue(strings.TrimSpace(candidate)) {
				return store
			}
		}
	}
	return nil
}

var _ stores.StoreContext = (*StoreService)(nil)
