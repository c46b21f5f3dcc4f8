package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/common"
	"github.com/storefront/backend/internal/domain/directory"
	"github.com/storefront/backend/internal/domain/localization"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/stores"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

type identified interface {
	Base() *shared.BaseEntity
}

type identityModel interface {
	Identity() shared.BaseEntity
}

// GormRepository implements shared.Repository for entity E stored as model M
type GormRepository[E any, M any] struct {
	db       *gorm.DB
	toModel  func(*E) *M
	toDomain func(*M) *E
}

// NewGormRepository creates a repository converting with toModel and toDomain
func NewGormRepository[E any, M any](db *gorm.DB, toModel func(*E) *M, toDomain func(*M) *E) *GormRepository[E, M] {
	return &GormRepository[E, M]{db: db, toModel: toModel, toDomain: toDomain}
}

// GetByID returns shared.ErrNotFound when no row has id
func (r *GormRepository[E, M]) GetByID(ctx context.Context, id uuid.UUID) (*E, error) {
	if id == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	var model M
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.toDomain(&model), nil
}

// Find returns every row matching scopes
func (r *GormRepository[E, M]) Find(ctx context.Context, scopes ...shared.Scope) ([]*E, error) {
	var rows []*M
	if err := r.Table(ctx).Scopes(scopes...).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return r.mapAll(rows), nil
}

// First returns the first row matching scopes, or shared.ErrNotFound
func (r *GormRepository[E, M]) First(ctx context.Context, scopes ...shared.Scope) (*E, error) {
	var model M
	if err := r.Table(ctx).Scopes(scopes...).Take(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return r.toDomain(&model), nil
}

func (r *GormRepository[E, M]) Count(ctx context.Context, scopes ...shared.Scope) (int64, error) {
	var total int64
	if err := r.Table(ctx).Scopes(scopes...).Count(&total).Error; err != nil {
		return 0, translateError(err)
	}
	return total, nil
}

// GetPaged loads one page of rows matching scopes
func (r *GormRepository[E, M]) GetPaged(ctx context.Context, pageIndex, pageSize int, scopes ...shared.Scope) (*shared.PagedList[*E], error) {
	page, err := NewPagedList[*M](ctx, r.Table(ctx).Scopes(scopes...), pageIndex, pageSize)
	if err != nil {
		return nil, err
	}
	return shared.NewPagedList(r.mapAll(page.Items), page.PageIndex, page.PageSize, page.TotalCount), nil
}

func (r *GormRepository[E, M]) Insert(ctx context.Context, entity *E) error {
	if entity == nil {
		return shared.ErrInvalidInput
	}
	model := r.toModel(entity)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	syncIdentity(entity, model)
	return nil
}

func (r *GormRepository[E, M]) InsertMany(ctx context.Context, entities []*E) error {
	if len(entities) == 0 {
		return shared.ErrInvalidInput
	}
	rows, err := r.toModels(entities)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return translateError(err)
	}
	for i := range entities {
		syncIdentity(entities[i], rows[i])
	}
	return nil
}

// Update saves an existing entity. Entities without an ID must be inserted.
func (r *GormRepository[E, M]) Update(ctx context.Context, entity *E) error {
	if entity == nil || transient(entity) {
		return shared.ErrInvalidInput
	}
	model := r.toModel(entity)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return translateError(err)
	}
	syncIdentity(entity, model)
	return nil
}

func (r *GormRepository[E, M]) UpdateMany(ctx context.Context, entities []*E) error {
	if len(entities) == 0 {
		return shared.ErrInvalidInput
	}
	rows, err := r.toModels(entities)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if err := tx.Save(row).Error; err != nil {
				return translateError(err)
			}
			syncIdentity(entities[i], row)
		}
		return nil
	})
}

func (r *GormRepository[E, M]) Delete(ctx context.Context, entity *E) error {
	if entity == nil || transient(entity) {
		return shared.ErrInvalidInput
	}
	if err := r.db.WithContext(ctx).Delete(r.toModel(entity)).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *GormRepository[E, M]) DeleteMany(ctx context.Context, entities []*E) error {
	if len(entities) == 0 {
		return shared.ErrInvalidInput
	}
	rows, err := r.toModels(entities)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&rows).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Table returns a query on the entity table
func (r *GormRepository[E, M]) Table(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(new(M))
}

// TableNoTracking returns a read-only style query that skips hooks and association saving
func (r *GormRepository[E, M]) TableNoTracking(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Session(&gorm.Session{
		SkipHooks:            true,
		FullSaveAssociations: false,
	}).Model(new(M))
}

func (r *GormRepository[E, M]) toModels(entities []*E) ([]*M, error) {
	rows := make([]*M, len(entities))
	for i, e := range entities {
		if e == nil {
			return nil, fmt.Errorf("entity %d is nil: %w", i, shared.ErrInvalidInput)
		}
		rows[i] = r.toModel(e)
	}
	return rows, nil
}

func (r *GormRepository[E, M]) mapAll(rows []*M) []*E {
	out := make([]*E, len(rows))
	for i, row := range rows {
		out[i] = r.toDomain(row)
	}
	return out
}

func transient(entity any) bool {
	e, ok := entity.(identified)
	return ok && e.Base().IsTransient()
}

// syncIdentity copies generated identity fields back onto the entity
func syncIdentity(entity any, model any) {
	e, ok := entity.(identified)
	if !ok {
		return
	}
	m, ok := model.(identityModel)
	if !ok {
		return
	}
	*e.Base() = m.Identity()
}

func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", shared.ErrAlreadyExists, err)
	}
	return err
}

// Repository constructors for the core entities

func NewStoreRepository(db *gorm.DB) *GormRepository[stores.Store, models.StoreModel] {
	return NewGormRepository(db, models.StoreModelFromDomain, (*models.StoreModel).ToDomain)
}

func NewAddressRepository(db *gorm.DB) *GormRepository[common.Address, models.AddressModel] {
	return NewGormRepository(db, models.AddressModelFromDomain, (*models.AddressModel).ToDomain)
}

func NewCountryRepository(db *gorm.DB) *GormRepository[directory.Country, models.CountryModel] {
	return NewGormRepository(db, models.CountryModelFromDomain, (*models.CountryModel).ToDomain)
}

func NewStateProvinceRepository(db *gorm.DB) *GormRepository[directory.StateProvince, models.StateProvinceModel] {
	return NewGormRepository(db, models.StateProvinceModelFromDomain, (*models.StateProvinceModel).ToDomain)
}

func NewCurrencyRepository(db *gorm.DB) *GormRepository[directory.Currency, models.CurrencyModel] {
	return NewGormRepository(db, models.CurrencyModelFromDomain, (*models.CurrencyModel).ToDomain)
}

func NewLanguageRepository(db *gorm.DB) *GormRepository[localization.Language, models.LanguageModel] {
	return NewGormRepository(db, models.LanguageModelFromDomain, (*models.LanguageModel).ToDomain)
}

func NewLocaleStringResourceRepository(db *gorm.DB) *GormRepository[localization.LocaleStringResource, models.LocaleStringResourceModel] {
	return NewGormRepository(db, models.LocaleStringResourceModelFromDomain, (*models.LocaleStringResourceModel).ToDomain)
}
