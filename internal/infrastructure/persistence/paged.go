package persistence

import (
	"context"
	"fmt"

	"github.com/storefront/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// NewPagedList counts query and loads the requested page.
// pageIndex is zero based and pageSize is clamped to at least 1.
func NewPagedList[T any](ctx context.Context, query *gorm.DB, pageIndex, pageSize int) (*shared.PagedList[T], error) {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	var total int64
	if err := query.Session(&gorm.Session{}).WithContext(ctx).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count rows: %w", err)
	}

	var items []T
	if int64(pageIndex) < (total+int64(pageSize)-1)/int64(pageSize) {
		err := query.Session(&gorm.Session{}).WithContext(ctx).
			Offset(pageIndex * pageSize).
			Limit(pageSize).
			Find(&items).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load page: %w", err)
		}
	}

	return shared.NewPagedList(items, pageIndex, pageSize, total), nil
}
