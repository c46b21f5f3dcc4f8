package shared

// PagedList is one page of a larger ordered result set.
// PageIndex is zero based.
type PagedList[T any] struct {
	Items           []T   `json:"items"`
	PageIndex       int   `json:"page_index"`
	PageSize        int   `json:"page_size"`
	TotalCount      int64 `json:"total_count"`
	TotalPages      int   `json:"total_pages"`
	HasPreviousPage bool  `json:"has_previous_page"`
	HasNextPage     bool  `json:"has_next_page"`
}

// NewPagedList wraps an already sliced page of items.
func NewPagedList[T any](items []T, pageIndex, pageSize int, totalCount int64) *PagedList[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	totalPages := int(totalCount / int64(pageSize))
	if totalCount%int64(pageSize) > 0 {
		totalPages++
	}

	if items == nil {
		items = []T{}
	}

	return &PagedList[T]{
		Items:           items,
		PageIndex:       pageIndex,
		PageSize:        pageSize,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasPreviousPage: pageIndex > 0,
		HasNextPage:     pageIndex < totalPages-1,
	}
}

// PagedListFromSlice pages an in-memory slice.
func PagedListFromSlice[T any](all []T, pageIndex, pageSize int) *PagedList[T] {
	if pageSize < 1 {
		pageSize = 1
	}
	if pageIndex < 0 {
		pageIndex = 0
	}

	pages := len(all) / pageSize
	if len(all)%pageSize > 0 {
		pages++
	}
	if pageIndex >= pages {
		return NewPagedList([]T{}, pageIndex, pageSize, int64(len(all)))
	}

	start := pageIndex * pageSize
	end := min(start+pageSize, len(all))

	page := make([]T, end-start)
	copy(page, all[start:end])
	return NewPagedList(page, pageIndex, pageSize, int64(len(all)))
}
