package dto

import "github.com/storefront/backend/internal/domain/shared"

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string             `json:"code"`
	Message   string             `json:"message"`
	RequestID string             `json:"request_id,omitempty"`
	Details   []ValidationDetail `json:"details,omitempty"`
}

// ValidationDetail describes one invalid field
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total           int64  `json:"total"`
	PageIndex       int    `json:"page_index"`
	PageSize        int    `json:"page_size"`
	TotalPages      int    `json:"total_pages"`
	HasPreviousPage bool   `json:"has_previous_page"`
	HasNextPage     bool   `json:"has_next_page"`
	PreviousPageURL string `json:"previous_page_url,omitempty"`
	NextPageURL     string `json:"next_page_url,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// NewPagedResponse creates a success response for one page of items
func NewPagedResponse[T any](page *shared.PagedList[T], data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
		Meta: &Meta{
			Total:           page.TotalCount,
			PageIndex:       page.PageIndex,
			PageSize:        page.PageSize,
			TotalPages:      page.TotalPages,
			HasPreviousPage: page.HasPreviousPage,
			HasNextPage:     page.HasNextPage,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates an error response listing invalid fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	resp := NewErrorResponse(ErrCodeValidation, message, requestID)
	resp.Error.Details = details
	return resp
}

// PageRequest holds the paging query parameters. PageIndex is zero based.
type PageRequest struct {
	PageIndex int `form:"page_index" binding:"min=0,max=100000"`
	PageSize  int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Size returns PageSize or the default of 20
func (r PageRequest) Size() int {
	if r.PageSize == 0 {
		return 20
	}
	return r.PageSize
}

// IDRequest represents a request with an ID path parameter
type IDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
