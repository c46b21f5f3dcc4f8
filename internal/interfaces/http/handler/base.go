package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/webhelper"
)

// BaseHandler is embedded by every handler for the response envelope helpers
type BaseHandler struct{}

// knownErrors are non-domain errors with a fixed API code and message.
// An empty message means the error text is shown.
var knownErrors = []struct {
	target  error
	code    string
	message string
}{
	{auth.ErrInvalidAdminKey, dto.ErrCodeUnauthorized, "Invalid administrator key"},
	{webhelper.ErrStoreNotLoaded, dto.ErrCodeStoreNotLoaded, ""},
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Paged writes one page of a list with its paging meta. data is the page's
// items mapped to their response shape.
func Paged[T any](c *gin.Context, page *shared.PagedList[T], data any) {
	c.JSON(http.StatusOK, dto.NewPagedResponse(page, data))
}

// PageLinker builds the URL of another page of the current list.
// *webhelper.WebHelper implements it.
type PageLinker interface {
	PageURL(c *gin.Context, pageIndex int) (string, error)
}

// PagedWithLinks is Paged plus links to the previous and next pages. Links
// that cannot be built are left out.
func PagedWithLinks[T any](c *gin.Context, linker PageLinker, page *shared.PagedList[T], data any) {
	resp := dto.NewPagedResponse(page, data)
	if linker != nil {
		if page.HasPreviousPage {
			resp.Meta.PreviousPageURL = pageLink(c, linker, page.PageIndex-1)
		}
		if page.HasNextPage {
			resp.Meta.NextPageURL = pageLink(c, linker, page.PageIndex+1)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func pageLink(c *gin.Context, linker PageLinker, pageIndex int) string {
	link, err := linker.PageURL(c, pageIndex)
	if err != nil {
		logger.FromContext(c.Request.Context()).Debug("Page link unavailable", zap.Error(err))
		return ""
	}
	return link
}

// Error writes the error envelope with the request ID
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// ErrorWithCode writes the error envelope with the status registered for code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.ErrorWithCode(c, dto.ErrCodeInternal, message)
}

// ValidationError writes the response for a failed bind
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// ParseID reads the :id path parameter, writing a 400 when it is not a UUID
func (h *BaseHandler) ParseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID format")
		return uuid.Nil, false
	}
	return id, true
}

// HandleError writes the response for err. Domain errors keep their
// message, wrapped context included. Anything unrecognised is logged and
// answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.ErrorWithCode(c, dto.NormalizeErrorCode(domainErr.Code), err.Error())
		return
	}

	for _, known := range knownErrors {
		if !errors.Is(err, known.target) {
			continue
		}
		message := known.message
		if message == "" {
			message = err.Error()
		}
		h.ErrorWithCode(c, known.code, message)
		return
	}

	logger.FromContext(c.Request.Context()).Error("Unhandled error", zap.Error(err))
	_ = c.Error(err)
	h.InternalError(c, "An unexpected error occurred")
}
