package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

var validatorOnce sync.Once

// SetupValidator makes gin's validator report JSON field names and lets
// decimal.Decimal fields use the numeric tags
func SetupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(fieldName)
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			d, ok := field.Interface().(decimal.Decimal)
			if !ok {
				return nil
			}
			f, _ := d.Float64()
			return f
		}, decimal.Decimal{})
	})
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// HandleValidationError writes a 400 for a failed bind. Field failures are
// listed in the error details, anything else is reported as malformed JSON.
func HandleValidationError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidJSON, "Request body is not valid JSON", GetRequestID(c)))
		return
	}

	details := make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: validationMessage(fe)})
	}
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse("Request validation failed", GetRequestID(c), details))
}

// tagMessages are prefixes completed with the tag parameter
var tagMessages = map[string]string{
	"min":   "Must be at least ",
	"max":   "Must be at most ",
	"oneof": "Must be one of: ",
	"gte":   "Must be greater than or equal to ",
	"lte":   "Must be less than or equal to ",
}

var fixedMessages = map[string]string{
	"required":         "This field is required",
	"uuid":             "Invalid UUID format",
	"url":              "Invalid URL format",
	"iso3166_1_alpha2": "Must be a two-letter country code",
}

func validationMessage(fe validator.FieldError) string {
	tag := fe.Tag()
	if msg, ok := fixedMessages[tag]; ok {
		return msg
	}
	if tag == "len" {
		return "Must be exactly " + fe.Param() + " characters"
	}
	prefix, ok := tagMessages[tag]
	if !ok {
		return "Invalid value"
	}
	msg := prefix + fe.Param()
	if (tag == "min" || tag == "max") && fe.Kind() == reflect.String {
		msg += " characters"
	}
	return msg
}
