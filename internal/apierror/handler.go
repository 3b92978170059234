package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"storefront/internal/logging"
)

// HTTPErrorHandler converts every error escaping a handler into a
// {"msg": ...} JSON body. Unrecognized errors become a generic 500.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	statusCode := http.StatusInternalServerError
	msg := "Something went wrong try again later"

	var apiErr *Error
	var httpErr *echo.HTTPError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &apiErr):
		statusCode = apiErr.StatusCode
		msg = apiErr.Msg

	case errors.As(err, &validationErrs):
		statusCode = http.StatusBadRequest
		msg = joinValidationMessages(validationErrs)

	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusBadRequest
		msg = "Duplicate value entered, please choose another value"

	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		msg = "No item found!"

	case errors.As(err, &httpErr):
		statusCode = httpErr.Code
		if m, ok := httpErr.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(httpErr.Code)
		}

	default:
		logging.FromContext(c.Request().Context()).Error("unhandled error", "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(statusCode)
		return
	}
	_ = c.JSON(statusCode, echo.Map{"msg": msg})
}

func joinValidationMessages(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, validationMessage(fe))
	}
	return strings.Join(msgs, ",")
}

func validationMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please provide %s!", field)
	case "email":
		return "Please provide a valid email!"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters!", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s can't exceed %s characters!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s is not supported!", fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s can't exceed %s!", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid!", field)
	}
}
