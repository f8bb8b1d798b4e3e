package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "niftycli/internal/errors"
)

// QueryParamValidator validates query and path parameters with validator tags
type QueryParamValidator struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	v := validator.New()
	v.RegisterValidation("ticker", isValidTicker)

	return &QueryParamValidator{
		validate:     v,
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateInt reads an integer query parameter and checks it against rules,
// a validator tag such as "min=1,max=100". An absent parameter yields
// defaultValue. On failure the problem is written and ok is false.
func (v *QueryParamValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param, rules string, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, fmt.Sprintf("%s must be a valid integer", param)))
		return 0, false
	}

	if err := v.validate.Var(n, rules); err != nil {
		v.logger.DebugContext(r.Context(), "query parameter rejected",
			slog.String("param", param),
			slog.String("value", value))
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, formatValidationError(param, err)))
		return 0, false
	}
	return n, true
}

// ValidateSymbol checks a ticker path parameter
func (v *QueryParamValidator) ValidateSymbol(w http.ResponseWriter, r *http.Request, param, symbol string) bool {
	if err := v.validate.Var(symbol, "required,ticker"); err != nil {
		v.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, formatValidationError(param, err)))
		return false
	}
	return true
}

// formatValidationError formats the first validation failure of err
func formatValidationError(field string, err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return fmt.Sprintf("%s is invalid", field)
	}

	fe := errs[0]
	param := fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "ticker":
		return fmt.Sprintf("%s must be a valid ticker symbol", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// isValidTicker accepts exchange symbols such as RELIANCE, M&M or BAJAJ-AUTO
func isValidTicker(fl validator.FieldLevel) bool {
	ticker := fl.Field().String()
	if len(ticker) < 1 || len(ticker) > 20 {
		return false
	}
	for _, ch := range ticker {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9') ||
			ch == '.' || ch == '-' || ch == '&' || ch == '_') {
			return false
		}
	}
	return true
}
