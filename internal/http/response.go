package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/fjod/go_petshop/internal/domain"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// decodeJSON reads a single JSON value from the body into dest and runs the
// struct validators on it.
func decodeJSON(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("%w: request body too large", domain.ErrInvalidRequest)
		}
		if errors.Is(err, domain.ErrInvalidRequest) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body", domain.ErrInvalidRequest)
	}
	if err := validate.Struct(dest); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zlog.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps domain error kinds to HTTP statuses. Store details
// never reach the client.
func handleServiceError(w http.ResponseWriter, err error) {
	var httpStatus int
	var code, message string

	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		httpStatus, code, message = http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, domain.ErrNotFound):
		httpStatus, code, message = http.StatusNotFound, "not_found", err.Error()
	case errors.Is(err, domain.ErrConflict):
		httpStatus, code, message = http.StatusConflict, "conflict", err.Error()
	case errors.Is(err, domain.ErrPaymentFailure):
		httpStatus, code, message = http.StatusBadGateway, "payment_failed", "payment provider rejected the request"
	case errors.Is(err, domain.ErrUnavailable):
		httpStatus, code, message = http.StatusServiceUnavailable, "service_unavailable", err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code, message = http.StatusGatewayTimeout, "timeout", "request timed out"
	case errors.Is(err, domain.ErrStoreFailure):
		httpStatus, code, message = http.StatusInternalServerError, "store_failure", "internal server error"
	default:
		httpStatus, code, message = http.StatusInternalServerError, "internal_error", "internal server error"
	}

	respondError(w, httpStatus, code, message)
}
