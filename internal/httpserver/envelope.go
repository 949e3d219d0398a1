package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quotation-crm/internal/domain"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// envelope is the body of every API response. Success carries the numeric
// status code the legacy front end switches on.
type envelope struct {
	Outcome string            `json:"outcome"`
	Success int               `json:"success"`
	Kind    domain.Kind       `json:"kind,omitempty"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func successCode(kind domain.Kind) int {
	switch kind {
	case domain.KindConnection:
		return -1
	case domain.KindQuery:
		return -2
	case domain.KindConflict:
		return -3
	case domain.KindInvalidInput:
		return -4
	case domain.KindNotFound:
		return -5
	default:
		return 1
	}
}

func httpStatus(kind domain.Kind) int {
	switch kind {
	case domain.KindConnection:
		return http.StatusServiceUnavailable
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeSuccess(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Outcome: outcomeSuccess,
		Success: 1,
		Message: message,
		Data:    data,
	})
}

// writeFailure renders err. Only messages of *domain.Error reach the client.
func writeFailure(c *gin.Context, err error) {
	kind := domain.KindOf(err)
	body := envelope{
		Outcome: outcomeFailure,
		Success: successCode(kind),
		Kind:    kind,
		Message: "internal error",
	}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Message = de.Message
		body.Errors = de.Fields
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(httpStatus(kind), body)
}

func invalid(message, field, rule string) error {
	return domain.Invalid(message, map[string]string{field: rule})
}
