package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"quotation-crm/internal/domain"
	"quotation-crm/internal/service/customer"
)

const (
	msgCreated  = "Customer Created Successfully!"
	msgReceived = "Data Received!"
	msgUpdated  = "Data Updated!"
	msgDeleted  = "Customer deleted successfully!"

	defaultPageSize = 100
)

// CustomerService is the customer API the handlers depend on.
type CustomerService interface {
	Create(ctx context.Context, in customer.Input) (*domain.Customer, error)
	List(ctx context.Context, q customer.ListQuery) ([]domain.Customer, error)
	Get(ctx context.Context, id string) ([]domain.Customer, error)
	Update(ctx context.Context, id string, in customer.Input) (*domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

// IDGenerator issues customer ids for clients that do not bring their own.
type IDGenerator interface {
	Next() string
}

type customerHandler struct {
	svc CustomerService
	ids IDGenerator
}

// Requests of the legacy RPC-style routes.
type (
	createRequest struct {
		// Customer is a record object, or the same object serialized into a string.
		Customer json.RawMessage `json:"customer"`
	}
	viewRequest struct {
		Num customer.Number `json:"num"`
	}
	idRequest struct {
		ID string `json:"id"`
	}
	updateRequest struct {
		ID   string          `json:"id"`
		Data json.RawMessage `json:"data"`
	}
)

func (h *customerHandler) legacyCreate(c *gin.Context) {
	var req createRequest
	if err := bindJSON(c, &req); err != nil {
		writeFailure(c, err)
		return
	}
	in, err := decodeRecord(req.Customer, "customer")
	if err != nil {
		writeFailure(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeFailure(c, err)
		return
	}
	writeSuccess(c, http.StatusCreated, msgCreated, []domain.Customer{*created})
}

func (h *customerHandler) legacyView(c *gin.Context) {
	var req viewRequest
	if err := bindJSON(c, &req); err != nil {
		writeFailure(c, err)
		return
	}
	limit, err := strconv.Atoi(string(req.Num))
	if err != nil {
		writeFailure(c, invalid("num must be an integer", "num", "integer"))
		return
	}
	list, err := h.svc.List(c.Request.Context(), customer.ListQuery{Limit: limit})
	if err != nil {
		writeFailure(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, msgReceived, list)
}

func (h *customerHandler) legacyViewByID(c *gin.Context) {
	var req idRequest
	if err := bindJSON(c, &req); err != nil {
		writeFailure(c, err)
		return
	}
	h.get(c, req.ID)
}

func (h *customerHandler) legacyUpdate(c *gin.Context) {
	var req updateRequest
	if err := bindJSON(c, &req); err != nil {
		writeFailure(c, err)
		return
	}
	in, err := decodeRecord(req.Data, "data")
	if err != nil {
		writeFailure(c, err)
		return
	}
	h.update(c, req.ID, in)
}

func (h *customerHandler) legacyDelete(c *gin.Context) {
	var req idRequest
	if err := bindJSON(c, &req); err != nil {
		writeFailure(c, err)
		return
	}
	h.delete(c, req.ID)
}

func (h *customerHandler) list(c *gin.Context) {
	limit := defaultPageSize
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeFailure(c, invalid("limit must be an integer", "limit", "integer"))
			return
		}
		limit = n
	}
	list, err := h.svc.List(c.Request.Context(), customer.ListQuery{Limit: limit, Search: c.Query("search")})
	if err != nil {
		writeFailure(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, msgReceived, list)
}

func (h *customerHandler) nextID(c *gin.Context) {
	writeSuccess(c, http.StatusOK, "Id generated", gin.H{"id": h.ids.Next()})
}

func (h *customerHandler) getByPath(c *gin.Context) {
	h.get(c, c.Param("id"))
}

func (h *customerHandler) create(c *gin.Context) {
	var in customer.Input
	if err := bindJSON(c, &in); err != nil {
		writeFailure(c, err)
		return
	}
	created, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		writeFailure(c, err)
		return
	}
	writeSuccess(c, http.StatusCreated, msgCreated, []domain.Customer{*created})
}

func (h *customerHandler) replace(c *gin.Context) {
	var in customer.Input
	if err := bindJSON(c, &in); err != nil {
		writeFailure(c, err)
		return
	}
	h.update(c, c.Param("id"), in)
}

func (h *customerHandler) deleteByPath(c *gin.Context) {
	h.delete(c, c.Param("id"))
}

func (h *customerHandler) get(c *gin.Context, id string) {
	found, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeFailure(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, msgReceived, found)
}

func (h *customerHandler) update(c *gin.Context, id string, in customer.Input) {
	updated, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		writeFailure(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, msgUpdated, []domain.Customer{*updated})
}

func (h *customerHandler) delete(c *gin.Context, id string) {
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeFailure(c, err)
		return
	}
	writeSuccess(c, http.StatusOK, msgDeleted, nil)
}

// bindJSON decodes the request body into dst, reporting malformed bodies as invalid input.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Invalid("request body is required", nil)
		}
		return domain.Invalid("request body is not valid JSON: "+err.Error(), nil)
	}
	return nil
}

// decodeRecord reads a record that arrives either as an object or as a JSON string holding one.
func decodeRecord(raw json.RawMessage, field string) (customer.Input, error) {
	var in customer.Input
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return in, invalid(field+" is required", field, "required")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return in, invalid(field+" is not a valid string", field, "json")
		}
		raw = []byte(s)
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		return in, invalid(field+" is not a valid customer record: "+err.Error(), field, "json")
	}
	return in, nil
}
