package customer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"quotation-crm/internal/domain"
)

// Number is a numeric form field. HTML forms post numbers as strings, so it
// accepts a JSON number, a numeric string, or null. Validation happens later.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("expected a number or numeric string: %w", err)
	}
	*n = Number(num.String())
	return nil
}

// Input is a customer record as submitted by clients.
type Input struct {
	ID            string `json:"id" validate:"required,max=64"`
	CompanyName   string `json:"company_name" validate:"required,max=255"`
	ContactPerson string `json:"contact_person" validate:"required,max=255"`
	Phone         string `json:"phone" validate:"max=50"`
	Email         string `json:"email" validate:"required,email,max=255"`
	QuotationID   string `json:"quotation_id" validate:"max=64"`
	QuotationReg  string `json:"quotation_reg" validate:"omitempty,isodate"`
	QuotationExp  string `json:"quotation_exp" validate:"omitempty,isodate"`
	TotalAmount   Number `json:"total_amount" validate:"amount"`
	Status        Number `json:"status" validate:"status"`
	Address       string `json:"address" validate:"max=255"`
	City          string `json:"city" validate:"max=128"`
	State         string `json:"state" validate:"max=128"`
}

func (in Input) normalized() Input {
	in.ID = strings.TrimSpace(in.ID)
	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	in.QuotationID = strings.TrimSpace(in.QuotationID)
	in.QuotationReg = strings.TrimSpace(in.QuotationReg)
	in.QuotationExp = strings.TrimSpace(in.QuotationExp)
	in.TotalAmount = Number(strings.TrimSpace(string(in.TotalAmount)))
	in.Status = Number(strings.TrimSpace(string(in.Status)))
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	return in
}

// toCustomer converts a validated input. Blank amount and status default to zero.
func (in Input) toCustomer() (domain.Customer, error) {
	reg, err := domain.ParseDate(in.QuotationReg)
	if err != nil {
		return domain.Customer{}, err
	}
	exp, err := domain.ParseDate(in.QuotationExp)
	if err != nil {
		return domain.Customer{}, err
	}
	amount, err := parseAmount(string(in.TotalAmount))
	if err != nil {
		return domain.Customer{}, err
	}
	status, err := parseStatus(string(in.Status))
	if err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		ID:            in.ID,
		CompanyName:   in.CompanyName,
		ContactPerson: in.ContactPerson,
		Phone:         in.Phone,
		Email:         in.Email,
		QuotationID:   in.QuotationID,
		QuotationReg:  reg,
		QuotationExp:  exp,
		TotalAmount:   domain.NewAmount(amount),
		Status:        status,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
	}, nil
}

// Amounts are stored as NUMERIC(14,2).
const (
	maxAmountLen      = 32
	maxAmountExponent = 12
)

var amountCeiling = decimal.New(1, maxAmountExponent)

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if len(s) > maxAmountLen {
		return decimal.Zero, fmt.Errorf("amount is longer than %d characters", maxAmountLen)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	// Checked before any comparison: rescaling a huge exponent allocates its full expansion.
	if exp := d.Exponent(); exp > maxAmountExponent || exp < -maxAmountLen {
		return decimal.Zero, fmt.Errorf("amount %s is out of range", s)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount %s is negative", s)
	}
	if !d.Equal(d.Truncate(2)) {
		return decimal.Zero, fmt.Errorf("amount %s has more than two decimals", s)
	}
	if d.GreaterThanOrEqual(amountCeiling) {
		return decimal.Zero, fmt.Errorf("amount %s must be below %s", s, amountCeiling)
	}
	return d, nil
}

func parseStatus(s string) (domain.Status, error) {
	if s == "" {
		return domain.StatusPending, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	st := domain.Status(n)
	if !st.Valid() {
		return 0, fmt.Errorf("status %d out of range", n)
	}
	return st, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, err := parseAmount(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		_, err := parseStatus(fl.Field().String())
		return err == nil
	})
	return v
}
