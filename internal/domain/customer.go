package domain

import "time"

// Status is the quotation state of a customer record.
type Status int

const (
	StatusPending Status = 0
	StatusActive  Status = 1
)

// Valid reports whether s is inside the two-value status domain.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusActive
}

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusActive:
		return "Approved"
	default:
		return "Unknown"
	}
}

// Customer is one company's contact and quotation data.
// JSON keys follow the column names the legacy front end reads.
type Customer struct {
	ID            string    `json:"ID"`
	CompanyName   string    `json:"COMPANY_NAME"`
	ContactPerson string    `json:"CONTACT_PERSON"`
	Phone         string    `json:"PHONE"`
	Email         string    `json:"EMAIL"`
	QuotationID   string    `json:"QUOTATION_ID"`
	QuotationReg  Date      `json:"QUOTATION_REG"`
	QuotationExp  Date      `json:"QUOTATION_EXP"`
	TotalAmount   Amount    `json:"TOTAL_AMOUNT"`
	Status        Status    `json:"STATUS"`
	Address       string    `json:"ADDRESS"`
	City          string    `json:"CITY"`
	State         string    `json:"STATE"`
	CreatedAt     time.Time `json:"CREATED_AT"`
	UpdatedAt     time.Time `json:"UPDATED_AT"`
}

// SameContent reports whether two records carry the same client-supplied fields.
// Store-managed timestamps are ignored.
func (c Customer) SameContent(o Customer) bool {
	return c.ID == o.ID &&
		c.CompanyName == o.CompanyName &&
		c.ContactPerson == o.ContactPerson &&
		c.Phone == o.Phone &&
		c.Email == o.Email &&
		c.QuotationID == o.QuotationID &&
		c.QuotationReg.Equal(o.QuotationReg) &&
		c.QuotationExp.Equal(o.QuotationExp) &&
		c.TotalAmount.Equal(o.TotalAmount.Decimal) &&
		c.Status == o.Status &&
		c.Address == o.Address &&
		c.City == o.City &&
		c.State == o.State
}
