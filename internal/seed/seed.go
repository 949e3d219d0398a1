package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"quotation-crm/internal/domain"
	custrepo "quotation-crm/internal/repository/customer"
)

type customerSeed struct {
	ID       string
	Company  string
	Contact  string
	Email    string
	Phone    string
	Quote    string
	Reg, Exp string
	Amount   string
	Status   domain.Status
	City     string
	State    string
}

var demoCustomers = []customerSeed{
	{ID: "CUST00000001", Company: "Acme Corp", Contact: "Jane Doe", Email: "jane@acme.example", Phone: "555-0100",
		Quote: "Q-1001", Reg: "2025-01-10", Exp: "2025-02-10", Amount: "500.00", Status: domain.StatusPending, City: "Springfield", State: "IL"},
	{ID: "CUST00000002", Company: "Globex", Contact: "Hank Scorpio", Email: "hank@globex.example", Phone: "555-0101",
		Quote: "Q-1002", Reg: "2025-01-22", Exp: "2025-03-01", Amount: "12500.50", Status: domain.StatusActive, City: "Cypress Creek", State: "OR"},
	{ID: "CUST00000003", Company: "Initech", Contact: "Bill Lumbergh", Email: "bill@initech.example",
		Quote: "Q-1003", Reg: "2025-02-03", Amount: "780.25", Status: domain.StatusActive, City: "Austin", State: "TX"},
	{ID: "CUST00000004", Company: "Umbrella", Contact: "Alice Abernathy", Email: "alice@umbrella.example",
		Amount: "0", Status: domain.StatusPending, City: "Raccoon City", State: "MO"},
}

// Apply inserts demo customers for manual testing. Existing ids are left untouched,
// so running it twice is harmless. It returns how many records were inserted.
func Apply(ctx context.Context, repo custrepo.Repository) (int, error) {
	inserted := 0
	for _, s := range demoCustomers {
		c, err := s.customer()
		if err != nil {
			return inserted, fmt.Errorf("seed %s: %w", s.ID, err)
		}
		if _, err := repo.Create(ctx, c); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return inserted, fmt.Errorf("insert customer %s: %w", s.ID, err)
		}
		inserted++
	}
	return inserted, nil
}

func (s customerSeed) customer() (domain.Customer, error) {
	reg, err := domain.ParseDate(s.Reg)
	if err != nil {
		return domain.Customer{}, err
	}
	exp, err := domain.ParseDate(s.Exp)
	if err != nil {
		return domain.Customer{}, err
	}
	amount, err := decimal.NewFromString(s.Amount)
	if err != nil {
		return domain.Customer{}, err
	}
	return domain.Customer{
		ID:            s.ID,
		CompanyName:   s.Company,
		ContactPerson: s.Contact,
		Phone:         s.Phone,
		Email:         s.Email,
		QuotationID:   s.Quote,
		QuotationReg:  reg,
		QuotationExp:  exp,
		TotalAmount:   domain.NewAmount(amount),
		Status:        s.Status,
		City:          s.City,
		State:         s.State,
	}, nil
}
