package customer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"quotation-crm/internal/domain"
	custrepo "quotation-crm/internal/repository/customer"
)

// memoryRepo is a lightweight in-memory customer repository for tests.
type memoryRepo struct {
	byID map[string]domain.Customer
	err  error
	// calls counts repository calls so tests can assert validation happens first.
	calls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: make(map[string]domain.Customer)}
}

func (r *memoryRepo) Create(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if _, exists := r.byID[c.ID]; exists {
		return nil, fmt.Errorf("%w: customers_pkey", domain.ErrAlreadyExists)
	}
	r.byID[c.ID] = c
	clone := c
	return &clone, nil
}

func (r *memoryRepo) List(_ context.Context, f custrepo.ListFilter) ([]domain.Customer, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	out := []domain.Customer{}
	for _, c := range r.byID {
		if f.Search != "" && !strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *memoryRepo) Update(_ context.Context, c domain.Customer) (*domain.Customer, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.byID[c.ID]; !ok {
		return nil, domain.ErrNotFound
	}
	r.byID[c.ID] = c
	clone := c
	return &clone, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type recordingObserver struct {
	seen []string
}

func (o *recordingObserver) ObserveOperation(op, outcome string) {
	o.seen = append(o.seen, op+":"+outcome)
}

func acmeInput() Input {
	return Input{
		ID:            "CUST00000001",
		CompanyName:   "Acme",
		ContactPerson: "Jane",
		Email:         "jane@acme.com",
		TotalAmount:   "500",
		Status:        "0",
	}
}

func kindOf(t *testing.T, err error) domain.Kind {
	t.Helper()
	var de *domain.Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *domain.Error, got %T (%v)", err, err)
	}
	return de.Kind
}

func TestLifecycle_CreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemoryRepo(), nil)

	created, err := svc.Create(ctx, acmeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "CUST00000001" || created.TotalAmount.String() != "500" || created.Status != domain.StatusPending {
		t.Fatalf("unexpected created record %+v", created)
	}

	got, err := svc.Get(ctx, "CUST00000001")
	if err != nil || len(got) != 1 || got[0].Status != domain.StatusPending {
		t.Fatalf("get after create = %+v, %v", got, err)
	}

	in := acmeInput()
	in.Status = "1"
	updated, err := svc.Update(ctx, "CUST00000001", in)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.StatusActive {
		t.Fatalf("expected STATUS=1 after update, got %v", updated.Status)
	}

	if err := svc.Delete(ctx, "CUST00000001"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err = svc.Get(ctx, "CUST00000001")
	if err != nil || len(got) != 0 {
		t.Fatalf("get after delete = %+v, %v", got, err)
	}
	list, err := svc.List(ctx, ListQuery{Limit: 10})
	if err != nil || len(list) != 0 {
		t.Fatalf("list after delete = %+v, %v", list, err)
	}
	if err := svc.Delete(ctx, "CUST00000001"); kindOf(t, err) != domain.KindNotFound {
		t.Fatalf("second delete should be not_found, got %v", err)
	}
}

func TestCreate_DuplicateIsConflictAndKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := New(repo, nil)

	if _, err := svc.Create(ctx, acmeInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	dup := acmeInput()
	dup.CompanyName = "Other"
	_, err := svc.Create(ctx, dup)
	if kindOf(t, err) != domain.KindConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	var de *domain.Error
	errors.As(err, &de)
	if strings.Contains(de.Message, "customers_pkey") {
		t.Fatalf("store details leaked into message %q", de.Message)
	}
	if repo.byID["CUST00000001"].CompanyName != "Acme" {
		t.Fatalf("existing record was mutated")
	}
}

func TestCreate_RejectsInvalidInputBeforeStore(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Input)
		field string
	}{
		{"missing id", func(in *Input) { in.ID = "  " }, "id"},
		{"missing company", func(in *Input) { in.CompanyName = "" }, "company_name"},
		{"missing contact", func(in *Input) { in.ContactPerson = "" }, "contact_person"},
		{"bad email", func(in *Input) { in.Email = "not-an-email" }, "email"},
		{"status 2", func(in *Input) { in.Status = "2" }, "status"},
		{"status text", func(in *Input) { in.Status = "approved" }, "status"},
		{"negative amount", func(in *Input) { in.TotalAmount = "-1" }, "total_amount"},
		{"malformed amount", func(in *Input) { in.TotalAmount = "12abc" }, "total_amount"},
		{"three decimals", func(in *Input) { in.TotalAmount = "1.005" }, "total_amount"},
		{"bad date", func(in *Input) { in.QuotationReg = "31/12/2025" }, "quotation_reg"},
		{"amount above column range", func(in *Input) { in.TotalAmount = "1e20" }, "total_amount"},
		{"amount at ceiling", func(in *Input) { in.TotalAmount = "1000000000000" }, "total_amount"},
		{"amount with huge exponent", func(in *Input) { in.TotalAmount = "1e40000000" }, "total_amount"},
		{"amount with huge negative exponent", func(in *Input) { in.TotalAmount = "1e-40000000" }, "total_amount"},
		{"amount too long", func(in *Input) { in.TotalAmount = Number("1" + strings.Repeat("0", 40)) }, "total_amount"},
		{"city too long", func(in *Input) { in.City = strings.Repeat("c", 129) }, "city"},
		{"state too long", func(in *Input) { in.State = strings.Repeat("s", 129) }, "state"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newMemoryRepo()
			svc := New(repo, nil)
			in := acmeInput()
			tc.edit(&in)

			_, err := svc.Create(context.Background(), in)
			var de *domain.Error
			if !errors.As(err, &de) || de.Kind != domain.KindInvalidInput {
				t.Fatalf("expected invalid_input, got %v", err)
			}
			if _, ok := de.Fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, de.Fields)
			}
			if repo.calls != 0 {
				t.Fatalf("store must not be called for invalid input")
			}
		})
	}
}

func TestCreate_DefaultsAndParsesFormValues(t *testing.T) {
	svc := New(newMemoryRepo(), nil)
	var in Input
	body := `{"id":"CUST2","company_name":" Globex ","contact_person":"Hank","email":"hank@globex.com",
		"total_amount":"1250.50","status":1,"quotation_reg":"2025-03-01T10:00:00Z","quotation_exp":null}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.CompanyName != "Globex" || c.TotalAmount.String() != "1250.5" || c.Status != domain.StatusActive {
		t.Fatalf("unexpected record %+v", c)
	}
	if c.QuotationReg.String() != "2025-03-01" || c.QuotationExp.Valid {
		t.Fatalf("unexpected dates reg=%v exp=%v", c.QuotationReg, c.QuotationExp)
	}

	bare := acmeInput()
	bare.ID = "CUST3"
	bare.TotalAmount = ""
	bare.Status = ""
	c, err = svc.Create(context.Background(), bare)
	if err != nil {
		t.Fatalf("create with defaults: %v", err)
	}
	if !c.TotalAmount.IsZero() || c.Status != domain.StatusPending {
		t.Fatalf("expected zero amount and pending status, got %+v", c)
	}
}

func TestCreate_AcceptsColumnLimits(t *testing.T) {
	svc := New(newMemoryRepo(), nil)
	in := acmeInput()
	in.TotalAmount = "999999999999.99"
	in.City = strings.Repeat("c", 128)
	in.State = strings.Repeat("s", 128)

	c, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create at column limits: %v", err)
	}
	if c.TotalAmount.String() != "999999999999.99" {
		t.Fatalf("unexpected amount %s", c.TotalAmount)
	}
}

func TestNumberRejectsNonNumericJSON(t *testing.T) {
	var n Number
	if err := json.Unmarshal([]byte(`true`), &n); err == nil {
		t.Fatalf("expected error for boolean")
	}
	if err := json.Unmarshal([]byte(`{"a":1}`), &n); err == nil {
		t.Fatalf("expected error for object")
	}
	if err := json.Unmarshal([]byte(`12.5`), &n); err != nil || n != "12.5" {
		t.Fatalf("number: %q %v", n, err)
	}
}

func TestList_ValidatesLimit(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	svc := New(repo, nil, WithMaxLimit(50))

	for _, limit := range []int{0, -1, 51} {
		_, err := svc.List(ctx, ListQuery{Limit: limit})
		if kindOf(t, err) != domain.KindInvalidInput {
			t.Fatalf("limit %d: expected invalid_input, got %v", limit, err)
		}
	}
	if repo.calls != 0 {
		t.Fatalf("store must not be called for an invalid limit")
	}
	if svc.MaxLimit() != 50 {
		t.Fatalf("unexpected max limit %d", svc.MaxLimit())
	}
}

func TestList_OrdersByIDDescendingAndCaps(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemoryRepo(), nil)
	for i := 1; i <= 5; i++ {
		in := acmeInput()
		in.ID = fmt.Sprintf("CUST%08d", i)
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	list, err := svc.List(ctx, ListQuery{Limit: 3})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "CUST00000005" || list[2].ID != "CUST00000003" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestUpdate_RejectsIDChangeAndMissingRecord(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemoryRepo(), nil)

	in := acmeInput()
	in.ID = "CUST99"
	if _, err := svc.Update(ctx, "CUST00000001", in); kindOf(t, err) != domain.KindInvalidInput {
		t.Fatalf("expected invalid_input for id change, got %v", err)
	}

	in.ID = ""
	if _, err := svc.Update(ctx, "CUST00000001", in); kindOf(t, err) != domain.KindNotFound {
		t.Fatalf("expected not_found for a missing record, got %v", err)
	}
}

func TestUpdate_FullReplaceClearsOmittedFields(t *testing.T) {
	ctx := context.Background()
	svc := New(newMemoryRepo(), nil)

	in := acmeInput()
	in.Phone = "555-0100"
	in.City = "Springfield"
	if _, err := svc.Create(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}
	replacement := acmeInput()
	updated, err := svc.Update(ctx, in.ID, replacement)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != "" || updated.City != "" {
		t.Fatalf("omitted fields should be cleared, got %+v", updated)
	}
}

func TestGet_BlankIDIsInvalid(t *testing.T) {
	svc := New(newMemoryRepo(), nil)
	if _, err := svc.Get(context.Background(), " "); kindOf(t, err) != domain.KindInvalidInput {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestStoreFailuresAreClassifiedAndObserved(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepo()
	obs := &recordingObserver{}
	svc := New(repo, nil, WithObserver(obs))

	repo.err = fmt.Errorf("acquire: %w: dial tcp 10.0.0.1:5432: refused", domain.ErrUnavailable)
	_, err := svc.List(ctx, ListQuery{Limit: 5})
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindConnection {
		t.Fatalf("expected connection_failure, got %v", err)
	}
	if strings.Contains(de.Message, "10.0.0.1") {
		t.Fatalf("raw store error leaked: %q", de.Message)
	}

	repo.err = errors.New(`ERROR: relation "customers" does not exist`)
	if _, err := svc.Get(ctx, "x"); kindOf(t, err) != domain.KindQuery {
		t.Fatalf("expected query_failure, got %v", err)
	}

	repo.err = nil
	if _, err := svc.Create(ctx, acmeInput()); err != nil {
		t.Fatalf("create: %v", err)
	}

	want := []string{"list:connection_failure", "get:query_failure", "create:"}
	if strings.Join(obs.seen, ",") != strings.Join(want, ",") {
		t.Fatalf("observed %v, want %v", obs.seen, want)
	}
}
