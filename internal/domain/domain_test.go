package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		valid   bool
		wantErr bool
	}{
		{in: "2025-03-14", want: "2025-03-14", valid: true},
		{in: " 2025-03-14 ", want: "2025-03-14", valid: true},
		{in: "2025-03-14T22:10:00Z", want: "2025-03-14", valid: true},
		{in: "", valid: false},
		{in: "14/03/2025", wantErr: true},
		{in: "2025-02-30", wantErr: true},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDate(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if got.Valid != tc.valid || got.String() != tc.want {
			t.Fatalf("ParseDate(%q) = %+v, want %q valid=%v", tc.in, got, tc.want, tc.valid)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-12-01"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	out, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `"2024-12-01"` {
		t.Fatalf("unexpected json %s", out)
	}

	if err := json.Unmarshal([]byte(`null`), &d); err != nil || d.Valid {
		t.Fatalf("null should clear the date, got %+v err=%v", d, err)
	}
	out, _ = json.Marshal(d)
	if string(out) != "null" {
		t.Fatalf("absent date should encode as null, got %s", out)
	}

	if err := json.Unmarshal([]byte(`20241201`), &d); err == nil {
		t.Fatalf("expected error for numeric date")
	}
}

func TestDatePtrRoundTrip(t *testing.T) {
	if (Date{}).Ptr() != nil {
		t.Fatalf("absent date should have nil pointer")
	}
	d := NewDate(time.Date(2025, 1, 2, 15, 4, 5, 0, time.FixedZone("x", 3600)))
	back := DateFromPtr(d.Ptr())
	if !back.Equal(d) || back.String() != "2025-01-02" {
		t.Fatalf("round trip mismatch: %+v vs %+v", back, d)
	}
}

func TestAmountJSONIsNumber(t *testing.T) {
	a := NewAmount(decimal.RequireFromString("1250.50"))
	out, err := json.Marshal(struct {
		Total Amount `json:"total"`
	}{a})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"total":1250.5}` {
		t.Fatalf("unexpected json %s", out)
	}
}

func TestStatus(t *testing.T) {
	if !StatusPending.Valid() || !StatusActive.Valid() || Status(2).Valid() || Status(-1).Valid() {
		t.Fatalf("status domain must be exactly {0,1}")
	}
	if StatusActive.String() != "Approved" || StatusPending.String() != "Pending" {
		t.Fatalf("unexpected status labels")
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{fmt.Errorf("acquire: %w", ErrUnavailable), KindConnection},
		{fmt.Errorf("insert: %w", ErrAlreadyExists), KindConflict},
		{ErrNotFound, KindNotFound},
		{Invalid("bad", nil), KindInvalidInput},
		{&Error{Kind: KindConflict, Err: errors.New("x")}, KindConflict},
		{errors.New("syntax error"), KindQuery},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestCustomerSameContentIgnoresTimestamps(t *testing.T) {
	a := Customer{ID: "CUST1", CompanyName: "Acme", TotalAmount: NewAmount(decimal.NewFromInt(500)), CreatedAt: time.Now()}
	b := a
	b.CreatedAt = time.Time{}
	b.TotalAmount = NewAmount(decimal.RequireFromString("500.00"))
	if !a.SameContent(b) {
		t.Fatalf("expected same content")
	}
	b.Status = StatusActive
	if a.SameContent(b) {
		t.Fatalf("status change should be detected")
	}
}
