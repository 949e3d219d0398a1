package analytics

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"quotation-crm/internal/db"
	"quotation-crm/internal/domain"
	"quotation-crm/internal/migrate"
)

const testSchema = "crm_analytics_test"

func TestSummary_GroupsInSQL(t *testing.T) {
	ctx := context.Background()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("connect db: %v", err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("ping db: %v", err)
	}

	if err := migrate.Apply(ctx, pool, testSchema); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	table := db.Table(testSchema, "customers")
	if _, err := pool.Exec(ctx, "TRUNCATE "+table); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	seed := `INSERT INTO ` + table + ` (id, company_name, contact_person, email, quotation_reg, total_amount, status, state)
VALUES ('CUST1', 'Acme', 'Jane', 'j@acme.com', '2025-01-05', 100, 1, 'CA'),
       ('CUST2', 'Acme', 'Jim', 'jim@acme.com', '2025-01-20', 300, 0, 'CA'),
       ('CUST3', 'Globex', 'Hank', 'h@globex.com', NULL, 50.50, 1, '')`
	if _, err := pool.Exec(ctx, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	repo := NewPostgres(db.NewPoolGateway(pool, nil), testSchema, nil)
	sum, err := repo.Summary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if sum.TotalQuotations != 3 || sum.Approved != 2 || sum.Pending != 1 || sum.TotalAmount.String() != "450.5" {
		t.Fatalf("unexpected totals %+v", sum)
	}
	if len(sum.ByCompany) != 2 || sum.ByCompany[0].Key != "Acme" || sum.ByCompany[0].Average.String() != "200" {
		t.Fatalf("unexpected company buckets %+v", sum.ByCompany)
	}
	if len(sum.ByState) != 2 || sum.ByState[1].Key != domain.UnknownKey {
		t.Fatalf("blank state should group as unknown: %+v", sum.ByState)
	}
	if len(sum.Timeline) != 2 || sum.Timeline[0].Key != "2025-01" || sum.Timeline[0].Count != 2 || sum.Timeline[1].Key != domain.UnknownKey {
		t.Fatalf("unexpected timeline %+v", sum.Timeline)
	}
}
