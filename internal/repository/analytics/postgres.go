package analytics

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotation-crm/internal/db"
	"quotation-crm/internal/domain"
)

// bucketColumns follows the key expression in every grouped query.
const bucketColumns = `count(*),
       coalesce(sum(total_amount), 0)::text,
       coalesce(round(avg(total_amount), 2), 0)::text,
       count(*) FILTER (WHERE status = 1),
       count(*) FILTER (WHERE status = 0)`

type postgresRepo struct {
	gw     *db.Gateway
	logger *zap.Logger

	totalsQ   string
	companyQ  string
	stateQ    string
	timelineQ string
}

// NewPostgres returns a Repository over the customers table in schema.
func NewPostgres(gw *db.Gateway, schema string, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := db.Table(schema, "customers")
	grouped := func(keyExpr, order string) string {
		return fmt.Sprintf(`
SELECT %s AS key,
       %s
FROM %s
GROUP BY 1
ORDER BY %s
`, keyExpr, bucketColumns, table, order)
	}
	return &postgresRepo{
		gw:     gw,
		logger: logger.Named("analytics.repository"),
		totalsQ: fmt.Sprintf(`
SELECT count(*),
       coalesce(sum(total_amount), 0)::text,
       count(*) FILTER (WHERE status = 1),
       count(*) FILTER (WHERE status = 0)
FROM %s
`, table),
		companyQ:  grouped(`coalesce(nullif(trim(company_name), ''), 'unknown')`, `2 DESC, 1`),
		stateQ:    grouped(`coalesce(nullif(trim(state), ''), 'unknown')`, `2 DESC, 1`),
		timelineQ: grouped(`coalesce(to_char(quotation_reg, 'YYYY-MM'), 'unknown')`, `1`),
	}
}

func (r *postgresRepo) Summary(ctx context.Context) (*domain.Summary, error) {
	var s domain.Summary
	err := r.gw.WithReadTx(ctx, func(ctx context.Context, q db.Querier) error {
		var total string
		if err := q.QueryRow(ctx, r.totalsQ).Scan(&s.TotalQuotations, &total, &s.Approved, &s.Pending); err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		amount, err := decimal.NewFromString(total)
		if err != nil {
			return fmt.Errorf("decode total: %w", err)
		}
		s.TotalAmount = domain.NewAmount(amount)

		if s.ByCompany, err = r.buckets(ctx, q, r.companyQ); err != nil {
			return fmt.Errorf("by company: %w", err)
		}
		if s.ByState, err = r.buckets(ctx, q, r.stateQ); err != nil {
			return fmt.Errorf("by state: %w", err)
		}
		if s.Timeline, err = r.buckets(ctx, q, r.timelineQ); err != nil {
			return fmt.Errorf("timeline: %w", err)
		}
		return nil
	})
	if err != nil {
		r.logger.Debug("summary query failed", zap.Error(err))
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepo) buckets(ctx context.Context, q db.Querier, sql string) ([]domain.Bucket, error) {
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, scanBucket)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Bucket{}
	}
	return out, nil
}

func scanBucket(row pgx.CollectableRow) (domain.Bucket, error) {
	var (
		b          domain.Bucket
		total, avg string
	)
	if err := row.Scan(&b.Key, &b.Count, &total, &avg, &b.Approved, &b.Pending); err != nil {
		return domain.Bucket{}, err
	}
	t, err := decimal.NewFromString(total)
	if err != nil {
		return domain.Bucket{}, err
	}
	a, err := decimal.NewFromString(avg)
	if err != nil {
		return domain.Bucket{}, err
	}
	b.Total = domain.NewAmount(t)
	b.Average = domain.NewAmount(a)
	return b, nil
}
