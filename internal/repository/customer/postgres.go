package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"quotation-crm/internal/db"
	"quotation-crm/internal/domain"
)

const customerColumns = `id, company_name, contact_person, phone, email, quotation_id, quotation_reg, quotation_exp,
       total_amount::text, status, address, city, state, created_at, updated_at`

type postgresRepo struct {
	gw     *db.Gateway
	logger *zap.Logger

	insertQ string
	listQ   string
	getQ    string
	updateQ string
	deleteQ string
}

// NewPostgres returns a Repository backed by the customers table in schema.
func NewPostgres(gw *db.Gateway, schema string, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := db.Table(schema, "customers")
	return &postgresRepo{
		gw:     gw,
		logger: logger.Named("customer.repository"),
		insertQ: fmt.Sprintf(`
INSERT INTO %s (
    id, company_name, contact_person, phone, email, quotation_id, quotation_reg, quotation_exp,
    total_amount, status, address, city, state
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10, $11, $12, $13)
RETURNING %s
`, table, customerColumns),
		listQ: fmt.Sprintf(`
SELECT %s
FROM %s
WHERE $1::text = ''
   OR company_name ILIKE $1 ESCAPE '\'
   OR contact_person ILIKE $1 ESCAPE '\'
   OR email ILIKE $1 ESCAPE '\'
ORDER BY id DESC
LIMIT $2
`, customerColumns, table),
		getQ: fmt.Sprintf(`
SELECT %s
FROM %s
WHERE id = $1
`, customerColumns, table),
		updateQ: fmt.Sprintf(`
UPDATE %s
SET company_name = $2,
    contact_person = $3,
    phone = $4,
    email = $5,
    quotation_id = $6,
    quotation_reg = $7,
    quotation_exp = $8,
    total_amount = $9::numeric,
    status = $10,
    address = $11,
    city = $12,
    state = $13,
    updated_at = now()
WHERE id = $1
`, table),
		deleteQ: fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table),
	}
}

func (r *postgresRepo) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.gw.WithConn(ctx, func(ctx context.Context, q db.Querier) error {
		var err error
		out, err = r.scanCustomer(q.QueryRow(ctx, r.insertQ, writeArgs(c)...))
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]domain.Customer, error) {
	result := []domain.Customer{}
	err := r.gw.WithConn(ctx, func(ctx context.Context, q db.Querier) error {
		rows, err := q.Query(ctx, r.listQ, likePattern(filter.Search), filter.Limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := r.scanCustomer(rows)
			if err != nil {
				return err
			}
			result = append(result, *c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.gw.WithConn(ctx, func(ctx context.Context, q db.Querier) error {
		var err error
		out, err = r.scanCustomer(q.QueryRow(ctx, r.getQ, id))
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	var out *domain.Customer
	err := r.gw.WithTx(ctx, func(ctx context.Context, q db.Querier) error {
		tag, err := q.Exec(ctx, r.updateQ, writeArgs(c)...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		out, err = r.scanCustomer(q.QueryRow(ctx, r.getQ, c.ID))
		return err
	})
	if err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (r *postgresRepo) Delete(ctx context.Context, id string) error {
	err := r.gw.WithConn(ctx, func(ctx context.Context, q db.Querier) error {
		tag, err := q.Exec(ctx, r.deleteQ, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	return mapErr(err)
}

// writeArgs orders c's fields as $1..$13 for insert and update.
func writeArgs(c domain.Customer) []any {
	return []any{
		c.ID,
		c.CompanyName,
		c.ContactPerson,
		c.Phone,
		c.Email,
		c.QuotationID,
		c.QuotationReg.Ptr(),
		c.QuotationExp.Ptr(),
		c.TotalAmount.String(),
		int16(c.Status),
		c.Address,
		c.City,
		c.State,
	}
}

func (r *postgresRepo) scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var (
		c           domain.Customer
		reg, exp    *time.Time
		totalAmount string
		status      int16
	)
	err := row.Scan(
		&c.ID,
		&c.CompanyName,
		&c.ContactPerson,
		&c.Phone,
		&c.Email,
		&c.QuotationID,
		&reg,
		&exp,
		&totalAmount,
		&status,
		&c.Address,
		&c.City,
		&c.State,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(totalAmount)
	if err != nil {
		r.logger.Error("decode total_amount", zap.String("id", c.ID), zap.String("raw", totalAmount), zap.Error(err))
		return nil, err
	}
	c.QuotationReg = domain.DateFromPtr(reg)
	c.QuotationExp = domain.DateFromPtr(exp)
	c.TotalAmount = domain.NewAmount(amount)
	c.Status = domain.Status(status)
	return &c, nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, pgErr.ConstraintName)
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps a search term for a contains match. Blank terms disable the filter.
func likePattern(search string) string {
	search = strings.TrimSpace(search)
	if search == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(search) + "%"
}
