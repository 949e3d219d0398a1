package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"quotation-crm/internal/domain"
)

// Querier runs parameterized statements on an acquired connection or transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is the subset of *pgxpool.Conn the gateway needs.
type Conn interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Release()
}

// Pool hands out connections. *pgxpool.Pool satisfies it through PoolAdapter.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
	Ping(ctx context.Context) error
}

// PoolAdapter adapts *pgxpool.Pool to Pool.
type PoolAdapter struct {
	*pgxpool.Pool
}

func (p PoolAdapter) Acquire(ctx context.Context) (Conn, error) {
	conn, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Gateway scopes every store operation to exactly one pooled connection.
type Gateway struct {
	pool           Pool
	logger         *zap.Logger
	acquireTimeout time.Duration
	retries        int
}

// Option customizes a Gateway.
type Option func(*Gateway)

// WithAcquireTimeout bounds how long a single acquire attempt may wait.
func WithAcquireTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.acquireTimeout = d
		}
	}
}

// WithRetries sets how many extra acquire attempts follow a failure. Capped at 1.
func WithRetries(n int) Option {
	return func(g *Gateway) {
		switch {
		case n < 0:
			g.retries = 0
		case n > 1:
			g.retries = 1
		default:
			g.retries = n
		}
	}
}

// NewGateway returns a Gateway over pool.
func NewGateway(pool Pool, logger *zap.Logger, opts ...Option) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gateway{
		pool:           pool,
		logger:         logger,
		acquireTimeout: 5 * time.Second,
		retries:        1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewPoolGateway is NewGateway for a pgx pool.
func NewPoolGateway(pool *pgxpool.Pool, logger *zap.Logger, opts ...Option) *Gateway {
	return NewGateway(PoolAdapter{Pool: pool}, logger, opts...)
}

// WithConn acquires one connection, runs fn on it, and releases it on every path.
// Acquire failures wrap domain.ErrUnavailable.
func (g *Gateway) WithConn(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return fn(ctx, conn)
}

// WithTx is WithConn inside a transaction that commits when fn returns nil.
func (g *Gateway) WithTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	return pgx.BeginFunc(ctx, conn, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

// WithReadTx is WithTx with a read-only transaction, so every query in fn sees one snapshot.
func (g *Gateway) WithReadTx(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	conn, err := g.acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	return pgx.BeginTxFunc(ctx, conn, opts, func(tx pgx.Tx) error {
		return fn(ctx, tx)
	})
}

// Ping checks that the store answers.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

func (g *Gateway) acquire(ctx context.Context) (Conn, error) {
	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, g.acquireTimeout)
		conn, err := g.pool.Acquire(attemptCtx)
		cancel()
		if err == nil {
			return conn, nil
		}
		lastErr = err
		g.logger.Warn("acquire connection failed", zap.Int("attempt", attempt+1), zap.Error(err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrUnavailable, lastErr)
}

// Table returns a schema-qualified, quoted table identifier.
func Table(schema, name string) string {
	if schema == "" {
		return pgx.Identifier{name}.Sanitize()
	}
	return pgx.Identifier{schema, name}.Sanitize()
}
