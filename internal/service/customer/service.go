package customer

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"quotation-crm/internal/domain"
	"quotation-crm/internal/logger"
	custrepo "quotation-crm/internal/repository/customer"
)

// DefaultMaxLimit caps List when no WithMaxLimit option is given.
const DefaultMaxLimit = 1000

const maxSearchLen = 255

// Observer is told the outcome of every operation. *metrics.Metrics satisfies it.
type Observer interface {
	ObserveOperation(operation, outcome string)
}

// Option customizes a Service.
type Option func(*Service)

// WithObserver reports operation outcomes to o.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithMaxLimit sets the largest accepted List limit.
func WithMaxLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// Service implements create, list, get, update and delete over customer records.
// Every failure it returns is a *domain.Error.
type Service struct {
	repo     custrepo.Repository
	logger   *zap.Logger
	observer Observer
	maxLimit int
	validate *validator.Validate
}

// New creates a Service.
func New(repo custrepo.Repository, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		repo:     repo,
		logger:   log.Named("customer.service"),
		maxLimit: DefaultMaxLimit,
		validate: newValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListQuery selects customers for List.
type ListQuery struct {
	Limit  int
	Search string
}

// MaxLimit reports the largest accepted List limit.
func (s *Service) MaxLimit() int { return s.maxLimit }

// Create stores a new record and returns it as stored.
func (s *Service) Create(ctx context.Context, in Input) (*domain.Customer, error) {
	const op = "create"
	c, err := s.parse(in)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	out, err := s.repo.Create(ctx, c)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	s.succeed(ctx, op, zap.String("id", out.ID))
	return out, nil
}

// List returns up to q.Limit records, newest id first.
func (s *Service) List(ctx context.Context, q ListQuery) ([]domain.Customer, error) {
	const op = "list"
	if q.Limit < 1 || q.Limit > s.maxLimit {
		return nil, s.fail(ctx, op, domain.Invalid("limit must be a positive integer no greater than the maximum",
			map[string]string{"limit": "range"}))
	}
	search := strings.TrimSpace(q.Search)
	if len(search) > maxSearchLen {
		return nil, s.fail(ctx, op, domain.Invalid("search term is too long", map[string]string{"search": "max"}))
	}
	list, err := s.repo.List(ctx, custrepo.ListFilter{Limit: q.Limit, Search: search})
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	s.succeed(ctx, op, zap.Int("count", len(list)))
	return list, nil
}

// Get returns zero or one records. A missing id is not a failure.
func (s *Service) Get(ctx context.Context, id string) ([]domain.Customer, error) {
	const op = "get"
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, s.fail(ctx, op, domain.Invalid("id is required", map[string]string{"id": "required"}))
	}
	c, err := s.repo.GetByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.succeed(ctx, op, zap.String("id", id), zap.Bool("found", false))
		return []domain.Customer{}, nil
	case err != nil:
		return nil, s.fail(ctx, op, err)
	}
	s.succeed(ctx, op, zap.String("id", id), zap.Bool("found", true))
	return []domain.Customer{*c}, nil
}

// Update replaces every mutable field of the record with id.
// The id itself cannot change: a body id that differs is rejected.
func (s *Service) Update(ctx context.Context, id string, in Input) (*domain.Customer, error) {
	const op = "update"
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, s.fail(ctx, op, domain.Invalid("id is required", map[string]string{"id": "required"}))
	}
	bodyID := strings.TrimSpace(in.ID)
	if bodyID != "" && bodyID != id {
		return nil, s.fail(ctx, op, domain.Invalid("customer id cannot be changed", map[string]string{"id": "immutable"}))
	}
	in.ID = id
	c, err := s.parse(in)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	out, err := s.repo.Update(ctx, c)
	if err != nil {
		return nil, s.fail(ctx, op, err)
	}
	s.succeed(ctx, op, zap.String("id", id))
	return out, nil
}

// Delete removes the record with id. A missing id is a not_found failure.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "delete"
	id = strings.TrimSpace(id)
	if id == "" {
		return s.fail(ctx, op, domain.Invalid("id is required", map[string]string{"id": "required"}))
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.fail(ctx, op, err)
	}
	s.succeed(ctx, op, zap.String("id", id))
	return nil
}

func (s *Service) parse(in Input) (domain.Customer, error) {
	in = in.normalized()
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			return domain.Customer{}, domain.Invalid("customer record is invalid", fields)
		}
		return domain.Customer{}, domain.Invalid(err.Error(), nil)
	}
	c, err := in.toCustomer()
	if err != nil {
		return domain.Customer{}, domain.Invalid(err.Error(), nil)
	}
	return c, nil
}

func (s *Service) succeed(ctx context.Context, op string, fields ...zap.Field) {
	logger.FromContext(ctx, s.logger).Debug("customer "+op, fields...)
	if s.observer != nil {
		s.observer.ObserveOperation(op, "")
	}
}

// fail classifies err, logs it, and returns the *domain.Error handed to callers.
// Store errors are replaced with a generic message; the cause stays in Err for logs only.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	kind := domain.KindOf(err)
	if s.observer != nil {
		s.observer.ObserveOperation(op, string(kind))
	}
	log := logger.FromContext(ctx, s.logger).With(zap.String("operation", op), zap.String("kind", string(kind)))

	var de *domain.Error
	if errors.As(err, &de) {
		log.Debug("customer request rejected", zap.String("message", de.Message), zap.Any("fields", de.Fields))
		return de
	}
	switch kind {
	case domain.KindNotFound, domain.KindConflict:
		log.Info("customer operation failed", zap.Error(err))
	default:
		log.Error("customer store operation failed", zap.Error(err))
	}
	return &domain.Error{Kind: kind, Message: message(kind), Err: err}
}

func message(kind domain.Kind) string {
	switch kind {
	case domain.KindConnection:
		return "customer store is unavailable"
	case domain.KindConflict:
		return "a customer with this id already exists"
	case domain.KindNotFound:
		return "customer not found"
	default:
		return "customer store query failed"
	}
}
