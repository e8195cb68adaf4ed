package sequence

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/tenant"
	"mezgeb/internal/core/tx"
)

// Allocator is the domain contract for document numbering. Document
// services depend on this interface; Service is the production
// implementation.
type Allocator interface {
	// AllocateNext hands out the next number for the tenant's series of
	// docType in year. A year of zero (or negative) means the current
	// calendar year. The returned number is unique for the lifetime of
	// the system and backed by a committed counter increment.
	AllocateNext(ctx context.Context, tenantID, tenantCode string, docType DocumentType, year int) (DocumentNumber, error)
}

// Config tunes the allocator's retry behavior for transient store
// failures (lock contention, serialization failures, lost connections).
type Config struct {
	// MaxRetries is the number of times the whole read-increment unit is
	// re-run after a transient failure. Validation and conflict errors
	// are never retried.
	MaxRetries uint64

	// InitialInterval seeds the exponential backoff between retries.
	InitialInterval time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 25 * time.Millisecond,
	}
}

// Service allocates document numbers from a Store.
//
// The read-increment runs inside one transaction boundary: the manager
// passed at construction, or the one the host placed in context, or —
// for stores that are atomic on their own, like MemoryStore — directly
// against the store. In every case the counter increment is durable
// before a number is returned.
type Service struct {
	store     Store
	txManager tx.Manager // Optional. If nil, obtained from context when present.
	cfg       Config
}

// New creates an allocator service.
// txManager may be nil; the allocator then uses the manager from context
// when one is present.
func New(store Store, txManager tx.Manager, cfg Config) *Service {
	if cfg.MaxRetries == 0 && cfg.InitialInterval == 0 {
		cfg = DefaultConfig()
	}
	return &Service{
		store:     store,
		txManager: txManager,
		cfg:       cfg,
	}
}

// NewWithDefaults creates an allocator with DefaultConfig and no fixed
// transaction manager.
func NewWithDefaults(store Store) *Service {
	return New(store, nil, DefaultConfig())
}

// AllocateNext implements Allocator.
func (s *Service) AllocateNext(ctx context.Context, tenantID, tenantCode string, docType DocumentType, year int) (DocumentNumber, error) {
	if tenantCode == "" {
		return DocumentNumber{}, apperror.NewValidation("tenant code is required").
			WithDetail("field", "tenantCode")
	}

	if year <= 0 {
		year = time.Now().UTC().Year()
	}

	key := Key{TenantID: tenantID, DocType: docType, Year: year}
	if err := key.Validate(); err != nil {
		return DocumentNumber{}, err
	}

	seq, err := s.allocateWithRetry(ctx, key)
	if err != nil {
		return DocumentNumber{}, err
	}

	return DocumentNumber{
		Number:   Format(tenantCode, docType, year, seq),
		SeqValue: seq,
		Year:     year,
	}, nil
}

// allocateWithRetry re-runs the whole transactional unit on transient
// failures. Retrying before commit is safe: no number was issued.
func (s *Service) allocateWithRetry(ctx context.Context, key Key) (int64, error) {
	var seq int64

	attempt := func() error {
		err := s.allocateOnce(ctx, key, &seq)
		if err == nil {
			return nil
		}
		if apperror.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.InitialInterval

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, s.cfg.MaxRetries), ctx)
	if err := backoff.Retry(attempt, policy); err != nil {
		return 0, err
	}
	return seq, nil
}

// allocateOnce runs one read-increment unit. With a transaction manager
// the unit commits before returning; a rollback leaves the counter
// unchanged and no number escapes.
func (s *Service) allocateOnce(ctx context.Context, key Key, seq *int64) error {
	next := func(ctx context.Context) error {
		v, err := s.store.Next(ctx, key)
		if err != nil {
			return err
		}
		*seq = v
		return nil
	}

	if txm := s.getTxManager(ctx); txm != nil {
		return txm.RunInTransaction(ctx, next)
	}
	return next(ctx)
}

func (s *Service) getTxManager(ctx context.Context) tx.Manager {
	if s.txManager != nil {
		return s.txManager
	}
	txm, err := tenant.GetTxManager(ctx)
	if err != nil {
		return nil
	}
	return txm
}

// Ensure compile-time interface compliance.
var _ Allocator = (*Service)(nil)
