package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/domain/sequence"
)

// Compile-time check that SequenceStore implements sequence.Store.
var _ sequence.Store = (*SequenceStore)(nil)

// SequenceStore is the PostgreSQL counter behind the number allocator.
//
// Counters live in number_sequences(tenant_id, document_type, year,
// next_value) with a composite primary key on the first three columns.
// Next is a single UPSERT statement, so concurrent allocations for the
// same key serialize on the row lock and each caller sees a distinct
// value. When a transaction is active in ctx the increment joins it and
// rolls back with it.
type SequenceStore struct {
	txManager *TxManager // Optional. If nil, obtained from context.
}

// NewSequenceStore creates a sequence store bound to a transaction manager.
func NewSequenceStore(txManager *TxManager) *SequenceStore {
	return &SequenceStore{txManager: txManager}
}

func (s *SequenceStore) querier(ctx context.Context) Querier {
	txm := s.txManager
	if txm == nil {
		txm = MustGetTxManager(ctx)
	}
	return txm.GetQuerier(ctx)
}

// Next atomically increments the counter for key, creating it at 1 on
// first use, and returns the allocated value.
func (s *SequenceStore) Next(ctx context.Context, key sequence.Key) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}

	var value int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO number_sequences (tenant_id, document_type, year, next_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, document_type, year)
		DO UPDATE SET next_value = number_sequences.next_value + 1
		RETURNING next_value
	`, key.TenantID, string(key.DocType), key.Year).Scan(&value)
	if err != nil {
		return 0, ClassifyError(err, "number_sequences")
	}

	return value, nil
}

// Current returns the last allocated value for key, or 0 when the
// counter does not exist yet.
func (s *SequenceStore) Current(ctx context.Context, key sequence.Key) (int64, error) {
	if err := key.Validate(); err != nil {
		return 0, err
	}

	var value int64
	err := s.querier(ctx).QueryRow(ctx, `
		SELECT next_value FROM number_sequences
		WHERE tenant_id = $1 AND document_type = $2 AND year = $3
	`, key.TenantID, string(key.DocType), key.Year).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, ClassifyError(err, "number_sequences")
	}

	return value, nil
}

// Set forces the counter for key to value. The next allocation returns
// value+1. Rewinding below already-issued numbers will surface as
// duplicate-number conflicts on document insert, never as silent reuse.
func (s *SequenceStore) Set(ctx context.Context, key sequence.Key, value int64) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if value < 0 {
		return apperror.NewValidation("counter value must not be negative").
			WithDetail("value", value)
	}

	_, err := s.querier(ctx).Exec(ctx, `
		INSERT INTO number_sequences (tenant_id, document_type, year, next_value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, document_type, year)
		DO UPDATE SET next_value = $4
	`, key.TenantID, string(key.DocType), key.Year, value)
	if err != nil {
		return ClassifyError(err, "number_sequences")
	}

	return nil
}
