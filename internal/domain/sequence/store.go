package sequence

import "context"

// Store is the durable counter behind the allocator. Implementations
// live in the infrastructure layer (PostgreSQL in production, MemoryStore
// for tests and in-process hosts).
//
// A counter row is created lazily on first allocation for a key, starts
// at 1, is never deleted, and is mutated only through Next and Set.
type Store interface {
	// Next atomically creates-if-absent and increments the counter for
	// key, returning the allocated value. Two concurrent calls for the
	// same key must never observe the same value; the store serializes
	// them with row-level locking or an equivalent atomic upsert.
	//
	// When called inside a transaction (tx.Manager in context), the
	// increment is part of that transaction and rolls back with it.
	Next(ctx context.Context, key Key) (int64, error)

	// Current returns the last allocated value for key, or 0 if the
	// counter does not exist yet. Read-only; for ops tooling.
	Current(ctx context.Context, key Key) (int64, error)

	// Set forces the counter for key to value, so the next allocation
	// returns value+1. For migrations and repair only.
	Set(ctx context.Context, key Key, value int64) error
}
