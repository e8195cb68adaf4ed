package sequence

import (
	"context"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid store dependencies.
type MockAllocator struct {
	AllocateNextFunc func(ctx context.Context, tenantID, tenantCode string, docType DocumentType, year int) (DocumentNumber, error)
}

// AllocateNext implements Allocator.
func (m *MockAllocator) AllocateNext(ctx context.Context, tenantID, tenantCode string, docType DocumentType, year int) (DocumentNumber, error) {
	if m.AllocateNextFunc != nil {
		return m.AllocateNextFunc(ctx, tenantID, tenantCode, docType, year)
	}
	return DocumentNumber{
		Number:   Format(tenantCode, docType, year, 1),
		SeqValue: 1,
		Year:     year,
	}, nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
