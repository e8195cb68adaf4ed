package paymentvoucher

import (
	"context"

	"mezgeb/internal/core/id"
	"mezgeb/internal/domain"
)

// Repository defines persistence operations for payment vouchers.
// Implementations must scope every query to the document's tenant.
type Repository interface {
	Create(ctx context.Context, doc *PaymentVoucher) error
	GetByID(ctx context.Context, tenantID string, docID id.ID) (*PaymentVoucher, error)
	GetByNumber(ctx context.Context, tenantID string, number string) (*PaymentVoucher, error)
	Update(ctx context.Context, doc *PaymentVoucher) error
	Delete(ctx context.Context, tenantID string, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, tenantID string, filter domain.ListFilter) (domain.ListResult[*PaymentVoucher], error)
}
