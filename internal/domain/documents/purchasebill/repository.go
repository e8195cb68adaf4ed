package purchasebill

import (
	"context"

	"mezgeb/internal/core/id"
	"mezgeb/internal/domain"
)

// Repository defines persistence operations for purchase bills.
// Implementations must scope every query to the document's tenant.
type Repository interface {
	Create(ctx context.Context, doc *PurchaseBill) error
	GetByID(ctx context.Context, tenantID string, docID id.ID) (*PurchaseBill, error)
	GetByNumber(ctx context.Context, tenantID string, number string) (*PurchaseBill, error)
	Update(ctx context.Context, doc *PurchaseBill) error
	Delete(ctx context.Context, tenantID string, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, tenantID string, filter domain.ListFilter) (domain.ListResult[*PurchaseBill], error)
}
