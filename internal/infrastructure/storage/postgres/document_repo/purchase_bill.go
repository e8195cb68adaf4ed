package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mezgeb/internal/core/id"
	"mezgeb/internal/domain/documents/purchasebill"
	"mezgeb/internal/infrastructure/storage/postgres"
)

const (
	purchaseBillsTable     = "doc_purchase_bills"
	purchaseBillLinesTable = "doc_purchase_bill_lines"
)

// Compile-time check that PurchaseBillRepo implements purchasebill.Repository.
var _ purchasebill.Repository = (*PurchaseBillRepo)(nil)

// PurchaseBillRepo implements purchasebill.Repository.
type PurchaseBillRepo struct {
	*BaseDocumentRepo[*purchasebill.PurchaseBill]
}

// NewPurchaseBillRepo creates a new purchase bill repository.
func NewPurchaseBillRepo() *PurchaseBillRepo {
	return &PurchaseBillRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			purchaseBillsTable,
			postgres.ExtractDBColumns[purchasebill.PurchaseBill](),
			func() *purchasebill.PurchaseBill { return &purchasebill.PurchaseBill{} },
		),
	}
}

// GetLines retrieves lines for a bill.
func (r *PurchaseBillRepo) GetLines(ctx context.Context, docID id.ID) ([]purchasebill.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "description", "unit",
			"quantity", "unit_price", "discount", "vat_applicable", "line_total",
		).
		From(purchaseBillLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchasebill.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a bill (delete existing + insert new).
func (r *PurchaseBillRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchasebill.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + purchaseBillLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseBillLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "description", "unit",
			"quantity", "unit_price", "discount", "vat_applicable", "line_total",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.Description, line.Unit,
			line.Quantity, line.UnitPrice, line.Discount, line.VATApplicable, line.LineTotal,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}
