package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mezgeb/internal/core/id"
	"mezgeb/internal/domain/documents/salesinvoice"
	"mezgeb/internal/infrastructure/storage/postgres"
)

const (
	salesInvoicesTable     = "doc_sales_invoices"
	salesInvoiceLinesTable = "doc_sales_invoice_lines"
)

// Compile-time check that SalesInvoiceRepo implements salesinvoice.Repository.
var _ salesinvoice.Repository = (*SalesInvoiceRepo)(nil)

// SalesInvoiceRepo implements salesinvoice.Repository.
type SalesInvoiceRepo struct {
	*BaseDocumentRepo[*salesinvoice.SalesInvoice]
}

// NewSalesInvoiceRepo creates a new sales invoice repository.
func NewSalesInvoiceRepo() *SalesInvoiceRepo {
	return &SalesInvoiceRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			salesInvoicesTable,
			postgres.ExtractDBColumns[salesinvoice.SalesInvoice](),
			func() *salesinvoice.SalesInvoice { return &salesinvoice.SalesInvoice{} },
		),
	}
}

// GetLines retrieves lines for an invoice.
func (r *SalesInvoiceRepo) GetLines(ctx context.Context, docID id.ID) ([]salesinvoice.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "description", "unit",
			"quantity", "unit_price", "discount", "vat_applicable", "line_total",
		).
		From(salesInvoiceLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []salesinvoice.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for an invoice (delete existing + insert new).
func (r *SalesInvoiceRepo) SaveLines(ctx context.Context, docID id.ID, lines []salesinvoice.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + salesInvoiceLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(salesInvoiceLinesTable).
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
