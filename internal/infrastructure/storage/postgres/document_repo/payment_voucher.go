package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"mezgeb/internal/core/id"
	"mezgeb/internal/domain/documents/paymentvoucher"
	"mezgeb/internal/infrastructure/storage/postgres"
)

const (
	paymentVouchersTable     = "doc_payment_vouchers"
	paymentVoucherLinesTable = "doc_payment_voucher_lines"
)

// Compile-time check that PaymentVoucherRepo implements paymentvoucher.Repository.
var _ paymentvoucher.Repository = (*PaymentVoucherRepo)(nil)

// PaymentVoucherRepo implements paymentvoucher.Repository.
type PaymentVoucherRepo struct {
	*BaseDocumentRepo[*paymentvoucher.PaymentVoucher]
}

// NewPaymentVoucherRepo creates a new payment voucher repository.
func NewPaymentVoucherRepo() *PaymentVoucherRepo {
	return &PaymentVoucherRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			paymentVouchersTable,
			postgres.ExtractDBColumns[paymentvoucher.PaymentVoucher](),
			func() *paymentvoucher.PaymentVoucher { return &paymentvoucher.PaymentVoucher{} },
		),
	}
}

// GetLines retrieves lines for a voucher.
func (r *PaymentVoucherRepo) GetLines(ctx context.Context, docID id.ID) ([]paymentvoucher.Line, error) {
	q := r.Builder().
		Select(
			"line_id", "line_no", "description", "unit",
			"quantity", "unit_price", "vat_applicable", "line_total",
		).
		From(paymentVoucherLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []paymentvoucher.Line
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a voucher (delete existing + insert new).
func (r *PaymentVoucherRepo) SaveLines(ctx context.Context, docID id.ID, lines []paymentvoucher.Line) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + paymentVoucherLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(paymentVoucherLinesTable).
		Columns(
			"line_id", "document_id", "line_no", "description", "unit",
			"quantity", "unit_price", "vat_applicable", "line_total",
		)

	for _, line := range lines {
		q = q.Values(
			line.LineID, docID, line.LineNo, line.Description, line.Unit,
			line.Quantity, line.UnitPrice, line.VATApplicable, line.LineTotal,
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
