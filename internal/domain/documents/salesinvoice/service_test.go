package salesinvoice

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/id"
	"mezgeb/internal/core/money"
	"mezgeb/internal/core/tenant"
	"mezgeb/internal/domain"
	"mezgeb/internal/domain/sequence"
	"mezgeb/internal/domain/tax"
	"mezgeb/internal/domain/totals"
)

// --- test doubles ---

type fakeRepo struct {
	docs      map[id.ID]*SalesInvoice
	lines     map[id.ID][]Line
	createErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*SalesInvoice),
		lines: make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *SalesInvoice) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, tenantID string, docID id.ID) (*SalesInvoice, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.TenantID != tenantID {
		return nil, apperror.NewNotFound("sales_invoices", docID.String())
	}
	return doc, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, tenantID string, number string) (*SalesInvoice, error) {
	for _, doc := range r.docs {
		if doc.TenantID == tenantID && doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("sales_invoices", number)
}

func (r *fakeRepo) Update(ctx context.Context, doc *SalesInvoice) error {
	if _, ok := r.docs[doc.ID]; !ok {
		return apperror.NewNotFound("sales_invoices", doc.ID.String())
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, tenantID string, docID id.ID) error {
	doc, ok := r.docs[docID]
	if !ok || doc.TenantID != tenantID {
		return apperror.NewNotFound("sales_invoices", docID.String())
	}
	doc.DeletionMark = true
	return nil
}

func (r *fakeRepo) GetLines(ctx context.Context, docID id.ID) ([]Line, error) {
	return r.lines[docID], nil
}

func (r *fakeRepo) SaveLines(ctx context.Context, docID id.ID, lines []Line) error {
	r.lines[docID] = lines
	return nil
}

func (r *fakeRepo) List(ctx context.Context, tenantID string, filter domain.ListFilter) (domain.ListResult[*SalesInvoice], error) {
	result := domain.ListResult[*SalesInvoice]{Limit: filter.Limit, Offset: filter.Offset}
	for _, doc := range r.docs {
		if doc.TenantID != tenantID {
			continue
		}
		if !filter.IncludeDeleted && doc.DeletionMark {
			continue
		}
		result.Items = append(result.Items, doc)
	}
	result.TotalCount = int64(len(result.Items))
	return result, nil
}

var _ Repository = (*fakeRepo)(nil)

// recordingTxManager counts transactions and runs fn inline.
type recordingTxManager struct {
	calls int
}

func (m *recordingTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// --- helpers ---

func testTenantCtx() context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{
		ID:     "tenant-1",
		Code:   "ABC",
		Name:   "Abebe Trading",
		Active: true,
	})
}

func newTestService(repo Repository) (*Service, *recordingTxManager) {
	txm := &recordingTxManager{}
	allocator := sequence.NewWithDefaults(sequence.NewMemoryStore())
	calculator := totals.NewCalculator(tax.NewDefaultEngine())
	return NewService(repo, allocator, calculator, txm), txm
}

func newInvoice(tenantID string) *SalesInvoice {
	inv := New(tenantID, id.New(), "Customer PLC")
	inv.CustomerIsCompany = true
	inv.IsService = true
	return inv
}

// --- tests ---

func TestCreate_AllocatesNumberAndFreezesTotals(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, txm := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("consulting", "hrs", decimal.NewFromInt(2), money.MustParse("500"), true)
	inv.AddLine("transport", "trip", decimal.NewFromInt(1), money.MustParse("100"), false)

	require.NoError(t, svc.Create(ctx, inv))

	assert.Equal(t, "ABC-CS-"+strconv.Itoa(inv.Year)+"-0001", inv.Number)
	assert.Equal(t, int64(1), inv.SeqValue)

	// subtotal 1100, VAT only on the 1000 line
	assert.True(t, inv.Subtotal.Equal(money.MustParse("1100.00")), inv.Subtotal.String())
	assert.True(t, inv.VATAmount.Equal(money.MustParse("150.00")), inv.VATAmount.String())
	assert.True(t, inv.Total.Equal(money.MustParse("1250.00")), inv.Total.String())
	// below the 20,000 service threshold
	assert.True(t, inv.WithholdingAmount.IsZero())
	assert.True(t, inv.Net.Equal(inv.Total))

	// document and lines persisted inside one transaction
	assert.Equal(t, 1, txm.calls)
	assert.Contains(t, repo.docs, inv.ID)
	assert.Len(t, repo.lines[inv.ID], 2)
	assert.True(t, repo.lines[inv.ID][0].LineTotal.Equal(money.MustParse("1000.00")))
}

func TestCreate_WithholdingAboveServiceThreshold(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("audit engagement", "job", decimal.NewFromInt(1), money.MustParse("25000"), true)

	require.NoError(t, svc.Create(ctx, inv))

	assert.True(t, inv.Subtotal.Equal(money.MustParse("25000.00")))
	assert.True(t, inv.WithholdingRate.Equal(decimal.NewFromInt(3)))
	assert.True(t, inv.WithholdingAmount.Equal(money.MustParse("750.00")))
	assert.True(t, inv.Net.Equal(money.MustParse("28000.00")), inv.Net.String())
}

func TestCreate_SequentialNumbers(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	var numbers []int64
	for i := 0; i < 3; i++ {
		inv := newInvoice("tenant-1")
		inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("10"), true)
		require.NoError(t, svc.Create(ctx, inv))
		numbers = append(numbers, inv.SeqValue)
	}

	assert.Equal(t, []int64{1, 2, 3}, numbers)
}

func TestCreate_NoLines(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, txm := newTestService(repo)

	inv := newInvoice("tenant-1")

	err := svc.Create(ctx, inv)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	// nothing touched the store
	assert.Equal(t, 0, txm.calls)
	assert.Empty(t, repo.docs)
	assert.False(t, inv.IsNumbered())
}

func TestCreate_TenantMismatch(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("other-tenant")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("10"), true)

	err := svc.Create(ctx, inv)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestCreate_NoTenantInContext(t *testing.T) {
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("10"), true)

	err := svc.Create(context.Background(), inv)
	require.Error(t, err)
}

func TestCreate_RepoFailureSurfaces(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	repo.createErr = errors.New("insert failed")
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("10"), true)

	err := svc.Create(ctx, inv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")
	assert.Empty(t, repo.docs)
}

func TestCreate_PreNumberedDocumentKeepsNumber(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("10"), true)
	inv.Number = "ABC-CS-2024-0042"
	inv.SeqValue = 42
	inv.Year = 2024

	require.NoError(t, svc.Create(ctx, inv))
	assert.Equal(t, "ABC-CS-2024-0042", inv.Number)
	assert.Equal(t, int64(42), inv.SeqValue)
}

func TestCreate_BeforeCreateHookAborts(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, txm := newTestService(repo)

	svc.Hooks().On(domain.BeforeCreate, func(ctx context.Context, doc *SalesInvoice) error {
		return apperror.NewBusinessRule("CUSTOMER_BLOCKED", "customer is blocked")
	})

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("10"), true)

	err := svc.Create(ctx, inv)
	require.Error(t, err)
	assert.Equal(t, 0, txm.calls)
	assert.Empty(t, repo.docs)
}

func TestUpdate_RecomputesTotalsKeepsNumber(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("100"), true)
	require.NoError(t, svc.Create(ctx, inv))

	number := inv.Number
	inv.Lines[0].UnitPrice = money.MustParse("200")

	require.NoError(t, svc.Update(ctx, inv))

	assert.Equal(t, number, inv.Number)
	assert.True(t, inv.Subtotal.Equal(money.MustParse("200.00")))
	assert.True(t, inv.VATAmount.Equal(money.MustParse("30.00")))
}

func TestUpdate_DeletedDocumentRejected(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("100"), true)
	require.NoError(t, svc.Create(ctx, inv))

	inv.DeletionMark = true
	err := svc.Update(ctx, inv)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDocumentImmutable, appErr.Code)
}

func TestDelete_SoftDeletes(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("100"), true)
	require.NoError(t, svc.Create(ctx, inv))

	require.NoError(t, svc.Delete(ctx, inv.ID))
	assert.True(t, repo.docs[inv.ID].DeletionMark)
}

func TestGetByID_LoadsLines(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(2), money.MustParse("50"), true)
	require.NoError(t, svc.Create(ctx, inv))

	got, err := svc.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "item", got.Lines[0].Description)
}

func TestList_ScopedToTenant(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc, _ := newTestService(repo)

	inv := newInvoice("tenant-1")
	inv.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("100"), true)
	require.NoError(t, svc.Create(ctx, inv))

	// a foreign document sitting in the same store
	other := newInvoice("tenant-2")
	other.AddLine("item", "pcs", decimal.NewFromInt(1), money.MustParse("100"), true)
	repo.docs[other.ID] = other

	result, err := svc.List(ctx, domain.DefaultListFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.TotalCount)
}
