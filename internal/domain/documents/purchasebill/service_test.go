package purchasebill

import (
	"context"
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

type fakeRepo struct {
	docs  map[id.ID]*PurchaseBill
	lines map[id.ID][]Line
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:  make(map[id.ID]*PurchaseBill),
		lines: make(map[id.ID][]Line),
	}
}

func (r *fakeRepo) Create(ctx context.Context, doc *PurchaseBill) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, tenantID string, docID id.ID) (*PurchaseBill, error) {
	doc, ok := r.docs[docID]
	if !ok || doc.TenantID != tenantID {
		return nil, apperror.NewNotFound("purchase_bills", docID.String())
	}
	return doc, nil
}

func (r *fakeRepo) GetByNumber(ctx context.Context, tenantID string, number string) (*PurchaseBill, error) {
	for _, doc := range r.docs {
		if doc.TenantID == tenantID && doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("purchase_bills", number)
}

func (r *fakeRepo) Update(ctx context.Context, doc *PurchaseBill) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, tenantID string, docID id.ID) error {
	doc, ok := r.docs[docID]
	if !ok || doc.TenantID != tenantID {
		return apperror.NewNotFound("purchase_bills", docID.String())
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

func (r *fakeRepo) List(ctx context.Context, tenantID string, filter domain.ListFilter) (domain.ListResult[*PurchaseBill], error) {
	return domain.ListResult[*PurchaseBill]{}, nil
}

var _ Repository = (*fakeRepo)(nil)

type inlineTxManager struct{}

func (inlineTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testTenantCtx() context.Context {
	return tenant.WithTenant(context.Background(), &tenant.Tenant{
		ID:     "tenant-1",
		Code:   "ABC",
		Name:   "Abebe Trading",
		Active: true,
	})
}

func newTestService(repo Repository) *Service {
	allocator := sequence.NewWithDefaults(sequence.NewMemoryStore())
	calculator := totals.NewCalculator(tax.NewDefaultEngine())
	return NewService(repo, allocator, calculator, inlineTxManager{})
}

func newBill(tenantID string) *PurchaseBill {
	bill := New(tenantID, id.New(), "Supplier PLC")
	bill.SupplierTIN = "0012345678"
	return bill
}

func TestCreate_DefaultsToNoWithholding(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc := newTestService(repo)

	// large enough that derived withholding would apply; manual entry
	// defaults to zero instead
	bill := newBill("tenant-1")
	bill.AddLine("cement", "qt", decimal.NewFromInt(100), money.MustParse("500"), money.Zero(), true)

	require.NoError(t, svc.Create(ctx, bill))

	assert.True(t, bill.Subtotal.Equal(money.MustParse("50000.00")))
	assert.True(t, bill.WithholdingRate.IsZero())
	assert.True(t, bill.WithholdingAmount.IsZero())
	assert.True(t, bill.Net.Equal(bill.Total))
	assert.Contains(t, bill.Number, "-PB-")
}

func TestCreate_ManualWithholdingRate(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc := newTestService(repo)

	two := decimal.NewFromInt(2)
	bill := newBill("tenant-1")
	bill.ManualWithholdingRate = &two
	bill.AddLine("office rent", "month", decimal.NewFromInt(1), money.MustParse("10000"), money.Zero(), true)

	require.NoError(t, svc.Create(ctx, bill))

	assert.True(t, bill.Subtotal.Equal(money.MustParse("10000.00")))
	assert.True(t, bill.WithholdingRate.Equal(two))
	assert.True(t, bill.WithholdingAmount.Equal(money.MustParse("200.00")))
	// total 11500 - 200
	assert.True(t, bill.Net.Equal(money.MustParse("11300.00")), bill.Net.String())
}

func TestCreate_LineDiscountApplied(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc := newTestService(repo)

	bill := newBill("tenant-1")
	bill.AddLine("rebar", "kg", decimal.NewFromInt(10), money.MustParse("100"), money.MustParse("50"), true)

	require.NoError(t, svc.Create(ctx, bill))

	// Round(10*100) - 50 = 950
	assert.True(t, bill.Subtotal.Equal(money.MustParse("950.00")))
	require.Len(t, repo.lines[bill.ID], 1)
	assert.True(t, repo.lines[bill.ID][0].LineTotal.Equal(money.MustParse("950.00")))
}

func TestCreate_NegativeManualRateRejected(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc := newTestService(repo)

	neg := decimal.NewFromInt(-1)
	bill := newBill("tenant-1")
	bill.ManualWithholdingRate = &neg
	bill.AddLine("cement", "qt", decimal.NewFromInt(1), money.MustParse("100"), money.Zero(), true)

	err := svc.Create(ctx, bill)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Empty(t, repo.docs)
}

func TestUpdate_ChangedManualRateRecomputed(t *testing.T) {
	ctx := testTenantCtx()
	repo := newFakeRepo()
	svc := newTestService(repo)

	bill := newBill("tenant-1")
	bill.AddLine("services", "job", decimal.NewFromInt(1), money.MustParse("1000"), money.Zero(), true)
	require.NoError(t, svc.Create(ctx, bill))
	require.True(t, bill.WithholdingAmount.IsZero())

	three := decimal.NewFromInt(3)
	bill.ManualWithholdingRate = &three
	require.NoError(t, svc.Update(ctx, bill))

	assert.True(t, bill.WithholdingRate.Equal(three))
	assert.True(t, bill.WithholdingAmount.Equal(money.MustParse("30.00")))
}
