package paymentvoucher

import (
	"context"
	"fmt"

	"mezgeb/internal/core/apperror"
	"mezgeb/internal/core/id"
	"mezgeb/internal/core/tenant"
	"mezgeb/internal/core/tx"
	"mezgeb/internal/domain"
	"mezgeb/internal/domain/sequence"
	"mezgeb/internal/domain/totals"
	"mezgeb/pkg/logger"
)

// Service provides business operations for payment vouchers.
type Service struct {
	repo       Repository
	allocator  sequence.Allocator
	calculator *totals.Calculator
	txManager  tx.Manager // Optional. If nil, obtained from context.
	hooks      *domain.HookRegistry[*PaymentVoucher]
}

// NewService creates a new payment voucher service.
func NewService(
	repo Repository,
	allocator sequence.Allocator,
	calculator *totals.Calculator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:       repo,
		allocator:  allocator,
		calculator: calculator,
		txManager:  txManager,
		hooks:      domain.NewHookRegistry[*PaymentVoucher](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*PaymentVoucher] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create validates the voucher, freezes its totals, allocates the PV
// number and persists everything atomically.
func (s *Service) Create(ctx context.Context, doc *PaymentVoucher) error {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return apperror.NewInternal(err)
	}

	if doc.TenantID == "" {
		doc.TenantID = t.ID
	} else if doc.TenantID != t.ID {
		return apperror.NewValidation("document tenant does not match request tenant").
			WithDetail("document_tenant", doc.TenantID)
	}

	if err := s.hooks.Run(ctx, domain.BeforeCreate, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	computed, err := s.calculator.Compute(doc.LineItems(), doc.TaxContext())
	if err != nil {
		return err
	}
	doc.ApplyTotals(computed)

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if !doc.IsNumbered() {
			n, err := s.allocator.AllocateNext(ctx, doc.TenantID, t.Code, sequence.DocTypePaymentVoucher, doc.Year)
			if err != nil {
				return fmt.Errorf("allocate number: %w", err)
			}
			doc.Number = n.Number
			doc.SeqValue = n.SeqValue
			doc.Year = n.Year
		}

		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "payment voucher created",
		"id", doc.ID,
		"number", doc.Number,
		"net", doc.Net)

	return nil
}

// GetByID retrieves a payment voucher with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*PaymentVoucher, error) {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	doc, err := s.repo.GetByID(ctx, t.ID, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// Update edits the voucher; totals are recomputed, the number stays.
func (s *Service) Update(ctx context.Context, doc *PaymentVoucher) error {
	if err := s.hooks.Run(ctx, domain.BeforeUpdate, doc); err != nil {
		return err
	}

	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	computed, err := s.calculator.Compute(doc.LineItems(), doc.TaxContext())
	if err != nil {
		return err
	}
	doc.ApplyTotals(computed)

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return s.hooks.Run(ctx, domain.AfterUpdate, doc)
}

// Delete soft-deletes a payment voucher.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return apperror.NewInternal(err)
	}
	return s.repo.Delete(ctx, t.ID, docID)
}

// List retrieves payment vouchers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*PaymentVoucher], error) {
	t, err := tenant.RequireTenant(ctx)
	if err != nil {
		return domain.ListResult[*PaymentVoucher]{}, apperror.NewInternal(err)
	}
	return s.repo.List(ctx, t.ID, filter)
}
