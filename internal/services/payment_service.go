package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/toroprop/toro-api/internal/models"
	"github.com/toroprop/toro-api/internal/repository"
	"github.com/toroprop/toro-api/internal/statemachine"
	"github.com/toroprop/toro-api/internal/storage"
	"gorm.io/gorm"
)

type PaymentService struct {
	repo     repository.PaymentRepository
	storage  *storage.LocalStorage
	auditSvc *AuditService
}

func NewPaymentService(repo repository.PaymentRepository, storage *storage.LocalStorage, auditSvc *AuditService) *PaymentService {
	return &PaymentService{repo: repo, storage: storage, auditSvc: auditSvc}
}

type SettlePaymentRequest struct {
	PaidAmount    decimal.Decimal `json:"paid_amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"omitempty,oneof=cash transfer check card"`
	SettledAt     *time.Time      `json:"settled_at" time_format:"2006-01-02"`
	Notes         *string         `json:"notes"`
}

type UpdatePaymentRequest struct {
	CommonCharges   *decimal.Decimal `json:"common_charges"`
	UtilitiesAmount *decimal.Decimal `json:"utilities_amount"`
	Notes           *string          `json:"notes"`
}

func (s *PaymentService) GetByID(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// Update adjusts the billable extras of an open payment. Settled payments
// are immutable; reopen first.
func (s *PaymentService) Update(ctx context.Context, id uint, req *UpdatePaymentRequest, ip, userAgent string) (*models.Payment, error) {
	payment, err := s.findForMutation(ctx, id)
	if err != nil {
		return nil, err
	}

	if payment.Status == models.PaymentStatusSettled {
		return nil, fmt.Errorf("%w: el pago ya está liquidado", ErrInvalidState)
	}

	if req.CommonCharges != nil {
		if req.CommonCharges.IsNegative() {
			return nil, fmt.Errorf("%w: los gastos comunes no pueden ser negativos", ErrInvalidState)
		}
		payment.CommonCharges = *req.CommonCharges
	}
	if req.UtilitiesAmount != nil {
		if req.UtilitiesAmount.IsNegative() {
			return nil, fmt.Errorf("%w: los servicios no pueden ser negativos", ErrInvalidState)
		}
		payment.UtilitiesAmount = *req.UtilitiesAmount
	}
	if req.Notes != nil {
		payment.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionUpdate, "payment", payment.ID, payment.Period, ip, userAgent)
	return payment, nil
}

// Settle records a settlement. A paid amount covering the full total due
// settles the payment; anything lower records a partial settlement.
func (s *PaymentService) Settle(ctx context.Context, id uint, req *SettlePaymentRequest, ip, userAgent string) (*models.Payment, error) {
	payment, err := s.findForMutation(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PaidAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: el monto pagado debe ser mayor que cero", ErrInvalidState)
	}

	pfsm := statemachine.NewPaymentFSM(payment)

	if req.PaidAmount.GreaterThanOrEqual(payment.TotalDue()) {
		if err := pfsm.Settle(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
	} else {
		if err := pfsm.SettlePartial(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
	}

	payment.PaidAmount = decimal.NewNullDecimal(req.PaidAmount)
	if req.PaymentMethod != "" {
		payment.PaymentMethod = &req.PaymentMethod
	}
	settledAt := time.Now().UTC()
	if req.SettledAt != nil {
		settledAt = *req.SettledAt
	}
	payment.SettledAt = &settledAt
	if req.Notes != nil {
		payment.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionSettle, "payment", payment.ID, payment.Period, ip, userAgent)
	return payment, nil
}

// Reopen undoes a settlement and returns the payment to pending. The next
// accrual run recomputes its late fee from scratch.
func (s *PaymentService) Reopen(ctx context.Context, id uint, ip, userAgent string) (*models.Payment, error) {
	payment, err := s.findForMutation(ctx, id)
	if err != nil {
		return nil, err
	}

	pfsm := statemachine.NewPaymentFSM(payment)
	if err := pfsm.Reopen(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}

	payment.PaidAmount = decimal.NullDecimal{}
	payment.PaymentMethod = nil
	payment.SettledAt = nil

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionUpdate, "payment", payment.ID, payment.Period, ip, userAgent)
	return payment, nil
}

// UploadReceipt attaches a proof of payment file
func (s *PaymentService) UploadReceipt(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader, ip, userAgent string) (*models.Payment, error) {
	payment, err := s.findForMutation(ctx, id)
	if err != nil {
		return nil, err
	}

	if header.Size > storage.MaxFileSize() {
		return nil, fmt.Errorf("%w: el archivo excede el tamaño máximo", ErrInvalidState)
	}
	if !storage.ValidContentTypes()[header.Header.Get("Content-Type")] {
		return nil, fmt.Errorf("%w: tipo de archivo no permitido", ErrInvalidState)
	}

	if payment.ReceiptPath != nil && *payment.ReceiptPath != "" {
		_ = s.storage.Delete(*payment.ReceiptPath)
	}

	relativePath, err := s.storage.Upload(file, header, "receipts")
	if err != nil {
		return nil, err
	}

	payment.ReceiptPath = &relativePath
	if err := s.repo.Update(ctx, payment); err != nil {
		_ = s.storage.Delete(relativePath)
		return nil, err
	}

	s.auditSvc.LogAsync(models.AuditActionUpdate, "payment", payment.ID, "receipt", ip, userAgent)
	return payment, nil
}

// DownloadReceipt opens the stored proof of payment. Caller closes the file.
func (s *PaymentService) DownloadReceipt(ctx context.Context, id uint) (*os.File, string, error) {
	payment, err := s.findForMutation(ctx, id)
	if err != nil {
		return nil, "", err
	}

	if payment.ReceiptPath == nil || *payment.ReceiptPath == "" || !s.storage.Exists(*payment.ReceiptPath) {
		return nil, "", fmt.Errorf("%w: comprobante", ErrNotFound)
	}

	file, err := s.storage.Download(*payment.ReceiptPath)
	if err != nil {
		return nil, "", err
	}
	return file, *payment.ReceiptPath, nil
}

func (s *PaymentService) List(ctx context.Context, query *repository.PaymentQuery) ([]models.Payment, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *PaymentService) ListOverdue(ctx context.Context) ([]models.Payment, error) {
	return s.repo.FindOverdue(ctx)
}

func (s *PaymentService) Stats(ctx context.Context, period string) (*repository.PaymentStats, error) {
	if period != "" {
		if _, err := models.ParsePeriod(period); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
		}
	}
	return s.repo.GetStats(ctx, period)
}

func (s *PaymentService) findForMutation(ctx context.Context, id uint) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}
