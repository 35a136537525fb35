package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/extractor"
	"invoicedesk/internal/port"
)

// InvoiceInput is the DTO for creating or replacing an invoice.
// CustomCategory is used when Category is "Others".
type InvoiceInput struct {
	Date           string `json:"date"`
	VendorName     string `json:"vendor_name"`
	EmployeeName   string `json:"employee_name"`
	Category       string `json:"category"`
	CustomCategory string `json:"custom_category"`
	GSTAmount      string `json:"gst_amount"`
	TotalAmount    string `json:"total_amount"`
}

// Fields returns the editable invoice attributes carried by the input.
func (in InvoiceInput) Fields() domain.InvoiceFields {
	return domain.InvoiceFields{
		Date:         in.Date,
		VendorName:   in.VendorName,
		EmployeeName: in.EmployeeName,
		Category:     in.Category,
		GSTAmount:    in.GSTAmount,
		TotalAmount:  in.TotalAmount,
	}
}

// ListInvoicesInput filters the dashboard listing. Dates are YYYY-MM-DD and inclusive.
type ListInvoicesInput struct {
	From   string
	To     string
	Offset int
	Limit  int
}

// InvoiceService defines the committed invoice contract.
type InvoiceService interface {
	Create(ctx context.Context, owner string, input InvoiceInput) (*domain.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, input ListInvoicesInput) ([]domain.Invoice, int, error)
	Update(ctx context.Context, id uuid.UUID, input InvoiceInput) (*domain.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type invoiceService struct {
	repo    port.InvoiceRepository
	storage port.ObjectStorage
	s3Cfg   *config.S3Config
	log     *zap.Logger
	now     func() time.Time
}

// NewInvoiceService creates a new InvoiceService implementation.
func NewInvoiceService(
	repo port.InvoiceRepository,
	storage port.ObjectStorage,
	s3Cfg *config.S3Config,
	log *zap.Logger,
) InvoiceService {
	return &invoiceService{
		repo:    repo,
		storage: storage,
		s3Cfg:   s3Cfg,
		log:     log,
		now:     time.Now,
	}
}

func (s *invoiceService) Create(ctx context.Context, owner string, input InvoiceInput) (*domain.Invoice, error) {
	now := s.now()
	fields, err := normalizeFields(input.Fields(), input.CustomCategory, now)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		ID:        uuid.New(),
		CreatedBy: owner,
		CreatedAt: now,
		UpdatedAt: now,
	}
	inv.Apply(fields)

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("invoice.Create: %w", err)
	}
	s.log.Info("invoice created", zap.String("invoice_id", inv.ID.String()))
	return inv, nil
}

func (s *invoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.presign(ctx, inv)
	return inv, nil
}

func (s *invoiceService) List(ctx context.Context, input ListInvoicesInput) ([]domain.Invoice, int, error) {
	r, err := domain.ParseDateRange(input.From, input.To, false)
	if err != nil {
		return nil, 0, err
	}
	invoices, total, err := s.repo.List(ctx, port.InvoiceFilter{Range: r, Offset: input.Offset, Limit: input.Limit})
	if err != nil {
		return nil, 0, fmt.Errorf("invoice.List: %w", err)
	}
	return invoices, total, nil
}

func (s *invoiceService) Update(ctx context.Context, id uuid.UUID, input InvoiceInput) (*domain.Invoice, error) {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	fields, err := normalizeFields(input.Fields(), input.CustomCategory, now)
	if err != nil {
		return nil, err
	}
	inv.Apply(fields)
	inv.UpdatedAt = now

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, fmt.Errorf("invoice.Update: %w", err)
	}
	return inv, nil
}

func (s *invoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	inv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("invoice.Delete: %w", err)
	}

	if inv.ImageKey != "" {
		if err := s.storage.Delete(ctx, s.s3Cfg.Bucket, inv.ImageKey); err != nil {
			s.log.Warn("failed to delete invoice image",
				zap.String("invoice_id", id.String()), zap.String("key", inv.ImageKey), zap.Error(err))
		}
	}
	s.log.Info("invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// presign replaces the stored image URL with a fresh presigned link when possible.
func (s *invoiceService) presign(ctx context.Context, inv *domain.Invoice) {
	if inv.ImageKey == "" {
		return
	}
	url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, inv.ImageKey, s.s3Cfg.PresignExpiry)
	if err != nil {
		s.log.Warn("failed to presign invoice image", zap.String("invoice_id", inv.ID.String()), zap.Error(err))
		return
	}
	inv.ImageURL = url
}

// normalizeFields fills defaults, resolves a pending custom category and
// validates the result.
func normalizeFields(f domain.InvoiceFields, customCategory string, now time.Time) (domain.InvoiceFields, error) {
	if f.Date == "" {
		f.Date = now.Format(domain.DateLayout)
	}
	if f.GSTAmount == "" {
		f.GSTAmount = extractor.DefaultAmount
	}
	if f.TotalAmount == "" {
		f.TotalAmount = extractor.DefaultAmount
	}
	if f.Category == domain.CategoryOthers {
		resolved, err := domain.ResolveCategory(f.Category, customCategory)
		if err != nil {
			return f, err
		}
		f.Category = resolved
	}
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}
