package port

import (
	"context"

	"github.com/google/uuid"

	"invoicedesk/internal/domain"
)

// InvoiceFilter narrows invoice listings. A zero Limit returns every match.
type InvoiceFilter struct {
	Range  *domain.DateRange
	Offset int
	Limit  int
}

// InvoiceRepository persists committed invoices.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]domain.Invoice, int, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
