package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
)

// invoiceColumns selects dates back as YYYY-MM-DD text.
const invoiceColumns = `id, to_char(date, 'YYYY-MM-DD') AS date, vendor_name, employee_name, category,
	gst_amount, total_amount, image_url, image_key, created_by, created_at, updated_at`

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	now := time.Now().UTC()
	inv.CreatedAt = now
	inv.UpdatedAt = now

	query := `INSERT INTO invoices
		(id, date, vendor_name, employee_name, category, gst_amount, total_amount,
		 image_url, image_key, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.Date, inv.VendorName, inv.EmployeeName, inv.Category,
		inv.GSTAmount, inv.TotalAmount, inv.ImageURL, inv.ImageKey, inv.CreatedBy,
		inv.CreatedAt, inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create: %w", err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		"SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) List(ctx context.Context, filter port.InvoiceFilter) ([]domain.Invoice, int, error) {
	var conds []string
	var args []interface{}
	if filter.Range != nil {
		if filter.Range.From != "" {
			args = append(args, filter.Range.From)
			conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
		}
		if filter.Range.To != "" {
			args = append(args, filter.Range.To)
			conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
		}
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM invoices"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List count: %w", err)
	}

	query := "SELECT " + invoiceColumns + " FROM invoices" + where + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	invoices := []domain.Invoice{}
	if err := r.db.SelectContext(ctx, &invoices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.List: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) Update(ctx context.Context, inv *domain.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET date = $1, vendor_name = $2, employee_name = $3, category = $4,
		 gst_amount = $5, total_amount = $6, image_url = $7, image_key = $8, updated_at = $9
		 WHERE id = $10`,
		inv.Date, inv.VendorName, inv.EmployeeName, inv.Category, inv.GSTAmount,
		inv.TotalAmount, inv.ImageURL, inv.ImageKey, inv.UpdatedAt, inv.ID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}
