package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
	"invoicedesk/internal/service"
	"invoicedesk/mocks"
)

func testS3Config() *config.S3Config {
	return &config.S3Config{Bucket: "invoices-bucket", MaxFileSizeMB: 1, PresignExpiry: 3600}
}

func TestInvoiceService_Create_AppliesDefaults(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewInvoiceService(repo, storage, testS3Config(), zap.NewNop())

	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

	inv, err := svc.Create(context.Background(), testPhone, service.InvoiceInput{VendorName: "Acme"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, inv.ID)
	assert.Equal(t, time.Now().Format(domain.DateLayout), inv.Date)
	assert.Equal(t, "0", inv.GSTAmount)
	assert.Equal(t, "0", inv.TotalAmount)
	assert.Equal(t, "Acme", inv.VendorName)
	assert.Equal(t, testPhone, inv.CreatedBy)
	repo.AssertExpectations(t)
}

func TestInvoiceService_Create_CustomCategory(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	svc := service.NewInvoiceService(repo, new(mocks.MockObjectStorage), testS3Config(), zap.NewNop())

	repo.On("Create", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.Category == "Others: quarterly team offsite"
	})).Return(nil)

	_, err := svc.Create(context.Background(), testPhone, service.InvoiceInput{
		Category:       "Others",
		CustomCategory: "quarterly team offsite",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestInvoiceService_Create_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input service.InvoiceInput
		want  error
	}{
		{"short custom category", service.InvoiceInput{Category: "Others", CustomCategory: "short"}, domain.ErrCustomCategoryTooShort},
		{"bad date", service.InvoiceInput{Date: "15/03/2024"}, domain.ErrInvalidDate},
		{"negative amount", service.InvoiceInput{TotalAmount: "-5"}, domain.ErrInvalidAmount},
		{"non numeric gst", service.InvoiceInput{GSTAmount: "abc"}, domain.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockInvoiceRepo)
			svc := service.NewInvoiceService(repo, new(mocks.MockObjectStorage), testS3Config(), zap.NewNop())

			_, err := svc.Create(context.Background(), testPhone, tt.input)
			assert.ErrorIs(t, err, tt.want)
			repo.AssertNotCalled(t, "Create")
		})
	}
}

func TestInvoiceService_GetByID_Presigns(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewInvoiceService(repo, storage, testS3Config(), zap.NewNop())

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id, ImageKey: "invoices/a.png"}, nil)
	storage.On("GetPresignedURL", mock.Anything, "invoices-bucket", "invoices/a.png", int64(3600)).
		Return("https://signed.example/a.png", nil)

	inv, err := svc.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/a.png", inv.ImageURL)
}

func TestInvoiceService_GetByID_NotFound(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	svc := service.NewInvoiceService(repo, new(mocks.MockObjectStorage), testS3Config(), zap.NewNop())

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotFound)
}

func TestInvoiceService_List(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	svc := service.NewInvoiceService(repo, new(mocks.MockObjectStorage), testS3Config(), zap.NewNop())

	want := []domain.Invoice{{ID: uuid.New()}}
	repo.On("List", mock.Anything, port.InvoiceFilter{
		Range: &domain.DateRange{From: "2024-01-01", To: "2024-01-31"},
		Limit: 20,
	}).Return(want, 1, nil)

	got, total, err := svc.List(context.Background(), service.ListInvoicesInput{From: "2024-01-01", To: "2024-01-31", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, total)
}

func TestInvoiceService_List_InvalidRange(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	svc := service.NewInvoiceService(repo, new(mocks.MockObjectStorage), testS3Config(), zap.NewNop())

	_, _, err := svc.List(context.Background(), service.ListInvoicesInput{From: "2024-02-01", To: "2024-01-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
	repo.AssertNotCalled(t, "List")
}

func TestInvoiceService_Update(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	svc := service.NewInvoiceService(repo, new(mocks.MockObjectStorage), testS3Config(), zap.NewNop())

	id := uuid.New()
	existing := &domain.Invoice{ID: id, Date: "2024-01-01", VendorName: "Old", GSTAmount: "0", TotalAmount: "0", CreatedBy: testPhone}
	repo.On("GetByID", mock.Anything, id).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(inv *domain.Invoice) bool {
		return inv.VendorName == "New" && inv.TotalAmount == "250.00" && inv.CreatedBy == testPhone
	})).Return(nil)

	inv, err := svc.Update(context.Background(), id, service.InvoiceInput{
		Date: "2024-01-02", VendorName: "New", Category: "Tools", GSTAmount: "0", TotalAmount: "250.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "New", inv.VendorName)
	repo.AssertExpectations(t)
}

func TestInvoiceService_Delete_RemovesImage(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	storage := new(mocks.MockObjectStorage)
	svc := service.NewInvoiceService(repo, storage, testS3Config(), zap.NewNop())

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id, ImageKey: "invoices/a.png"}, nil)
	repo.On("Delete", mock.Anything, id).Return(nil)
	storage.On("Delete", mock.Anything, "invoices-bucket", "invoices/a.png").Return(errors.New("s3 unavailable"))

	// A failed image delete does not fail the invoice delete.
	err := svc.Delete(context.Background(), id)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
	storage.AssertExpectations(t)
}
