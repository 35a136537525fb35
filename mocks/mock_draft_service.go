package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/service"
)

// MockDraftService is a mock implementation of service.DraftService.
type MockDraftService struct {
	mock.Mock
}

func (m *MockDraftService) draft(args mock.Arguments) (*domain.Draft, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftService) Scan(ctx context.Context, input service.ScanInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, input))
}

func (m *MockDraftService) FromText(ctx context.Context, owner, text string) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, owner, text))
}

func (m *MockDraftService) NewManual(ctx context.Context, owner string) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, owner))
}

func (m *MockDraftService) EditInvoice(ctx context.Context, owner string, invoiceID uuid.UUID) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, owner, invoiceID))
}

func (m *MockDraftService) Get(ctx context.Context, owner string, id uuid.UUID) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, owner, id))
}

func (m *MockDraftService) Update(ctx context.Context, owner string, id uuid.UUID, input service.DraftUpdateInput) (*domain.Draft, error) {
	return m.draft(m.Called(ctx, owner, id, input))
}

func (m *MockDraftService) Commit(ctx context.Context, owner string, id uuid.UUID) (*domain.Invoice, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockDraftService) Discard(ctx context.Context, owner string, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}
