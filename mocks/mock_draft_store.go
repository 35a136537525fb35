package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
)

// MockDraftStore is a mock implementation of port.DraftStore.
type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) Save(ctx context.Context, draft *domain.Draft, ttl time.Duration) error {
	args := m.Called(ctx, draft, ttl)
	return args.Error(0)
}

func (m *MockDraftStore) Get(ctx context.Context, id uuid.UUID) (*domain.Draft, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Draft), args.Error(1)
}

func (m *MockDraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOTPStore is a mock implementation of port.OTPStore.
type MockOTPStore struct {
	mock.Mock
}

func (m *MockOTPStore) Save(ctx context.Context, phone string, challenge *port.OTPChallenge, ttl time.Duration) error {
	args := m.Called(ctx, phone, challenge, ttl)
	return args.Error(0)
}

func (m *MockOTPStore) Get(ctx context.Context, phone string) (*port.OTPChallenge, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.OTPChallenge), args.Error(1)
}

func (m *MockOTPStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	args := m.Called(ctx, phone)
	return args.Int(0), args.Error(1)
}

func (m *MockOTPStore) Delete(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}
