package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"invoicedesk/internal/domain"
)

// DraftStore keeps in-progress invoice drafts until they expire.
type DraftStore interface {
	Save(ctx context.Context, draft *domain.Draft, ttl time.Duration) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Draft, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// OTPChallenge is a pending sign-in code for a phone number.
type OTPChallenge struct {
	CodeHash string
	Attempts int
}

// OTPStore keeps pending OTP challenges keyed by phone number.
type OTPStore interface {
	Save(ctx context.Context, phone string, challenge *OTPChallenge, ttl time.Duration) error
	Get(ctx context.Context, phone string) (*OTPChallenge, error)
	IncrementAttempts(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone string) error
}
