package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Draft is an invoice being entered. It moves through DraftState values until
// it is committed as an Invoice.
type Draft struct {
	ID             uuid.UUID       `json:"id"`
	Owner          string          `json:"owner"`
	State          DraftState      `json:"state"`
	Fields         InvoiceFields   `json:"fields"`
	Extracted      ExtractedFields `json:"extracted"`
	CustomCategory string          `json:"custom_category,omitempty"`
	ImageURL       string          `json:"image_url,omitempty"`
	ImageKey       string          `json:"image_key,omitempty"`
	RawText        string          `json:"raw_text,omitempty"`
	ParsedBy       string          `json:"parsed_by,omitempty"`
	LastError      string          `json:"last_error,omitempty"`
	InvoiceID      *uuid.UUID      `json:"invoice_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

var draftTransitions = map[DraftState][]DraftState{
	DraftStateCollectingInput:    {DraftStateAwaitingExtraction, DraftStateReviewing},
	DraftStateAwaitingExtraction: {DraftStateReviewing, DraftStateCollectingInput},
	DraftStateReviewing:          {DraftStateReviewing, DraftStateCommitted},
}

// NewDraft returns a draft in the collecting-input state.
func NewDraft(owner string, now time.Time) *Draft {
	return &Draft{
		ID:        uuid.New(),
		Owner:     owner,
		State:     DraftStateCollectingInput,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// CanTransition reports whether the draft may move to next.
func (d *Draft) CanTransition(next DraftState) bool {
	for _, s := range draftTransitions[d.State] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo moves the draft to next or returns ErrInvalidDraftTransition.
func (d *Draft) TransitionTo(next DraftState, now time.Time) error {
	if !d.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidDraftTransition, d.State, next)
	}
	d.State = next
	d.UpdatedAt = now
	return nil
}

// FailExtraction returns an awaiting draft to collecting-input, keeping the error.
func (d *Draft) FailExtraction(cause error, now time.Time) error {
	if err := d.TransitionTo(DraftStateCollectingInput, now); err != nil {
		return err
	}
	d.LastError = cause.Error()
	return nil
}

// CompleteExtraction stores extraction results and moves the draft to reviewing.
func (d *Draft) CompleteExtraction(extracted ExtractedFields, fields InvoiceFields, parsedBy string, now time.Time) error {
	if err := d.TransitionTo(DraftStateReviewing, now); err != nil {
		return err
	}
	d.Extracted = extracted
	d.Fields = fields
	d.ParsedBy = parsedBy
	d.LastError = ""
	_, d.CustomCategory = SplitCategory(fields.Category)
	return nil
}
