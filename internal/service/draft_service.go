package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"invoicedesk/internal/config"
	"invoicedesk/internal/domain"
	"invoicedesk/internal/extractor"
	"invoicedesk/internal/metrics"
	"invoicedesk/internal/port"
)

// ScanInput carries an uploaded invoice image or PDF. A nil DraftID starts a
// new draft; otherwise the upload retries a draft that is collecting input.
// A retry with a nil File reuses the image stored for the draft.
type ScanInput struct {
	Owner    string
	DraftID  *uuid.UUID
	File     io.Reader
	Filename string
	Size     int64
}

// DraftUpdateInput is the DTO for edits made while reviewing a draft.
type DraftUpdateInput = InvoiceInput

// DraftService drives the invoice entry flow from upload to commit.
type DraftService interface {
	Scan(ctx context.Context, input ScanInput) (*domain.Draft, error)
	FromText(ctx context.Context, owner, text string) (*domain.Draft, error)
	NewManual(ctx context.Context, owner string) (*domain.Draft, error)
	EditInvoice(ctx context.Context, owner string, invoiceID uuid.UUID) (*domain.Draft, error)
	Get(ctx context.Context, owner string, id uuid.UUID) (*domain.Draft, error)
	Update(ctx context.Context, owner string, id uuid.UUID, input DraftUpdateInput) (*domain.Draft, error)
	Commit(ctx context.Context, owner string, id uuid.UUID) (*domain.Invoice, error)
	Discard(ctx context.Context, owner string, id uuid.UUID) error
}

type draftService struct {
	drafts     port.DraftStore
	invoices   port.InvoiceRepository
	storage    port.ObjectStorage
	recognizer port.TextRecognizer
	parser     port.FieldParser
	s3Cfg      *config.S3Config
	ttl        time.Duration
	log        *zap.Logger
	now        func() time.Time
}

// NewDraftService creates a new DraftService implementation.
func NewDraftService(
	drafts port.DraftStore,
	invoices port.InvoiceRepository,
	storage port.ObjectStorage,
	recognizer port.TextRecognizer,
	parser port.FieldParser,
	s3Cfg *config.S3Config,
	draftCfg config.DraftConfig,
	log *zap.Logger,
) DraftService {
	return &draftService{
		drafts:     drafts,
		invoices:   invoices,
		storage:    storage,
		recognizer: recognizer,
		parser:     parser,
		s3Cfg:      s3Cfg,
		ttl:        draftCfg.TTL,
		log:        log,
		now:        time.Now,
	}
}

// Scan stores the upload, recognizes its text and extracts fields. When text
// recognition fails the draft is saved back in collecting_input with the error
// recorded and returned together with the error, so the caller can retry.
// Retrying an existing draft without a new file recognizes the stored image again.
func (s *draftService) Scan(ctx context.Context, input ScanInput) (*domain.Draft, error) {
	if input.File == nil {
		return s.rescanStored(ctx, input)
	}

	data, fileType, err := s.readUpload(input)
	if err != nil {
		return nil, err
	}

	var draft *domain.Draft
	if input.DraftID != nil {
		if draft, err = s.Get(ctx, input.Owner, *input.DraftID); err != nil {
			return nil, err
		}
	} else {
		draft = domain.NewDraft(input.Owner, s.now())
	}
	if err := draft.TransitionTo(domain.DraftStateAwaitingExtraction, s.now()); err != nil {
		return nil, err
	}

	replacedKey := ""
	if draft.InvoiceID == nil {
		replacedKey = draft.ImageKey
	}
	if err := s.storeImage(ctx, draft, data, fileType); err != nil {
		return nil, err
	}
	if replacedKey != "" {
		s.deleteImage(ctx, draft.ID, replacedKey)
	}

	return s.recognizeAndExtract(ctx, draft, data, fileType)
}

// rescanStored runs recognition again on the image already stored for a draft.
func (s *draftService) rescanStored(ctx context.Context, input ScanInput) (*domain.Draft, error) {
	if input.DraftID == nil {
		return nil, domain.ErrNoStoredImage
	}
	draft, err := s.Get(ctx, input.Owner, *input.DraftID)
	if err != nil {
		return nil, err
	}
	if draft.ImageKey == "" {
		return nil, domain.ErrNoStoredImage
	}
	if !draft.CanTransition(domain.DraftStateAwaitingExtraction) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidDraftTransition, draft.State, domain.DraftStateAwaitingExtraction)
	}

	data, err := s.storage.Download(ctx, s.s3Cfg.Bucket, draft.ImageKey)
	if err != nil {
		return nil, fmt.Errorf("draft.Scan downloading %s: %w", draft.ImageKey, err)
	}
	fileType, err := detectFileType(data)
	if err != nil {
		return nil, err
	}
	if err := draft.TransitionTo(domain.DraftStateAwaitingExtraction, s.now()); err != nil {
		return nil, err
	}

	s.log.Info("rescanning stored image", zap.String("draft_id", draft.ID.String()))
	return s.recognizeAndExtract(ctx, draft, data, fileType)
}

func (s *draftService) recognizeAndExtract(ctx context.Context, draft *domain.Draft, data []byte, fileType domain.FileType) (*domain.Draft, error) {
	text, err := s.recognizer.Recognize(ctx, port.RecognizeInput{
		Data:        data,
		ContentType: domain.AllowedFileTypes[fileType],
	})
	if err != nil {
		if !isRecognitionError(err) {
			err = fmt.Errorf("%w: %v", domain.ErrRecognitionFailed, err)
		}
		return s.failExtraction(ctx, draft, err)
	}
	draft.RawText = text

	if err := s.extract(ctx, draft, text); err != nil {
		return s.failExtraction(ctx, draft, err)
	}
	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("draft.Scan: %w", err)
	}

	s.log.Info("draft scanned",
		zap.String("draft_id", draft.ID.String()),
		zap.String("parsed_by", draft.ParsedBy),
		zap.Strings("fields", draft.Extracted.PresentFields()))
	return draft, nil
}

// FromText extracts fields from text that was recognized elsewhere.
func (s *draftService) FromText(ctx context.Context, owner, text string) (*domain.Draft, error) {
	draft := domain.NewDraft(owner, s.now())
	if err := draft.TransitionTo(domain.DraftStateAwaitingExtraction, s.now()); err != nil {
		return nil, err
	}
	draft.RawText = text

	if err := s.extract(ctx, draft, text); err != nil {
		return nil, fmt.Errorf("draft.FromText: %w", err)
	}
	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("draft.FromText: %w", err)
	}
	return draft, nil
}

// NewManual opens a draft for manual entry with every field defaulted.
func (s *draftService) NewManual(ctx context.Context, owner string) (*domain.Draft, error) {
	now := s.now()
	draft := domain.NewDraft(owner, now)
	if err := draft.TransitionTo(domain.DraftStateReviewing, now); err != nil {
		return nil, err
	}
	draft.Fields = extractor.ApplyDefaults(domain.ExtractedFields{}, now)

	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("draft.NewManual: %w", err)
	}
	return draft, nil
}

// EditInvoice opens a reviewing draft pre-filled from a committed invoice.
// Committing it replaces the invoice.
func (s *draftService) EditInvoice(ctx context.Context, owner string, invoiceID uuid.UUID) (*domain.Draft, error) {
	inv, err := s.invoices.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	draft := domain.NewDraft(owner, now)
	if err := draft.TransitionTo(domain.DraftStateReviewing, now); err != nil {
		return nil, err
	}
	draft.Fields = inv.Fields()
	_, draft.CustomCategory = domain.SplitCategory(inv.Category)
	draft.ImageKey = inv.ImageKey
	draft.ImageURL = inv.ImageURL
	draft.InvoiceID = &inv.ID

	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("draft.EditInvoice: %w", err)
	}
	return draft, nil
}

func (s *draftService) Get(ctx context.Context, owner string, id uuid.UUID) (*domain.Draft, error) {
	draft, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if draft.Owner != owner {
		return nil, domain.ErrDraftNotFound
	}
	return draft, nil
}

// Update replaces the reviewed fields. A custom category that is too short is
// kept pending: the draft stores the "Others" sentinel and records the error,
// and Commit refuses it until the label is long enough.
func (s *draftService) Update(ctx context.Context, owner string, id uuid.UUID, input DraftUpdateInput) (*domain.Draft, error) {
	draft, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if err := draft.TransitionTo(domain.DraftStateReviewing, s.now()); err != nil {
		return nil, err
	}

	fields := input.Fields()
	draft.LastError = ""
	draft.CustomCategory = ""
	if fields.Category == domain.CategoryOthers {
		draft.CustomCategory = input.CustomCategory
		resolved, err := domain.ResolveCategory(fields.Category, input.CustomCategory)
		if err != nil {
			draft.LastError = err.Error()
		}
		fields.Category = resolved
	}
	draft.Fields = fields

	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("draft.Update: %w", err)
	}
	return draft, nil
}

// Commit validates the reviewed fields and persists them as an invoice.
func (s *draftService) Commit(ctx context.Context, owner string, id uuid.UUID) (*domain.Invoice, error) {
	draft, err := s.Get(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if !draft.CanTransition(domain.DraftStateCommitted) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidDraftTransition, draft.State, domain.DraftStateCommitted)
	}

	now := s.now()
	fields, err := normalizeFields(draft.Fields, draft.CustomCategory, now)
	if err != nil {
		return nil, err
	}

	var inv *domain.Invoice
	if draft.InvoiceID != nil {
		if inv, err = s.invoices.GetByID(ctx, *draft.InvoiceID); err != nil {
			return nil, err
		}
		inv.Apply(fields)
		inv.UpdatedAt = now
		if err := s.invoices.Update(ctx, inv); err != nil {
			return nil, fmt.Errorf("draft.Commit: %w", err)
		}
	} else {
		inv = &domain.Invoice{
			ID:        uuid.New(),
			ImageURL:  draft.ImageURL,
			ImageKey:  draft.ImageKey,
			CreatedBy: owner,
			CreatedAt: now,
			UpdatedAt: now,
		}
		inv.Apply(fields)
		if err := s.invoices.Create(ctx, inv); err != nil {
			return nil, fmt.Errorf("draft.Commit: %w", err)
		}
	}

	if err := draft.TransitionTo(domain.DraftStateCommitted, now); err != nil {
		return nil, err
	}
	if err := s.drafts.Delete(ctx, draft.ID); err != nil && !errors.Is(err, domain.ErrDraftNotFound) {
		s.log.Warn("failed to remove committed draft", zap.String("draft_id", draft.ID.String()), zap.Error(err))
	}

	s.log.Info("draft committed",
		zap.String("draft_id", draft.ID.String()),
		zap.String("invoice_id", inv.ID.String()))
	return inv, nil
}

// Discard drops a draft. An image uploaded for a new invoice is removed too.
func (s *draftService) Discard(ctx context.Context, owner string, id uuid.UUID) error {
	draft, err := s.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, id); err != nil {
		return err
	}
	if draft.ImageKey != "" && draft.InvoiceID == nil {
		s.deleteImage(ctx, id, draft.ImageKey)
	}
	return nil
}

// deleteImage removes a draft image; failures only leave an orphaned object.
func (s *draftService) deleteImage(ctx context.Context, draftID uuid.UUID, key string) {
	if err := s.storage.Delete(ctx, s.s3Cfg.Bucket, key); err != nil {
		s.log.Warn("failed to delete draft image",
			zap.String("draft_id", draftID.String()), zap.String("key", key), zap.Error(err))
	}
}

// readUpload reads the upload up to the size limit and checks its content type.
func (s *draftService) readUpload(input ScanInput) ([]byte, domain.FileType, error) {
	maxBytes := s.s3Cfg.MaxFileSizeMB * 1024 * 1024
	if maxBytes > 0 && input.Size > maxBytes {
		return nil, "", domain.ErrFileTooLarge
	}

	r := input.File
	if maxBytes > 0 {
		r = io.LimitReader(input.File, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("reading upload: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, "", domain.ErrFileTooLarge
	}

	fileType, err := detectFileType(data)
	if err != nil {
		return nil, "", err
	}
	return data, fileType, nil
}

func detectFileType(data []byte) (domain.FileType, error) {
	detected := mimetype.Detect(data)
	fileType, ok := domain.AllowedContentTypes[detected.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, detected.String())
	}
	return fileType, nil
}

func (s *draftService) storeImage(ctx context.Context, draft *domain.Draft, data []byte, fileType domain.FileType) error {
	key := fmt.Sprintf("invoices/%s/%s.%s", draft.ID, uuid.New(), fileType)
	out, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3Cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: domain.AllowedFileTypes[fileType],
		Size:        int64(len(data)),
	})
	if err != nil {
		s.log.Warn("invoice image upload failed", zap.String("draft_id", draft.ID.String()), zap.Error(err))
		return domain.ErrUploadFailed
	}

	draft.ImageKey = key
	draft.ImageURL = out.Location
	if url, err := s.storage.GetPresignedURL(ctx, s.s3Cfg.Bucket, key, s.s3Cfg.PresignExpiry); err == nil {
		draft.ImageURL = url
	}
	return nil
}

// extract runs the field parser chain over text and moves the draft to reviewing.
func (s *draftService) extract(ctx context.Context, draft *domain.Draft, text string) error {
	out, err := s.parser.Parse(ctx, port.ParseInput{Text: text})
	if err != nil {
		return fmt.Errorf("parsing fields: %w", err)
	}
	metrics.ObserveExtraction(out.Provider, out.Fields.PresentFields())

	fields := extractor.ApplyDefaults(out.Fields, s.now())
	return draft.CompleteExtraction(out.Fields, fields, out.Provider, s.now())
}

func (s *draftService) failExtraction(ctx context.Context, draft *domain.Draft, cause error) (*domain.Draft, error) {
	if err := draft.FailExtraction(cause, s.now()); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, draft, s.ttl); err != nil {
		return nil, fmt.Errorf("draft.Scan: %w", err)
	}
	s.log.Warn("extraction failed", zap.String("draft_id", draft.ID.String()), zap.Error(cause))
	return draft, cause
}

func isRecognitionError(err error) bool {
	return errors.Is(err, domain.ErrRecognitionFailed) ||
		errors.Is(err, domain.ErrRecognitionTimeout) ||
		errors.Is(err, domain.ErrNoTextRecognized)
}
