package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"invoicedesk/internal/service"
)

// TextInput is the request body of POST /api/v1/drafts/text.
type TextInput struct {
	Text string `json:"text" binding:"required"`
}

// DraftHandler handles the invoice entry flow.
type DraftHandler struct {
	draftService service.DraftService
}

// NewDraftHandler creates a new DraftHandler.
func NewDraftHandler(draftService service.DraftService) *DraftHandler {
	return &DraftHandler{draftService: draftService}
}

// Create handles POST /api/v1/drafts (manual entry).
// @Summary Start a manual draft
// @Description Create an empty draft for manual invoice entry
// @Tags drafts
// @Produce json
// @Success 201 {object} APIResponse{data=domain.Draft} "Draft created"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /drafts [post]
func (h *DraftHandler) Create(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}

	draft, err := h.draftService.NewManual(c.Request.Context(), phone)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, draft)
}

// Scan handles POST /api/v1/drafts/scan (multipart "file").
// @Summary Scan an invoice
// @Description Upload an invoice image or PDF, recognize its text and pre-fill a new draft
// @Tags drafts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Invoice image or PDF (PDF, JPG, PNG, WEBP)"
// @Success 201 {object} APIResponse{data=domain.Draft} "Draft created from scan"
// @Failure 400 {object} APIResponse "Missing file or unsupported type"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 413 {object} APIResponse "File too large"
// @Failure 422 {object} APIResponse{data=domain.Draft} "Recognition failed or timed out; draft returned for retry"
// @Security BearerAuth
// @Router /drafts/scan [post]
func (h *DraftHandler) Scan(c *gin.Context) {
	h.scan(c, nil)
}

// Rescan handles POST /api/v1/drafts/:id/scan, retrying a failed extraction.
// Without a "file" part the stored image is recognized again.
// @Summary Retry a scan
// @Description Recognize a new upload, or the stored image when no file is sent, for an existing draft
// @Tags drafts
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Param file formData file false "Replacement invoice image or PDF"
// @Success 201 {object} APIResponse{data=domain.Draft} "Draft re-extracted"
// @Failure 400 {object} APIResponse "Invalid ID or unsupported type"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Draft not found"
// @Failure 409 {object} APIResponse "Draft cannot be scanned or has no stored image"
// @Failure 422 {object} APIResponse{data=domain.Draft} "Recognition failed or timed out; draft returned for retry"
// @Security BearerAuth
// @Router /drafts/{id}/scan [post]
func (h *DraftHandler) Rescan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.scan(c, &id)
}

func (h *DraftHandler) scan(c *gin.Context, draftID *uuid.UUID) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}

	input := service.ScanInput{Owner: phone, DraftID: draftID}

	fileHeader, err := c.FormFile("file")
	switch {
	case err == nil:
		file, openErr := fileHeader.Open()
		if openErr != nil {
			RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "could not read uploaded file")
			return
		}
		defer func() { _ = file.Close() }()
		input.File = file
		input.Filename = fileHeader.Filename
		input.Size = fileHeader.Size
	case draftID != nil && (errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart)):
		// Retry on the image already stored for the draft.
	default:
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "file is required")
		return
	}

	draft, err := h.draftService.Scan(c.Request.Context(), input)
	if err != nil {
		// A failed recognition still returns the draft so the client can retry.
		if draft != nil {
			RespondErrorWithData(c, err, draft)
			return
		}
		HandleError(c, err)
		return
	}

	RespondCreated(c, draft)
}

// FromText handles POST /api/v1/drafts/text
// @Summary Draft from text
// @Description Extract invoice fields from pasted text into a new draft
// @Tags drafts
// @Accept json
// @Produce json
// @Param request body TextInput true "Invoice text"
// @Success 201 {object} APIResponse{data=domain.Draft} "Draft created from text"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /drafts/text [post]
func (h *DraftHandler) FromText(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}

	var input TextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	draft, err := h.draftService.FromText(c.Request.Context(), phone, input.Text)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, draft)
}

// EditInvoice handles POST /api/v1/invoices/:id/draft
// @Summary Edit a committed invoice
// @Description Open a draft pre-filled from a committed invoice
// @Tags drafts
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 201 {object} APIResponse{data=domain.Draft} "Edit draft created"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id}/draft [post]
func (h *DraftHandler) EditInvoice(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.EditInvoice(c.Request.Context(), phone, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, draft)
}

// GetByID handles GET /api/v1/drafts/:id
// @Summary Get draft by ID
// @Description Get a draft with its fields, confidence and validation state
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Draft} "Draft details"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Draft not found"
// @Security BearerAuth
// @Router /drafts/{id} [get]
func (h *DraftHandler) GetByID(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	draft, err := h.draftService.Get(c.Request.Context(), phone, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// Update handles PUT /api/v1/drafts/:id
// @Summary Update a draft
// @Description Replace the draft's fields and re-run validation
// @Tags drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Param request body service.DraftUpdateInput true "Draft fields"
// @Success 200 {object} APIResponse{data=domain.Draft} "Draft updated"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Draft not found"
// @Failure 409 {object} APIResponse "Draft is not editable"
// @Security BearerAuth
// @Router /drafts/{id} [put]
func (h *DraftHandler) Update(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input service.DraftUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	draft, err := h.draftService.Update(c.Request.Context(), phone, id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, draft)
}

// Commit handles POST /api/v1/drafts/:id/commit
// @Summary Commit a draft
// @Description Validate the draft and save it as an invoice
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Success 201 {object} APIResponse{data=domain.Invoice} "Invoice saved"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Draft not found"
// @Failure 409 {object} APIResponse "Draft cannot be committed"
// @Failure 400 {object} APIResponse "Draft fails validation"
// @Security BearerAuth
// @Router /drafts/{id}/commit [post]
func (h *DraftHandler) Commit(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	inv, err := h.draftService.Commit(c.Request.Context(), phone, id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// Discard handles DELETE /api/v1/drafts/:id
// @Summary Discard a draft
// @Description Delete a draft and its stored image
// @Tags drafts
// @Produce json
// @Param id path string true "Draft ID (UUID)"
// @Success 200 {object} APIResponse "Draft discarded"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Draft not found"
// @Security BearerAuth
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Discard(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.draftService.Discard(c.Request.Context(), phone, id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "draft discarded"})
}
