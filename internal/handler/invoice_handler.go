package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/service"
)

// InvoiceHandler handles committed invoice and dashboard endpoints.
type InvoiceHandler struct {
	invoiceService service.InvoiceService
	exportService  service.ExportService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoiceService service.InvoiceService, exportService service.ExportService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, exportService: exportService}
}

// Create handles POST /api/v1/invoices
// @Summary Create an invoice
// @Description Validate and save an invoice directly
// @Tags invoices
// @Accept json
// @Produce json
// @Param request body service.InvoiceInput true "Invoice fields"
// @Success 201 {object} APIResponse{data=domain.Invoice} "Invoice created"
// @Failure 400 {object} APIResponse "Invalid request or invoice fails validation"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	phone, ok := extractPhone(c)
	if !ok {
		return
	}

	var input service.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Create(c.Request.Context(), phone, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, inv)
}

// List handles GET /api/v1/invoices?from=&to=&offset=&limit=
// @Summary List invoices
// @Description List committed invoices, optionally within a date range
// @Tags invoices
// @Produce json
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} APIResponse{data=[]domain.Invoice,meta=PagMeta} "List of invoices"
// @Failure 400 {object} APIResponse "Invalid date range"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	invoices, total, err := h.invoiceService.List(c.Request.Context(), service.ListInvoicesInput{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}

	RespondPaginated(c, invoices, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/invoices/:id
// @Summary Get invoice by ID
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse{data=domain.Invoice} "Invoice details"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	inv, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Update handles PUT /api/v1/invoices/:id
// @Summary Update an invoice
// @Description Replace a committed invoice's fields
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Param request body service.InvoiceInput true "Invoice fields"
// @Success 200 {object} APIResponse{data=domain.Invoice} "Invoice updated"
// @Failure 400 {object} APIResponse "Invalid request"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input service.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	inv, err := h.invoiceService.Update(c.Request.Context(), id, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
// @Summary Delete an invoice
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID (UUID)"
// @Success 200 {object} APIResponse "Invoice deleted"
// @Failure 400 {object} APIResponse "Invalid ID"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Failure 404 {object} APIResponse "Invoice not found"
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "invoice deleted"})
}

// Export handles GET /api/v1/invoices/export?from=&to=&format=csv|xlsx
// @Summary Export invoices
// @Description Download invoices in a date range as CSV or XLSX
// @Tags invoices
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param format query string false "Export format" Enums(csv, xlsx) default(csv)
// @Success 200 {file} file "Export file"
// @Failure 400 {object} APIResponse "Invalid date range or format"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /invoices/export [get]
func (h *InvoiceHandler) Export(c *gin.Context) {
	result, err := h.exportService.Export(c.Request.Context(), service.ExportInput{
		From:   c.Query("from"),
		To:     c.Query("to"),
		Format: domain.ExportFormat(c.DefaultQuery("format", string(domain.ExportFormatCSV))),
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Header("X-Export-Rows", strconv.Itoa(result.Rows))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Categories handles GET /api/v1/categories
// @Summary List categories
// @Description List the expense category options
// @Tags invoices
// @Produce json
// @Success 200 {object} APIResponse "Category options"
// @Failure 401 {object} APIResponse "Unauthorized"
// @Security BearerAuth
// @Router /categories [get]
func (h *InvoiceHandler) Categories(c *gin.Context) {
	RespondOK(c, gin.H{
		"options":                    domain.CategoryOptions,
		"custom_option":              domain.CategoryOthers,
		"min_custom_category_length": domain.MinCustomCategoryLength,
	})
}
