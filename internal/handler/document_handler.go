package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snapdoc/internal/service"
)

// DocumentHandler handles document lifecycle and extraction endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
	exportService   service.ExportService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService, exportService service.ExportService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, exportService: exportService}
}

// Create handles POST /api/v1/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.CreateDocumentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document_type is required")
		return
	}

	doc, err := h.documentService.Create(c.Request.Context(), userID, req)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// GetByID handles GET /api/v1/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// List handles GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	offset, limit := parsePagination(c)

	docs, total, err := h.documentService.List(c.Request.Context(), userID, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), userID, docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"deleted": docID})
}

// Process handles POST /api/v1/documents/:id/process
func (h *DocumentHandler) Process(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	var req struct {
		EnableDualVerification bool `json:"enable_dual_verification"`
		GuestCount             int  `json:"guest_count"`
	}
	// Both fields are optional, an empty body is fine.
	_ = c.ShouldBindJSON(&req)

	result, err := h.documentService.Process(c.Request.Context(), &service.ProcessInput{
		UserID:                 userID,
		DocumentID:             docID,
		EnableDualVerification: req.EnableDualVerification,
		GuestCount:             req.GuestCount,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, result)
}

// Status handles GET /api/v1/documents/:id/status
func (h *DocumentHandler) Status(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	status, err := h.documentService.Status(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, status)
}

// Extractions handles GET /api/v1/documents/:id/extractions
func (h *DocumentHandler) Extractions(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	extractions, err := h.documentService.Extractions(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, extractions)
}

// Guests handles GET /api/v1/documents/:id/guests
func (h *DocumentHandler) Guests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	guests, err := h.documentService.Guests(c.Request.Context(), userID, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, guests)
}

// Export handles GET /api/v1/documents/:id/export?format=csv|xlsx
func (h *DocumentHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	format := c.DefaultQuery("format", service.ExportFormatCSV)

	result, err := h.exportService.ExportDocument(c.Request.Context(), userID, docID, format)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// UpdateExtraction handles PUT /api/v1/extractions/:id
func (h *DocumentHandler) UpdateExtraction(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	extractionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid extraction ID")
		return
	}

	var req service.UpdateExtractionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "extraction_data is required")
		return
	}

	extraction, err := h.documentService.UpdateExtraction(c.Request.Context(), userID, extractionID, req)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, extraction)
}
