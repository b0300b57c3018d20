package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"snapdoc/internal/service"
)

// FileHandler handles the presigned direct-upload flow.
type FileHandler struct {
	fileService service.FileService
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService service.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Presign handles POST /api/v1/files/presign
func (h *FileHandler) Presign(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req service.PresignUploadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "document_id, side, content_type, and size_bytes are required")
		return
	}

	out, err := h.fileService.PresignUpload(c.Request.Context(), userID, req)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, out)
}

// Complete handles POST /api/v1/files/:id/complete
func (h *FileHandler) Complete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid file ID")
		return
	}

	file, err := h.fileService.CompleteUpload(c.Request.Context(), userID, fileID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, file)
}
