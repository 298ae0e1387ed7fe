package handler

import (
	"github.com/labstack/echo/v4"

	"quickroom/internal/infrastructure/storage"
	"quickroom/pkg/errors"
	"quickroom/pkg/response"
)

const maxAttachmentSize = 10 << 20 // 10 MB

var allowedAttachmentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

type FileHandler struct {
	storageClient *storage.CloudStorageClient
}

func NewFileHandler(storageClient *storage.CloudStorageClient) *FileHandler {
	return &FileHandler{
		storageClient: storageClient,
	}
}

// UploadAttachment stores a chat attachment and returns its URL. The caller
// embeds the URL in a follow-up message; the upload itself writes no rows.
func (h *FileHandler) UploadAttachment(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("No file provided", err))
	}

	if fileHeader.Size > maxAttachmentSize {
		return response.Error(c, errors.BadRequest("File exceeds the 10MB limit", nil))
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if !allowedAttachmentTypes[contentType] {
		return response.Error(c, errors.BadRequest("Unsupported file type", nil))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer file.Close()

	url, err := h.storageClient.UploadAttachment(c.Request().Context(), file, contentType)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to store file", err))
	}

	return response.Created(c, map[string]string{"url": url})
}
