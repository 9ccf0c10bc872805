package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"tenderdesk/internal/app/dto"
	"tenderdesk/internal/infra/storage/s3"
)

// UploadHandler issues presigned URLs so browsers talk to object storage
// directly.
type UploadHandler struct {
	Presigner s3.Presigner
	Logger    *slog.Logger
}

func (h UploadHandler) PresignPut(c *gin.Context) {
	filename := strings.TrimSpace(c.Query("filename"))
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}
	upload, err := h.Presigner.PresignPut(c.Request.Context(), strings.TrimSpace(c.Query("tenderId")), filename)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("presign put failed", "error", err)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, dto.PresignResponse{
		UploadURL: upload.UploadURL,
		ObjectURL: upload.ObjectURL,
		Key:       upload.Key,
	})
}

func (h UploadHandler) PresignGet(c *gin.Context) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	downloadURL, err := h.Presigner.PresignGet(c.Request.Context(), key)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("presign get failed", "error", err)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
		return
	}
	c.JSON(http.StatusOK, dto.PresignGetResponse{URL: downloadURL})
}

var _ UploadHTTP = (*UploadHandler)(nil)
