package handler

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"voidspace/backend/internal/auth"
	"voidspace/backend/internal/storage"
	"voidspace/backend/internal/upload"

	"github.com/gin-gonic/gin"
)

// UploadHandler serves upload admission, the usage endpoint, and media
// readback.
type UploadHandler struct {
	gate  *upload.Gate
	blobs storage.BlobStore
}

func NewUploadHandler(gate *upload.Gate, blobs storage.BlobStore) *UploadHandler {
	return &UploadHandler{gate: gate, blobs: blobs}
}

// UsageResponse reports global storage usage against the ceiling.
type UsageResponse struct {
	Used           int64  `json:"used"`
	Limit          int64  `json:"limit"`
	UsedFormatted  string `json:"usedFormatted"`
	LimitFormatted string `json:"limitFormatted"`
	PercentUsed    int    `json:"percentUsed"`
}

// Upload godoc
// @Summary      Upload a file
// @Description  Admits a multipart file against the 10MB per-file and 5GB global ceilings.
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file formData file true "File to upload"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      507  {object}  ErrorResponse
// @Router       /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	viewerID, _ := auth.CurrentUserID(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		fail(c, err)
		return
	}

	key, err := h.gate.Admit(c.Request.Context(), viewerID, fileHeader.Filename, data)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": "/api/media/" + key})
}

// GetUsage godoc
// @Summary      Storage usage
// @Tags         upload
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  UsageResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /upload [get]
func (h *UploadHandler) GetUsage(c *gin.Context) {
	usage, err := h.gate.Usage(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, UsageResponse{
		Used:           usage.Used,
		Limit:          usage.Limit,
		UsedFormatted:  upload.Formatted(usage.Used),
		LimitFormatted: "5GB",
		PercentUsed:    usage.PercentUsed,
	})
}

// ServeMedia godoc
// @Summary      Read an uploaded blob
// @Tags         upload
// @Produce      octet-stream
// @Param        key path string true "Storage key"
// @Success      200
// @Failure      404  {object}  ErrorResponse
// @Router       /media/{key} [get]
func (h *UploadHandler) ServeMedia(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	data, err := h.blobs.Get(key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Data(http.StatusOK, contentType, data)
}
