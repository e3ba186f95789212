package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/artifacts"
	"holiday-backend/internal/ingest"
	"holiday-backend/internal/shared/metrics"
	"holiday-backend/internal/shared/server/middleware"
	"holiday-backend/internal/shared/server/respond"
	"holiday-backend/internal/shared/storage/object"
	"holiday-backend/internal/shared/telemetry"
)

const defaultMaxUploadBytes = 32 << 20

// Handler wires upload routes to the service.
type Handler struct {
	Svc            *Service
	Downloads      *artifacts.Downloader
	MaxUploadBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, downloads *artifacts.Downloader, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{Svc: svc, Downloads: downloads, MaxUploadBytes: maxUploadBytes}
}

// RegisterRoutes attaches upload routes.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/upload", h.upload)
	rg.GET("/uploads", h.list)
	rg.GET("/downloadupload/:filename", h.download)
	rg.GET("/download_upload/:filename", h.download)
	rg.DELETE("/delete_file/:filename", h.delete)
}

type uploadedFile struct {
	Filename   string `json:"filename"`
	UploadedAt string `json:"uploaded_at"`
	SizeBytes  int64  `json:"size_bytes"`
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)
	c.Set(middleware.KindKey, string(object.KindUpload))

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			metrics.IncUploadsRejected()
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("Upload exceeds %d bytes", h.MaxUploadBytes), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file part", nil)
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		metrics.IncUploadsRejected()
		respond.Error(c, http.StatusBadRequest, "validation_error", "No selected files", nil)
		return
	}

	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file "+fh.Filename, nil)
			return
		}
		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}

	stored, err := h.Svc.Ingest(c.Request.Context(), files)
	if err != nil {
		metrics.IncUploadsRejected()
		var (
			verr   *ingest.ValidationError
			exists *artifacts.ExistsError
			serr   *artifacts.StorageError
		)
		switch {
		case errors.As(err, &verr):
			c.Set(middleware.FilenameKey, verr.File)
			respond.Error(c, http.StatusBadRequest, "validation_error", verr.Message(), nil)
		case errors.As(err, &exists):
			c.Set(middleware.FilenameKey, exists.Name)
			respond.Error(c, http.StatusConflict, "duplicate", "File already exists: "+exists.Name, nil)
		case errors.Is(err, artifacts.ErrInvalidName):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid file name", nil)
		case errors.As(err, &serr):
			c.Set(middleware.FilenameKey, serr.Name)
			telemetry.Error("uploads.store_failed", map[string]any{"error": err, "request_id": middleware.RequestIDFromContext(c)})
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to store files", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to store files", nil)
		}
		return
	}

	metrics.AddUploadsAccepted(len(stored))
	out := make([]uploadedFile, 0, len(stored))
	for _, d := range stored {
		out = append(out, toResponse(d))
	}
	respond.OK(c, gin.H{"message": "Files uploaded successfully", "files": out})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to list uploads", nil)
		return
	}
	out := make([]uploadedFile, 0, len(items))
	for _, d := range items {
		out = append(out, toResponse(d))
	}
	respond.OK(c, gin.H{"files": out})
}

func (h *Handler) download(c *gin.Context) {
	h.Downloads.Serve(c, object.KindUpload, artifacts.Attachment)
}

func (h *Handler) delete(c *gin.Context) {
	name := c.Param("filename")
	c.Set(middleware.FilenameKey, name)
	c.Set(middleware.KindKey, string(object.KindUpload))

	if err := h.Svc.Delete(c.Request.Context(), name); err != nil {
		switch {
		case errors.Is(err, artifacts.ErrNotFound), errors.Is(err, artifacts.ErrInvalidName):
			respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to delete file", nil)
		}
		return
	}
	metrics.IncArtifactDeleted(string(object.KindUpload))
	respond.Message(c, "File deleted successfully")
}

func toResponse(d artifacts.Descriptor) uploadedFile {
	return uploadedFile{
		Filename:   d.Name,
		UploadedAt: artifacts.FormatTimestamp(d.CreatedAt),
		SizeBytes:  d.SizeBytes,
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
