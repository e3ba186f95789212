package exports

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/artifacts"
	"holiday-backend/internal/shared/metrics"
	"holiday-backend/internal/shared/server/middleware"
	"holiday-backend/internal/shared/server/respond"
	"holiday-backend/internal/shared/storage/object"
)

// Exporter produces one export.
type Exporter interface {
	Export(ctx context.Context) (artifacts.Descriptor, error)
}

// Handler wires export routes.
type Handler struct {
	Exporter  Exporter
	Artifacts *artifacts.Service
	Downloads *artifacts.Downloader
}

// NewHandler constructs a Handler.
func NewHandler(exporter Exporter, svc *artifacts.Service, downloads *artifacts.Downloader) *Handler {
	return &Handler{Exporter: exporter, Artifacts: svc, Downloads: downloads}
}

// RegisterRoutes attaches export routes.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.GET("/export", h.export)
	rg.POST("/export", h.export)
	rg.GET("/exports", h.list)
	rg.GET("/download/:filename", h.download)
	rg.GET("/exported/:filename", h.view)
	rg.DELETE("/delete_export/:filename", h.delete)
}

type exportedFile struct {
	Filename  string `json:"filename"`
	CreatedAt string `json:"created_at"`
	SizeBytes int64  `json:"size_bytes"`
}

func (h *Handler) export(c *gin.Context) {
	c.Set(middleware.KindKey, string(object.KindExport))

	desc, err := h.Exporter.Export(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "export_error", "Failed to generate export", nil)
		return
	}
	c.Set(middleware.FilenameKey, desc.Name)
	respond.OK(c, gin.H{
		"exported_file": desc.Name,
		"created_at":    artifacts.FormatTimestamp(desc.CreatedAt),
	})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Artifacts.List(c.Request.Context(), object.KindExport)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to list exports", nil)
		return
	}
	out := make([]exportedFile, 0, len(items))
	for _, d := range items {
		out = append(out, exportedFile{
			Filename:  d.Name,
			CreatedAt: artifacts.FormatTimestamp(d.CreatedAt),
			SizeBytes: d.SizeBytes,
		})
	}
	respond.OK(c, gin.H{"files": out})
}

func (h *Handler) download(c *gin.Context) {
	h.Downloads.Serve(c, object.KindExport, artifacts.Attachment)
}

func (h *Handler) view(c *gin.Context) {
	h.Downloads.Serve(c, object.KindExport, artifacts.Inline)
}

func (h *Handler) delete(c *gin.Context) {
	name := c.Param("filename")
	c.Set(middleware.FilenameKey, name)
	c.Set(middleware.KindKey, string(object.KindExport))

	if err := h.Artifacts.Delete(c.Request.Context(), object.KindExport, name); err != nil {
		switch {
		case errors.Is(err, artifacts.ErrNotFound), errors.Is(err, artifacts.ErrInvalidName):
			respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to delete file", nil)
		}
		return
	}
	metrics.IncArtifactDeleted(string(object.KindExport))
	respond.Message(c, "File deleted successfully")
}
