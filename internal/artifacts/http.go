package artifacts

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/shared/server/middleware"
	"holiday-backend/internal/shared/server/respond"
	"holiday-backend/internal/shared/storage/object"
	"holiday-backend/internal/shared/util"
)

// TimestampLayout is how artifact times appear in responses (UTC). The fixed
// microsecond field keeps same-second artifacts ordered as strings too.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Disposition selects how a browser should treat a download.
type Disposition string

const (
	Attachment Disposition = "attachment"
	Inline     Disposition = "inline"
)

// Downloader serves stored artifacts over HTTP.
type Downloader struct {
	Svc *Service
	// PresignTTL > 0 redirects to a backend URL when the store can presign.
	PresignTTL time.Duration
}

// Serve writes the artifact named by the :filename path parameter. The body
// carries a BLAKE3 ETag and honours If-None-Match.
func (d *Downloader) Serve(c *gin.Context, kind object.Kind, disposition Disposition) {
	name := c.Param("filename")
	c.Set(middleware.FilenameKey, name)
	c.Set(middleware.KindKey, string(kind))

	header := mime.FormatMediaType(string(disposition), map[string]string{"filename": name})

	if url, ok, err := d.Svc.PresignURL(c.Request.Context(), kind, name, header, d.PresignTTL); err != nil {
		respondServeError(c, err)
		return
	} else if ok {
		c.Redirect(http.StatusFound, url)
		return
	}

	data, desc, err := d.Svc.Get(c.Request.Context(), kind, name)
	if err != nil {
		respondServeError(c, err)
		return
	}

	etag := `"` + util.ContentDigest(data) + `"`
	c.Header("ETag", etag)
	c.Header("Last-Modified", desc.CreatedAt.UTC().Format(http.TimeFormat))
	if etagMatches(c.GetHeader("If-None-Match"), etag) {
		c.Status(http.StatusNotModified)
		return
	}
	if header != "" {
		c.Header("Content-Disposition", header)
	}
	c.Data(http.StatusOK, desc.ContentType, data)
}

// etagMatches applies the weak comparison If-None-Match calls for: any listed
// tag, with or without W/, or "*".
func etagMatches(header, etag string) bool {
	for _, tag := range strings.Split(header, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "*" || strings.TrimPrefix(tag, "W/") == etag {
			return true
		}
	}
	return false
}

func respondServeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidName):
		respond.Error(c, http.StatusNotFound, "not_found", "File not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "storage_error", "Failed to read file", nil)
	}
}
