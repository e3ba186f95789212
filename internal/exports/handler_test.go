package exports

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/artifacts"
)

type failingExporter struct{}

func (failingExporter) Export(context.Context) (artifacts.Descriptor, error) {
	return artifacts.Descriptor{}, &ExportError{Stage: "render", Err: errors.New("boom")}
}

func newExportRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	g, svc := newGenerator(t, "11111111", "22222222")
	h := NewHandler(g, svc, &artifacts.Downloader{Svc: svc})
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(method, target, nil))
	return resp
}

func TestExportRoutes(t *testing.T) {
	r := newExportRouter(t)

	resp := do(r, http.MethodPost, "/export")
	if resp.Code != http.StatusOK {
		t.Fatalf("export: expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}
	var created struct {
		ExportedFile string `json:"exported_file"`
		CreatedAt    string `json:"created_at"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ExportedFile != "holidays_20240301_100000_11111111.xlsx" || created.CreatedAt == "" {
		t.Fatalf("unexpected export response %+v", created)
	}

	if resp := do(r, http.MethodGet, "/export"); resp.Code != http.StatusOK {
		t.Fatalf("GET export: expected 200, got %d", resp.Code)
	}

	resp = do(r, http.MethodGet, "/exports")
	var listed struct {
		Files []exportedFile `json:"files"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed.Files) != 2 || listed.Files[1].Filename != created.ExportedFile || listed.Files[1].SizeBytes == 0 {
		t.Fatalf("unexpected listing %+v", listed.Files)
	}

	resp = do(r, http.MethodGet, "/download/"+created.ExportedFile)
	if resp.Code != http.StatusOK || !strings.HasPrefix(resp.Header().Get("Content-Disposition"), "attachment") {
		t.Fatalf("download: status=%d disposition=%q", resp.Code, resp.Header().Get("Content-Disposition"))
	}
	resp = do(r, http.MethodGet, "/exported/"+created.ExportedFile)
	if resp.Code != http.StatusOK || !strings.HasPrefix(resp.Header().Get("Content-Disposition"), "inline") {
		t.Fatalf("inline: status=%d disposition=%q", resp.Code, resp.Header().Get("Content-Disposition"))
	}

	if resp := do(r, http.MethodDelete, "/delete_export/"+created.ExportedFile); resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.Code)
	}
	if resp := do(r, http.MethodDelete, "/delete_export/"+created.ExportedFile); resp.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.Code)
	}
	if resp := do(r, http.MethodGet, "/download/"+created.ExportedFile); resp.Code != http.StatusNotFound {
		t.Fatalf("download after delete: expected 404, got %d", resp.Code)
	}
}

func TestExportFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(failingExporter{}, nil, nil)
	r := gin.New()
	h.RegisterRoutes(r)

	resp := do(r, http.MethodPost, "/export")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "export_error" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestBackToBackExportsReportOrderedCreatedAt(t *testing.T) {
	r := newExportRouter(t)

	var stamps []string
	for i := 0; i < 2; i++ {
		resp := do(r, http.MethodPost, "/export")
		if resp.Code != http.StatusOK {
			t.Fatalf("export %d: expected 200, got %d", i, resp.Code)
		}
		var created struct {
			CreatedAt string `json:"created_at"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
			t.Fatalf("decode: %v", err)
		}
		stamps = append(stamps, created.CreatedAt)
	}
	if !(stamps[1] > stamps[0]) {
		t.Fatalf("expected created_at to follow creation order, got %q then %q", stamps[0], stamps[1])
	}
}
