package uploads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"holiday-backend/internal/artifacts"
	localstore "holiday-backend/internal/shared/storage/object/local"
)

var workbook = append([]byte("PK\x03\x04"), []byte("fake workbook body")...)

type part struct {
	name string
	data []byte
}

func newRouter(t *testing.T, maxBytes int64) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := artifacts.NewService(localstore.New(t.TempDir()))
	h := NewHandler(&Service{Artifacts: svc}, &artifacts.Downloader{Svc: svc}, maxBytes)
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := w.CreateFormFile("files", p.name)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(p.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decode(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", resp.Body.String(), err)
	}
}

func TestUploadListDownloadDelete(t *testing.T) {
	r := newRouter(t, 0)

	resp := serve(r, multipartRequest(t, part{"team.xlsx", workbook}, part{"other.XLSX", workbook}))
	if resp.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d body=%s", resp.Code, resp.Body.String())
	}
	var uploaded struct {
		Message string         `json:"message"`
		Files   []uploadedFile `json:"files"`
	}
	decode(t, resp, &uploaded)
	if uploaded.Message != "Files uploaded successfully" || len(uploaded.Files) != 2 {
		t.Fatalf("unexpected upload response %+v", uploaded)
	}
	if len(uploaded.Files[0].UploadedAt) != len("2006-01-02 15:04:05.000000") {
		t.Fatalf("unexpected timestamp %q", uploaded.Files[0].UploadedAt)
	}

	resp = serve(r, httptest.NewRequest(http.MethodGet, "/uploads", nil))
	var listed struct {
		Files []uploadedFile `json:"files"`
	}
	decode(t, resp, &listed)
	if len(listed.Files) != 2 || listed.Files[0].Filename != "other.XLSX" {
		t.Fatalf("expected newest first, got %+v", listed.Files)
	}

	resp = serve(r, httptest.NewRequest(http.MethodGet, "/downloadupload/team.xlsx", nil))
	if resp.Code != http.StatusOK || !bytes.Equal(resp.Body.Bytes(), workbook) {
		t.Fatalf("download: status=%d", resp.Code)
	}
	resp = serve(r, httptest.NewRequest(http.MethodGet, "/download_upload/team.xlsx", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("download alias: status=%d", resp.Code)
	}

	resp = serve(r, httptest.NewRequest(http.MethodDelete, "/delete_file/team.xlsx", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", resp.Code)
	}
	resp = serve(r, httptest.NewRequest(http.MethodDelete, "/delete_file/team.xlsx", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", resp.Code)
	}
	var errBody map[string]string
	decode(t, resp, &errBody)
	if errBody["error"] != "File not found" {
		t.Fatalf("unexpected error body %v", errBody)
	}
}

func TestUploadRejectsWholeBatchOnInvalidFile(t *testing.T) {
	r := newRouter(t, 0)

	resp := serve(r, multipartRequest(t, part{"good.xlsx", workbook}, part{"notes.txt", []byte("hello")}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var errBody map[string]string
	decode(t, resp, &errBody)
	if !strings.Contains(errBody["error"], "notes.txt") {
		t.Fatalf("expected message to name notes.txt, got %q", errBody["error"])
	}

	resp = serve(r, httptest.NewRequest(http.MethodGet, "/uploads", nil))
	var listed struct {
		Files []uploadedFile `json:"files"`
	}
	decode(t, resp, &listed)
	if len(listed.Files) != 0 {
		t.Fatalf("expected nothing stored, got %+v", listed.Files)
	}
}

func TestUploadCollisionIsConflict(t *testing.T) {
	r := newRouter(t, 0)

	if resp := serve(r, multipartRequest(t, part{"team.xlsx", workbook})); resp.Code != http.StatusOK {
		t.Fatalf("first upload: %d", resp.Code)
	}
	resp := serve(r, multipartRequest(t, part{"new.xlsx", workbook}, part{"team.xlsx", workbook}))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	var errBody map[string]string
	decode(t, resp, &errBody)
	if errBody["error"] != "File already exists: team.xlsx" || errBody["code"] != "duplicate" {
		t.Fatalf("unexpected error body %v", errBody)
	}

	resp = serve(r, httptest.NewRequest(http.MethodGet, "/downloadupload/new.xlsx", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected rejected batch to store nothing, got %d", resp.Code)
	}
}

func TestUploadWithoutFiles(t *testing.T) {
	r := newRouter(t, 0)
	resp := serve(r, multipartRequest(t))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	if resp := serve(r, req); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-multipart body, got %d", resp.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	r := newRouter(t, 1024)
	big := append(append([]byte(nil), workbook...), bytes.Repeat([]byte("x"), 4096)...)
	resp := serve(r, multipartRequest(t, part{"big.xlsx", big}))
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
}
