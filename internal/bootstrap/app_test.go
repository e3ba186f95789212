package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"holiday-backend/internal/shared/config"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:             "dev",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		HolidaysFile:    "holidays.json",
	}
}

func workbookFixture(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	cells := map[string]string{
		"A1": "Leave plan 2024",
		"A4": "Initial", "B4": "Holiday",
		"A5": "AB", "B5": "01/01/2024\n02/01/2024",
	}
	for ref, v := range cells {
		if err := f.SetCellValue("Sheet1", ref, v); err != nil {
			t.Fatalf("SetCellValue: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(req *http.Request, wantStatus int, out any) {
	c.t.Helper()
	resp := httptest.NewRecorder()
	c.h.ServeHTTP(resp, req)
	if resp.Code != wantStatus {
		c.t.Fatalf("%s %s: expected %d, got %d body=%s", req.Method, req.URL.Path, wantStatus, resp.Code, resp.Body.String())
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
			c.t.Fatalf("decode %s: %v", resp.Body.String(), err)
		}
	}
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, name string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

type holidayList struct {
	Holidays []struct {
		Name string `json:"name"`
		Date string `json:"date"`
	} `json:"holidays"`
}

func (l holidayList) count(name, date string) int {
	n := 0
	for _, h := range l.Holidays {
		if h.Name == name && h.Date == date {
			n++
		}
	}
	return n
}

func TestUploadHolidayExportLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	c := client{t: t, h: app.Router}

	var uploaded struct {
		Files []struct {
			Filename   string `json:"filename"`
			UploadedAt string `json:"uploaded_at"`
		} `json:"files"`
	}
	c.do(uploadRequest(t, "holidays2024.xlsx", workbookFixture(t)), http.StatusOK, &uploaded)
	if len(uploaded.Files) != 1 || uploaded.Files[0].Filename != "holidays2024.xlsx" || uploaded.Files[0].UploadedAt == "" {
		t.Fatalf("unexpected upload response %+v", uploaded)
	}

	c.do(jsonRequest(http.MethodPost, "/add_public_holiday", `{"name":"New Year","date":"2024-01-01"}`), http.StatusOK, nil)
	var listed holidayList
	c.do(httptest.NewRequest(http.MethodGet, "/public_holidays", nil), http.StatusOK, &listed)
	if listed.count("New Year", "2024-01-01") != 1 {
		t.Fatalf("expected New Year exactly once, got %+v", listed.Holidays)
	}
	c.do(jsonRequest(http.MethodPost, "/add_public_holiday", `{"name":"New Year","date":"2024-01-01"}`), http.StatusConflict, nil)

	var exported struct {
		ExportedFile string `json:"exported_file"`
		CreatedAt    string `json:"created_at"`
	}
	c.do(httptest.NewRequest(http.MethodPost, "/export", nil), http.StatusOK, &exported)
	if !strings.HasPrefix(exported.ExportedFile, "holidays_") || !strings.HasSuffix(exported.ExportedFile, ".xlsx") || exported.CreatedAt == "" {
		t.Fatalf("unexpected export response %+v", exported)
	}
	var second struct {
		ExportedFile string `json:"exported_file"`
	}
	c.do(httptest.NewRequest(http.MethodGet, "/export", nil), http.StatusOK, &second)
	if second.ExportedFile == exported.ExportedFile {
		t.Fatalf("expected distinct export names")
	}
	c.do(httptest.NewRequest(http.MethodGet, "/download/"+exported.ExportedFile, nil), http.StatusOK, nil)
	c.do(httptest.NewRequest(http.MethodGet, "/download/"+second.ExportedFile, nil), http.StatusOK, nil)

	c.do(httptest.NewRequest(http.MethodDelete, "/delete_file/holidays2024.xlsx", nil), http.StatusOK, nil)
	c.do(httptest.NewRequest(http.MethodGet, "/downloadupload/holidays2024.xlsx", nil), http.StatusNotFound, nil)

	c.do(jsonRequest(http.MethodDelete, "/delete_public_holiday", `{"name":"New Year","date":"2024-01-01"}`), http.StatusOK, nil)
	listed = holidayList{}
	c.do(httptest.NewRequest(http.MethodGet, "/public_holidays", nil), http.StatusOK, &listed)
	if listed.count("New Year", "2024-01-01") != 0 {
		t.Fatalf("expected New Year removed, got %+v", listed.Holidays)
	}
	c.do(jsonRequest(http.MethodDelete, "/delete_public_holiday", `{"name":"New Year","date":"2024-01-01"}`), http.StatusNotFound, nil)
}

func TestBuildPersistsHolidaysUnderStoreDir(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)
	app, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.LocalStoreDir, "holidays.json")); err != nil {
		t.Fatalf("expected seeded holidays file: %v", err)
	}
	if list, err := app.Registry.List(context.Background()); err != nil || len(list) == 0 {
		t.Fatalf("expected default seed, got %d err=%v", len(list), err)
	}

	c := client{t: t, h: app.Router}
	var report struct {
		OK     bool              `json:"ok"`
		Checks map[string]string `json:"checks"`
	}
	c.do(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil), http.StatusOK, &report)
	if !report.OK || report.Checks["storage"] != "ok" {
		t.Fatalf("unexpected health %+v", report)
	}
}
