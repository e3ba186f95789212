package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestWriteEmitsJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Warn("export.upload_skipped", map[string]any{
		"filename": "bad.xlsx",
		"err":      errors.New("not a zip"),
		"msg":      "ignored",
	})

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["level"] != "warn" {
		t.Fatalf("unexpected level %v", payload["level"])
	}
	if payload["msg"] != "export.upload_skipped" {
		t.Fatalf("field must not override msg, got %v", payload["msg"])
	}
	if payload["err"] != "not a zip" {
		t.Fatalf("expected error string, got %v", payload["err"])
	}
	if payload["filename"] != "bad.xlsx" {
		t.Fatalf("unexpected filename %v", payload["filename"])
	}
}
