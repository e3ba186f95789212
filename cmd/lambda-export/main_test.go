package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"holiday-backend/internal/artifacts"
)

type stubExporter struct {
	desc artifacts.Descriptor
	err  error
}

func (s stubExporter) Export(context.Context) (artifacts.Descriptor, error) {
	return s.desc, s.err
}

func TestRunExportReturnsDescriptor(t *testing.T) {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	res, err := runExport(context.Background(), stubExporter{desc: artifacts.Descriptor{
		Name:      "holidays_20240301_093000_abcd1234.xlsx",
		SizeBytes: 2048,
		CreatedAt: created,
	}}, events.CloudWatchEvent{ID: "evt-1"})
	if err != nil {
		t.Fatalf("runExport: %v", err)
	}
	if res.ExportedFile != "holidays_20240301_093000_abcd1234.xlsx" || res.CreatedAt != "2024-03-01 09:30:00" || res.SizeBytes != 2048 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestRunExportPropagatesFailure(t *testing.T) {
	boom := errors.New("store unavailable")
	if _, err := runExport(context.Background(), stubExporter{err: boom}, events.CloudWatchEvent{ID: "evt-2"}); !errors.Is(err, boom) {
		t.Fatalf("expected failure to propagate, got %v", err)
	}
}
