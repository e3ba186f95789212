package main

// Scheduled export: an EventBridge rule invokes this function and each
// invocation stores one workbook, exactly like POST /export.
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-export

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"holiday-backend/internal/artifacts"
	"holiday-backend/internal/bootstrap"
	"holiday-backend/internal/shared/config"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

type exporter interface {
	Export(ctx context.Context) (artifacts.Descriptor, error)
}

// exportResult is the invocation's return payload.
type exportResult struct {
	ExportedFile string `json:"exported_file"`
	CreatedAt    string `json:"created_at"`
	SizeBytes    int64  `json:"size_bytes"`
}

func initApp() {
	built, err := bootstrap.Build(config.Load())
	if err != nil {
		initErr = err
		return
	}
	app = built
}

func handler(ctx context.Context, event events.CloudWatchEvent) (exportResult, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		return exportResult{}, initErr
	}
	return runExport(ctx, app.Exports, event)
}

func runExport(ctx context.Context, ex exporter, event events.CloudWatchEvent) (exportResult, error) {
	desc, err := ex.Export(ctx)
	if err != nil {
		log.Printf("scheduled export failed (event %s): %v", event.ID, err)
		return exportResult{}, err
	}
	log.Printf("scheduled export %s stored %s", event.ID, desc.Name)
	return exportResult{
		ExportedFile: desc.Name,
		CreatedAt:    artifacts.FormatTimestamp(desc.CreatedAt),
		SizeBytes:    desc.SizeBytes,
	}, nil
}

func main() {
	lambda.Start(handler)
}
