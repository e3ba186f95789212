package exports

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"holiday-backend/internal/artifacts"
	"holiday-backend/internal/holidays"
	"holiday-backend/internal/leave"
	"holiday-backend/internal/shared/metrics"
	"holiday-backend/internal/shared/storage/object"
	"holiday-backend/internal/shared/telemetry"
)

const defaultNameAttempts = 5

// Generator builds the workload workbook from the stored uploads and the
// holiday registry and stores it as an export.
type Generator struct {
	Artifacts *artifacts.Service
	Registry  *holidays.Registry

	Now          func() time.Time
	NewID        func() string
	NameAttempts int
}

// Export produces one workbook and returns its descriptor.
func (g *Generator) Export(ctx context.Context) (artifacts.Descriptor, error) {
	start := time.Now()
	desc, err := g.export(ctx)
	metrics.ObserveExportDuration(time.Since(start))
	if err != nil {
		metrics.IncExportFailed()
		telemetry.Error("exports.failed", map[string]any{"error": err})
		return artifacts.Descriptor{}, err
	}
	metrics.IncExportCompleted()
	telemetry.Info("exports.completed", map[string]any{
		"filename":   desc.Name,
		"size_bytes": desc.SizeBytes,
	})
	return desc, nil
}

func (g *Generator) export(ctx context.Context) (artifacts.Descriptor, error) {
	if g.Artifacts == nil || g.Registry == nil {
		return artifacts.Descriptor{}, &ExportError{Stage: "setup", Err: errors.New("missing dependencies")}
	}
	now := g.now()
	snap, err := g.Registry.Snapshot(ctx)
	if err != nil {
		return artifacts.Descriptor{}, &ExportError{Stage: "snapshot", Err: err}
	}

	entries, err := g.collect(ctx, now.Year())
	if err != nil {
		return artifacts.Descriptor{}, err
	}
	rows := leave.GroupByWeek(leave.Exclude(entries, snap.IsHoliday))

	data, err := WriteWorkbook(rows, snap.Holidays())
	if err != nil {
		return artifacts.Descriptor{}, &ExportError{Stage: "render", Err: err}
	}
	return g.store(ctx, now, data)
}

// collect reads every stored .xlsx upload in name order. Legacy .xls uploads,
// uploads deleted meanwhile and unreadable workbooks are skipped.
func (g *Generator) collect(ctx context.Context, year int) ([]leave.Entry, error) {
	uploads, err := g.Artifacts.List(ctx, object.KindUpload)
	if err != nil {
		return nil, &ExportError{Stage: "list_uploads", Err: err}
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].Name < uploads[j].Name })

	var entries []leave.Entry
	for _, u := range uploads {
		if !strings.EqualFold(path.Ext(u.Name), ".xlsx") {
			telemetry.Warn("exports.upload_skipped", map[string]any{
				"filename": u.Name,
				"error":    "unsupported workbook format",
			})
			continue
		}
		data, _, err := g.Artifacts.Get(ctx, object.KindUpload, u.Name)
		if errors.Is(err, artifacts.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, &ExportError{Stage: "read_upload", Err: err}
		}
		found, err := ReadLeave(data, year)
		if err != nil {
			telemetry.Warn("exports.upload_skipped", map[string]any{
				"filename": u.Name,
				"error":    err,
			})
			continue
		}
		entries = append(entries, found...)
	}
	return entries, nil
}

func (g *Generator) store(ctx context.Context, now time.Time, data []byte) (artifacts.Descriptor, error) {
	attempts := g.NameAttempts
	if attempts <= 0 {
		attempts = defaultNameAttempts
	}
	for i := 0; i < attempts; i++ {
		name := g.name(now)
		desc, err := g.Artifacts.Put(ctx, object.KindExport, name, data)
		if errors.Is(err, artifacts.ErrExists) {
			continue
		}
		if err != nil {
			return artifacts.Descriptor{}, &ExportError{Stage: "store", Err: err}
		}
		return desc, nil
	}
	return artifacts.Descriptor{}, &ExportError{Stage: "store", Err: ErrNameExhausted}
}

func (g *Generator) name(now time.Time) string {
	id := g.newID()
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("holidays_%s_%s.xlsx", now.UTC().Format("20060102_150405"), id)
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g *Generator) newID() string {
	if g.NewID != nil {
		return g.NewID()
	}
	return uuid.NewString()
}
