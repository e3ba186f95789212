package uploads

import (
	"context"

	"holiday-backend/internal/artifacts"
	"holiday-backend/internal/ingest"
	"holiday-backend/internal/shared/storage/object"
)

// Service accepts workbook uploads into the upload partition.
type Service struct {
	Artifacts *artifacts.Service
}

// Ingest validates the batch and stores it all-or-nothing. A name already in
// use rejects the whole batch with artifacts.ErrExists.
func (s *Service) Ingest(ctx context.Context, files []ingest.File) ([]artifacts.Descriptor, error) {
	valid, err := ingest.Validate(files)
	if err != nil {
		return nil, err
	}
	items := make([]artifacts.Item, 0, len(valid))
	for _, f := range valid {
		items = append(items, artifacts.Item{Name: f.Name, Data: f.Data})
	}
	return s.Artifacts.PutAll(ctx, object.KindUpload, items)
}

// List returns uploads, most recent first.
func (s *Service) List(ctx context.Context) ([]artifacts.Descriptor, error) {
	return s.Artifacts.List(ctx, object.KindUpload)
}

// Delete removes one upload.
func (s *Service) Delete(ctx context.Context, name string) error {
	return s.Artifacts.Delete(ctx, object.KindUpload, name)
}
