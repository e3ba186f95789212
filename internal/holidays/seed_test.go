package holidays

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSeed(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	items, err := DefaultSeed(now)
	if err != nil {
		t.Fatalf("DefaultSeed: %v", err)
	}
	if len(items) != len(fixedHolidays)+len(islamicObservances) {
		t.Fatalf("unexpected seed size %d", len(items))
	}
	if items[0] != (Holiday{Name: "New Year's Day", Date: "2024-01-01"}) {
		t.Fatalf("unexpected first holiday %+v", items[0])
	}
	if items[1] != (Holiday{Name: "Independence Day", Date: "2024-03-20"}) {
		t.Fatalf("unexpected second holiday %+v", items[1])
	}
}

func TestFileSeed(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	doc := `holidays:
  - name: New Year's Day
    date: "01/01"
  - name: Company Day
    date: "2024-09-02"
  - name: Company Day
    date: "02/09/2024"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	items, err := FileSeed(path)(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FileSeed: %v", err)
	}
	want := []Holiday{
		{Name: "New Year's Day", Date: "2024-01-01"},
		{Name: "Company Day", Date: "2024-09-02"},
	}
	if len(items) != len(want) {
		t.Fatalf("expected %d holidays, got %+v", len(want), items)
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
}

func TestFileSeedRejectsBadDate(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte("holidays:\n  - name: Bad\n    date: someday\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := FileSeed(path)(time.Now()); err == nil {
		t.Fatalf("expected error for bad date")
	}
}
