package holidays

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGStore{DB: db}, mock
}

func TestPGStoreLoadUninitialized(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM holiday_registry_state)")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	if _, err := store.Load(context.Background()); !errors.Is(err, ErrUninitialized) {
		t.Fatalf("expected ErrUninitialized, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreLoadOrdersByInsertion(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM holiday_registry_state)")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT name, holiday_date\\s+FROM public_holidays\\s+ORDER BY id ASC").
		WillReturnRows(sqlmock.NewRows([]string{"name", "holiday_date"}).
			AddRow("Revolution Day", time.Date(2024, time.December, 17, 0, 0, 0, 0, time.UTC)).
			AddRow("New Year's Day", time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)))

	items, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []Holiday{
		{Name: "Revolution Day", Date: "2024-12-17"},
		{Name: "New Year's Day", Date: "2024-01-01"},
	}
	for i := range want {
		if items[i] != want[i] {
			t.Fatalf("item %d: expected %+v, got %+v", i, want[i], items[i])
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreInsertMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO public_holidays").
		WithArgs("Labour Day", "2024-05-01").
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err := store.Insert(context.Background(), Holiday{Name: "Labour Day", Date: "2024-05-01"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreDeleteNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM public_holidays").
		WithArgs("Labour Day", "2024-05-01").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Delete(context.Background(), Holiday{Name: "Labour Day", Date: "2024-05-01"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreInitRunsInTransaction(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM public_holidays").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO public_holidays").
		WithArgs("New Year's Day", "2024-01-01").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO holiday_registry_state").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := store.Init(context.Background(), []Holiday{{Name: "New Year's Day", Date: "2024-01-01"}}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreInitRollsBackOnFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM public_holidays").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO public_holidays").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	if err := store.Init(context.Background(), []Holiday{{Name: "New Year's Day", Date: "2024-01-01"}}); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
