package holidays

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// PGStore persists holidays in Postgres. The registry_state row records that
// the table was seeded, so deleting every holiday does not trigger a reseed.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Load(ctx context.Context) ([]Holiday, error) {
	const stateQuery = `SELECT EXISTS (SELECT 1 FROM holiday_registry_state)`
	var initialized bool
	if err := s.DB.QueryRowContext(ctx, stateQuery).Scan(&initialized); err != nil {
		return nil, fmt.Errorf("query registry state: %w", err)
	}
	if !initialized {
		return nil, ErrUninitialized
	}

	const query = `
SELECT name, holiday_date
FROM public_holidays
ORDER BY id ASC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query holidays: %w", err)
	}
	defer rows.Close()

	out := []Holiday{}
	for rows.Next() {
		var (
			name string
			date time.Time
		)
		if err := rows.Scan(&name, &date); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		out = append(out, Holiday{Name: name, Date: FormatDate(date)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate holidays: %w", err)
	}
	return out, nil
}

func (s *PGStore) Init(ctx context.Context, seed []Holiday) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM public_holidays`); err != nil {
		return fmt.Errorf("clear holidays: %w", err)
	}
	const insert = `
INSERT INTO public_holidays (name, holiday_date)
VALUES ($1, $2)
ON CONFLICT (name, holiday_date) DO NOTHING`
	for _, h := range seed {
		if _, err = tx.ExecContext(ctx, insert, h.Name, h.Date); err != nil {
			return fmt.Errorf("seed holiday %q: %w", h.Name, err)
		}
	}
	const mark = `
INSERT INTO holiday_registry_state (id, seeded_at)
VALUES (1, NOW())
ON CONFLICT (id) DO UPDATE SET seeded_at = EXCLUDED.seeded_at`
	if _, err = tx.ExecContext(ctx, mark); err != nil {
		return fmt.Errorf("mark registry seeded: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

func (s *PGStore) Insert(ctx context.Context, h Holiday) error {
	const query = `
INSERT INTO public_holidays (name, holiday_date)
VALUES ($1, $2)`
	if _, err := s.DB.ExecContext(ctx, query, h.Name, h.Date); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert holiday: %w", err)
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, h Holiday) error {
	const query = `
DELETE FROM public_holidays
WHERE name = $1 AND holiday_date = $2`
	res, err := s.DB.ExecContext(ctx, query, h.Name, h.Date)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete holiday rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
