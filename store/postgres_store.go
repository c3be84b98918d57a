package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/malinawb/malina-bot/types"
)

// PostgresStore is the production AccessStore. Every mutation runs as a
// read-modify-write under a row-level lock (SELECT ... FOR UPDATE) so an
// interactive settlement and the daily sweep touching the same record
// serialize instead of double-charging.
type PostgresStore struct {
	pool *pgxpool.Pool
}

const recordColumns = `user_id, balance, trial_activated, trial_until, last_billing,
  is_archived, api_key, seller_name, trade_mark, created_at, updated_at`

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = buildPostgresDSNFromEnv()
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	if port == "" {
		port = "5432"
	}
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	if db == "" {
		db = "malina_bot"
	}
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	if user == "" {
		user = "malina_bot"
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", urlEscape(user), urlEscape(pass), host, port, db)
}

func urlEscape(s string) string {
	r := strings.NewReplacer(
		"%", "%25",
		":", "%3A",
		"/", "%2F",
		"@", "%40",
		"?", "%3F",
		"#", "%23",
		"[", "%5B",
		"]", "%5D",
	)
	return r.Replace(s)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*types.AccessRecord, error) {
	var rec types.AccessRecord
	err := row.Scan(
		&rec.UserID, &rec.Balance, &rec.TrialActivated, &rec.TrialUntil, &rec.LastBilling,
		&rec.IsArchived, &rec.APIKey, &rec.SellerName, &rec.TradeMark, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return types.ErrConflict
	}
	return err
}

func (s *PostgresStore) Get(ctx context.Context, userID int64) (*types.AccessRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return scanRecord(s.pool.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM user_access
WHERE user_id = $1
`, userID))
}

func (s *PostgresStore) Create(ctx context.Context, userID int64) (*types.AccessRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	rec, err := scanRecord(s.pool.QueryRow(ctx, `
INSERT INTO user_access (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
RETURNING `+recordColumns+`
`, userID))
	if errors.Is(err, types.ErrNotFound) {
		return nil, types.ErrConflict
	}
	return rec, err
}

func (s *PostgresStore) Update(ctx context.Context, userID int64, mutate func(*types.AccessRecord) error) (*types.AccessRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rec, err := scanRecord(tx.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM user_access
WHERE user_id = $1
FOR UPDATE
`, userID))
	if err != nil {
		return nil, err
	}

	before := *rec
	if err := mutate(rec); err != nil {
		return nil, err
	}
	rec.UserID = before.UserID
	rec.CreatedAt = before.CreatedAt

	if recordUnchanged(&before, rec) {
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return rec, nil
	}

	_, err = tx.Exec(ctx, `
UPDATE user_access
SET balance = $2,
    trial_activated = $3,
    trial_until = $4,
    last_billing = $5,
    is_archived = $6,
    api_key = $7,
    seller_name = $8,
    trade_mark = $9,
    updated_at = NOW()
WHERE user_id = $1
`, rec.UserID, rec.Balance, rec.TrialActivated, rec.TrialUntil, rec.LastBilling,
		rec.IsArchived, rec.APIKey, rec.SellerName, rec.TradeMark)
	if err != nil {
		return nil, mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

func recordUnchanged(a, b *types.AccessRecord) bool {
	return a.Balance == b.Balance &&
		a.TrialActivated == b.TrialActivated &&
		timeEqual(a.TrialUntil, b.TrialUntil) &&
		timeEqual(a.LastBilling, b.LastBilling) &&
		a.IsArchived == b.IsArchived &&
		a.APIKey == b.APIKey &&
		a.SellerName == b.SellerName &&
		a.TradeMark == b.TradeMark
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func (s *PostgresStore) ListIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT user_id FROM user_access ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *PostgresStore) FindBySeller(ctx context.Context, sellerName string, archived bool) (*types.AccessRecord, error) {
	sellerName = strings.TrimSpace(sellerName)
	if sellerName == "" {
		return nil, types.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return scanRecord(s.pool.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM user_access
WHERE seller_name = $1 AND is_archived = $2
LIMIT 1
`, sellerName, archived))
}

func (s *PostgresStore) Rebind(ctx context.Context, sellerName string, newUserID int64) (*types.AccessRecord, error) {
	sellerName = strings.TrimSpace(sellerName)
	if sellerName == "" {
		return nil, types.ErrNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	archivedRec, err := scanRecord(tx.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM user_access
WHERE seller_name = $1 AND is_archived
LIMIT 1
FOR UPDATE
`, sellerName))
	if err != nil {
		return nil, err
	}

	// A fresh record is usually auto-created for the new user_id on first
	// contact. Absorb it if it is still empty; refuse to overwrite one
	// that already carries value.
	placeholder, err := scanRecord(tx.QueryRow(ctx, `
SELECT `+recordColumns+`
FROM user_access
WHERE user_id = $1
FOR UPDATE
`, newUserID))
	switch {
	case err == nil:
		if placeholder.Balance != 0 || placeholder.TrialActivated || placeholder.SellerName != "" {
			return nil, types.ErrConflict
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_access WHERE user_id = $1`, newUserID); err != nil {
			return nil, err
		}
	case errors.Is(err, types.ErrNotFound):
		// nothing to absorb
	default:
		return nil, err
	}

	rec, err := scanRecord(tx.QueryRow(ctx, `
UPDATE user_access
SET user_id = $2, is_archived = FALSE, updated_at = NOW()
WHERE user_id = $1
RETURNING `+recordColumns+`
`, archivedRec.UserID, newUserID))
	if err != nil {
		return nil, mapPgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}
