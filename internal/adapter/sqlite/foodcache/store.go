// Package foodcache implements the nutrition cache on an embedded SQLite
// database, for single-node deployments without PostgreSQL.
package foodcache

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/heartmarshall/macrotrack-backend/internal/adapter/payload"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

const table = "food_cache"

var columns = []string{
	"id", "name", "external_id", "calories", "protein", "carbs", "fats",
	"raw_payload", "hit_count", "last_updated", "created_at",
}

// name_lower holds the Unicode lower-cased name: SQLite's lower() and LIKE
// only fold ASCII.
const tableSchema = `
CREATE TABLE IF NOT EXISTS food_cache (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL CHECK (name <> ''),
	name_lower   TEXT NOT NULL DEFAULT '',
	external_id  INTEGER UNIQUE,
	calories     REAL NOT NULL DEFAULT 0 CHECK (calories >= 0),
	protein      REAL NOT NULL DEFAULT 0 CHECK (protein >= 0),
	carbs        REAL NOT NULL DEFAULT 0 CHECK (carbs >= 0),
	fats         REAL NOT NULL DEFAULT 0 CHECK (fats >= 0),
	raw_payload  BLOB,
	hit_count    INTEGER NOT NULL DEFAULT 1 CHECK (hit_count >= 1),
	last_updated INTEGER NOT NULL,
	created_at   INTEGER NOT NULL
);
`

const indexSchema = `
DROP INDEX IF EXISTS idx_food_cache_name;
CREATE INDEX IF NOT EXISTS idx_food_cache_name_lower ON food_cache(name_lower);
CREATE INDEX IF NOT EXISTS idx_food_cache_hits ON food_cache(hit_count DESC);
`

// Store is a SQLite-backed nutrition cache. Timestamps are stored as Unix
// nanoseconds in UTC.
type Store struct {
	conn   *sql.DB
	logger *slog.Logger
	codec  payload.Codec
}

type foodRow struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	ExternalID  *int64    `db:"external_id"`
	Calories    float64   `db:"calories"`
	Protein     float64   `db:"protein"`
	Carbs       float64   `db:"carbs"`
	Fats        float64   `db:"fats"`
	RawPayload  []byte    `db:"raw_payload"`
	HitCount    int64     `db:"hit_count"`
	LastUpdated int64     `db:"last_updated"`
	CreatedAt   int64     `db:"created_at"`
}

// Open opens or creates the cache database at path and ensures its schema.
func Open(path string, logger *slog.Logger, codec payload.Codec) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite foodcache: create dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite foodcache: open: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("sqlite foodcache: set pragma: %w", err)
		}
	}

	if err := initSchema(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite foodcache: init schema: %w", err)
	}

	logger.Info("sqlite food cache opened", slog.String("path", path))

	return &Store{conn: conn, logger: logger.With("adapter", "sqlite_foodcache"), codec: codec}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Search returns up to limit records whose name contains query
// (case-insensitive), exact matches first, then prefix matches, then the
// rest; ties are broken by last_updated DESC, then id.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]domain.FoodRecord, error) {
	q := strings.ToLower(query)
	escaped := escapeLike(q)

	// Both sides are lower-cased in Go; LIKE here only has to match bytes.
	stmt, args, err := squirrel.
		Select(columns...).
		From(table).
		Where(`name_lower LIKE ? ESCAPE '\'`, "%"+escaped+"%").
		OrderByClause(`CASE WHEN name_lower = ? THEN 0 WHEN name_lower LIKE ? ESCAPE '\' THEN 1 ELSE 2 END`, q, escaped+"%").
		OrderBy("last_updated DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache search: %w", err)
	}

	var rows []foodRow
	if err := sqlscan.Select(ctx, s.conn, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("sqlite food_cache search %q: %w", query, err)
	}
	return s.toDomainRecords(ctx, rows)
}

// GetByExternalID returns the record carrying the provider id or
// domain.ErrNotFound.
func (s *Store) GetByExternalID(ctx context.Context, externalID int64) (*domain.FoodRecord, error) {
	stmt, args, err := squirrel.Select(columns...).From(table).Where(squirrel.Eq{"external_id": externalID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache get: %w", err)
	}

	var row foodRow
	if err := sqlscan.Get(ctx, s.conn, &row, stmt, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, fmt.Errorf("%s external_id=%d: %w", table, externalID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("sqlite food_cache get: %w", err)
	}

	rec := s.toDomainRecord(ctx, row)
	return &rec, nil
}

// Top returns the most frequently hit records.
func (s *Store) Top(ctx context.Context, limit int) ([]domain.FoodRecord, error) {
	stmt, args, err := squirrel.Select(columns...).From(table).
		OrderBy("hit_count DESC", "name").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache top: %w", err)
	}

	var rows []foodRow
	if err := sqlscan.Select(ctx, s.conn, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("sqlite food_cache top: %w", err)
	}
	return s.toDomainRecords(ctx, rows)
}

// Create inserts rec unless another record already holds its external id,
// in which case domain.ErrAlreadyExists is returned.
func (s *Store) Create(ctx context.Context, rec *domain.FoodRecord) (*domain.FoodRecord, error) {
	raw, err := s.codec.Encode(rec.RawPayload)
	if err != nil {
		return nil, err
	}

	stmt, args, err := squirrel.
		Insert(table).
		Columns(append(columns, "name_lower")...).
		Values(
			rec.ID.String(), rec.Name, rec.ExternalID,
			rec.Per100g.Calories, rec.Per100g.Protein, rec.Per100g.Carbs, rec.Per100g.Fats,
			raw, rec.HitCount, rec.LastUpdated.UTC().UnixNano(), rec.CreatedAt.UTC().UnixNano(),
			strings.ToLower(rec.Name),
		).
		Suffix("ON CONFLICT DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache insert: %w", err)
	}

	res, err := s.conn.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite food_cache insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite food_cache insert: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, rec.Name, domain.ErrAlreadyExists)
	}

	saved := *rec
	return &saved, nil
}

// IncrementHits adds one hit per occurrence of an id and stamps
// last_updated with at, in a single transaction.
func (s *Store) IncrementHits(ctx context.Context, ids []uuid.UUID, at time.Time) (err error) {
	if len(ids) == 0 {
		return nil
	}

	counts := make(map[uuid.UUID]int64, len(ids))
	order := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite food_cache begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stamp := at.UTC().UnixNano()
	for _, id := range order {
		if _, err = tx.ExecContext(ctx,
			`UPDATE food_cache SET hit_count = hit_count + ?, last_updated = ? WHERE id = ?`,
			counts[id], stamp, id.String(),
		); err != nil {
			return fmt.Errorf("sqlite food_cache increment: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("sqlite food_cache commit: %w", err)
	}
	return nil
}

// initSchema creates the table and upgrades files written before name_lower
// existed by adding the column and filling it from name.
func initSchema(conn *sql.DB) error {
	if _, err := conn.Exec(tableSchema); err != nil {
		return err
	}

	var hasNameLower int
	if err := conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info('food_cache') WHERE name = 'name_lower'`,
	).Scan(&hasNameLower); err != nil {
		return fmt.Errorf("inspect columns: %w", err)
	}
	if hasNameLower == 0 {
		if _, err := conn.Exec(`ALTER TABLE food_cache ADD COLUMN name_lower TEXT NOT NULL DEFAULT ''`); err != nil {
			return fmt.Errorf("add name_lower: %w", err)
		}
	}
	if err := backfillNameLower(conn); err != nil {
		return err
	}

	_, err := conn.Exec(indexSchema)
	return err
}

func backfillNameLower(conn *sql.DB) error {
	var pending []struct {
		ID   string `db:"id"`
		Name string `db:"name"`
	}
	if err := sqlscan.Select(context.Background(), conn, &pending,
		`SELECT id, name FROM food_cache WHERE name_lower = ''`,
	); err != nil {
		return fmt.Errorf("select names to backfill: %w", err)
	}
	for _, p := range pending {
		if _, err := conn.Exec(`UPDATE food_cache SET name_lower = ? WHERE id = ?`, strings.ToLower(p.Name), p.ID); err != nil {
			return fmt.Errorf("backfill name_lower: %w", err)
		}
	}
	return nil
}

func (s *Store) toDomainRecord(ctx context.Context, row foodRow) domain.FoodRecord {
	raw, err := s.codec.Decode(row.RawPayload)
	if err != nil {
		s.logger.WarnContext(ctx, "raw payload dropped",
			slog.String("food_id", row.ID.String()),
			slog.String("error", err.Error()),
		)
		raw = nil
	}
	return domain.FoodRecord{
		ID:          row.ID,
		Name:        row.Name,
		ExternalID:  row.ExternalID,
		Per100g:     domain.Macros{Calories: row.Calories, Protein: row.Protein, Carbs: row.Carbs, Fats: row.Fats},
		RawPayload:  raw,
		HitCount:    row.HitCount,
		LastUpdated: time.Unix(0, row.LastUpdated).UTC(),
		CreatedAt:   time.Unix(0, row.CreatedAt).UTC(),
	}
}

func (s *Store) toDomainRecords(ctx context.Context, rows []foodRow) ([]domain.FoodRecord, error) {
	out := make([]domain.FoodRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, s.toDomainRecord(ctx, row))
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
