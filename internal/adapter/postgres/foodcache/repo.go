// Package foodcache implements the shared nutrition cache on PostgreSQL.
package foodcache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/heartmarshall/macrotrack-backend/internal/adapter/postgres"
	"github.com/heartmarshall/macrotrack-backend/internal/adapter/payload"
	"github.com/heartmarshall/macrotrack-backend/internal/domain"
)

const table = "food_cache"

var columns = []string{
	"id", "name", "external_id", "calories", "protein", "carbs", "fats",
	"raw_payload", "hit_count", "last_updated", "created_at",
}

// Repo provides nutrition cache persistence backed by PostgreSQL.
type Repo struct {
	db    postgres.Querier
	log   *slog.Logger
	codec payload.Codec
}

// New creates a new food cache repository.
func New(db postgres.Querier, logger *slog.Logger, codec payload.Codec) *Repo {
	return &Repo{db: db, log: logger.With("adapter", "postgres_foodcache"), codec: codec}
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
	LastUpdated time.Time `db:"last_updated"`
	CreatedAt   time.Time `db:"created_at"`
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Search returns up to limit records whose name contains query
// (case-insensitive). Exact matches come first, then prefix matches, then
// other substring matches; ties are broken by last_updated DESC, then id.
func (r *Repo) Search(ctx context.Context, query string, limit int) ([]domain.FoodRecord, error) {
	q := strings.ToLower(query)
	escaped := escapeLike(q)

	sql, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where("lower(name) LIKE ?", "%"+escaped+"%").
		OrderByClause("CASE WHEN lower(name) = ? THEN 0 WHEN lower(name) LIKE ? THEN 1 ELSE 2 END", q, escaped+"%").
		OrderBy("last_updated DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache search: %w", err)
	}

	var rows []foodRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, table, query)
	}

	return r.toDomainRecords(ctx, rows)
}

// GetByExternalID returns the record carrying the provider id.
// Returns domain.ErrNotFound if there is none.
func (r *Repo) GetByExternalID(ctx context.Context, externalID int64) (*domain.FoodRecord, error) {
	sql, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		Where("external_id = ?", externalID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache get: %w", err)
	}

	var row foodRow
	if err := pgxscan.Get(ctx, postgres.QuerierFromCtx(ctx, r.db), &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, fmt.Errorf("%s external_id=%d: %w", table, externalID, domain.ErrNotFound)
		}
		return nil, postgres.MapError(err, table, externalID)
	}

	rec := r.toDomainRecord(ctx, row)
	return &rec, nil
}

// Top returns the most frequently hit records.
func (r *Repo) Top(ctx context.Context, limit int) ([]domain.FoodRecord, error) {
	sql, args, err := postgres.Builder.
		Select(columns...).
		From(table).
		OrderBy("hit_count DESC", "name").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache top: %w", err)
	}

	var rows []foodRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, sql, args...); err != nil {
		return nil, postgres.MapError(err, table, "top")
	}

	return r.toDomainRecords(ctx, rows)
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts rec, ignoring the insert when another record already holds
// the same external id. In that case domain.ErrAlreadyExists is returned and
// the caller re-reads the winner.
func (r *Repo) Create(ctx context.Context, rec *domain.FoodRecord) (*domain.FoodRecord, error) {
	raw, err := r.codec.Encode(rec.RawPayload)
	if err != nil {
		return nil, err
	}

	sql, args, err := postgres.Builder.
		Insert(table).
		Columns(columns...).
		Values(
			rec.ID, rec.Name, rec.ExternalID,
			rec.Per100g.Calories, rec.Per100g.Protein, rec.Per100g.Carbs, rec.Per100g.Fats,
			raw, rec.HitCount, rec.LastUpdated, rec.CreatedAt,
		).
		Suffix("ON CONFLICT (external_id) DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build food_cache insert: %w", err)
	}

	var id uuid.UUID
	err = postgres.QuerierFromCtx(ctx, r.db).QueryRow(ctx, sql, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s external_id=%v: %w", table, externalIDString(rec.ExternalID), domain.ErrAlreadyExists)
	}
	if err != nil {
		return nil, postgres.MapError(err, table, rec.ID)
	}

	saved := *rec
	saved.ID = id
	return &saved, nil
}

const incrementHitsSQL = `UPDATE food_cache AS f
SET hit_count = f.hit_count + c.n, last_updated = $2
FROM (SELECT id, count(*) AS n FROM unnest($1::uuid[]) AS t(id) GROUP BY id) AS c
WHERE f.id = c.id`

// IncrementHits adds one hit per occurrence of an id in ids and stamps
// last_updated with at. Unknown ids are ignored.
func (r *Repo) IncrementHits(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, incrementHitsSQL, ids, at); err != nil {
		return postgres.MapError(err, table, fmt.Sprintf("%d ids", len(ids)))
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// toDomainRecord drops a raw payload that no longer decodes; the nutrition
// columns stay authoritative.
func (r *Repo) toDomainRecord(ctx context.Context, row foodRow) domain.FoodRecord {
	raw, err := r.codec.Decode(row.RawPayload)
	if err != nil {
		r.log.WarnContext(ctx, "raw payload dropped",
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
		LastUpdated: row.LastUpdated,
		CreatedAt:   row.CreatedAt,
	}
}

func (r *Repo) toDomainRecords(ctx context.Context, rows []foodRow) ([]domain.FoodRecord, error) {
	out := make([]domain.FoodRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, r.toDomainRecord(ctx, row))
	}
	return out, nil
}

// escapeLike escapes LIKE metacharacters using the default backslash escape.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func externalIDString(id *int64) string {
	if id == nil {
		return "null"
	}
	return fmt.Sprint(*id)
}
