package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"TalentRadar/internal/config"
	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

const (
	prospectsTable = "prospects"
	// timeLayout has fixed width so date_added sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var prospectColumns = []string{
	"id", "name", "why_fit", "source", "source_reference", "platforms",
	"reach_estimate", "upside_notes", "match_score", "profile_link",
	"status", "added_by", "date_added",
}

// SQLRegistry persists prospects in SQLite or Postgres.
type SQLRegistry struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.Registry = (*SQLRegistry)(nil)

// Open connects to the configured backend and applies the schema.
func Open(ctx context.Context, cfg config.RegistryConfig) (*SQLRegistry, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("%w: registry dsn", domain.ErrConfigurationMissing)
	}

	var (
		driver string
		format sq.PlaceholderFormat
	)
	switch cfg.Backend {
	case config.BackendSQLite:
		driver, format = "sqlite", sq.Question
	case config.BackendPostgres:
		driver, format = "pgx", sq.Dollar
	default:
		return nil, fmt.Errorf("unsupported sql backend %q", cfg.Backend)
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
		for _, p := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
			if _, err := db.ExecContext(ctx, p); err != nil {
				db.Close()
				return nil, fmt.Errorf("setting pragma %q: %w", p, err)
			}
		}
	}

	r := &SQLRegistry{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		now:     time.Now,
	}
	if err := r.migrate(ctx, cfg.UniqueNames); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return r, nil
}

// Close closes the database connection.
func (r *SQLRegistry) Close() error {
	return r.db.Close()
}

func (r *SQLRegistry) migrate(ctx context.Context, uniqueNames bool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prospects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL,
			why_fit TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL,
			source_reference TEXT NOT NULL DEFAULT '',
			platforms TEXT NOT NULL DEFAULT '[]',
			reach_estimate TEXT NOT NULL DEFAULT '',
			upside_notes TEXT NOT NULL DEFAULT '',
			match_score DOUBLE PRECISION,
			profile_link TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			added_by TEXT NOT NULL,
			date_added TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS prospects_name_key ON prospects (name_key)`,
	}
	if uniqueNames {
		stmts = append(stmts, `CREATE UNIQUE INDEX IF NOT EXISTS prospects_name_key_unique ON prospects (name_key)`)
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// ListAll returns every prospect in insertion order.
func (r *SQLRegistry) ListAll(ctx context.Context) ([]domain.ProspectRecord, error) {
	query, args, err := r.builder.Select(prospectColumns...).
		From(prospectsTable).
		OrderBy("date_added", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.Upstream(fmt.Errorf("query prospects: %w", err))
	}
	defer rows.Close()

	var records []domain.ProspectRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream(fmt.Errorf("rows iteration: %w", err))
	}
	return records, nil
}

// Append inserts one prospect with status New.
func (r *SQLRegistry) Append(ctx context.Context, c domain.ProspectCandidate, addedBy domain.AddedBy) (domain.ProspectRecord, error) {
	if c.Source == "" {
		c.Source = domain.DefaultSource
	}
	if c.Platforms == nil {
		c.Platforms = []domain.Platform{}
	}
	rec := domain.ProspectRecord{
		ID:                uuid.NewString(),
		ProspectCandidate: c,
		Status:            domain.StatusNew,
		AddedBy:           addedBy,
		DateAdded:         r.now().UTC(),
	}
	platforms, err := json.Marshal(rec.Platforms)
	if err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("encode platforms: %w", err)
	}

	query, args, err := r.builder.Insert(prospectsTable).
		Columns(append(prospectColumns, "name_key")...).
		Values(
			rec.ID, rec.Name, rec.WhyFit, string(rec.Source), rec.SourceReference, string(platforms),
			rec.ReachEstimate, rec.UpsideNotes, nullScore(rec.ProspectCandidate), rec.ProfileLink,
			string(rec.Status), string(rec.AddedBy), rec.DateAdded.Format(timeLayout),
			domain.NormalizeName(rec.Name),
		).
		ToSql()
	if err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ProspectRecord{}, fmt.Errorf("%w: %s", domain.ErrDuplicate, rec.Name)
		}
		return domain.ProspectRecord{}, domain.Upstream(fmt.Errorf("insert prospect %q: %w", rec.Name, err))
	}
	return rec, nil
}

// Get reads one prospect by id.
func (r *SQLRegistry) Get(ctx context.Context, id string) (domain.ProspectRecord, error) {
	return r.get(ctx, r.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *SQLRegistry) get(ctx context.Context, q queryer, id string) (domain.ProspectRecord, error) {
	query, args, err := r.builder.Select(prospectColumns...).
		From(prospectsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("build get query: %w", err)
	}

	rec, err := scanRecord(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ProspectRecord{}, fmt.Errorf("%w: prospect %s", domain.ErrNotFound, id)
	}
	return rec, err
}

// UpdateStatus moves a prospect to status inside one transaction.
func (r *SQLRegistry) UpdateStatus(ctx context.Context, id string, status domain.Status) (domain.ProspectRecord, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ProspectRecord{}, domain.Upstream(fmt.Errorf("begin tx: %w", err))
	}
	defer func() { _ = tx.Rollback() }()

	current, err := r.get(ctx, tx, id)
	if err != nil {
		return domain.ProspectRecord{}, err
	}
	if !domain.CanTransition(current.Status, status) {
		return domain.ProspectRecord{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}
	if current.Status == status {
		return current, nil
	}

	query, args, err := r.builder.Update(prospectsTable).
		Set("status", string(status)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.ProspectRecord{}, fmt.Errorf("build update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return domain.ProspectRecord{}, domain.Upstream(fmt.Errorf("update prospect %s: %w", id, err))
	}
	if err := tx.Commit(); err != nil {
		return domain.ProspectRecord{}, domain.Upstream(fmt.Errorf("commit: %w", err))
	}

	current.Status = status
	return current, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (domain.ProspectRecord, error) {
	var (
		rec                               domain.ProspectRecord
		source, platforms, status, by, at string
		score                             sql.NullFloat64
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.WhyFit, &source, &rec.SourceReference, &platforms,
		&rec.ReachEstimate, &rec.UpsideNotes, &score, &rec.ProfileLink,
		&status, &by, &at,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("scan prospect: %w", err)
	}

	rec.MatchScore = score.Float64
	rec.Source = domain.Source(source)
	rec.Status = domain.Status(status)
	rec.AddedBy = domain.AddedBy(by)
	if err := json.Unmarshal([]byte(platforms), &rec.Platforms); err != nil {
		return rec, fmt.Errorf("decode platforms of %s: %w", rec.ID, err)
	}
	if rec.DateAdded, err = time.Parse(timeLayout, at); err != nil {
		return rec, fmt.Errorf("decode date of %s: %w", rec.ID, err)
	}
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullScore stores an unscored candidate as NULL.
func nullScore(c domain.ProspectCandidate) sql.NullFloat64 {
	return sql.NullFloat64{Float64: c.MatchScore, Valid: c.Scored()}
}
