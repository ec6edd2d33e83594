package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"JobScanner/internal/domain"
	"JobScanner/internal/ports"
)

const jobsTable = "job_postings"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS job_postings (
    identity_key    TEXT PRIMARY KEY,
    source_company  TEXT NOT NULL,
    title           TEXT NOT NULL,
    matched_role    TEXT NOT NULL,
    location        TEXT NOT NULL DEFAULT '',
    employment_type TEXT NOT NULL DEFAULT '',
    url             TEXT NOT NULL,
    posted_at       TIMESTAMPTZ NOT NULL,
    first_seen_at   TIMESTAMPTZ NOT NULL,
    last_seen_at    TIMESTAMPTZ NOT NULL,
    CONSTRAINT job_postings_seen_order CHECK (last_seen_at >= first_seen_at)
);
CREATE INDEX IF NOT EXISTS job_postings_last_seen_idx ON job_postings (last_seen_at);
CREATE INDEX IF NOT EXISTS job_postings_posted_idx ON job_postings (posted_at DESC);
CREATE INDEX IF NOT EXISTS job_postings_company_idx ON job_postings (source_company);
`

var jobColumns = []string{
	"identity_key", "source_company", "title", "matched_role", "location",
	"employment_type", "url", "posted_at", "first_seen_at", "last_seen_at",
}

// PostgresStore persists postings into Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	sb   sq.StatementBuilderType
}

var _ ports.JobStore = (*PostgresStore)(nil)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return pool, nil
}

// NewPostgresStore wires a pool with a dollar-placeholder statement builder.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		sb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// EnsureSchema creates the table and indexes when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Upsert runs a read-modify-write under a row lock. A concurrent insert of the
// same key surfaces as domain.ErrUpsertConflict via the primary key.
func (s *PostgresStore) Upsert(ctx context.Context, posting domain.JobPosting, seenAt time.Time) (domain.UpsertOutcome, error) {
	var outcome domain.UpsertOutcome

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query, args, err := s.sb.
			Select("title", "location", "employment_type").
			From(jobsTable).
			Where(sq.Eq{"identity_key": posting.IdentityKey}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("build select: %w", err)
		}

		var current domain.JobPosting
		err = tx.QueryRow(ctx, query, args...).Scan(&current.Title, &current.Location, &current.EmploymentType)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			outcome = domain.OutcomeInserted
			return s.insert(ctx, tx, posting, seenAt)
		case err != nil:
			return fmt.Errorf("select current: %w", err)
		}

		update := s.sb.Update(jobsTable).
			Set("last_seen_at", sq.Expr("GREATEST(last_seen_at, ?)", seenAt)).
			Where(sq.Eq{"identity_key": posting.IdentityKey})
		if posting.MatchedRole != "" {
			update = update.Set("matched_role", posting.MatchedRole)
		}

		outcome = domain.OutcomeUnchanged
		if !current.SameDisplay(posting) {
			outcome = domain.OutcomeUpdated
			update = update.
				Set("title", posting.Title).
				Set("location", posting.Location).
				Set("employment_type", posting.EmploymentType)
		}

		query, args, err = update.ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("update posting: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

func (s *PostgresStore) insert(ctx context.Context, tx pgx.Tx, p domain.JobPosting, seenAt time.Time) error {
	postedAt := p.PostedAt
	if postedAt.IsZero() {
		postedAt = seenAt
	}

	query, args, err := s.sb.Insert(jobsTable).
		Columns(jobColumns...).
		Values(p.IdentityKey, p.SourceCompany, p.Title, p.MatchedRole, p.Location,
			p.EmploymentType, p.URL, postedAt, seenAt, seenAt).
		Suffix("ON CONFLICT (identity_key) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("insert posting: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUpsertConflict
	}
	return nil
}

// QueryByTimeRange returns one page of postings plus the unpaginated total.
func (s *PostgresStore) QueryByTimeRange(ctx context.Context, q domain.JobQuery) (domain.JobPage, error) {
	where := queryConditions(q)

	countSQL, countArgs, err := s.sb.Select("COUNT(*)").From(jobsTable).Where(where).ToSql()
	if err != nil {
		return domain.JobPage{}, fmt.Errorf("build count: %w", err)
	}

	var page domain.JobPage
	if err := s.pool.QueryRow(ctx, countSQL, countArgs...).Scan(&page.Total); err != nil {
		return domain.JobPage{}, fmt.Errorf("count postings: %w", err)
	}

	sel := s.sb.Select(jobColumns...).From(jobsTable).Where(where).
		OrderBy("posted_at DESC", "identity_key")
	if q.Limit > 0 {
		sel = sel.Limit(uint64(q.Limit))
	}
	if q.Offset > 0 {
		sel = sel.Offset(uint64(q.Offset))
	}

	query, args, err := sel.ToSql()
	if err != nil {
		return domain.JobPage{}, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return domain.JobPage{}, fmt.Errorf("query postings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return domain.JobPage{}, err
		}
		page.Jobs = append(page.Jobs, job)
	}
	if err := rows.Err(); err != nil {
		return domain.JobPage{}, fmt.Errorf("rows iteration: %w", err)
	}
	return page, nil
}

// DeleteWhere removes postings matching the predicate in one statement.
func (s *PostgresStore) DeleteWhere(ctx context.Context, p domain.DeletePredicate) (int64, error) {
	if p.Empty() {
		return 0, errEmptyPredicate
	}

	cond := sq.And{}
	if !p.LastSeenBefore.IsZero() {
		cond = append(cond, sq.Lt{"last_seen_at": p.LastSeenBefore})
	}
	if p.Company != "" {
		cond = append(cond, sq.Eq{"source_company": p.Company})
	}

	query, args, err := s.sb.Delete(jobsTable).Where(cond).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete postings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Get loads one posting by identity key.
func (s *PostgresStore) Get(ctx context.Context, key string) (domain.JobPosting, error) {
	query, args, err := s.sb.Select(jobColumns...).From(jobsTable).
		Where(sq.Eq{"identity_key": key}).ToSql()
	if err != nil {
		return domain.JobPosting{}, fmt.Errorf("build select: %w", err)
	}

	job, err := scanJob(s.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.JobPosting{}, domain.ErrNotFound
	}
	return job, err
}

// Companies lists distinct source companies.
func (s *PostgresStore) Companies(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "source_company")
}

// Roles lists distinct matched roles.
func (s *PostgresStore) Roles(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "matched_role")
}

func (s *PostgresStore) distinct(ctx context.Context, column string) ([]string, error) {
	query, args, err := s.sb.Select(column).Distinct().From(jobsTable).
		Where(sq.NotEq{column: ""}).OrderBy(column).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build distinct %s: %w", column, err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distinct %s: %w", column, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collect distinct %s: %w", column, err)
	}
	return values, nil
}

func queryConditions(q domain.JobQuery) sq.And {
	cond := sq.And{}
	if !q.Since.IsZero() {
		cond = append(cond, sq.GtOrEq{"posted_at": q.Since})
	}
	if !q.Until.IsZero() {
		cond = append(cond, sq.LtOrEq{"posted_at": q.Until})
	}
	if len(q.Roles) > 0 {
		cond = append(cond, sq.Eq{"lower(matched_role)": lowerAll(q.Roles)})
	}
	if len(q.Companies) > 0 {
		cond = append(cond, sq.Eq{"lower(source_company)": lowerAll(q.Companies)})
	}
	if q.Location != "" {
		cond = append(cond, sq.ILike{"location": "%" + q.Location + "%"})
	}
	if q.EmploymentType != "" {
		cond = append(cond, sq.Eq{"employment_type": q.EmploymentType})
	}
	if q.Search != "" {
		cond = append(cond, sq.ILike{"title": "%" + q.Search + "%"})
	}
	return cond
}

func scanJob(row pgx.Row) (domain.JobPosting, error) {
	var job domain.JobPosting
	err := row.Scan(
		&job.IdentityKey, &job.SourceCompany, &job.Title, &job.MatchedRole, &job.Location,
		&job.EmploymentType, &job.URL, &job.PostedAt, &job.FirstSeenAt, &job.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.JobPosting{}, err
		}
		return domain.JobPosting{}, fmt.Errorf("scan posting: %w", err)
	}
	return job, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
