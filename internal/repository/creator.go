package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"creator-crm/internal/constants"
	"creator-crm/internal/domain"
	"creator-crm/internal/errs"
	"creator-crm/internal/query"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// listColumns is the fixed projection for list queries. Extra columns are
// never requested; widening this list must not affect total or ordering.
const listColumns = `id, name, username, email, city, state, followers_tier, sheet_source,
	engagement_rate, avg_likes, avg_comments, manual_performance_score, created_at, updated_at`

type CreatorRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCreatorRepository(sqlDB *sql.DB, logger zerolog.Logger) *CreatorRepository {
	return &CreatorRepository{db: sqlDB, logger: logger}
}

// GetPage executes a query plan: one select for the page rows and one count
// over the identical predicate set, so Total always reflects the full
// matching population regardless of offset and limit.
func (r *CreatorRepository) GetPage(ctx context.Context, plan query.Plan) ([]domain.Creator, int, error) {
	where, args := plan.WhereClause()

	pageQuery := "SELECT " + listColumns + " FROM creators" + where + plan.OrderClause() + " LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), plan.Limit, plan.Offset)

	rows, err := r.db.QueryContext(ctx, pageQuery, pageArgs...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query creators page")
		return nil, 0, errs.Query("select creators page", err)
	}
	defer rows.Close()

	var creators []domain.Creator
	for rows.Next() {
		creator, err := scanCreator(rows)
		if err != nil {
			return nil, 0, errs.Query("scan creator row", err)
		}
		creators = append(creators, creator)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errs.Query("iterate creator rows", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM creators"+where, args...).Scan(&total); err != nil {
		r.logger.Error().Err(err).Msg("failed to count creators")
		return nil, 0, errs.Query("count creators", err)
	}

	return creators, total, nil
}

func (r *CreatorRepository) Get(ctx context.Context, id string) (*domain.Creator, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+listColumns+" FROM creators WHERE id = ?", id)
	creator, err := scanCreator(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("creator", id)
	}
	if err != nil {
		return nil, errs.Query("select creator", err)
	}
	return &creator, nil
}

// ListAll returns every creator; the performance aggregator needs the full
// population because its tie-break compares across all records.
func (r *CreatorRepository) ListAll(ctx context.Context) ([]domain.Creator, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+listColumns+" FROM creators ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, errs.Query("select all creators", err)
	}
	defer rows.Close()

	var creators []domain.Creator
	for rows.Next() {
		creator, err := scanCreator(rows)
		if err != nil {
			return nil, errs.Query("scan creator row", err)
		}
		creators = append(creators, creator)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Query("iterate creator rows", err)
	}
	return creators, nil
}

func (r *CreatorRepository) Upsert(ctx context.Context, creator *domain.Creator) error {
	if creator.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return errs.Query("generate creator id", err)
		}
		creator.ID = id
	}
	now := time.Now().UTC()
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = now
	}
	creator.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO creators (
			id, name, username, email, city, state, followers_tier, sheet_source,
			engagement_rate, avg_likes, avg_comments, manual_performance_score,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			username = excluded.username,
			email = excluded.email,
			city = excluded.city,
			state = excluded.state,
			followers_tier = excluded.followers_tier,
			sheet_source = excluded.sheet_source,
			engagement_rate = excluded.engagement_rate,
			avg_likes = excluded.avg_likes,
			avg_comments = excluded.avg_comments,
			updated_at = excluded.updated_at`,
		creator.ID, creator.Name, creator.Username, creator.Email,
		creator.City, creator.State, creator.FollowersTier, creator.SheetSource,
		nullFloat(creator.EngagementRate), nullFloat(creator.AvgLikes), nullFloat(creator.AvgComments),
		nullFloat(creator.ManualPerformanceScore),
		creator.CreatedAt, creator.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("creator_id", creator.ID).Msg("failed to upsert creator")
		return errs.Query("upsert creator", err)
	}
	return nil
}

// UpdateManualScore sets or clears (nil) the manual override in a single
// atomic update keyed by creator id. Range validation happens in the
// service layer before any I/O.
func (r *CreatorRepository) UpdateManualScore(ctx context.Context, id string, score *float64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE creators SET manual_performance_score = ?, updated_at = ? WHERE id = ?",
		nullFloat(score), time.Now().UTC(), id,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("creator_id", id).Msg("failed to update manual score")
		return errs.Query("update manual score", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errs.Query("update manual score", err)
	}
	if affected == 0 {
		return errs.NotFound("creator", id)
	}
	return nil
}

func (r *CreatorRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM creators WHERE id = ?", id)
	if err != nil {
		return errs.Query("delete creator", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errs.Query("delete creator", err)
	}
	if affected == 0 {
		return errs.NotFound("creator", id)
	}
	return nil
}

// UpsertBatch writes a set of creators in one transaction, chunked to keep
// statement counts bounded on large sheet imports.
func (r *CreatorRepository) UpsertBatch(ctx context.Context, creators []domain.Creator) error {
	if len(creators) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Query("begin transaction", err)
	}
	defer tx.Rollback()

	for i := 0; i < len(creators); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(creators) {
			end = len(creators)
		}
		for j := i; j < end; j++ {
			if err := r.upsertTx(ctx, tx, &creators[j]); err != nil {
				return err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return errs.Query("commit creators batch", err)
	}
	return nil
}

func (r *CreatorRepository) upsertTx(ctx context.Context, tx *sql.Tx, creator *domain.Creator) error {
	if creator.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return errs.Query("generate creator id", err)
		}
		creator.ID = id
	}
	now := time.Now().UTC()
	if creator.CreatedAt.IsZero() {
		creator.CreatedAt = now
	}
	creator.UpdatedAt = now

	_, err := tx.ExecContext(ctx, `
		INSERT INTO creators (
			id, name, username, email, city, state, followers_tier, sheet_source,
			engagement_rate, avg_likes, avg_comments, manual_performance_score,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			username = excluded.username,
			email = excluded.email,
			city = excluded.city,
			state = excluded.state,
			followers_tier = excluded.followers_tier,
			sheet_source = excluded.sheet_source,
			engagement_rate = excluded.engagement_rate,
			avg_likes = excluded.avg_likes,
			avg_comments = excluded.avg_comments,
			updated_at = excluded.updated_at`,
		creator.ID, creator.Name, creator.Username, creator.Email,
		creator.City, creator.State, creator.FollowersTier, creator.SheetSource,
		nullFloat(creator.EngagementRate), nullFloat(creator.AvgLikes), nullFloat(creator.AvgComments),
		nullFloat(creator.ManualPerformanceScore),
		creator.CreatedAt, creator.UpdatedAt,
	)
	if err != nil {
		return errs.Query("upsert creator "+creator.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCreator(row rowScanner) (domain.Creator, error) {
	var c domain.Creator
	var engagementRate, avgLikes, avgComments, manualScore sql.NullFloat64
	err := row.Scan(
		&c.ID, &c.Name, &c.Username, &c.Email, &c.City, &c.State,
		&c.FollowersTier, &c.SheetSource,
		&engagementRate, &avgLikes, &avgComments, &manualScore,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Creator{}, err
	}
	c.EngagementRate = floatPtr(engagementRate)
	c.AvgLikes = floatPtr(avgLikes)
	c.AvgComments = floatPtr(avgComments)
	c.ManualPerformanceScore = floatPtr(manualScore)
	return c, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
