package repository

import (
	"context"
	"database/sql"
	"time"

	"creator-crm/internal/domain"
	"creator-crm/internal/errs"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

const campaignColumns = "id, creator_id, status, payment_status, amount, agreed_amount, end_date, created_at"

type CampaignRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewCampaignRepository(sqlDB *sql.DB, logger zerolog.Logger) *CampaignRepository {
	return &CampaignRepository{db: sqlDB, logger: logger}
}

func (r *CampaignRepository) ListAll(ctx context.Context) ([]domain.Campaign, error) {
	return r.list(ctx, "SELECT "+campaignColumns+" FROM campaigns ORDER BY created_at DESC, id DESC")
}

func (r *CampaignRepository) ListForCreator(ctx context.Context, creatorID string) ([]domain.Campaign, error) {
	return r.list(ctx, "SELECT "+campaignColumns+" FROM campaigns WHERE creator_id = ? ORDER BY created_at DESC, id DESC", creatorID)
}

func (r *CampaignRepository) list(ctx context.Context, q string, args ...any) ([]domain.Campaign, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query campaigns")
		return nil, errs.Query("select campaigns", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		var c domain.Campaign
		var amount, agreed sql.NullFloat64
		var endDate sql.NullTime
		if err := rows.Scan(&c.ID, &c.CreatorID, &c.Status, &c.PaymentStatus, &amount, &agreed, &endDate, &c.CreatedAt); err != nil {
			return nil, errs.Query("scan campaign row", err)
		}
		c.Amount = floatPtr(amount)
		c.AgreedAmount = floatPtr(agreed)
		if endDate.Valid {
			t := endDate.Time
			c.EndDate = &t
		}
		campaigns = append(campaigns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Query("iterate campaign rows", err)
	}
	return campaigns, nil
}

func (r *CampaignRepository) Upsert(ctx context.Context, campaign *domain.Campaign) error {
	if campaign.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return errs.Query("generate campaign id", err)
		}
		campaign.ID = id
	}
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = time.Now().UTC()
	}

	var endDate sql.NullTime
	if campaign.EndDate != nil {
		endDate = sql.NullTime{Time: *campaign.EndDate, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, creator_id, status, payment_status, amount, agreed_amount, end_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			creator_id = excluded.creator_id,
			status = excluded.status,
			payment_status = excluded.payment_status,
			amount = excluded.amount,
			agreed_amount = excluded.agreed_amount,
			end_date = excluded.end_date`,
		campaign.ID, campaign.CreatorID, campaign.Status, campaign.PaymentStatus,
		nullFloat(campaign.Amount), nullFloat(campaign.AgreedAmount), endDate, campaign.CreatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("campaign_id", campaign.ID).Msg("failed to upsert campaign")
		return errs.Query("upsert campaign", err)
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM campaigns WHERE id = ?", id)
	if err != nil {
		return errs.Query("delete campaign", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return errs.Query("delete campaign", err)
	}
	if affected == 0 {
		return errs.NotFound("campaign", id)
	}
	return nil
}
