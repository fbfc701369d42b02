package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"creator-crm/internal/database"
	"creator-crm/internal/domain"
	"creator-crm/internal/errs"
	"creator-crm/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(v float64) *float64 { return &v }

func newTestServices(t *testing.T) (*CreatorService, *RankingService, *repository.CreatorRepository, *repository.CampaignRepository) {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigrations(db, zerolog.Nop()))
	t.Cleanup(func() { _ = db.Close() })

	creators := repository.NewCreatorRepository(db, zerolog.Nop())
	campaigns := repository.NewCampaignRepository(db, zerolog.Nop())
	return NewCreatorService(creators, zerolog.Nop()),
		NewRankingService(creators, campaigns, zerolog.Nop()),
		creators, campaigns
}

func TestCreatorService_UpdateScoreValidation(t *testing.T) {
	svc, _, repo, _ := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.Creator{ID: "c1", Name: "A"}))

	for _, bad := range []float64{-0.1, 10.1, 11, 100} {
		err := svc.UpdateScore(ctx, "c1", fptr(bad))
		require.Error(t, err, "score %v must be rejected", bad)
		assert.True(t, errs.IsValidation(err))
	}

	// Rejected before I/O: the stored value is untouched.
	creator, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, creator.ManualPerformanceScore)

	// Boundary values are accepted.
	require.NoError(t, svc.UpdateScore(ctx, "c1", fptr(0)))
	require.NoError(t, svc.UpdateScore(ctx, "c1", fptr(10)))
}

func TestCreatorService_OverrideClearRoundTrip(t *testing.T) {
	svc, ranking, creatorRepo, campaignRepo := newTestServices(t)
	ctx := context.Background()

	require.NoError(t, creatorRepo.Upsert(ctx, &domain.Creator{
		ID: "c1", Name: "A", EngagementRate: fptr(5),
	}))
	require.NoError(t, campaignRepo.Upsert(ctx, &domain.Campaign{
		ID: "m1", CreatorID: "c1", Status: "completed", PaymentStatus: "Paid", Amount: fptr(300),
	}))

	before, err := ranking.ScoreFor(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, before.IsManual)

	require.NoError(t, svc.UpdateScore(ctx, "c1", fptr(7.5)))
	during, err := ranking.ScoreFor(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, during.IsManual)
	assert.Equal(t, 7.5, during.Score)

	require.NoError(t, svc.UpdateScore(ctx, "c1", nil))
	after, err := ranking.ScoreFor(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, after.IsManual)
	assert.Equal(t, before.Score, after.Score)
}

func TestCreatorService_GetPage(t *testing.T) {
	svc, _, repo, _ := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 30; i++ {
		require.NoError(t, repo.Upsert(ctx, &domain.Creator{
			ID:   fmt.Sprintf("c-%02d", i),
			Name: fmt.Sprintf("Name %02d", i),
			City: "Delhi",
		}))
	}

	page, err := svc.GetPage(ctx, domain.FilterRequest{
		Page: 2, PageSize: 25,
		Filters: domain.Filters{City: []string{"Delhi"}},
	})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 30, page.Total)
	assert.Equal(t, 2, page.TotalPages)

	// Empty result keeps total and totalPages at zero.
	empty, err := svc.GetPage(ctx, domain.FilterRequest{
		Page: 1, PageSize: 25,
		Filters: domain.Filters{City: []string{"Nowhere"}},
	})
	require.NoError(t, err)
	assert.Empty(t, empty.Data)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestCreatorService_GetPageValidation(t *testing.T) {
	svc, _, _, _ := newTestServices(t)

	_, err := svc.GetPage(context.Background(), domain.FilterRequest{Page: 0, PageSize: 25})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func TestRankingService_TopCreators(t *testing.T) {
	_, ranking, creatorRepo, campaignRepo := newTestServices(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		rate := float64(i)
		require.NoError(t, creatorRepo.Upsert(ctx, &domain.Creator{
			ID:             fmt.Sprintf("c-%d", i),
			Name:           fmt.Sprintf("Creator %d", i),
			EngagementRate: &rate,
		}))
	}
	require.NoError(t, campaignRepo.Upsert(ctx, &domain.Campaign{
		ID: "m1", CreatorID: "c-0", Status: "completed", PaymentStatus: "Paid", Amount: fptr(800),
	}))

	ranked, err := ranking.TopCreators(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, ranked, 6)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].PerformanceScore, ranked[i].PerformanceScore)
	}
}
