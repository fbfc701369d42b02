package service

import (
	"context"

	"creator-crm/internal/constants"
	"creator-crm/internal/domain"
	"creator-crm/internal/repository"
	"creator-crm/internal/scoring"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type RankingService struct {
	creators  *repository.CreatorRepository
	campaigns *repository.CampaignRepository
	logger    zerolog.Logger
}

func NewRankingService(creators *repository.CreatorRepository, campaigns *repository.CampaignRepository, logger zerolog.Logger) *RankingService {
	return &RankingService{creators: creators, campaigns: campaigns, logger: logger}
}

// TopCreators loads both collections and ranks the full population. The
// tie-break compares engagement rates across all creators, so the sort can
// never run on a pre-truncated subset.
func (s *RankingService) TopCreators(ctx context.Context, limit int) ([]domain.RankedCreator, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	var creators []domain.Creator
	var campaigns []domain.Campaign

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		creators, err = s.creators.ListAll(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		campaigns, err = s.campaigns.ListAll(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to load ranking inputs")
		return nil, err
	}

	ranked := scoring.Rank(creators, campaigns, limit)

	s.logger.Info().
		Int("population", len(creators)).
		Int("ranked", len(ranked)).
		Msg("ranking computed")
	return ranked, nil
}

// ScoreFor computes a single creator's current score from live data.
func (s *RankingService) ScoreFor(ctx context.Context, creatorID string) (*domain.ScoreResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	creator, err := s.creators.Get(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	campaigns, err := s.campaigns.ListForCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	result := scoring.Score(*creator, campaigns, scoring.DerivePayments(campaigns))
	return &result, nil
}
