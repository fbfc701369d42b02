package service

import (
	"context"
	"math"

	"creator-crm/internal/constants"
	"creator-crm/internal/domain"
	"creator-crm/internal/errs"
	"creator-crm/internal/query"
	"creator-crm/internal/repository"
	"creator-crm/internal/scoring"

	"github.com/rs/zerolog"
)

type CreatorService struct {
	repo   *repository.CreatorRepository
	logger zerolog.Logger
}

func NewCreatorService(repo *repository.CreatorRepository, logger zerolog.Logger) *CreatorService {
	return &CreatorService{repo: repo, logger: logger}
}

// GetPage is the only suspension point in the read path. Callers that issue
// overlapping requests must discard all but the most recently issued
// response themselves (see realtime.PageStore); the service runs every call
// to completion.
func (s *CreatorService) GetPage(ctx context.Context, req domain.FilterRequest) (*domain.PageResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	plan, err := query.Build(req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("page", req.Page).
		Int("page_size", req.PageSize).
		Str("search", req.SearchQuery).
		Str("sort", plan.OrderBy).
		Msg("fetching creators page")

	creators, total, err := s.repo.GetPage(ctx, plan)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch creators page")
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(req.PageSize)))
	}

	return &domain.PageResult{
		Data:       creators,
		Total:      total,
		Page:       req.Page,
		PageSize:   req.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (s *CreatorService) GetCreator(ctx context.Context, id string) (*domain.Creator, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	creator, err := s.repo.Get(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("creator_id", id).Msg("creator not found")
		return nil, err
	}
	return creator, nil
}

// UpdateScore sets the manual override; nil clears it so the creator
// reverts to computed scoring. Out-of-range values are rejected before any
// write happens.
func (s *CreatorService) UpdateScore(ctx context.Context, id string, score *float64) error {
	if score != nil && (*score < 0 || *score > scoring.MaxScore || math.IsNaN(*score)) {
		return errs.Validation("manual score must be between 0 and 10, got %v", *score)
	}

	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.repo.UpdateManualScore(ctx, id, score); err != nil {
		s.logger.Error().Err(err).Str("creator_id", id).Msg("failed to update manual score")
		return err
	}

	event := s.logger.Info().Str("creator_id", id)
	if score != nil {
		event.Float64("score", *score).Msg("manual score set")
	} else {
		event.Msg("manual score cleared")
	}
	return nil
}
