package service

import (
	"context"

	"creator-crm/internal/constants"
	"creator-crm/internal/repository"
	"creator-crm/internal/sheetsource"

	"github.com/rs/zerolog"
)

type SyncService struct {
	sheets *sheetsource.Client
	repo   *repository.CreatorRepository
	logger zerolog.Logger
}

func NewSyncService(sheets *sheetsource.Client, repo *repository.CreatorRepository, logger zerolog.Logger) *SyncService {
	return &SyncService{sheets: sheets, repo: repo, logger: logger}
}

// SyncSource imports one sheet source into the creator store and returns
// the number of rows written.
func (s *SyncService) SyncSource(ctx context.Context, source string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().Str("source", source).Msg("starting sheet sync")

	creators, err := s.sheets.FetchCreators(ctx, source)
	if err != nil {
		s.logger.Error().Err(err).Str("source", source).Msg("sheet fetch failed")
		return 0, err
	}

	if err := s.repo.UpsertBatch(ctx, creators); err != nil {
		s.logger.Error().Err(err).Str("source", source).Msg("sheet import failed")
		return 0, err
	}

	s.logger.Info().Str("source", source).Int("rows", len(creators)).Msg("sheet sync completed")
	return len(creators), nil
}
