package fx

import (
	"creator-crm/internal/config"
	"creator-crm/internal/database"
	"creator-crm/internal/logger"
	"creator-crm/internal/realtime"
	"creator-crm/internal/repository"
	"creator-crm/internal/server"
	"creator-crm/internal/service"
	"creator-crm/internal/sheetsource"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewCreatorRepository),
	fx.Provide(repository.NewCampaignRepository),
	// sheet source client
	fx.Provide(sheetsource.NewClient),
	// realtime
	fx.Provide(realtime.NewPageStore),
	fx.Provide(realtime.NewReconciler),
	// svc
	fx.Provide(service.NewCreatorService),
	fx.Provide(service.NewRankingService),
	fx.Provide(service.NewSyncService),
	// server
	fx.Provide(server.NewCRMServer),
)
