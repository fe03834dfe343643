//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/foodeat/internal/bootstrap"
	"github.com/yanqian/foodeat/internal/domain/analysis"
	"github.com/yanqian/foodeat/internal/domain/auth"
	"github.com/yanqian/foodeat/internal/domain/selection"
	"github.com/yanqian/foodeat/internal/infra/config"
	"github.com/yanqian/foodeat/internal/infra/dietapi"
	httpiface "github.com/yanqian/foodeat/internal/interface/http"
	"github.com/yanqian/foodeat/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideSelectionConfig,
		provideAnalysisConfig,
		provideSelectionStore,
		providePhotoStorage,
		provideSelectionReader,
		provideDietClient,
		selection.NewResolver,
		selection.NewService,
		analysis.NewService,
		auth.NewService,
		wire.Bind(new(analysis.PhotoResolver), new(*selection.Resolver)),
		wire.Bind(new(analysis.Client), new(*dietapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
