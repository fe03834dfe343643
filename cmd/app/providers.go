package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/foodeat/internal/domain/analysis"
	"github.com/yanqian/foodeat/internal/domain/auth"
	"github.com/yanqian/foodeat/internal/domain/selection"
	"github.com/yanqian/foodeat/internal/infra/config"
	"github.com/yanqian/foodeat/internal/infra/dietapi"
	"github.com/yanqian/foodeat/internal/infra/photostore"
	"github.com/yanqian/foodeat/internal/infra/selectionstore"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	provider := cfg.Auth.Provider
	return auth.Config{
		Secret:       cfg.Auth.Secret,
		SessionTTL:   cfg.Auth.SessionTTL,
		DirectSignIn: cfg.Auth.DirectSignIn,
		Provider: auth.ProviderConfig{
			ClientID:     provider.ClientID,
			ClientSecret: provider.ClientSecret,
			AuthURL:      provider.AuthURL,
			TokenURL:     provider.TokenURL,
			RedirectURL:  provider.RedirectURL,
			IssuerURL:    provider.IssuerURL,
			Scopes:       provider.Scopes,
		},
	}
}

func provideSelectionConfig(cfg *config.Config) selection.Config {
	return selection.Config{
		TTL:           cfg.Selection.TTL,
		MaxPhotoBytes: cfg.Selection.MaxPhotoBytes,
	}
}

func provideAnalysisConfig(cfg *config.Config) (analysis.Config, error) {
	loc, err := cfg.Analysis.Location()
	if err != nil {
		return analysis.Config{}, err
	}
	return analysis.Config{
		Timeout:       cfg.Analysis.Timeout,
		Location:      loc,
		FallbackError: cfg.Analysis.FallbackError,
		IdleTTL:       cfg.Analysis.IdleTTL,
	}, nil
}

func provideDietClient(cfg *config.Config) *dietapi.Client {
	return dietapi.NewClient(cfg.Analysis.Endpoint, cfg.Analysis.Timeout)
}

func provideSelectionReader(svc selection.Service) selection.Reader {
	return svc
}

func provideSelectionStore(cfg *config.Config, logger *slog.Logger) selection.Store {
	valkeyCfg := cfg.Selection.Valkey
	if valkeyCfg.Enabled {
		opt, err := buildValkeyOptions(valkeyCfg.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return selectionstore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return selectionstore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("selection valkey store enabled", "addr", valkeyCfg.Addr)
			return selectionstore.NewValkeyStore(client, valkeyCfg.Prefix)
		}
	}
	logger.Info("selection memory store enabled")
	return selectionstore.NewMemoryStore()
}

func providePhotoStorage(cfg *config.Config, logger *slog.Logger) selection.ObjectStorage {
	s3Cfg := cfg.Storage.S3
	if !s3Cfg.Enabled {
		logger.Info("photo memory storage enabled")
		return photostore.NewMemoryStorage()
	}
	storage, err := photostore.NewS3Storage(s3Cfg.Endpoint, s3Cfg.AccessKey, s3Cfg.SecretKey, s3Cfg.Bucket, s3Cfg.Region, logger)
	if err != nil {
		logger.Error("failed to initialize s3 storage, falling back to memory storage", "error", err)
		return photostore.NewMemoryStorage()
	}
	logger.Info("photo s3 storage enabled", "bucket", s3Cfg.Bucket)
	return storage
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
