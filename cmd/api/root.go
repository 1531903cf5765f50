package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/aidetect/internal/application"
	appanalysis "github.com/bryanwahyu/aidetect/internal/application/analysis"
	"github.com/bryanwahyu/aidetect/internal/config"
	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
	"github.com/bryanwahyu/aidetect/internal/infra/ai"
	"github.com/bryanwahyu/aidetect/internal/infra/cache"
	"github.com/bryanwahyu/aidetect/internal/infra/db"
	"github.com/bryanwahyu/aidetect/internal/infra/storage"
	"github.com/bryanwahyu/aidetect/internal/logger"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:          "aidetect",
	Short:        "AI-generated text detection service",
	Version:      version,
	SilenceUsage: true,
}

func init() {
	def := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		def = v
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", def, "path to config.yaml")

	rootCmd.AddCommand(serveCmd, migrateCmd, analyzeCmd, historyCmd, mcpCmd)
}

// app holds everything a command needs to talk to the detection service.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	store *db.Store
	svc   *appanalysis.Service
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("closing database", zap.Error(err))
	}
	_ = a.log.Sync()
}

// bootstrap loads config and wires repository, scorer and archive into a Service.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load error: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("%s connect error: %w", cfg.Database.Driver, err)
	}
	log.Info("database ready", zap.String("driver", cfg.Database.Driver))

	var repo domain.Repository = store.Repo
	if cfg.Cache.Enabled {
		repo = cache.NewRepository(repo, cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval)
	}

	scorer, err := ai.New(ctx, cfg.Scorer, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("scorer init error: %w", err)
	}

	svc := &appanalysis.Service{
		Repo:         repo,
		Scorer:       scorer,
		Clock:        application.SystemClock{},
		Log:          log,
		ScoreTimeout: cfg.Scorer.Timeout,
	}

	if cfg.Archive.Enabled {
		actx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		archive, err := storage.New(actx, storage.Options{
			Endpoint:  cfg.Archive.Endpoint,
			Region:    cfg.Archive.Region,
			Bucket:    cfg.Archive.BucketName,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			UseSSL:    cfg.Archive.UseSSL,
			Prefix:    cfg.Archive.Prefix,
		})
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("minio init error: %w", err)
		}
		svc.Archive = archive
		log.Info("text archive enabled", zap.String("bucket", cfg.Archive.BucketName))
	}

	return &app{cfg: cfg, log: log, store: store, svc: svc}, nil
}
