package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/partlens/recognition-api/internal/api"
	"github.com/partlens/recognition-api/internal/api/handler"
	"github.com/partlens/recognition-api/internal/core/ports"
	"github.com/partlens/recognition-api/internal/core/service"
	bq "github.com/partlens/recognition-api/internal/infrastructure/bigquery"
	"github.com/partlens/recognition-api/internal/infrastructure/config"
	mongodb "github.com/partlens/recognition-api/internal/infrastructure/db/mongo"
	redisdb "github.com/partlens/recognition-api/internal/infrastructure/db/redis"
	"github.com/partlens/recognition-api/internal/infrastructure/storage"
	"github.com/partlens/recognition-api/internal/infrastructure/upstream"
	"github.com/partlens/recognition-api/pkg/logger"
)

// app owns the long-lived clients so they can be closed on shutdown.
type app struct {
	deps    api.Deps
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.Get()
	a := &app{}
	checks := make(map[string]handler.Check)

	// --- MongoDB ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:                    cfg.Mongo.URI,
		Database:               cfg.Mongo.Database,
		AppName:                cfg.Mongo.AppName,
		ServerSelectionTimeout: cfg.Mongo.ServerSelectionTimeout,
		MaxPoolSize:            cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	})
	checks["mongodb"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) }

	userRepo := mongodb.NewUserRepository(db)
	feedbackRepo := mongodb.NewFeedbackRepository(db)
	uploadRepo := mongodb.NewUploadRepository(db)
	if err := ensureIndexes(ctx, userRepo, feedbackRepo); err != nil {
		a.close()
		return nil, err
	}

	// --- Redis codes cache (optional) ---
	// The client dials lazily; while Redis is down the catalog service reads
	// through to the backend and readiness reports the outage.
	var cache ports.CodesCache
	if cfg.CodesCacheTTL > 0 {
		rdb := redisdb.NewClient(redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := redisdb.Ping(ctx, rdb); err != nil {
			log.Warn().Err(err).Msg("redis not reachable yet, codes cache reads will fall through")
		}
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		checks["redis"] = redisCheck(rdb)
		cache = redisdb.NewCodesCache(rdb, cfg.CodesCacheTTL)
	}

	// --- Classification service and optional warehouse ---
	up := upstream.NewClient(upstream.Config{BaseURL: cfg.Upstream.BaseURL, Timeout: cfg.Upstream.Timeout}, logger.Component("upstream"))

	var catalogSource ports.CatalogSource = up
	var searcher ports.Searcher = up
	if cfg.UsesBigQuery() {
		bqClient, err := bq.NewClient(ctx, bq.Config{
			ProjectID:       cfg.GCP.ProjectID,
			CredentialsJSON: cfg.GCP.CredentialsJSON,
			CredentialsFile: cfg.GCP.CredentialsFile,
			Dataset:         cfg.GCP.Dataset,
			MasterTable:     cfg.GCP.MasterTable,
			ImagesTable:     cfg.GCP.ImagesTable,
		}, logger.Component("bigquery"))
		if err != nil {
			a.close()
			return nil, fmt.Errorf("bigquery: %w", err)
		}
		a.closers = append(a.closers, func() { _ = bqClient.Close() })
		checks["bigquery"] = bqClient.Ping

		warehouse := bq.NewCatalog(bqClient)
		if cfg.CatalogBackend == config.BackendBigQuery {
			catalogSource = warehouse
		}
		if cfg.SearchBackend == config.BackendBigQuery {
			searcher = warehouse
		}
	}

	// --- Feedback image storage ---
	images, err := storage.NewMinIOStore(ctx, storage.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		Region:    cfg.MinIO.Region,
		UseSSL:    cfg.MinIO.UseSSL,
		URLExpiry: cfg.MinIO.URLExpiry,
	}, logger.Component("storage"))
	if err != nil {
		a.close()
		return nil, fmt.Errorf("minio: %w", err)
	}
	checks["minio"] = images.Ping

	// --- Services ---
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL, logger.Component("auth"))
	adminService := service.NewAdminService(userRepo, logger.Component("admin"))
	if _, err := adminService.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
		a.close()
		return nil, err
	}

	a.deps = api.Deps{
		Auth:            authService,
		Admin:           adminService,
		Feedback:        service.NewFeedbackService(feedbackRepo, images, logger.Component("feedback")),
		Catalog:         service.NewCatalogService(catalogSource, cache, logger.Component("catalog")),
		Search:          service.NewSearchService(searcher, logger.Component("search")),
		Upload:          service.NewUploadService(up, uploadRepo, logger.Component("upload")),
		Checks:          checks,
		JWTSecret:       cfg.JWTSecret,
		CORSOrigins:     cfg.CORSOrigins,
		LoginRatePerMin: cfg.LoginRatePerMin,
		Log:             logger.Component("http"),
	}
	return a, nil
}

func ensureIndexes(ctx context.Context, users *mongodb.UserRepository, feedback *mongodb.FeedbackRepository) error {
	if err := users.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("user indexes: %w", err)
	}
	if err := feedback.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("feedback indexes: %w", err)
	}
	return nil
}

func redisCheck(rdb *redis.Client) handler.Check {
	return func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) }
}
