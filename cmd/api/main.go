package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Snoop111/creative-ai-studio-demo/internal/http/handlers"
	httpapi "github.com/Snoop111/creative-ai-studio-demo/internal/http/httpapi"
	"github.com/Snoop111/creative-ai-studio-demo/internal/infra"
	"github.com/Snoop111/creative-ai-studio-demo/internal/jobs"
	"github.com/Snoop111/creative-ai-studio-demo/internal/progress"
	"github.com/Snoop111/creative-ai-studio-demo/internal/prompt"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers/image"
	enhance "github.com/Snoop111/creative-ai-studio-demo/internal/providers/prompt"
	"github.com/Snoop111/creative-ai-studio-demo/internal/providers/video"
	"github.com/Snoop111/creative-ai-studio-demo/internal/storage"
	"github.com/Snoop111/creative-ai-studio-demo/internal/vfx"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	store := newStore(cfg, logger)
	redisClient := infra.NewRedisClient(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := jobs.NewCache(redisClient, cfg.CacheTTL, logger)
	hub := progress.NewHub(logger)
	manager := jobs.NewManager(store, cache, hub, logger)
	dispatcher := jobs.NewDispatcher(ctx, logger)

	avail := providers.Availability{
		Veo:         cfg.GeminiAPIKey != "",
		Kling:       cfg.KlingAccessKey != "" && cfg.KlingSecretKey != "",
		GeminiImage: cfg.GeminiAPIKey != "",
		QwenImage:   cfg.QwenAPIKey != "",
	}
	logger.Info().
		Bool("veo", avail.Veo).
		Bool("kling", avail.Kling).
		Bool("gemini_image", avail.GeminiImage).
		Bool("qwen_image", avail.QwenImage).
		Msg("provider availability")

	videoGens := make(map[string]video.Generator)
	if avail.Veo {
		veo, err := video.NewVeo(ctx, video.VeoOptions{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.VeoModel,
			Logger: logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("veo client init failed")
		}
		videoGens["veo"] = veo
	}
	if avail.Kling {
		kling, err := video.NewKling(video.KlingOptions{
			AccessKey: cfg.KlingAccessKey,
			SecretKey: cfg.KlingSecretKey,
			BaseURL:   cfg.KlingBaseURL,
			Logger:    logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("kling client init failed")
		}
		videoGens["kling"] = kling
	}

	imageGens := make(map[string]image.Generator)
	if avail.GeminiImage {
		gemini, err := image.NewGemini(image.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			BaseURL: cfg.GeminiBaseURL,
			Model:   cfg.GeminiModel,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini image client init failed")
		}
		imageGens["gemini-image"] = gemini
	}
	if avail.QwenImage {
		qwen, err := image.NewQwen(image.QwenOptions{
			APIKey:  cfg.QwenAPIKey,
			BaseURL: cfg.QwenBaseURL,
			Model:   cfg.QwenModel,
			Logger:  logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("qwen image client init failed")
		}
		imageGens["qwen-image"] = qwen
	}

	orchestrator := jobs.NewOrchestrator(jobs.OrchestratorOptions{
		Registry:        providers.NewRegistry(avail),
		Composer:        prompt.NewComposer(vfx.NewRegistry()),
		Enhancer:        newEnhancer(cfg, logger),
		EnhancerTimeout: cfg.EnhancerTimeout,
		Manager:         manager,
		Dispatcher:      dispatcher,
		Cache:           cache,
		VideoStrategy:   jobs.NewVideoStrategy(manager, store, cache, logger),
		ImageStrategy:   jobs.NewImageStrategy(manager, store, cache, logger),
		VideoGenerators: videoGens,
		ImageGenerators: imageGens,
		Logger:          logger,
	})
	resolver := jobs.NewResolver(manager, cache, store, cfg.TenantPrefixes, cfg.PresignTTL, logger)

	app := handlers.NewApp(orchestrator, resolver, hub, logger)
	router := httpapi.NewRouter(app, httpapi.RouterOptions{
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
	})
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	stopSignals()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// Give in-flight generation strategies a chance to record their outcome.
	dispatcher.Shutdown(30 * time.Second)
	logger.Info().Msg("server stopped")
}

func newStore(cfg *infra.Config, logger infra.Logger) storage.Store {
	if cfg.ObjectStoreURL != "" {
		store, err := storage.NewObjectStore(storage.ObjectStoreOptions{
			BaseURL:    cfg.ObjectStoreURL,
			ServiceKey: cfg.ObjectStoreKey,
			Bucket:     cfg.OutputBucket,
			Logger:     logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("object store init failed")
		}
		logger.Info().Str("bucket", cfg.OutputBucket).Msg("using hosted object storage")
		return store
	}
	store, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("file store init failed")
	}
	logger.Info().Str("path", cfg.StoragePath).Msg("using local filesystem storage")
	return store
}

func newEnhancer(cfg *infra.Config, logger infra.Logger) enhance.Enhancer {
	if cfg.EnhancerProvider == "gemini" && cfg.GeminiAPIKey != "" {
		enhancer, err := enhance.NewGeminiEnhancer(enhance.GeminiOptions{
			APIKey:   cfg.GeminiAPIKey,
			BaseURL:  cfg.GeminiBaseURL,
			Fallback: enhance.NewStaticEnhancer(),
		})
		if err == nil {
			return enhancer
		}
		logger.Warn().Err(err).Msg("gemini enhancer init failed, using static enhancer")
	}
	return enhance.NewStaticEnhancer()
}
