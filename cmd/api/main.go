package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"housepaint/internal/adapter/repo"
	"housepaint/internal/compose"
	"housepaint/internal/domain"
	"housepaint/internal/http/handlers"
	httpapi "housepaint/internal/http/httpapi"
	"housepaint/internal/infra"
	"housepaint/internal/infra/credentials"
	"housepaint/internal/infra/geoip"
	"housepaint/internal/middleware"
	"housepaint/internal/providers/genai"
	"housepaint/internal/session"
	"housepaint/internal/storage"
)

func main() {
	// Load .env / .env.local when present.
	infra.LoadDotEnv()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database is optional: it carries the generation audit log and the
	// stored Gemini key.
	var (
		recorder domain.GenerationRecorder
		history  handlers.HistoryLister
		creds    *credentials.Store
	)
	if cfg.DatabaseURL != "" {
		if err := infra.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
			logger.Fatal().Err(err).Msg("failed to migrate database")
		}
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		runner := infra.NewSQLRunner(dbpool, logger.With().Str("component", "sql").Logger())
		generations := repo.NewGenerationRepo(runner)
		recorder = generations
		history = generations
		creds = credentials.NewStore(runner)
	}

	gen := newGenerator(ctx, cfg, creds, logger)
	composer := compose.NewComposer(gen, logger.With().Str("component", "composer").Logger())

	var store session.Store
	var memory *session.MemoryStore
	if cfg.RedisURL != "" {
		rdb, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		defer rdb.Close()
		store = session.NewRedisStore(rdb, cfg.SessionTTL)
	} else {
		memory = session.NewMemoryStore(cfg.SessionTTL)
		store = memory
	}

	var artifacts storage.ArtifactStore
	if cfg.UseS3() {
		artifacts, err = storage.NewS3Store(storage.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	} else {
		artifacts, err = storage.NewFileStore(cfg.StoragePath)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init artifact storage")
	}

	manager := session.NewManager(session.Options{
		Store:     store,
		Artifacts: artifacts,
		Composer:  composer,
		Recorder:  recorder,
		Logger:    logger.With().Str("component", "sessions").Logger(),
	})

	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable")
	} else if resolver != nil {
		defer resolver.Close()
		lookup = resolver.CountryCode
	}

	app := handlers.NewApp(cfg, manager, history, composer.Model(), logger)
	router := httpapi.NewRouter(app, httpapi.Options{CountryLookup: lookup})
	server := infra.NewHTTPServer(cfg, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Str("model", composer.Model()).Msg("API listening")
		return server.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		sweepSessions(gctx, memory, manager, logger)
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("server stopped")
}

// newGenerator picks the image backend. Gemini without a key is fatal here;
// the synthetic renderer is only used when asked for explicitly.
func newGenerator(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger infra.Logger) compose.Generator {
	genLogger := logger.With().Str("component", "generator").Logger()
	if cfg.ImageProvider == infra.ProviderSynthetic {
		logger.Warn().Msg("using synthetic image provider")
		return genai.NewSynthetic(&genLogger)
	}

	key := cfg.GeminiAPIKey
	if creds != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		resolved, err := creds.ResolveGeminiAPIKey(lookupCtx, key)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to read stored gemini api key")
		} else {
			key = resolved
		}
	}
	if key == "" {
		logger.Fatal().Err(domain.ErrMissingCredential).Msg("GEMINI_API_KEY is required when IMAGE_PROVIDER=gemini")
	}

	client, err := genai.NewClient(ctx, genai.Options{
		APIKey:  key,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &genLogger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init gemini client")
	}
	return client
}

// sweepSessions drops expired in-memory sessions with their artifacts and
// releases editors left behind by sessions any store has expired. memory is
// nil when sessions live in Redis.
func sweepSessions(ctx context.Context, memory *session.MemoryStore, manager *session.Manager, logger infra.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if memory != nil {
				if expired := memory.Sweep(); len(expired) > 0 {
					manager.Expire(ctx, expired...)
					logger.Debug().Int("count", len(expired)).Msg("expired sessions swept")
				}
			}
			if n := manager.Reap(ctx); n > 0 {
				logger.Debug().Int("count", n).Msg("released state of vanished sessions")
			}
		}
	}
}
