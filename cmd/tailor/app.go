package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/audit"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/parsing"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
	"github.com/jonathan/resume-tailor/internal/similarity"
	"github.com/jonathan/resume-tailor/internal/tailoring"
)

// app holds the components built from one configuration
type app struct {
	cfg    *config.Config
	logger *zap.Logger

	generator llm.Generator
	embedder  *llm.GeminiClient
	redis     *similarity.RedisCache
	database  *db.DB

	resumeParser *parsing.FallbackResumeParser
	jobParser    *parsing.FallbackJobParser
	engine       *tailoring.FallbackEngine
	matcher      *similarity.Matcher
}

// loadApp reads configuration and builds the parsers, the tailoring engine
// and, when an embedding key is present, the similarity matcher.
func loadApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}
	if err := a.build(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) build(ctx context.Context) error {
	cfg := a.cfg
	modelCfg := cfg.ModelConfig()

	usesModel := cfg.Parser.Strategy == string(parsing.StrategyModel) || cfg.Tailor.Strategy == string(tailoring.StrategyModel)
	if usesModel {
		gen, err := llm.NewGenerator(ctx, modelCfg, cfg.GenerationAPIKey())
		if err != nil {
			return fmt.Errorf("failed to create generation backend: %w", err)
		}
		a.generator = gen
		a.logger.Info("generation backend ready",
			observability.BackendFields(string(modelCfg.Provider), modelCfg.GetModel(llm.TierStandard))...)
	}

	var err error
	if a.resumeParser, err = parsing.NewResumeParser(parsing.Strategy(cfg.Parser.Strategy), a.generator, a.logger); err != nil {
		return err
	}
	if a.jobParser, err = parsing.NewJobParser(parsing.Strategy(cfg.Parser.Strategy), a.generator, a.logger); err != nil {
		return err
	}
	if a.engine, err = tailoring.NewEngine(tailoring.Strategy(cfg.Tailor.Strategy), a.generator, a.logger); err != nil {
		return err
	}

	if cfg.Similarity.Enabled && cfg.EmbeddingAPIKey() != "" {
		if err := a.buildMatcher(ctx, modelCfg); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) buildMatcher(ctx context.Context, modelCfg *llm.Config) error {
	cfg := a.cfg

	emb, err := llm.NewEmbedder(ctx, modelCfg, cfg.EmbeddingAPIKey())
	if err != nil {
		return fmt.Errorf("failed to create embedding backend: %w", err)
	}
	a.embedder = emb

	var cache similarity.Cache = similarity.NewMemoryCache(cfg.EmbeddingCacheTTL)
	if cfg.RedisURL != "" {
		rc, err := similarity.NewRedisCache(cfg.RedisURL, cfg.EmbeddingCacheTTL)
		if err != nil {
			return fmt.Errorf("failed to create redis cache: %w", err)
		}
		if err := rc.Ping(ctx); err != nil {
			a.logger.Warn("redis unavailable, using in-memory embedding cache", zap.Error(err))
			_ = rc.Close()
		} else {
			a.redis = rc
			cache = rc
		}
	}

	cached := similarity.NewCachedEmbedder(emb, cache, emb.EmbeddingModel(), a.logger)
	a.matcher = similarity.NewMatcher(cached, similarity.Options{
		Threshold:           cfg.Similarity.Threshold,
		MaxResponsibilities: cfg.Similarity.MaxResponsibilities,
		MaxBullets:          cfg.Similarity.MaxBullets,
		Concurrency:         cfg.Similarity.Concurrency,
	}, a.logger)
	return nil
}

// connectDB opens and migrates the database when one is configured.
// It returns nil, nil without a database_url.
func (a *app) connectDB(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	a.database = database
	return database, nil
}

func (a *app) newLimiter() *ratelimit.Limiter {
	rl := a.cfg.RateLimit
	cfg := ratelimit.NewConfig(rl.Enabled, rl.RequestsPerSecond, rl.Burst, rl.CleanupInterval)
	cfg.Whitelist = ratelimit.ParseIPList(rl.Whitelist)
	cfg.Blacklist = ratelimit.ParseIPList(rl.Blacklist)
	return ratelimit.NewLimiter(cfg)
}

func (a *app) newAuditLog() *audit.Log {
	return audit.New(a.cfg.Audit.Capacity)
}

// Close releases backends and connections. Safe to call more than once.
func (a *app) Close() {
	if a.generator != nil {
		_ = a.generator.Close()
		a.generator = nil
	}
	if a.embedder != nil {
		_ = a.embedder.Close()
		a.embedder = nil
	}
	if a.redis != nil {
		_ = a.redis.Close()
		a.redis = nil
	}
	if a.database != nil {
		a.database.Close()
		a.database = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
