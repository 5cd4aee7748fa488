package cli

import (
	"context"
	"time"

	"smartspend/internal/advisor"
	"smartspend/internal/cache"
	"smartspend/internal/config"
	"smartspend/internal/log"
)

// Assistant bundles the advisor with its categorizer chain. Advisor is nil
// when no Gemini key is configured; Categorizer is never nil.
type Assistant struct {
	Advisor     *advisor.Advisor
	Categorizer advisor.Categorizer
	cleanup     []func()
}

// Close stops the cache cleanup loop and drops the Redis connection.
func (a *Assistant) Close() {
	for _, fn := range a.cleanup {
		fn()
	}
	a.cleanup = nil
}

// BuildAssistant wires the advisor when GEMINI_API_KEY is set. Advice is
// cached in Redis when REDIS_ADDR answers, otherwise in an in-process LRU.
func BuildAssistant(ctx context.Context, cfg *config.Config, logger *log.Logger) *Assistant {
	logger = logger.WithComponent(log.ComponentAdvisor)
	keywords := advisor.NewKeywordCategorizer()
	a := &Assistant{Categorizer: keywords}
	if !cfg.AdvisorEnabled() {
		logger.Info("Advisor disabled - no GEMINI_API_KEY provided")
		return a
	}

	gen, err := advisor.NewGeminiGenerator(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Warn("Failed to initialize Gemini client, advisor disabled", log.FieldError, err.Error())
		return a
	}

	var adviceCache cache.Cache[string]
	if cfg.RedisAddr != "" {
		if rdb := cache.NewRedisClient(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}); rdb != nil {
			adviceCache = cache.NewRedisCache(rdb, "smartspend:advice:", cfg.AdviceCacheTTL)
			a.cleanup = append(a.cleanup, func() { _ = rdb.Close() })
		}
	}
	if adviceCache == nil {
		lru := cache.NewLRUCache[string](100, cfg.AdviceCacheTTL)
		manager := cache.NewManager()
		manager.Register(lru)
		manager.StartCleanup(5 * time.Minute)
		adviceCache = lru
		a.cleanup = append(a.cleanup, manager.Stop)
	}

	a.Advisor = advisor.New(gen, cfg.GeminiModel, adviceCache)
	a.Categorizer = advisor.Chain{advisor.NewModelCategorizer(gen, cfg.GeminiModel), keywords}
	logger.Info("Advisor enabled", "model", cfg.GeminiModel, "redis", cfg.RedisAddr != "")
	return a
}
