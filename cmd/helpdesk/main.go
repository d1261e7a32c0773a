package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/helpdesk/internal/config"
	"github.com/kailas-cloud/helpdesk/internal/db"
	"github.com/kailas-cloud/helpdesk/internal/db/memory"
	dbRedis "github.com/kailas-cloud/helpdesk/internal/db/redis"
	"github.com/kailas-cloud/helpdesk/internal/domain"
	domchat "github.com/kailas-cloud/helpdesk/internal/domain/chat"
	domkb "github.com/kailas-cloud/helpdesk/internal/domain/knowledge"
	logpkg "github.com/kailas-cloud/helpdesk/internal/logger"
	"github.com/kailas-cloud/helpdesk/internal/metrics"
	budgetrepo "github.com/kailas-cloud/helpdesk/internal/repository/budget"
	"github.com/kailas-cloud/helpdesk/internal/repository/completioncache"
	convrepo "github.com/kailas-cloud/helpdesk/internal/repository/conversation"
	fbrepo "github.com/kailas-cloud/helpdesk/internal/repository/feedback"
	kbrepo "github.com/kailas-cloud/helpdesk/internal/repository/knowledge"
	rlrepo "github.com/kailas-cloud/helpdesk/internal/repository/ratelimit"
	chiTransport "github.com/kailas-cloud/helpdesk/internal/transport/chi"
	openaiLLM "github.com/kailas-cloud/helpdesk/internal/transport/openai"
	analyticsuc "github.com/kailas-cloud/helpdesk/internal/usecase/analytics"
	chatuc "github.com/kailas-cloud/helpdesk/internal/usecase/chat"
	completionuc "github.com/kailas-cloud/helpdesk/internal/usecase/completion"
	healthuc "github.com/kailas-cloud/helpdesk/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/helpdesk/internal/usecase/knowledge"
	ratelimituc "github.com/kailas-cloud/helpdesk/internal/usecase/ratelimit"
	usageuc "github.com/kailas-cloud/helpdesk/internal/usecase/usage"
	"github.com/kailas-cloud/helpdesk/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting helpdesk server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Bool("llm_enabled", cfg.LLM.Enabled()),
	)

	store, err := openStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register chat metrics explicitly (no init())
	metrics.RegisterChatMetrics()

	// Knowledge base
	knowledgeSvc := knowledgeuc.New(
		kbrepo.NewFileSource(cfg.Knowledge.Path),
		buildEngine(cfg.Knowledge),
		logger,
	)
	if err := knowledgeSvc.Load(ctx); err != nil {
		logger.Warn("Serving without a knowledge base", zap.String("path", cfg.Knowledge.Path), zap.Error(err))
	}
	if cfg.Knowledge.ReloadIntervalSec > 0 {
		go knowledgeSvc.Watch(ctx, time.Duration(cfg.Knowledge.ReloadIntervalSec)*time.Second)
	}

	responder, err := loadResponder(cfg.Chat.ResponsesPath)
	if err != nil {
		logger.Fatal("Failed to load canned responses", zap.Error(err))
	}

	// Pass nil interfaces (not typed nil pointers) when the LLM or its budget is disabled.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var (
		completer    domain.Completer
		llmHealth    healthuc.LLMChecker
		budgetReader usageuc.BudgetReader
		tracker      *completionuc.BudgetTracker
	)
	if cfg.LLM.Enabled() {
		var budget completionuc.BudgetChecker
		if b := cfg.LLM.Budget; b.Enabled() {
			tracker = completionuc.NewBudgetTracker(
				cfg.LLM.Provider, cfg.Storage.KeyPrefix,
				b.DailyTokenLimit, b.MonthlyTokenLimit,
				completionuc.BudgetAction(b.Action), logger,
			)
			// Connect persistence store: loads current counters from DB.
			tracker.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
			budget, budgetReader = tracker, tracker
		}
		cached := buildCompleter(cfg, store, budget, logger)
		completer, llmHealth = cached, cached
		logger.Info("LLM completer created",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
			zap.Bool("budget", budget != nil),
		)
	}

	// Repositories
	conversations := convrepo.New(store, cfg.Storage.KeyPrefix)
	feedback := fbrepo.New(store, cfg.Storage.KeyPrefix)
	limiter := ratelimituc.New(rlrepo.New(store, cfg.Storage.KeyPrefix), map[string]int{
		chiTransport.ScopeChat:     cfg.RateLimit.ChatPerMinute,
		chiTransport.ScopeFeedback: cfg.RateLimit.FeedbackPerMinute,
	}, logger)

	// Use case services
	chatSvc := chatuc.New(knowledgeSvc, completer, responder, conversations, feedback, chatuc.Config{
		SystemPrompt:     cfg.Chat.SystemPrompt,
		HistoryTurns:     cfg.LLM.HistoryTurns,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
	}, logger)
	analyticsSvc := analyticsuc.New(conversations, feedback)
	healthSvc := healthuc.New(store, llmHealth, knowledgeSvc)
	usageSvc := usageuc.New(budgetReader)

	server := chiTransport.NewServer(chatSvc, knowledgeSvc, analyticsSvc, healthSvc, usageSvc, limiter, chiTransport.Options{
		APIKeys: cfg.Auth.APIKeys,
		SessionCookie: chiTransport.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure,
			MaxAge: time.Duration(cfg.Session.MaxAgeSec) * time.Second,
		},
		HSTS: cfg.Session.Secure,
	}, logger)

	if len(cfg.Auth.APIKeys) == 0 {
		logger.Warn("No admin API keys configured, /admin is disabled")
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if tracker != nil {
		tracker.Wait()
	}

	logger.Info("Server stopped gracefully")
}

// openStore selects the storage backend. valkey is the redis driver with
// client-side caching enabled.
func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "redis", "valkey":
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
			CacheTTL: time.Duration(cfg.CacheTTLSec) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
		}
		return store, nil
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func buildEngine(cfg config.KnowledgeConfig) *domkb.Engine {
	th := domkb.DefaultThesaurus()
	if len(cfg.Thesaurus) > 0 {
		th = domkb.ThesaurusFromMap(cfg.Thesaurus)
	}
	return domkb.NewEngine(th, domkb.WithLimits(domkb.Limits{
		MaxTopics:          cfg.MaxTopics,
		MaxMatchesPerTopic: cfg.MaxMatchesPerTopic,
		MaxResults:         cfg.MaxResults,
	}))
}

// loadResponder reads canned replies from path; empty path uses the built-in table.
func loadResponder(path string) (*domchat.Responder, error) {
	if path == "" {
		return domchat.DefaultResponder(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read responses: %w", err)
	}
	r, err := domchat.ParseResponder(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return r, nil
}

// buildCompleter assembles the decorator chain: OpenAI -> Instrumented (budget) -> Cached.
// Cache hits are served without touching the budget.
func buildCompleter(
	cfg config.Config, store db.Store, budget completionuc.BudgetChecker, logger *zap.Logger,
) *completioncache.CachedCompleter {
	base := openaiLLM.NewCompleter(&openaiLLM.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     time.Duration(cfg.LLM.RequestTimeoutSec) * time.Second,
		Provider:    cfg.LLM.Provider,
		Logger:      logger,
	})
	instrumented := completionuc.NewInstrumentedCompleter(base, cfg.LLM.Provider, cfg.LLM.Model, budget, logger)
	return completioncache.New(
		instrumented, store, cfg.LLM.Model, cfg.Storage.KeyPrefix,
		time.Duration(cfg.LLM.CacheTTLSec)*time.Second,
		metrics.LLMCacheTotal, logger,
	)
}
