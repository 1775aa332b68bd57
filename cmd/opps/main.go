// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/opps-go/internal/admin"
	"github.com/olegiv/opps-go/internal/auth"
	"github.com/olegiv/opps-go/internal/boxes"
	"github.com/olegiv/opps-go/internal/cache"
	"github.com/olegiv/opps-go/internal/config"
	"github.com/olegiv/opps-go/internal/content"
	"github.com/olegiv/opps-go/internal/handler/api"
	"github.com/olegiv/opps-go/internal/logging"
	"github.com/olegiv/opps-go/internal/middleware"
	"github.com/olegiv/opps-go/internal/scheduler"
	"github.com/olegiv/opps-go/internal/service"
	"github.com/olegiv/opps-go/internal/session"
	"github.com/olegiv/opps-go/internal/shortener"
	"github.com/olegiv/opps-go/internal/store"
	"github.com/olegiv/opps-go/internal/version"
)

// mediaMaxAge is the Cache-Control max-age of image files.
const mediaMaxAge = 30 * 24 * 60 * 60

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "opps - content API for news sites\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_SESSION_SECRET    Session and token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_DB_PATH           SQLite database path (default: ./data/opps.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_SITE_ID           Site owning rows created through the API (default: 1)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_SHORTENER_URL     URL shortener service (optional, built-in when empty)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_REDIS_URL         Redis URL for the box cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OPPS_ADMIN_RULES_PATH  YAML or TOML admin layout overrides (optional)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("opps %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	versionInfo := version.Get()

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the events table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, store.SeedOptions{SiteDomain: cfg.SiteDomain}); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	site, err := store.New(db).GetSiteByID(ctx, cfg.SiteID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("site %d does not exist; set OPPS_DO_SEED=true or OPPS_SITE_ID", cfg.SiteID)
	}
	if err != nil {
		return fmt.Errorf("loading site %d: %w", cfg.SiteID, err)
	}

	// Box cache
	cacheConfig := cache.DefaultCacheConfig()
	cacheConfig.Prefix = cfg.CachePrefix
	cacheConfig.DefaultTTL = cfg.CacheTTLDuration()
	cacheConfig.MaxSize = cfg.CacheMaxSize
	if cfg.UseRedisCache() {
		cacheConfig.Type = cache.CacheBackendRedis
		cacheConfig.RedisURL = cfg.RedisURL
	}
	cacheResult, err := cache.NewCacheWithInfo(cacheConfig)
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = cacheResult.Cache.Close() }()
	switch {
	case cacheResult.IsFallback:
		slog.Warn("cache initialized", "backend", cacheResult.BackendType, "note", "Redis unavailable, using fallback", "error", cacheResult.FallbackErr)
	case cacheResult.BackendType == cache.CacheBackendRedis:
		slog.Info("cache initialized", "backend", "redis", "url", cache.SanitizeRedisURL(cfg.RedisURL))
	default:
		slog.Info("cache initialized", "backend", cacheResult.BackendType)
	}

	// Services
	eventService := service.NewEventService(db)
	redirectService := service.NewRedirectService(db, logger)

	var sh shortener.Shortener
	if cfg.UseRemoteShortener() {
		sh = shortener.NewClient(cfg.ShortenerURL, cfg.ShortenerToken, nil)
		slog.Info("url shortener configured", "backend", "remote")
	} else {
		sh = shortener.NewLocal(redirectService, site.ID, site.Domain)
		slog.Info("url shortener configured", "backend", "local", "domain", site.Domain)
	}

	containerService := content.NewContainerService(db, redirectService, sh, eventService, logger)
	boxService := boxes.NewService(db, boxes.DefaultRegistry(), redirectService, cacheResult.Cache, cfg.CacheTTLDuration(), logger)
	containerService.OnSave(boxService.ContainerSaved)
	channelService := service.NewChannelService(db, logger)
	channelService.OnChange(boxService.Invalidate)

	rules, err := admin.LoadRules(cfg.AdminRulesPath)
	if err != nil {
		return fmt.Errorf("loading admin rules: %w", err)
	}
	adminRegistry, err := admin.NewDefaultRegistry(rules, logger)
	if err != nil {
		return fmt.Errorf("registering admin layouts: %w", err)
	}
	for _, key := range adminRegistry.UnusedRules() {
		slog.Warn("admin rule matches no layout", "rule", key, "suggestions", adminRegistry.Suggest(key))
	}

	sched := scheduler.New(db, boxService, eventService, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Authentication
	sessionManager := session.New(db, session.Options{
		Secure:   !cfg.IsDevelopment(),
		Lifetime: cfg.TokenTTL,
	})
	tokens := auth.NewTokenIssuer(cfg.SessionSecret, cfg.TokenTTL)
	authenticator := middleware.NewAuthenticator(db, sessionManager, tokens)
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	apiHandler := api.NewHandler(db, api.Deps{
		Containers: containerService,
		Channels:   channelService,
		Configs:    service.NewConfigService(db, logger),
		Images:     service.NewImageService(db, cfg.UploadsDir, cfg.MediaURL, logger),
		Sources:    service.NewSourceService(db, logger),
		Redirects:  redirectService,
		Events:     eventService,
		Boxes:      boxService,
		Admin:      adminRegistry,
		Scheduler:  sched,
		Auth:       authenticator,
		Tokens:     tokens,
		Sessions:   sessionManager,
		Login:      loginProtection,
		SiteID:     site.ID,
		UploadsDir: cfg.UploadsDir,
		Version:    versionInfo.Version,
	}, logger)

	redirectsMiddleware, err := middleware.NewRedirectsMiddleware(redirectService, site.ID, 0)
	if err != nil {
		return fmt.Errorf("initializing redirects middleware: %w", err)
	}
	redirectService.OnChange(redirectsMiddleware.InvalidateCache)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.RequestPath)
	r.Use(redirectsMiddleware.Handler)
	r.Use(sessionManager.LoadAndSave)

	apiHandler.Routes(r)

	if prefix := "/" + strings.Trim(cfg.MediaURL, "/"); strings.HasPrefix(cfg.MediaURL, "/") && prefix != "/" {
		files := http.StripPrefix(prefix, http.FileServer(noDirFS{http.Dir(cfg.UploadsDir)}))
		r.With(middleware.StaticCache(mediaMaxAge)).Get(prefix+"/*", files.ServeHTTP)
		slog.Info("serving media files", "prefix", prefix, "dir", cfg.UploadsDir)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", versionInfo.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// noDirFS hides directory listings of the uploads directory.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if stat.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
