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

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"piriven.moe.gov.lk/web/internal/cms"
	"piriven.moe.gov.lk/web/internal/config"
	"piriven.moe.gov.lk/web/internal/echocache"
	handlersPkg "piriven.moe.gov.lk/web/internal/handlers"
	"piriven.moe.gov.lk/web/internal/i18n"
	"piriven.moe.gov.lk/web/internal/observability"
	"piriven.moe.gov.lk/web/internal/reveal"
	"piriven.moe.gov.lk/web/internal/seo"
	"piriven.moe.gov.lk/web/internal/settle"
	"piriven.moe.gov.lk/web/internal/status"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	localesDir   = "locales"
	// devMode reparses templates per request and relaxes security headers.
	devMode    bool
	tmplCache  *templateSet
	i18nBundle *i18n.Bundle

	siteURL       = "https://piriven.moe.gov.lk"
	cmsClient     = cms.NewClient("")
	newsEcho      *echocache.Cache[cms.News]
	noticeEcho    *echocache.Cache[cms.Notice]
	metrics       *observability.Metrics
	logger        = zap.NewNop()
	analytics     handlersPkg.Analytics
	fetchLimit    = settle.DefaultLimit
	revealConfig  = reveal.DefaultConfig()
	nowFunc       = time.Now
	statusChecker *status.Checker
	sessionKey    string
	secureCookies bool
)

const echoKeyPrefix = "piriven:echo:"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliFlags override values loaded from the environment.
type cliFlags struct {
	envFile   string
	addr      string
	templates string
	public    string
	locales   string
	content   string
	apiBase   string
	siteURL   string
	dev       bool
}

func newRootCmd() *cobra.Command {
	var flags cliFlags
	root := &cobra.Command{
		Use:           "piriven-web",
		Short:         "Public website of the Division of Piriven & Bhikkhu Education",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.envFile, "env-file", ".env", "dotenv file to read before the process environment")
	pf.StringVar(&flags.addr, "addr", "", "HTTP listen address")
	pf.StringVar(&flags.templates, "templates", "", "templates directory")
	pf.StringVar(&flags.public, "public", "", "public assets directory")
	pf.StringVar(&flags.locales, "locales", "", "UI string catalogue directory")
	pf.StringVar(&flags.content, "content", "", "local markdown content directory")
	pf.StringVar(&flags.apiBase, "api", "", "content API base URL")
	pf.StringVar(&flags.siteURL, "site-url", "", "public site URL for canonical links")
	pf.BoolVar(&flags.dev, "dev", false, "development mode")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Serve the website",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, flags)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "sitemap",
		Short: "Print sitemap.xml to stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), seo.Sitemap(cfg.Site.URL, time.Now()))
			return err
		},
	})
	return root
}

func loadConfig(cmd *cobra.Command, flags cliFlags) (config.Config, error) {
	cfg, err := config.Load(config.WithEnvFile(flags.envFile))
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	changed := cmd.Flags().Changed
	if changed("addr") {
		cfg.Server.Addr = flags.addr
	}
	if changed("templates") {
		cfg.Server.TemplatesDir = flags.templates
	}
	if changed("public") {
		cfg.Server.PublicDir = flags.public
	}
	if changed("locales") {
		cfg.Server.LocalesDir = flags.locales
	}
	if changed("content") {
		cfg.Server.ContentDir = flags.content
	}
	if changed("api") {
		cfg.CMS.APIBase = flags.apiBase
	}
	if changed("site-url") {
		cfg.Site.URL = flags.siteURL
	}
	if changed("dev") {
		cfg.Server.Dev = flags.dev
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, flags cliFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	log, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := setup(ctx, cfg, log); err != nil {
		log.Error("setup failed", zap.Error(err))
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("web listening",
			zap.String("addr", cfg.Server.Addr),
			zap.Bool("dev", devMode),
			zap.String("api", cmsClient.BaseURL()),
			zap.String("echo_cache", cfg.EchoCache.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

// setup initialises the package globals the handlers read.
func setup(ctx context.Context, cfg config.Config, log *zap.Logger) error {
	logger = log
	templatesDir = cfg.Server.TemplatesDir
	publicDir = cfg.Server.PublicDir
	localesDir = cfg.Server.LocalesDir
	devMode = cfg.Server.Dev
	siteURL = cfg.Site.URL
	sessionKey = cfg.Session.SigningKey
	secureCookies = cfg.Session.Secure
	fetchLimit = cfg.CMS.FetchConcurrency
	analytics = handlersPkg.AnalyticsFromConfig(cfg.Analytics, devMode)
	metrics = observability.NewMetrics()

	cmsClient = cms.NewClient(cfg.CMS.APIBase,
		cms.WithTimeout(cfg.CMS.Timeout),
		cms.WithLogger(logger),
		cms.WithMetrics(metrics),
		cms.WithContentDir(cfg.Server.ContentDir),
	)

	statusChecker = status.NewChecker(0)
	statusChecker.Register("cms", cmsClient.Ping)

	store, err := newEchoStore(ctx, cfg)
	if err != nil {
		return err
	}
	if r, ok := store.(*echocache.Redis); ok {
		statusChecker.Register("echo_cache", r.Ping)
	}
	newsEcho = echocache.New[cms.News](store, "news", metrics)
	noticeEcho = echocache.New[cms.Notice](store, "notice", metrics)

	bundle, err := i18n.Load(localesDir, i18n.Default)
	if err != nil {
		return fmt.Errorf("load locales: %w", err)
	}
	i18nBundle = bundle

	if !devMode {
		// Parse templates once in production
		tc, err := parseTemplates()
		if err != nil {
			return fmt.Errorf("parse templates: %w", err)
		}
		tmplCache = tc
	}
	return nil
}

// newEchoStore picks the echo cache backend. An unreachable Redis is logged
// and the in-process store is used instead.
func newEchoStore(ctx context.Context, cfg config.Config) (echocache.Store, error) {
	switch cfg.EchoCache.Backend {
	case config.EchoCacheRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := echocache.NewRedis(client, echoKeyPrefix, cfg.EchoCache.TTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := store.Ping(pingCtx); err != nil {
			logger.Warn("echo cache redis unreachable, using memory", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = client.Close()
			return echocache.NewMemory(cfg.EchoCache.TTL), nil
		}
		return store, nil
	case config.EchoCacheMemory, "":
		return echocache.NewMemory(cfg.EchoCache.TTL), nil
	default:
		return nil, fmt.Errorf("unknown echo cache backend %q", cfg.EchoCache.Backend)
	}
}
