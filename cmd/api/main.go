package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/jmspivey7/PlateSync-sub002/internal/adapter/repo"
	"github.com/jmspivey7/PlateSync-sub002/internal/auth"
	"github.com/jmspivey7/PlateSync-sub002/internal/billing"
	"github.com/jmspivey7/PlateSync-sub002/internal/counts"
	"github.com/jmspivey7/PlateSync-sub002/internal/http/handlers"
	httpapi "github.com/jmspivey7/PlateSync-sub002/internal/http/httpapi"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra/credentials"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra/geoip"
	"github.com/jmspivey7/PlateSync-sub002/internal/middleware"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
	"github.com/jmspivey7/PlateSync-sub002/internal/planningcenter"
	"github.com/jmspivey7/PlateSync-sub002/internal/storage"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "api")

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()
	runner := infra.NewSQLRunner(dbpool, logger)

	files, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare storage")
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.GeoIPDBPath).Msg("geoip database unavailable, using proxy headers only")
	}
	defer geo.Close()
	var lookup middleware.CountryLookup
	if geo.Available() {
		lookup = geo.CountryCode
	}

	churches := repo.NewChurchRepository(runner)
	users := repo.NewUserRepository(runner)
	members := repo.NewMemberRepository(runner)
	serviceOptions := repo.NewServiceOptionRepository(runner)
	recipients := repo.NewReportRecipientRepository(runner)
	batches := repo.NewBatchRepository(runner)
	templates := repo.NewTemplateRepository(runner)
	subscriptions := repo.NewSubscriptionRepository(runner)
	creds := credentials.NewStore(runner)

	mailer := notify.NewService(templates, repo.NewOutboxRepository(runner), logger)

	app := &handlers.App{
		Logger: logger,
		Auth: &auth.Service{
			Churches:  churches,
			Users:     users,
			Admins:    repo.NewGlobalAdminRepository(runner),
			Resets:    repo.NewPasswordResetRepository(runner),
			Mailer:    mailer,
			Logger:    logger,
			JWTSecret: cfg.JWTSecret,
			AppURL:    cfg.PublicBaseURL,
			TrialDays: cfg.TrialDays,
		},
		Counts: &counts.Service{
			Batches:    batches,
			Donations:  repo.NewDonationRepository(runner),
			Members:    members,
			Services:   serviceOptions,
			Recipients: recipients,
			Churches:   churches,
			Notifier:   mailer,
			Logger:     logger,
		},
		Notify: mailer,
		Billing: billing.NewService(billing.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			PriceMonthly:  cfg.StripePriceMonthly,
			PriceAnnual:   cfg.StripePriceAnnual,
			AppURL:        cfg.PublicBaseURL,
		}, subscriptions, logger),
		Planning: planningcenter.NewClient(planningcenter.Config{
			ClientID:     cfg.PlanningCenterClientID,
			ClientSecret: cfg.PlanningCenterClientSecret,
			BaseURL:      cfg.PlanningCenterBaseURL,
			RedirectURL:  cfg.PublicBaseURL + "/api/integrations/planning-center/callback",
			StateSecret:  cfg.JWTSecret,
		}, members, creds, logger),
		Churches:      churches,
		Users:         users,
		Members:       members,
		Services:      serviceOptions,
		Recipients:    recipients,
		Batches:       batches,
		Templates:     templates,
		Subscriptions: subscriptions,
		Credentials:   creds,
		Files:         files,
		AppURL:        cfg.PublicBaseURL,
		Ping:          dbpool.Ping,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:         cfg.JWTSecret,
		AllowedOrigins:    cfg.AllowedOrigins,
		Logger:            logger,
		AuthRatePerMinute: cfg.RateLimitPerMin,
		Country:           lookup,
		StaticDir:         files.BasePath(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on %s", server.Addr())
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
