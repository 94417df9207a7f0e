package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jmspivey7/PlateSync-sub002/internal/adapter/repo"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra"
	"github.com/jmspivey7/PlateSync-sub002/internal/infra/credentials"
	"github.com/jmspivey7/PlateSync-sub002/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	outbox := repo.NewOutboxRepository(runner)

	dispatcher := &notify.Dispatcher{
		Outbox:    outbox,
		Sender:    notify.NewSendGridClient(cfg.SendGridBaseURL, cfg.EmailFromAddress, cfg.EmailFromName),
		Key:       keySource(credentials.NewStore(runner), cfg.SendGridAPIKey, logger),
		Logger:    logger,
		BatchSize: cfg.WorkerBatchSize,
	}

	jobs := &maintenance{
		subscriptions: repo.NewSubscriptionRepository(runner),
		outbox:        outbox,
		logger:        logger,
	}
	scheduler := cron.New(cron.WithChain(cron.Recover(cronLogger{logger})))
	if err := jobs.register(ctx, scheduler); err != nil {
		logger.Fatal().Err(err).Msg("worker: schedule jobs failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(gctx, cfg.WorkerPollInterval)
	})
	g.Go(func() error {
		scheduler.Start()
		<-gctx.Done()
		<-scheduler.Stop().Done()
		return nil
	})

	logger.Info().Dur("poll_interval", cfg.WorkerPollInterval).Msg("worker: started")
	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
