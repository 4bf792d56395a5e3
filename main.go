package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	appbot "channelpost-bot/bot"
	"channelpost-bot/internal/auth"
	"channelpost-bot/internal/channel"
	"channelpost-bot/internal/config"
	"channelpost-bot/internal/database"
	"channelpost-bot/internal/drafts"
	"channelpost-bot/internal/handlers"
	"channelpost-bot/internal/health"
	"channelpost-bot/internal/locales"
	"channelpost-bot/internal/logger"
	"channelpost-bot/internal/mutator"
	"channelpost-bot/internal/publisher"
	"channelpost-bot/internal/render"
	"channelpost-bot/internal/scheduler"

	"github.com/getsentry/sentry-go"
	"github.com/mymmrac/telego"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logg := logger.New(cfg.AppEnv, cfg.Debug)

	if err := locales.Init(cfg.DefaultLanguage, logg); err != nil {
		logg.Fatal().Err(err).Msg("Failed to load translations")
	}

	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("sentry.Init failed")
	}
	defer sentry.Flush(2 * time.Second)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, db, err := database.ConnectDB(ctx, cfg, logg)
	if err != nil {
		sentry.CaptureException(err)
		logg.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			logg.Error().Err(err).Msg("Error disconnecting from MongoDB")
			sentry.CaptureException(err)
			return
		}
		logg.Info().Msg("Disconnected from MongoDB")
	}()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		sentry.CaptureException(err)
		logg.Fatal().Err(err).Msg("Failed to create indexes")
	}

	jobRepo := database.NewMongoJobRepository(db, cfg.StorageTimeout)
	postRepo := database.NewMongoPostRepository(db, cfg.StorageTimeout)
	adminRepo := database.NewMongoAdminRepository(db, cfg.StorageTimeout)

	var bot *telego.Bot
	if cfg.Debug {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultDebugLogger())
	} else {
		bot, err = telego.NewBot(cfg.BotToken, telego.WithDefaultLogger(false, false))
	}
	if err != nil {
		sentry.CaptureException(err)
		logg.Fatal().Err(err).Msg("Failed to create telego bot")
	}

	// One limiter for every outgoing call keeps the bot under the API flood limit.
	chanClient := channel.NewClient(bot, ratelimit.New(cfg.APIRatePerSecond), cfg.APITimeout)
	pub := publisher.New(chanClient, postRepo, render.CaptionLimit, logg)
	mut := mutator.New(chanClient, postRepo, render.CaptionLimit, logg)

	admins, err := auth.NewAdminChecker(adminRepo, chanClient, cfg.OwnerID, logg)
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to create admin checker")
	}
	if err := admins.Bootstrap(ctx, cfg.AdminIDs); err != nil {
		sentry.CaptureException(err)
		logg.Fatal().Err(err).Msg("Failed to bootstrap admins")
	}

	messageHandler, err := handlers.NewMessageHandler(handlers.Deps{
		ChannelID:    cfg.ChannelID,
		Location:     cfg.Location,
		CaptionLimit: render.CaptionLimit,
		Version:      cfg.Version,
		Admins:       admins,
		Sessions:     drafts.NewStore(),
		Publisher:    pub,
		Mutator:      mut,
		Jobs:         jobRepo,
		Posts:        postRepo,
		Preview:      chanClient,
		DBPing: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.StorageTimeout)
			defer cancel()
			return client.Ping(pingCtx, readpref.Primary())
		},
		Logger: logg,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to create message handler")
	}

	sched := scheduler.New(jobRepo, pub, scheduler.Options{
		Interval:     cfg.SchedulerInterval,
		BatchSize:    cfg.SchedulerBatchSize,
		CaptionLimit: render.CaptionLimit,
		Location:     cfg.Location,
	}, logg)
	if err := sched.Start(ctx); err != nil {
		logg.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	healthServer := health.NewServer(cfg.Port, health.NewRouter(cfg.IsProduction(), logg), logg)
	healthServer.Start()

	updates, err := bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		AllowedUpdates: []string{"message", "callback_query"},
	})
	if err != nil {
		sentry.CaptureException(err)
		logg.Fatal().Err(err).Msg("Failed to start long polling")
	}

	appBot, err := appbot.New(appbot.BotDeps{
		Bot:           bot,
		UpdatesChan:   updates,
		Handler:       messageHandler,
		RatePerSecond: cfg.APIRatePerSecond,
		Logger:        logg,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("Failed to create bot")
	}

	logg.Info().
		Str("version", cfg.Version).
		Str("channel", cfg.ChannelID).
		Str("timezone", cfg.Location.String()).
		Msg("Bot started")

	// Start returns once ctx is cancelled and in-flight updates are done.
	appBot.Start(ctx)

	logg.Info().Msg("Shutting down")
	<-sched.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("Health server shutdown failed")
	}
	logg.Info().Msg("Shutdown complete")
}
