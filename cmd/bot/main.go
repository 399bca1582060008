package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/redis/go-redis/v9"

	"github.com/KirkDiggler/remindme/internal/common/clock"
	"github.com/KirkDiggler/remindme/internal/config"
	"github.com/KirkDiggler/remindme/internal/database"
	"github.com/KirkDiggler/remindme/internal/handlers/discord"
	"github.com/KirkDiggler/remindme/internal/httpserver"
	"github.com/KirkDiggler/remindme/internal/httpserver/deps"
	"github.com/KirkDiggler/remindme/internal/logger"
	"github.com/KirkDiggler/remindme/internal/repositories/guild"
	"github.com/KirkDiggler/remindme/internal/repositories/interaction"
	"github.com/KirkDiggler/remindme/internal/repositories/pagination"
	reminderRepo "github.com/KirkDiggler/remindme/internal/repositories/reminder"
	"github.com/KirkDiggler/remindme/internal/services/delivery"
	reminderService "github.com/KirkDiggler/remindme/internal/services/reminder"
	"github.com/KirkDiggler/remindme/internal/services/scheduler"
	"github.com/KirkDiggler/remindme/internal/timeparse"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("remindme failed: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	defer func() { _ = logClient.Sync() }()

	// Initialize the database and apply migrations
	db, err := database.Open(&database.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// Initialize repositories
	reminders, err := reminderRepo.NewSQL(&reminderRepo.Config{DB: db, Location: cfg.Location})
	if err != nil {
		return fmt.Errorf("failed to create reminder repository: %w", err)
	}

	guilds, err := guild.NewSQL(&guild.Config{DB: db, Location: cfg.Location})
	if err != nil {
		return fmt.Errorf("failed to create guild repository: %w", err)
	}

	interactions, err := interaction.NewRedis(&interaction.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create interaction repository: %w", err)
	}

	pages, err := pagination.NewRedis(&pagination.Config{RedisClient: redisClient})
	if err != nil {
		return fmt.Errorf("failed to create pagination repository: %w", err)
	}

	clk := clock.New(cfg.Location)

	parser, err := timeparse.New(&timeparse.Config{Clock: clk, Location: cfg.Location})
	if err != nil {
		return fmt.Errorf("failed to create time parser: %w", err)
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Initialize services
	deliverySvc, err := delivery.New(&delivery.Config{
		Sender:       session,
		Interactions: interactions,
		Logger:       logClient,
		Color:        cfg.Colors.Info,
	})
	if err != nil {
		return fmt.Errorf("failed to create delivery service: %w", err)
	}

	schedulerSvc, err := scheduler.New(&scheduler.Config{
		Reminders:      reminders,
		Delivery:       deliverySvc,
		Clock:          clk,
		Logger:         logClient,
		Workers:        cfg.DeliveryWorkers,
		ResyncSchedule: cfg.ResyncSchedule,
		Location:       cfg.Location,
	})
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}

	reminderSvc, err := reminderService.New(&reminderService.Config{
		Reminders:    reminders,
		Scheduler:    schedulerSvc,
		Interactions: interactions,
		Parser:       parser,
		Clock:        clk,
		Logger:       logClient,
	})
	if err != nil {
		return fmt.Errorf("failed to create reminder service: %w", err)
	}

	bot, err := discord.New(&discord.Config{
		Session:       session,
		ApplicationID: cfg.ApplicationID,
		GuildID:       cfg.GuildID,
		Reminders:     reminderSvc,
		Pages:         pages,
		Guilds:        guilds,
		Scheduler:     schedulerSvc,
		Colors:        cfg.Colors,
		Logger:        logClient,
	})
	if err != nil {
		return fmt.Errorf("failed to create Discord bot: %w", err)
	}

	server := httpserver.New(cfg.HTTPAddr, logClient, deps.Deps{
		Logger:    logClient,
		StartTime: startTime,
		Guilds:    guilds,
		Reminders: reminders,
		Parser:    parser,
		Ready:     bot.Ready,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The scheduler runs before the bot connects so READY can reconcile into it
	if err := schedulerSvc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	if err := bot.Start(); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	select {
	case <-ctx.Done():
		logClient.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logClient.Error("HTTP server failed", logger.Error(err))
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	var errs []error
	if err := server.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}
	if err := bot.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("bot: %w", err))
	}
	if err := schedulerSvc.Stop(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}

	logClient.Info("bot has been shut down")
	return errors.Join(errs...)
}
