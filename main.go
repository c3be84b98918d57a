package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/malinawb/malina-bot/internal/billing"
	"github.com/malinawb/malina-bot/internal/config"
	"github.com/malinawb/malina-bot/internal/handlers"
	"github.com/malinawb/malina-bot/internal/middleware"
	"github.com/malinawb/malina-bot/internal/scheduler"
	"github.com/malinawb/malina-bot/internal/wb"
	"github.com/malinawb/malina-bot/store"
)

func main() {
	_ = config.LoadEnvFile("config.env")
	cfg := config.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	rdb, err := store.NewRedisClient(cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB, "malina_bot")
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	stateStore := store.NewRedisStateStore(rdb, cfg.ChatStateTTLHours)
	warehouseCache := store.NewRedisWarehouseCache(rdb, cfg.WarehouseMaxAgeHours)

	pgStore, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()

	billingService := billing.NewService(pgStore, billing.Config{
		DailyCost:   cfg.DailyCost,
		TrialPeriod: cfg.TrialPeriod,
		AdminIDs:    cfg.AdminIDs,
	})

	wbClient := wb.NewClient(&http.Client{Timeout: 30 * time.Second})

	settlementScheduler := scheduler.NewScheduler(pgStore, billingService.Engine(), scheduler.Config{
		HourUTC: cfg.SettlementHourUTC,
	})

	h := handlers.NewHandlers(billingService, stateStore, wbClient, warehouseCache)

	botToken := cfg.BotToken
	if botToken == "" {
		botToken = "YOUR_BOT_TOKEN_FROM_BOTFATHER"
		log.Println("Warning: Using default bot token. Set BOT_TOKEN environment variable.")
	}

	b, err := bot.New(botToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	settlementScheduler.Start()
	defer settlementScheduler.Stop()

	middlewares := middleware.NewMiddlewares(billingService)

	handlerChain := middlewares.ResolveUserMiddleware(
		middlewares.AnalyzeMessageMiddleware(
			middlewares.EntitlementMiddleware(
				h.MainHandler,
			),
		),
	)

	b.RegisterHandlerMatchFunc(func(update *models.Update) bool {
		return update.Message != nil
	}, handlerChain)

	b.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, handlerChain)

	log.Println("Bot started. Press Ctrl+C to stop.")
	b.Start(ctx)
}
