package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/Windi-Fikriyansyah/partner_market_be/internal/auth"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/config"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/db"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/handlers"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/realtime"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/messaging"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/services/notify"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/store"
	"github.com/Windi-Fikriyansyah/partner_market_be/internal/workflow"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	var st store.Store
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Println("using in-memory store, data is lost on restart")
		st = store.NewMemoryStore()
	default:
		gdb, err := db.Connect(cfg.DBDSN)
		if err != nil {
			log.Fatal(err)
		}
		if err := db.Migrate(gdb); err != nil {
			log.Fatal(err)
		}
		st = store.NewGormStore(gdb)
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Println("redis unreachable, notifications stay local:", err)
			_ = rdb.Close()
			rdb = nil
		}
		cancel()
	}

	hub := realtime.NewHub()
	go hub.Run()

	notifier := notify.New(st, hub, rdb, logger)
	messenger := messaging.New(st, hub, rdb, logger)
	engine := workflow.New(st, notifier, logger)
	guard := auth.NewGuard(auth.JWTVerifier{Secret: cfg.JWTSecret}, st)

	app := handlers.NewApp(handlers.Deps{
		Config:    cfg,
		Store:     st,
		Guard:     guard,
		Engine:    engine,
		Notify:    notifier,
		Messages:  messenger,
		Hub:       hub,
		AccessLog: true,
	})

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down")
	hub.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Println("shutdown:", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
