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

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/yeremiapane/restaurant-till/config"
	"github.com/yeremiapane/restaurant-till/database"
	"github.com/yeremiapane/restaurant-till/kds"
	"github.com/yeremiapane/restaurant-till/router"
	"github.com/yeremiapane/restaurant-till/services"
	"github.com/yeremiapane/restaurant-till/utils"
)

func main() {
	cfg := config.GetConfig()

	if err := utils.ConfigureLogger(cfg.Log); err != nil {
		utils.ErrorLogger.Fatalf("Failed to configure logger: %v", err)
	}
	utils.SetJWTConfig(cfg.JWT.SecretKey, cfg.JWT.Issuer, cfg.JWT.TokenDuration)

	// Set gin mode
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}

	hub := kds.NewHub()
	var (
		notifier services.Notifier = hub
		cache    services.TableStatusCache
	)

	ctx, stopListening := context.WithCancel(context.Background())
	defer stopListening()

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			utils.ErrorLogger.Printf("Redis unavailable, running without cache: %v", err)
		} else {
			bridge := kds.NewRedisBridge(rdb, cfg.Redis.Prefix, hub)
			go bridge.Listen(ctx)
			notifier = bridge
			cache = services.NewRedisTableCache(rdb, cfg.Redis.Prefix, cfg.Redis.StatusTTL)
			utils.InfoLogger.Println("Redis connected: table cache and notification fan-out enabled")
		}
		defer rdb.Close()
	}

	core := services.NewCore(db, services.CoreOptions{
		StoreTimeout: cfg.Till.StoreTimeout,
		Location:     cfg.Till.Location(),
		Notifier:     notifier,
		Cache:        cache,
	})

	scheduler := services.NewClosingScheduler(core.Till, core.Guard, cfg.Till.ClosingCron)
	if err := scheduler.Start(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to start closing scheduler: %v", err)
	}

	r := router.SetupRouter(core, hub, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	utils.InfoLogger.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Printf("Server forced to shutdown: %v", err)
	}
	scheduler.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	utils.InfoLogger.Println("Server exited")
}
