package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"staffregister/internal/bootstrap"
	"staffregister/internal/config"
	"staffregister/internal/httpapi"
	"staffregister/internal/httpmiddleware"
)

func main() {
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := bootstrap.Open(startCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitBackend == "redis" && app.Redis != nil {
		limiter = httpmiddleware.NewRedisWindow(app.Redis.Client, cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	r := httpapi.NewRouter(httpapi.NewHandler(app.Service, app.Dashboard), httpapi.Options{
		StaticDir:    cfg.StaticDir,
		TemplatesDir: cfg.TemplatesDir,
		Limiter:      limiter,
		Health: func(ctx context.Context) (gin.H, bool) {
			ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_, storeErr := app.Table.Rows(ctx)
			body := gin.H{"status": "ok", "store": storeErr == nil}
			healthy := storeErr == nil
			if app.Redis != nil {
				redisHealthy := app.Redis.Healthy(ctx)
				body["redis"] = redisHealthy
				healthy = healthy && redisHealthy
			}
			if !healthy {
				body["status"] = "degraded"
			}
			return body, healthy
		},
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding submissions 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}
