package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"courtracker/internal/container"
	"courtracker/internal/handlers"
	"courtracker/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	logger.Init()
	log := logger.Get()

	if err := godotenv.Load(".env.local"); err != nil {
		log.Info("No .env file found, using system environment variables")
	}

	ctx := context.Background()
	c, err := container.New(ctx)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer c.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/season", handlers.SeasonHandler(c))
	mux.HandleFunc("GET /api/anime/{id}", handlers.DetailHandler(c))
	mux.HandleFunc("GET /api/anime/{id}/watched", handlers.WatchedHandler(c))
	mux.HandleFunc("POST /api/anime/{id}/watched/{episodeId}", handlers.ToggleWatchedHandler(c))

	mux.HandleFunc("POST /api/admin/login", handlers.LoginHandler(c))
	mux.HandleFunc("GET /api/admin/season", c.Auth.RequireAdmin(handlers.AdminSeasonHandler(c)))
	mux.HandleFunc("PUT /api/admin/anime", c.Auth.RequireAdmin(handlers.SaveOverrideHandler(c)))
	mux.HandleFunc("PATCH /api/admin/anime/{id}", c.Auth.RequireAdmin(handlers.PatchOverrideHandler(c)))
	mux.HandleFunc("POST /api/admin/anime/{id}/publish", c.Auth.RequireAdmin(handlers.PublishHandler(c, true)))
	mux.HandleFunc("POST /api/admin/anime/{id}/unpublish", c.Auth.RequireAdmin(handlers.PublishHandler(c, false)))
	mux.HandleFunc("DELETE /api/admin/anime/{id}", c.Auth.RequireAdmin(handlers.DeleteOverrideHandler(c)))
	mux.HandleFunc("POST /api/admin/cache/clear", c.Auth.RequireAdmin(handlers.ClearCacheHandler(c)))

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	go func() {
		log.Infof("Server starting on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
}
