package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"imagetinder/cmd/app"
	"imagetinder/internal/config"
	handlers "imagetinder/internal/handler"
	"imagetinder/internal/middleware"
)

func main() {
	// setting up config
	cfg := config.LoadConfig()

	if cfg.JWTSecretKey == "" {
		log.Fatal("JWT_SECRET_KEY не установлен в .env файле")
	}

	db, repo, services, imageCache := app.App(cfg)
	defer db.CloseDB()

	handler := handlers.NewHandlers(repo, services, imageCache, cfg)

	router := mux.NewRouter()

	// setting up routes
	router.HandleFunc("/", handlers.HomeHandler)
	router.HandleFunc("/health", handlers.HealthHandler)

	router.HandleFunc("/api/auth/register", handler.Register)
	router.HandleFunc("/api/auth/login", handler.Login)
	router.HandleFunc("/api/auth/refresh-token", handler.RefreshToken)

	router.HandleFunc("/api/me", handler.GetCurrentUser)

	router.HandleFunc("/api/collections", handler.GetCollections).Methods(http.MethodGet)
	router.HandleFunc("/api/collections", handler.SaveCollection).Methods(http.MethodPost)
	router.HandleFunc("/api/collections/{id:[0-9]+}", handler.GetCollectionInfo)

	router.HandleFunc("/api/collections/{id:[0-9]+}/review/start", handler.StartReview)
	router.HandleFunc("/api/collections/{id:[0-9]+}/review/next", handler.NextImage)
	router.HandleFunc("/api/collections/{id:[0-9]+}/review/previous", handler.PreviousImage)
	router.HandleFunc("/api/collections/{id:[0-9]+}/review", handler.RateImage).Methods(http.MethodPost)

	router.HandleFunc("/api/images/{id:[0-9]+}", handler.GetImage)
	router.HandleFunc("/api/images/{id:[0-9]+}/preview", handler.GetImagePreview)
	router.HandleFunc("/api/images/{id:[0-9]+}/resized", handler.GetImageResized)

	handlerChain := middleware.Chain(
		router,
		middleware.LoggingMiddleware,
		middleware.CORSMiddleware,
		middleware.AuthMiddleware(cfg, services.Auth),
	)

	// background jobs
	sched := app.Schedule(cfg, services, imageCache)
	sched.Start(context.Background())
	defer sched.Stop()

	// Starting the server
	addr := fmt.Sprintf(":%d", cfg.ServerPort)
	fmt.Printf("Сервер запущен на %s\n", addr)
	fmt.Printf("База данных: %s\n", cfg.DB.DbNAME)

	if err := http.ListenAndServe(addr, handlerChain); err != nil {
		log.Fatalf("Ошибка запуска сервера: %v", err)
	}
}
