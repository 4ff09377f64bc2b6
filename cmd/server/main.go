package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"studydeck-backend/internal/config"
	"studydeck-backend/internal/database"
	"studydeck-backend/internal/handlers"
	"studydeck-backend/internal/middleware"
	"studydeck-backend/internal/repository"
	"studydeck-backend/internal/router"
	"studydeck-backend/internal/services"
	"studydeck-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting StudyDeck Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	setRepo := repository.NewSetRepo(pool)
	questionRepo := repository.NewQuestionRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	answerRepo := repository.NewAnswerRepo(pool)
	timerRepo := repository.NewTimerRepo(pool)
	statsRepo := repository.NewStatsRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	authService := services.NewAuthService(userRepo, redisClients.KV, jwtAuth)

	publisher := services.NewRedisPublisher(redisClients.KV)
	debouncer := services.NewRedisDebouncer(redisClients.KV)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	studyService := services.NewStudyService(questionRepo, sessionRepo, answerRepo, rng, nil, publisher)
	timerService := services.NewTimerService(sessionRepo, timerRepo, debouncer, publisher, nil)
	timerService.SetDefaultDurations(cfg.DefaultWorkDuration, cfg.DefaultRestDuration)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService, userRepo)
	setHandler := handlers.NewSetHandler(setRepo, questionRepo)
	studyHandler := handlers.NewStudyHandler(studyService, setRepo)
	timerHandler := handlers.NewTimerHandler(timerService, setRepo)
	statsHandler := handlers.NewStatsHandler(statsRepo, setRepo)

	// ──── Step 5: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		setHandler,
		studyHandler,
		timerHandler,
		statsHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ StudyDeck Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
