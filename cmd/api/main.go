// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	// Internal packages
	"github.com/solacelink/solace-backend/internal/announcements"
	"github.com/solacelink/solace-backend/internal/auth"
	"github.com/solacelink/solace-backend/internal/common/database"
	"github.com/solacelink/solace-backend/internal/config"
	"github.com/solacelink/solace-backend/internal/matching"
	"github.com/solacelink/solace-backend/internal/realtime"
	"github.com/solacelink/solace-backend/internal/users"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting SolaceLink Peer Support API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration is valid")

	// 3. Connect to PostgreSQL
	log.Println("🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional, presence mirroring degrades without it)
	log.Println("📮 Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without presence mirroring", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	log.Println("🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations:", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. User directory
	directory := users.NewPostgresDirectory(db)

	// 7. Real-time fabric
	log.Println("🔌 Step 6: Initializing real-time fabric...")
	presence := realtime.NewPresence(redisClient)
	registry := realtime.NewRegistry(cfg.SendBufferSize, presence)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	monitor := realtime.NewMonitor(registry, cfg.HeartbeatInterval, cfg.HeartbeatTimeout)
	go monitor.Start(monitorCtx)
	log.Println("✅ Real-time fabric initialized")

	// 8. Announcements
	log.Println("🔔 Step 7: Initializing announcements...")
	announcementsRepo := announcements.NewPostgresRepository(db)
	dispatcher := announcements.NewDispatcher(announcementsRepo, registry, directory, cfg.MinMessageLength)
	announcementsHandler := announcements.NewHandler(dispatcher, announcementsRepo)
	log.Println("✅ Announcements initialized")

	// 9. Matching engine
	log.Println("🤝 Step 8: Initializing matching engine...")
	engine := matching.NewEngine(matching.ScoringConfig{
		MaxAgeGapYears:   cfg.MaxAgeGapYears,
		LocationMismatch: cfg.LocationMismatch,
	})
	matchingRepo := matching.NewPostgresRepository(db)
	matchingService := matching.NewService(matchingRepo, directory, engine, dispatcher)
	matchingHandler := matching.NewHandler(matchingService)
	log.Println("✅ Matching engine initialized")

	// 10. Auth middleware and routes
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matching.RegisterRoutes(router, matchingHandler, authMiddleware)
	announcements.RegisterRoutes(router, announcementsHandler, authMiddleware)

	realtimeHandler := realtime.NewHandler(registry, presence, dispatcher, cfg.WriteTimeout)
	realtime.RegisterRoutes(router, realtimeHandler, authMiddleware)

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 11. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("⚠️  Shutdown signal received...")
	stopMonitor()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			username VARCHAR(100) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE,
			password_hash VARCHAR(255),
			role VARCHAR(20) NOT NULL DEFAULT 'member',
			dob DATE,
			location JSONB,
			interests TEXT[] NOT NULL DEFAULT '{}',
			experience TEXT[] NOT NULL DEFAULT '{}',
			available_days TEXT[] NOT NULL DEFAULT '{}',
			languages TEXT[] NOT NULL DEFAULT '{}',
			avatar_url VARCHAR(500),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS matching_requests (
			matching_request_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			member_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			sponsor_id UUID REFERENCES users(id) ON DELETE SET NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'Pending',
			match_score REAL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_matching_requests_member
			ON matching_requests(member_id, status)`,

		`CREATE INDEX IF NOT EXISTS idx_matching_requests_sponsor
			ON matching_requests(sponsor_id, status)`,

		`CREATE TABLE IF NOT EXISTS announcements (
			announcement_id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			announcement_type VARCHAR(50) NOT NULL,
			announcement_target VARCHAR(50),
			announcement_target_id UUID,
			recipient_role VARCHAR(20),
			recipient_id UUID REFERENCES users(id) ON DELETE CASCADE,
			extra_data JSONB,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_announcements_recipient
			ON announcements(recipient_id, created_at DESC)`,

		`CREATE INDEX IF NOT EXISTS idx_announcements_role
			ON announcements(recipient_role, created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","time":"%s"}`, time.Now().Format(time.RFC3339))
}

// loggingMiddleware logs all requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
