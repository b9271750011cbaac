package main

import (
	"context"
	"log"
	"os"

	"voicecounsel/internal/analysis"
	"voicecounsel/internal/api"
	"voicecounsel/internal/config"
	"voicecounsel/internal/db"
	"voicecounsel/internal/model"
	"voicecounsel/internal/objectstore"
	"voicecounsel/internal/pipeline"
	"voicecounsel/internal/repository"
	"voicecounsel/internal/stt"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode (default to release mode)
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		jobs     repository.JobRepository
		settings repository.SettingRepository
	)
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()
		jobs = repository.NewPostgresJobRepository(conn)
		settings = repository.NewPostgresSettingRepository(conn)
		log.Println("Database repositories initialized")
	} else {
		log.Println("DATABASE_URL not set, using in-memory storage (jobs are lost on restart)")
		jobs = repository.NewMemoryJobRepository()
		settings = repository.NewMemorySettingRepository()
	}

	ctx := context.Background()

	store, err := objectstore.CreateStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create object store: %v", err)
	}

	// API keys saved through the admin settings take precedence over
	// environment variables.
	keys := func(ctx context.Context, name string) (string, bool) {
		value, ok, err := settings.GetActive(ctx, model.ScopeAPIKey, name)
		if err != nil {
			log.Printf("Warning: failed to read API key setting %s: %v", name, err)
			return "", false
		}
		return value, ok
	}

	sttProvider, err := stt.CreateProvider(cfg, keys)
	if err != nil {
		log.Fatalf("Failed to create STT provider: %v", err)
	}

	analyzer, err := analysis.CreateAnalyzer(cfg, keys)
	if err != nil {
		log.Fatalf("Failed to create analyzer: %v", err)
	}

	controller := pipeline.New(jobs, settings, store, sttProvider, analyzer)
	handler := api.NewHandler(cfg, jobs, settings, store, controller)

	r := gin.Default()
	r.Use(corsMiddleware())
	api.RegisterRoutes(r, handler)

	log.Printf("voicecounsel backend running on :%s (store: %s, stt: %s, analysis: %s)",
		cfg.Port, store.Name(), sttProvider.Name(), analyzer.Name())
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// corsMiddleware adds CORS headers for the web client
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
