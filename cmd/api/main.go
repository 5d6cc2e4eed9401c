package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iforaa/quartergate/db"
	"github.com/iforaa/quartergate/internal/config"
	"github.com/iforaa/quartergate/internal/handler"
	"github.com/iforaa/quartergate/internal/repository"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	dsn, err := config.LoadDatabaseURL()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	conn, err := db.Connect(context.Background(), dsn)
	if err != nil {
		log.Fatalf("error connecting to DB: %v", err)
	}
	defer db.Close(conn)

	transcriptRepo := repository.NewTranscriptRepository(conn)
	transcriptHandler := handler.NewTranscriptHandler(transcriptRepo)

	summaryRepo := repository.NewSummaryRepository(conn)
	summaryHandler := handler.NewSummaryHandler(summaryRepo)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	r.GET("/transcripts", transcriptHandler.GetTranscripts)
	r.GET("/summaries", summaryHandler.GetSummaries)
	r.GET("/summaries/:ticker/:year/:quarter", summaryHandler.GetSummary)
	r.GET("/consistency", summaryHandler.GetConsistency)
	r.GET("/health", transcriptHandler.GetHealth)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	err = r.Run(addr)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
