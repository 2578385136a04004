package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lpernett/godotenv"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/unifi-labs/tvcare-go-sdk/handlers"
	"github.com/unifi-labs/tvcare-go-sdk/utils"
)

// Load environment variables from .env file
func init() {
	log.Info("Loading environment variables")
	err := godotenv.Load()
	if err != nil {
		log.Warn("Error loading .env file")
	}
}

func main() {
	// Set up logging
	log.SetLevel(log.DebugLevel)
	log.SetFormatter(&log.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	log.Info("Server Version: TV Care Assistant V1")

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// Set up Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:        os.Getenv("REDIS_HOST"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          0,
		DialTimeout: 20 * time.Second, // initial connection timeout
	})

	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelRedis()

	if _, err := redisClient.Ping(redisCtx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Info("Successfully connected to Redis")

	ttl := 24 * time.Hour
	if hours, err := strconv.Atoi(os.Getenv("SESSION_TTL_HOURS")); err == nil && hours > 0 {
		ttl = time.Duration(hours) * time.Hour
	}
	store := utils.NewSessionStore(redisClient, ttl)

	openaiClient := utils.NewOpenAIClient()
	speechClient := utils.NewSpeechClient()
	deviceClient := utils.NewDeviceClient()

	// The knowledge base is optional: without it the pipeline runs with
	// empty retrieval context.
	var retriever handlers.Retriever
	if kb, err := utils.NewKnowledgeBase(); err != nil {
		log.Warnf("Knowledge base unavailable, continuing without retrieval: %v", err)
	} else {
		retriever = kb
	}

	app := &handlers.App{
		Store:             store,
		Speech:            speechClient,
		Vision:            openaiClient,
		Model:             openaiClient,
		Retriever:         retriever,
		Devices:           deviceClient,
		CustomLabelsModel: os.Getenv("CUSTOM_LABELS_MODEL"),
		PublicBaseURL:     os.Getenv("PUBLIC_BASE_URL"),
	}

	mux := http.NewServeMux()
	app.Routes(mux)

	port := ":" + os.Getenv("PORT")
	if port == ":" {
		port = ":8080"
	}
	server := &http.Server{
		Addr:    port,
		Handler: mux,
	}

	// Set up signal handling
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	serverExit := make(chan struct{})

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting server on ", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server error: ", err)
		}
		close(serverExit)
	}()

	// On termination, shut down the server and drain in-flight requests
	select {
	case <-stop:
		log.Info("Shutting down server...")
	case <-serverExit:
		log.Info("Server exited unexpectedly...")
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Shutdown error: ", err)
	}

	log.Info("Server shut down gracefully")
}
