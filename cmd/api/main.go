package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coffeebot/internal/config"
	apihttp "coffeebot/internal/http"
	"coffeebot/internal/invoker"
	"coffeebot/internal/repository"
	"coffeebot/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	lambdaClient, err := invoker.NewLambdaClient(ctx, invoker.Credentials{
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Region:          cfg.AWSRegion,
	})
	if err != nil {
		logger.Fatal("lambda client", zap.Error(err))
	}
	lambdaInvoker := invoker.NewLambdaInvoker(lambdaClient, cfg.LambdaFunctionName, logger)

	sessionTTL := time.Duration(cfg.SessionTTLMinutes) * time.Minute

	var transcripts repository.TranscriptRepository = repository.NewMemoryTranscriptRepository()
	limiter := service.NewMemoryPromptRateLimiter(time.Minute, cfg.RateLimitPerMinute)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()

		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory transcripts", zap.Error(err))
		} else {
			transcripts = repository.NewRedisTranscriptRepository(redisClient, sessionTTL)
			limiter = service.NewRedisPromptRateLimiter(redisClient, time.Minute, cfg.RateLimitPerMinute)
		}
		cancel()
	}

	chatSvc := service.NewChatService(lambdaInvoker, cfg.ContextWindowSize, logger)
	sessions := service.NewSessionManager(transcripts, sessionTTL)
	tokens := service.NewSessionTokenService(cfg.SessionSecret, sessionTTL)

	chatHandler := apihttp.NewChatHandler(logger, chatSvc, limiter)
	router := apihttp.NewRouter(logger, chatHandler, tokens, sessions, cfg.CookieSecure)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("function", cfg.LambdaFunctionName),
		zap.Bool("redis", cfg.RedisAddr != ""),
	)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
