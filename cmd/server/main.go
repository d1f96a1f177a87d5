package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"govent/internal/auth"
	"govent/internal/config"
	"govent/internal/database"
	"govent/internal/email"
	"govent/internal/logging"
	"govent/internal/redis"
	"govent/internal/server"
)

const (
	logMaxSizeBytes = 10 << 20
	logMaxBackups   = 5
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.LogFile != "" {
		fileWriter, err := logging.NewRotatingFileWriter(cfg.LogFile, logMaxSizeBytes, logMaxBackups)
		if err != nil {
			log.Fatalf("open log file: %v", err)
		}
		defer fileWriter.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer rdb.Close()

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	users := auth.NewUserRepository(db)
	favorites := auth.NewFavoriteRepository(db)
	hasher := auth.NewBcryptHasher()
	issuer := auth.NewIssuer(auth.NewResetCodeRepository(db), users, hasher)
	limiter := &auth.RateLimiter{Redis: rdb}
	mailer := email.NewSender(cfg.Email)

	srv := server.NewServer(cfg, users, favorites, issuer, tokens, limiter, mailer, hasher)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.Env)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
