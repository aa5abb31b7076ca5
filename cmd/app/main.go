package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veronika2030/supperspot/config"
	"github.com/Veronika2030/supperspot/internal/auth"
	"github.com/Veronika2030/supperspot/internal/bootstrap"
	"github.com/Veronika2030/supperspot/internal/cache"
	"github.com/Veronika2030/supperspot/internal/codec"
	"github.com/Veronika2030/supperspot/internal/kafka"
	"github.com/Veronika2030/supperspot/internal/ledger"
	"github.com/Veronika2030/supperspot/internal/repository"
	"github.com/Veronika2030/supperspot/internal/service/experience"
	"github.com/Veronika2030/supperspot/internal/service/rating"
	"github.com/Veronika2030/supperspot/internal/service/reservation"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis,
		time.Duration(cfg.Booking.ExperiencesCacheTTL)*time.Second,
		time.Duration(cfg.Booking.AggregatesCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	verifier := auth.NewVerifier(cfg.Auth.Issuer, cfg.Auth.Audience, []byte(cfg.Auth.Secret))

	experienceRepo := repository.NewExperienceRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	ratingRepo := repository.NewRatingRepository(pool)

	experienceService := experience.NewExperienceService(experienceRepo, redisCache)
	reservationService := reservation.NewReservationService(
		bookingRepo,
		experienceRepo,
		ledger.NewPostgres(pool),
		codec.New(),
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.ReservationLockSeconds)*time.Second,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	ratingService := rating.NewRatingService(ratingRepo, bookingRepo, redisCache, producer, cfg.Kafka.BookingTopic)

	if err := bootstrap.Run(ctx, cfg, verifier, experienceService, reservationService, ratingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
