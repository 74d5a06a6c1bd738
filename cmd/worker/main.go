package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/cache"
	"github.com/Domenick1991/flightbooking/internal/email"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/Domenick1991/flightbooking/internal/service/ledger"
	"github.com/Domenick1991/flightbooking/internal/service/orchestrator"
	"github.com/Domenick1991/flightbooking/internal/service/payments"
	"github.com/go-co-op/gocron/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	kafkaGo "github.com/segmentio/kafka-go"
)

func main() {
	_ = godotenv.Load()

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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SearchCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)

	inventoryService := inventory.NewService(flightRepo, redisCache)
	ledgerService := ledger.NewService(bookingRepo, ledger.WithNumberAttempts(cfg.Booking.NumberAttempts))
	paymentService := payments.NewService(paymentRepo)
	bookingService := orchestrator.NewService(
		inventoryService,
		ledgerService,
		paymentService,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.HoldTTLMinutes)*time.Minute,
		orchestrator.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.BookingEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("create scheduler: %v", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(time.Duration(cfg.Worker.SweepIntervalMinutes)*time.Minute),
		gocron.NewTask(func() {
			expired, err := bookingService.SweepExpired(ctx)
			if err != nil {
				log.Printf("sweep expired bookings: %v", err)
				return
			}
			if len(expired) > 0 {
				log.Printf("released %d expired bookings", len(expired))
			}
		}),
	)
	if err != nil {
		log.Fatalf("schedule sweep: %v", err)
	}

	scheduler.Start()
	log.Printf("worker started, sweeping every %d minutes", cfg.Worker.SweepIntervalMinutes)

	<-ctx.Done()
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("scheduler shutdown: %v", err)
	}
	log.Println("worker shutting down")
}
