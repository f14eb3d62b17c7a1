package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/stayescrow/config"
	"github.com/Domenick1991/stayescrow/internal/cache"
	"github.com/Domenick1991/stayescrow/internal/custody"
	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/email"
	"github.com/Domenick1991/stayescrow/internal/kafka"
	"github.com/Domenick1991/stayescrow/internal/repository"
	"github.com/Domenick1991/stayescrow/internal/service/booking"
	"github.com/Domenick1991/stayescrow/internal/service/params"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker is the external automation agent: the no-show refund and idle
// payout are permissionless, so it sweeps for bookings past their deadline
// and triggers them. It also drives the notification feed.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Escrow.SlotsCacheTTLSeconds)*time.Second)

	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paramRepo := repository.NewParamRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool)

	escrow := custody.New(ledgerRepo)
	paramService := params.NewParamsService(paramRepo, domain.Identity(cfg.Escrow.Admin), cfg.Escrow.NoShowWindow(), cfg.Escrow.CompletionGrace())
	bookingService := booking.NewBookingService(
		bookingRepo,
		slotRepo,
		paramService,
		escrow,
		redisCache,
		producer,
		cfg.Kafka.EscrowEventsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithSettleLockTTL(time.Duration(cfg.Escrow.SettleLockTTLSeconds)*time.Second),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			var event kafka.EscrowEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("decode event error: %v", err)
				return nil
			}
			return emailSender.Send(ctx, event)
		}); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			settled, err := bookingService.SettleDue(ctx)
			if err != nil {
				log.Printf("settle due bookings error: %v", err)
				continue
			}
			if len(settled) > 0 {
				log.Printf("settled %d due bookings", len(settled))
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}
