package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/stayescrow/config"
	"github.com/Domenick1991/stayescrow/internal/bootstrap"
	"github.com/Domenick1991/stayescrow/internal/cache"
	"github.com/Domenick1991/stayescrow/internal/custody"
	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/Domenick1991/stayescrow/internal/kafka"
	"github.com/Domenick1991/stayescrow/internal/repository"
	"github.com/Domenick1991/stayescrow/internal/service/booking"
	"github.com/Domenick1991/stayescrow/internal/service/params"
	"github.com/Domenick1991/stayescrow/internal/service/slots"
	"github.com/jackc/pgx/v5/pgxpool"
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

	var (
		slotRepo    repository.SlotRepository
		bookingRepo repository.BookingRepository
		paramRepo   repository.ParamRepository
		ledgerRepo  repository.LedgerRepository
	)
	if cfg.Storage.Driver == "memory" {
		memSlots := repository.NewMemorySlotRepository()
		slotRepo = memSlots
		bookingRepo = repository.NewMemoryBookingRepository(memSlots)
		paramRepo = repository.NewMemoryParamRepository()
		ledgerRepo = repository.NewMemoryLedgerRepository()
	} else {
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()

		slotRepo = repository.NewSlotRepository(pool)
		bookingRepo = repository.NewBookingRepository(pool)
		paramRepo = repository.NewParamRepository(pool)
		ledgerRepo = repository.NewLedgerRepository(pool)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Escrow.SlotsCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	escrow := custody.New(ledgerRepo)
	paramService := params.NewParamsService(paramRepo, domain.Identity(cfg.Escrow.Admin), cfg.Escrow.NoShowWindow(), cfg.Escrow.CompletionGrace())
	slotService := slots.NewSlotService(slotRepo, redisCache, producer,
		slots.WithEventsTopic(cfg.Kafka.EscrowEventsTopic),
	)
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

	if err := bootstrap.Run(ctx, cfg, slotService, bookingService, paramService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
