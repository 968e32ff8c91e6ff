// Package app wires configuration, storage and services for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoicing/internal/config"
	"invoicing/internal/database"
	"invoicing/internal/lock"
	"invoicing/internal/logger"
	"invoicing/internal/repository"
	"invoicing/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const lockPrefix = "invoicing:lock:"

type App struct {
	Config config.Config
	DB     *gorm.DB
	Redis  *redis.Client

	Members   repository.MembershipRepository
	Recurring service.RecurringService
	Scheduler service.SchedulerService
	Audit     service.AuditService
}

// New connects to Postgres (and Redis when REDIS_ADDR is set) and builds the services.
// publisher may be nil.
func New(ctx context.Context, cfg config.Config, publisher service.EventPublisher) (*App, error) {
	db, err := database.NewConnection(cfg.DbDsn)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	a := &App{Config: cfg, DB: db}

	locker := lock.NewNoopLocker()
	if cfg.RedisAddr != "" {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.Redis.Ping(pingCtx).Err(); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		locker = lock.NewRedisLocker(a.Redis, lockPrefix)
	}

	// Set up dependencies (Repository -> Service)
	recurringRepo := repository.NewRecurringRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)
	a.Members = repository.NewMembershipRepository(db)

	materializer := service.NewMaterializer(documentRepo)
	a.Recurring = service.NewRecurringService(recurringRepo, customerRepo, documentRepo, auditRepo, materializer, txManager, cfg.Timezone)
	a.Scheduler = service.NewSchedulerService(recurringRepo, documentRepo, auditRepo, materializer, txManager, locker, publisher, service.SchedulerOptions{
		Location: cfg.Timezone,
		LockTTL:  cfg.SchedulerLockTTL,
		Logger:   logger.WithComponent("scheduler"),
	})
	a.Audit = service.NewAuditService(auditRepo)

	return a, nil
}

// Close releases the database pool and the Redis client
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
