package infra

import (
	"fmt"
	stdlog "log"
	"time"

	"github.com/BAHUBALISID/smj/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig sizes the connection pool and controls SQL logging.
type DatabaseConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration // statements slower than this are logged at warn
	LogSQL          bool          // log every statement
}

func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{MaxOpenConns: 25, MaxIdleConns: 5, ConnMaxLifetime: 30 * time.Minute, SlowQuery: 500 * time.Millisecond}
}

// sqlLogger routes gorm's output through the global zerolog logger.
func sqlLogger(cfg DatabaseConfig) logger.Interface {
	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	return logger.New(stdlog.New(log.Logger, "", 0), logger.Config{
		SlowThreshold:             cfg.SlowQuery,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// NewDatabase opens a GORM connection backed by pgx. Driver errors are
// translated so unique violations surface as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string, cfg DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         sqlLogger(cfg),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// RunMigrations creates or updates every billing table, then applies the DDL
// AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return fmt.Errorf("pgcrypto: %w", err)
	}
	if err := db.AutoMigrate(
		&model.MetalRate{},
		&model.Customer{},
		&model.Bill{},
		&model.BillItem{},
		&model.BillItemPhoto{},
		&model.BillPayment{},
		&model.Exchange{},
		&model.ExchangeItem{},
		&model.ExchangePhoto{},
		&model.DocumentCounter{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs idempotent DDL: partial indexes and check
// constraints. Each statement is guarded so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// at most one active rate per (metal, purity)
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_metal_rates_active
		    ON metal_rates (metal_type, purity) WHERE is_active`,
		`CREATE INDEX IF NOT EXISTS idx_metal_rates_history
		    ON metal_rates (metal_type, purity, effective_from DESC)`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bills_settlement') THEN
		    ALTER TABLE bills ADD CONSTRAINT chk_bills_settlement
		        CHECK (paid_amount + remaining_amount = total_amount);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_bill_payments_amount') THEN
		    ALTER TABLE bill_payments ADD CONSTRAINT chk_bill_payments_amount CHECK (amount > 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_metal_rates_positive') THEN
		    ALTER TABLE metal_rates ADD CONSTRAINT chk_metal_rates_positive CHECK (rate_per_gram > 0);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
