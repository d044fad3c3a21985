// Package db opens the gorm connection backing the SQL key-value store.
package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	wishlistadapters "stockimate/internal/feature/wishlist/adapters"
	"stockimate/internal/platform/config"
)

const (
	connectTimeout = 60 * time.Second
	retryInterval  = 3 * time.Second
)

// Opener opens a gorm connection for a DSN.
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN はMySQL用のDSN文字列を生成します。InstanceNameが設定されている場合はCloud SQLのUnixソケットを使います。
func BuildDSN(cfg config.DBConfig) string {
	if cfg.InstanceName != "" {
		return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
}

// BuildPostgresDSN はPostgreSQL用のDSN文字列を生成します。
func BuildPostgresDSN(cfg config.DBConfig) string {
	host := cfg.Host
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, cfg.User, cfg.Password, cfg.Name, cfg.Port)
}

// driverFor resolves the DSN and opener for the configured driver.
func driverFor(cfg config.DBConfig) (string, Opener, error) {
	gcfg := &gorm.Config{}
	switch cfg.Driver {
	case "mysql":
		return BuildDSN(cfg), func(dsn string) (*gorm.DB, error) {
			return gorm.Open(gmysql.Open(dsn), gcfg)
		}, nil
	case "postgres":
		return BuildPostgresDSN(cfg), func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		}, nil
	case "sqlite":
		return cfg.SQLitePath, func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gcfg)
		}, nil
	default:
		return "", nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// ConnectWithRetry はtimeoutまで一定間隔で接続をリトライします。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		log.Warn("DB connect failed, retrying", zap.Error(err))
		time.Sleep(retryInterval)
	}
}

// Open は設定されたドライバーで接続し、RunMigrationsが有効ならKVテーブルをマイグレーションします。
func Open(cfg config.DBConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn, open, err := driverFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := ConnectWithRetry(dsn, connectTimeout, open, log)
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := db.AutoMigrate(&wishlistadapters.KVModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return db, nil
}
