package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	drv "github.com/go-sql-driver/mysql"
)

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NormalizeDSN включает параметры, на которые опирается репозиторий:
// parseTime для time.Time, clientFoundRows чтобы UPDATE без изменений считал строку найденной,
// time_zone сессии в UTC, чтобы CURRENT_TIMESTAMP совпадал с Loc
func NormalizeDSN(dsn string) (*drv.Config, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("MySQL DSN не может быть пустым")
	}

	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("разбор MySQL DSN: %w", err)
	}

	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = make(map[string]string)
	}
	cfg.Params["time_zone"] = "'+00:00'"
	return cfg, nil
}

func openDatabase(ctx context.Context, cfg Config) (*sql.DB, error) {
	driverCfg, err := NormalizeDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}

	connector, err := drv.NewConnector(driverCfg)
	if err != nil {
		return nil, fmt.Errorf("создание коннектора MySQL: %w", err)
	}
	db := sql.OpenDB(connector)

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(10)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(2)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}
	return db, nil
}
