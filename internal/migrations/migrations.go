package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"taskList/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed postgres/*.sql mysql/*.sql
var files embed.FS

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
)

// Up применяет все миграции; повторный запуск ничего не меняет
func Up(dialect Dialect, dsn string) error {
	logger.Info("Попытка миграций")

	m, err := newMigrate(dialect, dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("Миграции уже применены")
			return nil
		}
		logger.Error("Не удалось применить миграции", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Миграции применены")
	return nil
}

func Down(dialect Dialect, dsn string) error {
	logger.Info("Откат миграций")

	m, err := newMigrate(dialect, dsn)
	if err != nil {
		return err
	}
	defer closeMigrate(m)

	if err := m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		logger.Error("Не удалось откатить миграции", err)
		return fmt.Errorf("откат миграций: %w", err)
	}

	logger.Info("Миграции откачены")
	return nil
}

func newMigrate(dialect Dialect, dsn string) (*migrate.Migrate, error) {
	url, err := DatabaseURL(dialect, dsn)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(files, string(dialect))
	if err != nil {
		return nil, fmt.Errorf("чтение встроенных миграций: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("инициализация миграций: %w", err)
	}
	m.Log = migrateLogger{}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("Ошибка закрытия источника миграций: " + srcErr.Error())
	}
	if dbErr != nil {
		logger.Warn("Ошибка закрытия соединения миграций: " + dbErr.Error())
	}
}

// DatabaseURL переводит строку подключения приложения в URL драйвера migrate
func DatabaseURL(dialect Dialect, dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", fmt.Errorf("пустая строка подключения для %s", dialect)
	}

	switch dialect {
	case Postgres:
		for _, prefix := range []string{"postgres://", "postgresql://"} {
			if strings.HasPrefix(dsn, prefix) {
				return "pgx5://" + strings.TrimPrefix(dsn, prefix), nil
			}
		}
		if strings.HasPrefix(dsn, "pgx5://") {
			return dsn, nil
		}
		return "", fmt.Errorf("неподдерживаемый формат строки подключения PostgreSQL")
	case MySQL:
		return "mysql://" + strings.TrimPrefix(dsn, "mysql://"), nil
	default:
		return "", fmt.Errorf("неизвестный диалект миграций: %s", dialect)
	}
}

type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...any) {
	logger.Info("Migrate: " + strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool {
	return false
}
