package main

import (
	"fmt"
	"os"
	"taskList/internal/config"
	"taskList/internal/logger"
	"taskList/internal/migrations"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Использование: migrate [--config config.yml] up|down

  up    создать таблицу tasks (повторный запуск ничего не меняет)
  down  удалить таблицу tasks
`

func main() {
	configPath := pflag.StringP("config", "c", "", "путь к YAML конфигурации")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "конфигурация: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		fmt.Fprintf(os.Stderr, "логгер: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dialect, dsn, err := target(cfg)
	if err != nil {
		logger.Error("Migrate: Нет базы данных для миграций", err)
		os.Exit(1)
	}

	switch pflag.Arg(0) {
	case "up":
		err = migrations.Up(dialect, dsn)
	case "down":
		err = migrations.Down(dialect, dsn)
	default:
		pflag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Migrate: Ошибка миграции", err, zap.String("dialect", string(dialect)))
		os.Exit(1)
	}
	logger.Info("Migrate: Готово", zap.String("dialect", string(dialect)), zap.String("command", pflag.Arg(0)))
}

func target(cfg *config.Config) (migrations.Dialect, string, error) {
	switch cfg.Repository.Type {
	case "postgres":
		return migrations.Postgres, cfg.Database.PostgresURL, nil
	case "mysql":
		return migrations.MySQL, cfg.Database.MySQLDSN, nil
	default:
		return "", "", fmt.Errorf("repository.type=%q не использует базу данных", cfg.Repository.Type)
	}
}
