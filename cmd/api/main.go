package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"taskList/internal/app"
	"taskList/internal/config"
	"taskList/internal/logger"

	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "путь к YAML конфигурации (по умолчанию config.yml)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "конфигурация: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "запуск приложения: %v\n", err)
		os.Exit(1)
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Приложение завершилось с ошибкой", err)
		os.Exit(1)
	}
}
