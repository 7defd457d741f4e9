// Command adminctl is the terminal front-end of the admin console.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/99minutos/admin-console/internal/pkg/config"
	"github.com/99minutos/admin-console/pkg/logger"
)

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level := "warn"
	if os.Getenv("LOG_LEVEL") != "" {
		level = cfg.LogLevel
	}
	logger.Init(logger.Options{Level: level, Pretty: true, App: "adminctl"})

	a := newApp(cfg, os.Stdin, os.Stdout, os.Stderr)
	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
