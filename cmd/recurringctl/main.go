package main

import (
	"fmt"
	"os"

	"invoicing/internal/config"
	"invoicing/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logCfg := cfg.GetLoggerConfig()
	logCfg.Output = "stderr"
	if err := logger.Setup(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logger: %v\n", err)
		os.Exit(1)
	}

	Execute(cfg)
}
