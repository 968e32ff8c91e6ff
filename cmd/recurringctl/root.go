package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"invoicing/internal/config"
	"invoicing/internal/logger"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:   "recurringctl",
		Short: "Operate the recurring invoice scheduler",
		Long: `recurringctl runs the recurring invoice sweep outside the HTTP server and
previews issue dates of a schedule.

The run command reads the same environment as the API server (DB_*, REDIS_ADDR,
APP_TIMEZONE, SCHEDULER_LOCK_TTL).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(cfg), newNextDateCmd(cfg))
	return root
}

func Execute(cfg config.Config) {
	log := logger.WithComponent("cmd")

	if err := newRootCmd(cfg).Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
