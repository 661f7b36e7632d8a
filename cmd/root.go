package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/adolog/internal/apperrors"
)

var (
	cfgFile     string
	logLevel    string
	backendFlag string
)

var rootCmd = &cobra.Command{
	Use:   "adolog",
	Short: "adolog – log time against Azure DevOps work items",
	Long: `adolog records how long you worked on Azure DevOps work items.
Logs go to the configured backend: the adolog log service (adolog serve)
or an Excel table in your OneDrive. At most 8 hours can be logged per day.

Configuration lives in ~/.adolog/config.yaml and ADOLOG_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := errorHint(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.adolog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Time log backend: rest or workbook")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(workItemCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(serveCmd)
}

// errorHint suggests the next step for errors the user can fix.
func errorHint(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrConfigurationMissing):
		return "Set it with `adolog settings set` or in ~/.adolog/config.yaml."
	case errors.Is(err, apperrors.ErrTokenExchangeFailed), errors.Is(err, apperrors.ErrAuthCodeMissing):
		return "Sign in again with `adolog login`."
	case errors.Is(err, apperrors.ErrCapacityExceeded):
		return "Use `adolog list` to review the day or `adolog edit` to shorten a log."
	default:
		return ""
	}
}
