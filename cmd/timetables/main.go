package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"

	"timetables/internal/config"
	appLog "timetables/internal/log"
)

var version = "0.1.0"

const defaultConfigPath = "./timetables.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "timetables",
		Short: "Expand academic timetable patterns into calendar events",
		Long: `Timetables turns compact timetable patterns such as "Mi Mon,Wed 10 w0-7"
into concrete, timezone-aware class meetings.

Patterns are resolved against a table of term start dates. Series listed in
the config file can be exported to iCalendar or CSV, once or on a schedule.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			levelStr, _ := cmd.Flags().GetString("log-level")
			if levelStr == "" {
				return nil
			}
			level, err := appLog.ParseLevel(levelStr)
			if err != nil {
				return err
			}
			appLog.SetLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", defaultConfigPath, "Path to YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, error); overrides the config")

	rootCmd.AddCommand(expandCmd())
	rootCmd.AddCommand(termsCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(inspectCmd())

	return rootCmd
}

// loadConfig reads the config named by --config. When the flag was not set
// and the default file is absent, built-in defaults are used without
// writing anything.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); err != nil {
			return config.DefaultConfig(), nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", path)
		return nil, err
	}

	levelFlag, _ := cmd.Flags().GetString("log-level")
	if levelFlag == "" && cfg.LogLevel != "" {
		level, err := appLog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		appLog.SetLevel(level)
	}
	return cfg, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			appLog.Info("signal received, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
