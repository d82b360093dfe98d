package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"timetables/internal/config"
	"timetables/internal/event"
	"timetables/internal/expand"
	"timetables/internal/export"
	"timetables/internal/ics"
	appLog "timetables/internal/log"
	"timetables/internal/model"
	"timetables/internal/schedule"
)

const displayLayout = "Mon 2006-01-02 15:04 MST"

func expandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand PATTERN...",
		Short: "Expand one or more patterns into concrete times",
		Long: `Expand patterns against the term table and print every meeting.

Each pattern is printed as its own block, in input order.

Example:
  timetables expand "Mi Mon,Wed 10 w0-7"
  timetables expand --year 2013 --term Lent "Tue 2-4; Thu 11"
  timetables expand --template "Le Tue 11 w2" "x8"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			year, _ := cmd.Flags().GetInt("year")
			termName, _ := cmd.Flags().GetString("term")
			tmpl, _ := cmd.Flags().GetString("template")
			tz, _ := cmd.Flags().GetString("tz")
			if year == 0 {
				year = cfg.StartYear
			}
			if termName == "" {
				termName = cfg.DefaultTerm
			}
			if tz != "" {
				cfg.Timezone = tz
			}

			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			table, err := cfg.TermTable()
			if err != nil {
				return err
			}

			results, err := expand.Patterns(args, year, termName, tmpl, loc, expand.WithTable(table))
			if err != nil {
				return err
			}
			return printExpansion(cmd.OutOrStdout(), args, results)
		},
	}

	cmd.Flags().IntP("year", "y", 0, "Academic start year (default from config)")
	cmd.Flags().StringP("term", "t", "", "Default term for segments naming none (default from config)")
	cmd.Flags().String("template", "", "Group template repeated by xN segments")
	cmd.Flags().String("tz", "", "IANA timezone (default from config)")

	return cmd
}

func printExpansion(w io.Writer, patterns []string, results [][]model.Occurrence) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, p := range patterns {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "# %s (%d)\n", p, len(results[i]))
		for _, o := range results[i] {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", o.Start.Format(displayLayout), o.End.Format("15:04"), o.End.Sub(o.Start))
		}
	}
	return tw.Flush()
}

func termsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terms",
		Short: "List the term start dates in effect",
		Long: `List term start dates from the built-in table, with any years
registered under "terms" in the config file overlaid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			table, err := cfg.TermTable()
			if err != nil {
				return err
			}

			years := table.Years()
			if only, _ := cmd.Flags().GetInt("year"); only != 0 {
				if _, err := table.TermStarts(only); err != nil {
					return err
				}
				years = []int{only}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "YEAR\tMICHAELMAS\tLENT\tEASTER")
			for _, y := range years {
				s, _ := table.TermStarts(y)
				fmt.Fprintf(tw, "%d-%02d\t%s\t%s\t%s\n", y, (y+1)%100,
					s.Michaelmas.Format("2006-01-02"),
					s.Lent.Format("2006-01-02"),
					s.Easter.Format("2006-01-02"))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntP("year", "y", 0, "Only show this academic start year")

	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Generate events for every configured series and write them out",
		Long: `Expand every series in the config file and write the events to the
configured output, replacing it atomically.

A series whose pattern fails to expand is reported and skipped; the
remaining series are still written, and the command exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadExportConfig(cmd)
			if err != nil {
				return err
			}
			return runExport(cfg, time.Now())
		},
	}

	addExportFlags(cmd)
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-export on the configured cron schedule",
		Long: `Run export immediately and then on every tick of the "refresh" cron
schedule, re-reading the config file each time. Stops on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadExportConfig(cmd)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			spec := cfg.RefreshCron
			if s, _ := cmd.Flags().GetString("refresh"); s != "" {
				spec = s
			}

			runner, err := schedule.New(spec, loc, func(ctx context.Context) error {
				cfg, err := loadExportConfig(cmd)
				if err != nil {
					return err
				}
				return runExport(cfg, time.Now())
			})
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			appLog.Info("watch started", "refresh", spec, "timezone", loc.String(), "output", cfg.Output.Path)
			err = runner.Run(ctx)
			appLog.Info("watch stopped")
			return err
		},
	}

	addExportFlags(cmd)
	cmd.Flags().String("refresh", "", "Cron schedule overriding the config's refresh")
	return cmd
}

func addExportFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output path (default from config)")
	cmd.Flags().StringP("format", "f", "", "Output format: ics or csv (default from config)")
}

// loadExportConfig loads and validates the config with the export flag
// overrides applied.
func loadExportConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if out, _ := cmd.Flags().GetString("output"); out != "" {
		cfg.Output.Path = out
	}
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.Output.Format = strings.ToLower(format)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runExport generates every series in cfg and writes the export file.
func runExport(cfg *config.Config, now time.Time) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	table, err := cfg.TermTable()
	if err != nil {
		return err
	}

	events, errs := event.GenerateAll(event.SeriesFromConfig(cfg), loc, expand.WithTable(table))
	if err := export.WriteFile(cfg.Output.Path, cfg.Output.Format, events, export.Options{
		Name:     "Timetable",
		Location: loc,
		Stamp:    now,
	}); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d series failed: %w", len(errs), len(cfg.Series), errors.Join(errs...))
	}
	return nil
}

func inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect FILE|URL",
		Short: "Summarize the events in an exported or published .ics calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readCalendar(cmd, args[0])
			if err != nil {
				return err
			}
			events, err := ics.Decode(body)
			if err != nil {
				return fmt.Errorf("inspect %s: %w", args[0], err)
			}

			tz, _ := cmd.Flags().GetString("tz")
			loc := time.UTC
			if tz != "" {
				if loc, err = time.LoadLocation(tz); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SERIES\tSTART\tEND\tTITLE\tLOCATION")
			for _, ev := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", ev.SourceID,
					ev.Start.In(loc).Format(displayLayout),
					ev.End.In(loc).Format("15:04"),
					ev.Title, ev.Location)
			}
			fmt.Fprintf(tw, "\n%d events\n", len(events))
			return tw.Flush()
		},
	}

	cmd.Flags().String("tz", "", "Timezone to print times in (default UTC)")
	cmd.Flags().String("cache-dir", defaultCacheDir(), "Cache for calendars fetched over HTTP (empty disables)")
	return cmd
}

func readCalendar(cmd *cobra.Command, src string) ([]byte, error) {
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}
	cacheDir, _ := cmd.Flags().GetString("cache-dir")
	ctx, cancel := signalContext()
	defer cancel()
	return ics.NewFetcher(cacheDir).Fetch(ctx, src)
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "timetables", "ics")
}
