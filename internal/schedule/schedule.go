// Package schedule re-runs the export pipeline on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "timetables/internal/log"
)

// parser supports standard 5-field cron expressions and descriptors like
// @hourly or @every 30m.
var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Job is one pipeline run.
type Job func(ctx context.Context) error

// ParseSchedule parses a cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	s, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("schedule: %q: %w", expr, err)
	}
	return s, nil
}

// Next returns the first fire time of expr after the given time.
func Next(expr string, after time.Time) (time.Time, error) {
	s, err := ParseSchedule(expr)
	if err != nil {
		return time.Time{}, err
	}
	return s.Next(after), nil
}

// Runner runs a Job immediately and then on every tick of a cron schedule.
// A tick that arrives while the previous run is still going is skipped.
type Runner struct {
	spec string
	loc  *time.Location
	job  Job
}

// New validates spec and returns a Runner. loc is the zone spec is read in.
func New(spec string, loc *time.Location, job Job) (*Runner, error) {
	if _, err := ParseSchedule(spec); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{spec: spec, loc: loc, job: job}, nil
}

// Run blocks until ctx is cancelled and any in-flight run has returned.
// Job failures are logged; they do not stop the schedule.
func (r *Runner) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(r.loc),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	if _, err := c.AddFunc(r.spec, func() { r.runOnce(ctx) }); err != nil {
		return fmt.Errorf("schedule: %w", err)
	}

	r.runOnce(ctx)

	c.Start()
	appLog.Info("schedule started", "refresh", r.spec, "timezone", r.loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("schedule stopped")
	return nil
}

func (r *Runner) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	started := time.Now()
	if err := r.job(ctx); err != nil {
		appLog.Error("scheduled run failed", err, "refresh", r.spec)
		return
	}
	appLog.Debug("scheduled run completed", "duration", time.Since(started).String())
}

// cronLogger adapts the application logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	appLog.Error("cron: "+msg, err, kv...)
}
