package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"timetables/internal/pattern"
	"timetables/internal/term"
)

// SeriesConfig describes one recurring teaching series.
type SeriesConfig struct {
	// ID is an internal identifier used for event UIDs and logging.
	ID string `yaml:"id" json:"id"`
	// Title and Location are copied onto every generated event.
	Title    string `yaml:"title" json:"title"`
	Location string `yaml:"location" json:"location"`
	// Pattern is the date/time pattern, segments separated by ";".
	Pattern string `yaml:"pattern" json:"pattern"`
	// GroupTemplate is the fragment repeated by "xN" segments.
	GroupTemplate string `yaml:"group_template,omitempty" json:"group_template,omitempty"`
	// Term and Year override the top-level defaults when set.
	Term string `yaml:"term,omitempty" json:"term,omitempty"`
	Year int    `yaml:"year,omitempty" json:"year,omitempty"`
	// Metadata is attached verbatim to each generated event.
	Metadata map[string]string `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// OutputConfig controls where exports are written.
type OutputConfig struct {
	// Path of the export file.
	Path string `yaml:"path" json:"path"`
	// Format is "ics" (default) or "csv".
	Format string `yaml:"format" json:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA timezone events are generated in (e.g. "Europe/London").
	Timezone string `yaml:"timezone" json:"timezone"`

	// StartYear is the default academic year, identified by the calendar
	// year it starts in.
	StartYear int `yaml:"start_year" json:"start_year"`

	// DefaultTerm applies to pattern segments that name no term.
	DefaultTerm string `yaml:"default_term" json:"default_term"`

	// RefreshCron is a cron-style schedule string (e.g. "0 */6 * * *")
	// used by `watch` to regenerate the export.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// MaxMultiplicity caps "xN" counts and the length of week lists
	// before patterns reach the expander.
	MaxMultiplicity int `yaml:"max_multiplicity" json:"max_multiplicity"`

	// LogLevel is "debug", "info" or "error".
	LogLevel string `yaml:"log_level" json:"log_level"`

	Output OutputConfig `yaml:"output" json:"output"`

	// Terms registers term start dates ("2006-01-02") for academic years
	// missing from, or differing from, the built-in table.
	Terms map[int][]string `yaml:"terms,omitempty" json:"terms,omitempty"`

	// Series is the list of teaching series to expand.
	Series []SeriesConfig `yaml:"series" json:"series"`
}

const (
	defaultTimezone        = "Europe/London"
	defaultTerm            = "Michaelmas"
	defaultRefresh         = "0 */6 * * *"
	defaultMaxMultiplicity = 60
	defaultOutputPath      = "./timetable.ics"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timezone:        defaultTimezone,
		StartYear:       currentAcademicYear(time.Now()),
		DefaultTerm:     defaultTerm,
		RefreshCron:     defaultRefresh,
		MaxMultiplicity: defaultMaxMultiplicity,
		LogLevel:        "info",
		Output: OutputConfig{
			Path:   defaultOutputPath,
			Format: "ics",
		},
		Series: []SeriesConfig{},
	}
}

// currentAcademicYear returns the starting year of the academic year that
// contains now; a new year starts on 1 October.
func currentAcademicYear(now time.Time) int {
	if now.Month() < time.October {
		return now.Year() - 1
	}
	return now.Year()
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.StartYear == 0 {
		c.StartYear = currentAcademicYear(time.Now())
	}
	if c.DefaultTerm == "" {
		c.DefaultTerm = defaultTerm
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.MaxMultiplicity <= 0 {
		c.MaxMultiplicity = defaultMaxMultiplicity
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Output.Path == "" {
		c.Output.Path = defaultOutputPath
	}
	c.Output.Format = strings.ToLower(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = "ics"
	}
	if c.Series == nil {
		c.Series = []SeriesConfig{}
	}
}

// Location loads the configured timezone. An unknown zone is an error; it is
// never replaced by the local zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TermTable returns the built-in term table with the configured Terms
// overlaid. The result must still cover a contiguous range of years.
func (c *Config) TermTable() (term.StaticTable, error) {
	extra := make(term.StaticTable, len(c.Terms))
	for year, dates := range c.Terms {
		if len(dates) != 3 {
			return nil, fmt.Errorf("config: terms %d: want 3 dates, got %d", year, len(dates))
		}
		var parsed [3]time.Time
		for i, d := range dates {
			t, err := time.Parse("2006-01-02", strings.TrimSpace(d))
			if err != nil {
				return nil, fmt.Errorf("config: terms %d: %w", year, err)
			}
			parsed[i] = t
		}
		extra[year] = term.Starts{Michaelmas: parsed[0], Lent: parsed[1], Easter: parsed[2]}
	}
	table := term.Overlay(term.Default(), extra)
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return table, nil
}

// SeriesTerm returns the default term for s.
func (c *Config) SeriesTerm(s SeriesConfig) string {
	if s.Term != "" {
		return s.Term
	}
	return c.DefaultTerm
}

// SeriesYear returns the academic year for s.
func (c *Config) SeriesYear(s SeriesConfig) int {
	if s.Year != 0 {
		return s.Year
	}
	return c.StartYear
}

// Validate checks the configuration before any pattern is expanded. It
// parses every series pattern and rejects multiplicities above
// MaxMultiplicity, and week lists longer than it, which the expander itself
// does not limit.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := term.Parse(c.DefaultTerm); err != nil {
		return fmt.Errorf("config: default_term: %w", err)
	}
	switch c.Output.Format {
	case "ics", "csv":
	default:
		return fmt.Errorf("config: unknown output format %q", c.Output.Format)
	}

	seen := make(map[string]bool, len(c.Series))
	for i, s := range c.Series {
		if s.ID == "" {
			return fmt.Errorf("config: series[%d]: id is empty", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("config: series %q: duplicate id", s.ID)
		}
		seen[s.ID] = true

		var tmpl *pattern.GroupTemplate
		if s.GroupTemplate != "" {
			g, err := pattern.ParseGroupTemplate(s.GroupTemplate)
			if err != nil {
				return fmt.Errorf("config: series %q: group_template: %w", s.ID, err)
			}
			tmpl = g
		}
		atoms, err := pattern.Parse(s.Pattern, c.SeriesTerm(s), tmpl)
		if err != nil {
			return fmt.Errorf("config: series %q: %w", s.ID, err)
		}
		for _, a := range atoms {
			if a.Kind == pattern.KindMultiple && a.Count > c.MaxMultiplicity {
				return fmt.Errorf("config: series %q: segment %q repeats x%d, above max_multiplicity %d",
					s.ID, a.Source, a.Count, c.MaxMultiplicity)
			}
			if len(a.Weeks) > c.MaxMultiplicity {
				return fmt.Errorf("config: series %q: segment %q lists %d weeks, above max_multiplicity %d",
					s.ID, a.Source, len(a.Weeks), c.MaxMultiplicity)
			}
		}
	}
	return nil
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path atomically
// (temp file in the same directory, then rename) with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, ".timetables-config-*.tmp")
}

// WriteFileAtomic writes data to path via a temp file and rename, creating
// the parent directory (0700) if needed. The final file has 0600 perms.
func WriteFileAtomic(path string, data []byte, tmpPattern string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
