// Package config loads application configuration by layering:
// defaults < config file < environment < explicitly-set CLI flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/skeleton-pawn/stweb/internal/analytics"
)

// Config holds all application configuration. Subjects, the cutoff
// hour, the comparison window set, and the message templates are
// deliberately configuration rather than constants: historical
// deployments disagreed on all of them.
type Config struct {
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	DataDir      string        `json:"data_dir"`
	DBPath       string        `json:"-"`
	WriteTimeout time.Duration `json:"-"`

	// Timezone is the fixed named zone for all study-date math.
	// The host's local zone is never consulted.
	Timezone string `json:"timezone"`
	// CutoffHour is the study-day boundary: sessions ending before
	// this local hour belong to the previous study date.
	CutoffHour int `json:"cutoff_hour"`

	Subjects          []string           `json:"subjects"`
	ComparisonWindows []int              `json:"comparison_windows"`
	Messages          analytics.Messages `json:"messages"`

	// APIPassword, when set, gates every API route except health.
	APIPassword string `json:"api_password,omitempty"`
}

// Default returns a Config with default values.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("determining home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".stweb")
	return Config{
		Host:         "127.0.0.1",
		Port:         8090,
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "study.db"),
		WriteTimeout: 30 * time.Second,
		Timezone:     "Asia/Seoul",
		CutoffHour:   3,
		Subjects: []string{
			"cost-accounting", "tax-law", "public-finance",
			"public-admin", "tax-accounting", "financial-accounting",
			"reading", "craft",
		},
		ComparisonWindows: []int{3, 7, 14, 30, 180},
		Messages:          analytics.DefaultMessages(),
	}, nil
}

// Load builds a Config by layering: defaults < config file < env <
// flags. The provided FlagSet must already be parsed by the caller.
// Only flags that were explicitly set override the lower layers.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := LoadMinimal()
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, fs)
	return cfg, cfg.Validate()
}

// LoadMinimal builds a Config from defaults, config file, and env,
// without parsing CLI flags. The reload watcher uses this to pick up
// file changes at runtime.
func LoadMinimal() (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	// The data dir env var must apply before the file layer so the
	// config file is read from the right place; the remaining env
	// vars apply after so they win over the file.
	if v := os.Getenv("STWEB_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	cfg.loadEnv()
	cfg.DBPath = filepath.Join(cfg.DataDir, "study.db")
	return cfg, nil
}

// ConfigPath returns the path of the JSON config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file struct {
		Host              string              `json:"host"`
		Port              int                 `json:"port"`
		Timezone          string              `json:"timezone"`
		CutoffHour        *int                `json:"cutoff_hour"`
		Subjects          []string            `json:"subjects"`
		ComparisonWindows []int               `json:"comparison_windows"`
		Messages          *analytics.Messages `json:"messages"`
		APIPassword       string              `json:"api_password"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if file.Host != "" {
		c.Host = file.Host
	}
	if file.Port != 0 {
		c.Port = file.Port
	}
	if file.Timezone != "" {
		c.Timezone = file.Timezone
	}
	if file.CutoffHour != nil {
		c.CutoffHour = *file.CutoffHour
	}
	if len(file.Subjects) > 0 {
		c.Subjects = file.Subjects
	}
	if len(file.ComparisonWindows) > 0 {
		c.ComparisonWindows = file.ComparisonWindows
	}
	if file.Messages != nil {
		c.Messages = mergeMessages(c.Messages, *file.Messages)
	}
	if file.APIPassword != "" {
		c.APIPassword = file.APIPassword
	}
	return nil
}

// mergeMessages overlays non-empty template fields onto the defaults,
// so a config file may override a single message.
func mergeMessages(base, over analytics.Messages) analytics.Messages {
	pick := func(b, o string) string {
		if o != "" {
			return o
		}
		return b
	}
	return analytics.Messages{
		NoSessions:       pick(base.NoSessions, over.NoSessions),
		Streak:           pick(base.Streak, over.Streak),
		RestedYesterday:  pick(base.RestedYesterday, over.RestedYesterday),
		ComeBack:         pick(base.ComeBack, over.ComeBack),
		Neutral:          pick(base.Neutral, over.Neutral),
		StartToday:       pick(base.StartToday, over.StartToday),
		FreshStart:       pick(base.FreshStart, over.FreshStart),
		AheadOfYesterday: pick(base.AheadOfYesterday, over.AheadOfYesterday),
		BehindYesterday:  pick(base.BehindYesterday, over.BehindYesterday),
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv("STWEB_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("STWEB_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("STWEB_CUTOFF_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			c.CutoffHour = hour
		}
	}
	if v := os.Getenv("STWEB_API_PASSWORD"); v != "" {
		c.APIPassword = v
	}
}

// Validate checks field ranges and that the timezone resolves.
func (c *Config) Validate() error {
	if c.CutoffHour < 0 || c.CutoffHour > 23 {
		return fmt.Errorf("cutoff_hour %d out of range 0-23", c.CutoffHour)
	}
	if len(c.Subjects) == 0 {
		return fmt.Errorf("subjects list is empty")
	}
	for _, w := range c.ComparisonWindows {
		if w <= 0 {
			return fmt.Errorf("comparison window %d must be positive", w)
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Call Validate first;
// an unresolvable zone panics here because every date computation
// depends on it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		panic(fmt.Sprintf("timezone %q did not resolve: %v", c.Timezone, err))
	}
	return loc
}

// RegisterServeFlags registers serve-command flags on fs. The caller
// must call fs.Parse before passing fs to Load.
func RegisterServeFlags(fs *flag.FlagSet) {
	fs.String("host", "127.0.0.1", "Host to bind to")
	fs.Int("port", 8090, "Port to listen on")
}

// applyFlags copies explicitly-set flags from fs into cfg.
func applyFlags(cfg *Config, fs *flag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = f.Value.String()
		case "port":
			// flag already validated the int; ignore parse error
			cfg.Port, _ = strconv.Atoi(f.Value.String())
		}
	})
}
