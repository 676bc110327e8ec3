package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abhishek622/interviewflow/internal/timewindow"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Env         string `envconfig:"APP_ENV" default:"development"`
	Port        int    `envconfig:"APP_PORT" default:"8080"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	SeedFile    string `envconfig:"MEMORY_SEED_FILE"`
	DB          DBConfig
	Redis       RedisConfig
	Notify      NotifyConfig
	Limiter     RateLimiterConfig
	CORS        CORSConfig
	JWT         JWTConfig
	Scheduling  SchedulingConfig
	Reminder    ReminderConfig
}

// database configuration
type DBConfig struct {
	DSN          string        `envconfig:"DATABASE_URL"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"25"`
	MaxIdleTime  time.Duration `envconfig:"DB_MAX_IDLE_TIME" default:"15m"`
}

// redis connection; an empty Addr disables event publishing to redis
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type NotifyConfig struct {
	Channel  string `envconfig:"NOTIFY_CHANNEL" default:"interview_events"`
	KeepLast int64  `envconfig:"NOTIFY_KEEP_LAST" default:"500"`
}

// rate limiting configuration
type RateLimiterConfig struct {
	RPS     float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	Burst   int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
	Enabled bool    `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORS configuration
type CORSConfig struct {
	TrustedOrigins []string `envconfig:"CORS_TRUSTED_ORIGINS" default:"http://localhost:3000,http://localhost:4173,http://localhost:5173"`
}

// JWT configuration
type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
	Issuer string `envconfig:"JWT_ISSUER" default:"interviewflow"`
}

// scheduling policy; PolicyFile, when set, overrides these fields
type SchedulingConfig struct {
	Timezone     string   `envconfig:"SCHEDULING_TIMEZONE" default:"UTC"`
	Open         string   `envconfig:"BUSINESS_HOURS_OPEN" default:"09:00"`
	Close        string   `envconfig:"BUSINESS_HOURS_CLOSE" default:"18:00"`
	Workdays     []string `envconfig:"WORKDAYS" default:"mon,tue,wed,thu,fri"`
	MinDuration  int      `envconfig:"INTERVIEW_MIN_DURATION" default:"15"`
	MaxDuration  int      `envconfig:"INTERVIEW_MAX_DURATION" default:"240"`
	StepMinutes  int      `envconfig:"SLOT_STEP_MINUTES" default:"30"`
	MaxRangeDays int      `envconfig:"AVAILABILITY_MAX_RANGE_DAYS" default:"31"`
	PolicyFile   string   `envconfig:"SCHEDULING_POLICY_FILE"`
}

// interview reminder job
type ReminderConfig struct {
	Enabled  bool          `envconfig:"REMINDER_ENABLED" default:"false"`
	Schedule string        `envconfig:"REMINDER_SCHEDULE" default:"*/5 * * * *"`
	LeadTime time.Duration `envconfig:"REMINDER_LEAD_TIME" default:"24h"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.Scheduling.PolicyFile != "" {
		if err := cfg.Scheduling.loadFile(cfg.Scheduling.PolicyFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// policyFile mirrors SchedulingConfig; absent keys keep the env value.
type policyFile struct {
	Timezone      *string  `yaml:"timezone"`
	BusinessHours *struct {
		Open  string `yaml:"open"`
		Close string `yaml:"close"`
	} `yaml:"business_hours"`
	Workdays     []string `yaml:"workdays"`
	MinDuration  *int     `yaml:"min_duration_minutes"`
	MaxDuration  *int     `yaml:"max_duration_minutes"`
	StepMinutes  *int     `yaml:"slot_step_minutes"`
	MaxRangeDays *int     `yaml:"max_range_days"`
}

func (s *SchedulingConfig) loadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read policy file: %w", err)
	}
	return s.overlay(raw)
}

func (s *SchedulingConfig) overlay(raw []byte) error {
	var f policyFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse policy file: %w", err)
	}
	if f.Timezone != nil {
		s.Timezone = *f.Timezone
	}
	if f.BusinessHours != nil {
		s.Open, s.Close = f.BusinessHours.Open, f.BusinessHours.Close
	}
	if len(f.Workdays) > 0 {
		s.Workdays = f.Workdays
	}
	if f.MinDuration != nil {
		s.MinDuration = *f.MinDuration
	}
	if f.MaxDuration != nil {
		s.MaxDuration = *f.MaxDuration
	}
	if f.StepMinutes != nil {
		s.StepMinutes = *f.StepMinutes
	}
	if f.MaxRangeDays != nil {
		s.MaxRangeDays = *f.MaxRangeDays
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// Policy builds the scheduling policy the engine enforces.
func (s SchedulingConfig) Policy() (timewindow.Policy, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return timewindow.Policy{}, fmt.Errorf("invalid SCHEDULING_TIMEZONE %q: %w", s.Timezone, err)
	}
	open, err := timewindow.ParseClock(s.Open)
	if err != nil {
		return timewindow.Policy{}, fmt.Errorf("invalid BUSINESS_HOURS_OPEN: %w", err)
	}
	closing, err := timewindow.ParseClock(s.Close)
	if err != nil {
		return timewindow.Policy{}, fmt.Errorf("invalid BUSINESS_HOURS_CLOSE: %w", err)
	}
	days := make([]time.Weekday, 0, len(s.Workdays))
	for _, d := range s.Workdays {
		name := strings.ToLower(strings.TrimSpace(d))
		if len(name) > 3 {
			name = name[:3]
		}
		wd, ok := weekdays[name]
		if !ok {
			return timewindow.Policy{}, fmt.Errorf("invalid workday %q", d)
		}
		days = append(days, wd)
	}

	p := timewindow.Policy{
		Location:           loc,
		OpenMinute:         open,
		CloseMinute:        closing,
		Workdays:           days,
		MinDurationMinutes: s.MinDuration,
		MaxDurationMinutes: s.MaxDuration,
		StepMinutes:        s.StepMinutes,
		MaxRangeDays:       s.MaxRangeDays,
	}
	if err := p.Validate(); err != nil {
		return timewindow.Policy{}, err
	}
	return p, nil
}

func (c *Config) Validate() error {
	// Validate environment
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
		"test":        true,
	}
	if !validEnvs[c.Env] {
		return fmt.Errorf("invalid environment: %s (must be one of: development, staging, production, test)", c.Env)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be between 1 and 65535)", c.Port)
	}
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER: %s (must be postgres or memory)", c.StoreDriver)
	}
	if c.DB.MaxOpenConns < 1 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be at least 1")
	}
	if c.DB.MaxIdleConns < 1 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be at least 1")
	}
	if c.DB.MaxIdleConns > c.DB.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS (%d) cannot exceed DB_MAX_OPEN_CONNS (%d)",
			c.DB.MaxIdleConns, c.DB.MaxOpenConns)
	}
	if c.Notify.Channel == "" {
		return fmt.Errorf("NOTIFY_CHANNEL must not be empty")
	}
	if c.Limiter.RPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be non-negative")
	}
	if c.Limiter.Burst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if len(c.CORS.TrustedOrigins) == 0 {
		return fmt.Errorf("at least one trusted origin must be specified")
	}
	if _, err := c.Scheduling.Policy(); err != nil {
		return err
	}
	if c.Reminder.Enabled && c.Reminder.LeadTime <= 0 {
		return fmt.Errorf("REMINDER_LEAD_TIME must be positive")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GetCORSOrigins returns the list of trusted CORS origins
func (c *Config) GetCORSOrigins() []string {
	origins := make([]string, 0, len(c.CORS.TrustedOrigins))
	for _, origin := range c.CORS.TrustedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func (c *Config) String() string {
	return fmt.Sprintf("Config{Env=%s, Port=%d, Store=%s, DB.MaxOpenConns=%d, DB.MaxIdleConns=%d, "+
		"Redis=%t, Limiter.RPS=%.2f, Limiter.Burst=%d, Limiter.Enabled=%t, CORS.Origins=%d, "+
		"Scheduling.Timezone=%s, Reminder.Enabled=%t}",
		c.Env, c.Port, c.StoreDriver, c.DB.MaxOpenConns, c.DB.MaxIdleConns,
		c.Redis.Addr != "", c.Limiter.RPS, c.Limiter.Burst, c.Limiter.Enabled, len(c.CORS.TrustedOrigins),
		c.Scheduling.Timezone, c.Reminder.Enabled)
}
