package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/KirkDiggler/remindme/internal/database"
)

// Colors are the embed colours used across command responses and deliveries
type Colors struct {
	Default int
	Error   int
	Success int
	Warning int
	Info    int
}

type Config struct {
	// Discord
	DiscordToken  string
	ApplicationID string
	GuildID       string // optional, registers commands on one guild only

	// Database
	DatabaseDriver string // "sqlite3" | "pgx"
	DatabaseDSN    string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// HTTP
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Logging
	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool

	// Time resolution
	Location *time.Location

	// Scheduler
	ResyncSchedule  string // robfig/cron spec, empty disables resync
	DeliveryWorkers int

	Colors Colors
}

// Load reads .env if present, then the environment
func Load() (*Config, error) {
	// A missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("database_driver", database.DriverSQLite)
	v.SetDefault("database_dsn", "file:data/remindme.db?_foreign_keys=on")
	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("redis_db", 0)
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("pretty_log", false)
	v.SetDefault("timezone_offset", 2*time.Hour)
	v.SetDefault("resync_schedule", "@every 1h")
	v.SetDefault("delivery_workers", 8)
	v.SetDefault("color_default", "0xffffff")
	v.SetDefault("color_error", "0xff0000")
	v.SetDefault("color_success", "0x00ff00")
	v.SetDefault("color_warning", "0xffff00")
	v.SetDefault("color_info", "0x00ffff")

	return v
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		DiscordToken:    v.GetString("discord_token"),
		ApplicationID:   v.GetString("application_id"),
		GuildID:         v.GetString("guild_id"),
		DatabaseDriver:  strings.ToLower(v.GetString("database_driver")),
		DatabaseDSN:     v.GetString("database_dsn"),
		RedisAddr:       v.GetString("redis_addr"),
		RedisPassword:   v.GetString("redis_password"),
		RedisDB:         v.GetInt("redis_db"),
		HTTPAddr:        v.GetString("http_addr"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		PrettyLog:       v.GetBool("pretty_log"),
		ResyncSchedule:  v.GetString("resync_schedule"),
		DeliveryWorkers: v.GetInt("delivery_workers"),
	}

	if cfg.DiscordToken == "" {
		return nil, errors.New("DISCORD_TOKEN is required")
	}

	switch cfg.DatabaseDriver {
	case database.DriverSQLite, database.DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}

	if cfg.DeliveryWorkers < 1 {
		return nil, fmt.Errorf("DELIVERY_WORKERS must be positive, got %d", cfg.DeliveryWorkers)
	}

	cfg.Location = fixedZone(v.GetString("timezone_name"), v.GetDuration("timezone_offset"))

	var err error
	colors := []struct {
		key string
		dst *int
	}{
		{"color_default", &cfg.Colors.Default},
		{"color_error", &cfg.Colors.Error},
		{"color_success", &cfg.Colors.Success},
		{"color_warning", &cfg.Colors.Warning},
		{"color_info", &cfg.Colors.Info},
	}
	for _, c := range colors {
		if *c.dst, err = parseColor(v.GetString(c.key)); err != nil {
			return nil, fmt.Errorf("%s: %w", strings.ToUpper(c.key), err)
		}
	}

	return cfg, nil
}

// fixedZone names the zone after its offset when no name is configured
func fixedZone(name string, offset time.Duration) *time.Location {
	if name == "" {
		sign := "+"
		abs := offset
		if offset < 0 {
			sign = "-"
			abs = -offset
		}
		h := int(abs / time.Hour)
		m := int((abs % time.Hour) / time.Minute)
		name = fmt.Sprintf("UTC%s%02d:%02d", sign, h, m)
	}
	return time.FixedZone(name, int(offset/time.Second))
}

// parseColor accepts 0xRRGGBB, #RRGGBB or a decimal value
func parseColor(s string) (int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	if v < 0 || v > 0xffffff {
		return 0, fmt.Errorf("colour %q out of range", s)
	}
	return int(v), nil
}
