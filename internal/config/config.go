package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                  string   `mapstructure:"PORT"`
	Env                   string   `mapstructure:"ENV"`
	DatabaseURL           string   `mapstructure:"DATABASE_URL"`
	DBMaxConns            int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns            int32    `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins           []string `mapstructure:"CORS_ORIGINS"`
	WeatherAPIKey         string   `mapstructure:"WEATHER_API_KEY"`
	WeatherCity           string   `mapstructure:"WEATHER_CITY"`
	WeatherTimeoutSecs    int      `mapstructure:"WEATHER_TIMEOUT_SECONDS"`
	RetentionHours        int      `mapstructure:"RETENTION_HOURS"`
	AdmissionIntervalSecs int      `mapstructure:"ADMISSION_INTERVAL_SECONDS"`
	SnapshotLimit         int      `mapstructure:"SNAPSHOT_LIMIT"`
	Departments           []string `mapstructure:"DEPARTMENTS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("WEATHER_CITY", "Chennai")
	v.SetDefault("WEATHER_TIMEOUT_SECONDS", 5)
	v.SetDefault("RETENTION_HOURS", 6)
	v.SetDefault("ADMISSION_INTERVAL_SECONDS", 60)
	v.SetDefault("SNAPSHOT_LIMIT", 500)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("WEATHER_API_KEY")
	v.BindEnv("WEATHER_CITY")
	v.BindEnv("WEATHER_TIMEOUT_SECONDS")
	v.BindEnv("RETENTION_HOURS")
	v.BindEnv("ADMISSION_INTERVAL_SECONDS")
	v.BindEnv("SNAPSHOT_LIMIT")
	v.BindEnv("DEPARTMENTS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}
	if cfg.Departments == nil {
		if depts := v.GetString("DEPARTMENTS"); depts != "" {
			cfg.Departments = splitTrimmed(depts)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitTrimmed(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run with.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RetentionHours <= 0 {
		return fmt.Errorf("RETENTION_HOURS must be positive, got %d", c.RetentionHours)
	}
	if c.AdmissionIntervalSecs <= 0 {
		return fmt.Errorf("ADMISSION_INTERVAL_SECONDS must be positive, got %d", c.AdmissionIntervalSecs)
	}
	if c.SnapshotLimit <= 0 {
		return fmt.Errorf("SNAPSHOT_LIMIT must be positive, got %d", c.SnapshotLimit)
	}
	return nil
}

// RetentionWindow returns the maximum age a live record may reach before the
// eviction pass removes it.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// AdmissionInterval returns the minimum time between two admissions.
func (c *Config) AdmissionInterval() time.Duration {
	return time.Duration(c.AdmissionIntervalSecs) * time.Second
}

// WeatherTimeout bounds a single Temperature Source lookup.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.WeatherTimeoutSecs) * time.Second
}
