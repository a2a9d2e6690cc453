package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tejusbharadwaj/wnsm-sync/internal/models"
)

// EnvPrefix prefixes environment overrides, e.g. SMARTMETER_SMARTMETER_PASSWORD.
const EnvPrefix = "SMARTMETER"

// Config holds all configuration for our application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	SmartMeter SmartMeterConfig `mapstructure:"smartmeter"`
	Sync       SyncConfig       `mapstructure:"sync"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	GRPCPort    int    `mapstructure:"grpc_port"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// DatabaseConfig points at the PostgreSQL statistics store. An empty host
// keeps everything in memory.
type DatabaseConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Name              string        `mapstructure:"name"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConnections    int           `mapstructure:"max_connections"`
	ConnectionTimeout int           `mapstructure:"connection_timeout"`
	ConnMaxLifetime   time.Duration `mapstructure:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SmartMeterConfig describes the vendor API account.
type SmartMeterConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type SyncConfig struct {
	Schedule           string        `mapstructure:"schedule"`
	Points             []PointConfig `mapstructure:"points"`
	DiscoverPoints     bool          `mapstructure:"discover_points"`
	Concurrency        int           `mapstructure:"concurrency"`
	Timezone           string        `mapstructure:"timezone"`
	Unit               string        `mapstructure:"unit"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	RefreshThreshold   time.Duration `mapstructure:"refresh_threshold"`
	DefaultLookback    time.Duration `mapstructure:"default_lookback"`
	CycleTimeout       time.Duration `mapstructure:"cycle_timeout"`
	MonotonicCacheSize int           `mapstructure:"monotonic_cache_size"`
}

type PointConfig struct {
	ID          string `mapstructure:"id"`
	Granularity string `mapstructure:"granularity"`
	Unit        string `mapstructure:"unit"`
}

// Load reads configuration from file and environment variables.
//
// ${VAR} references inside string values are expanded first, then defaults
// are applied and SMARTMETER_<SECTION>_<KEY> variables override the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// First unmarshal into a map to handle env expansion per value
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
	}
	expanded, _ := expandEnv(rawConfig).(map[string]interface{})

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.MergeConfigMap(expanded); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate reports the first setting that would stop the service from running.
func (c *Config) Validate() error {
	switch {
	case c.SmartMeter.BaseURL == "":
		return errors.New("smartmeter.base_url is required")
	case c.SmartMeter.Username == "" || c.SmartMeter.Password == "":
		return errors.New("smartmeter.username and smartmeter.password are required")
	case len(c.Sync.Points) == 0 && !c.Sync.DiscoverPoints:
		return errors.New("sync.points is empty and sync.discover_points is disabled")
	case c.Sync.Concurrency < 1:
		return fmt.Errorf("sync.concurrency must be at least 1, got %d", c.Sync.Concurrency)
	case c.Sync.MonotonicCacheSize < 1:
		return fmt.Errorf("sync.monotonic_cache_size must be at least 1, got %d", c.Sync.MonotonicCacheSize)
	}
	for i, p := range c.Sync.Points {
		if p.ID == "" {
			return fmt.Errorf("sync.points[%d].id is required", i)
		}
	}
	if _, err := c.Sync.Location(); err != nil {
		return fmt.Errorf("sync.timezone: %w", err)
	}
	return nil
}

// ConnString builds a lib/pq key/value connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode, d.ConnectionTimeout,
	)
}

// Location loads the configured time zone used for candidate dates and
// formatted timestamps.
func (s SyncConfig) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

// MeteringPoints converts the configured points, filling in the default unit.
// An empty granularity is left for the poller to read from the point details.
func (s SyncConfig) MeteringPoints() []models.MeteringPoint {
	points := make([]models.MeteringPoint, 0, len(s.Points))
	for _, p := range s.Points {
		mp := models.MeteringPoint{ID: p.ID, Unit: p.Unit}
		if p.Granularity != "" {
			mp.Granularity = models.ParseGranularity(p.Granularity)
		}
		if mp.Unit == "" {
			mp.Unit = s.Unit
		}
		points = append(points, mp)
	}
	return points
}

func expandEnv(node interface{}) interface{} {
	switch n := node.(type) {
	case map[string]interface{}:
		for k, v := range n {
			n[k] = expandEnv(v)
		}
		return n
	case []interface{}:
		for i, v := range n {
			n[i] = expandEnv(v)
		}
		return n
	case string:
		return os.ExpandEnv(n)
	default:
		return node
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.metrics_port", 9090)

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "smartmeter")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.connection_timeout", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("smartmeter.base_url", "")
	v.SetDefault("smartmeter.username", "")
	v.SetDefault("smartmeter.password", "")
	v.SetDefault("smartmeter.timeout", "30s")
	v.SetDefault("smartmeter.rate_limit", 5.0)
	v.SetDefault("smartmeter.rate_limit_burst", 10)

	v.SetDefault("sync.schedule", "@every 1h")
	v.SetDefault("sync.discover_points", false)
	v.SetDefault("sync.concurrency", 1)
	v.SetDefault("sync.timezone", "Europe/Vienna")
	v.SetDefault("sync.unit", "kWh")
	v.SetDefault("sync.session_ttl", "55m")
	v.SetDefault("sync.refresh_threshold", "24h")
	v.SetDefault("sync.default_lookback", "720h")
	v.SetDefault("sync.cycle_timeout", "10m")
	v.SetDefault("sync.monotonic_cache_size", 1024)
}
