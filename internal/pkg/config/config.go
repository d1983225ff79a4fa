package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/samirrijal/siteloc/internal/pkg/logging"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	NATS         NATSConfig         `mapstructure:"nats"`
	Valkey       ValkeyConfig       `mapstructure:"valkey"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
	Log          LogConfig          `mapstructure:"log"`
	Evidence     EvidenceConfig     `mapstructure:"evidence"`
	Projection   ProjectionConfig   `mapstructure:"projection"`
	CRSSearch    CRSSearchConfig    `mapstructure:"crs_search"`
	Classifier   ClassifierConfig   `mapstructure:"classifier"`
	Interpolator InterpolatorConfig `mapstructure:"interpolator"`
	Resolver     ResolverConfig     `mapstructure:"resolver"`
	Temporal     TemporalConfig     `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EvidenceConfig locates per-job evidence files. BucketURL is any
// gocloud.dev blob URL: file:///srv/jobs, s3://bucket?region=us-west-2, mem://.
type EvidenceConfig struct {
	BucketURL    string        `mapstructure:"bucket_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
	MaxBytes     int64         `mapstructure:"max_bytes"`
}

// ProjectionConfig points at an ArcGIS-compatible GeometryServer.
type ProjectionConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Enabled bool          `mapstructure:"enabled"`
}

type CRSSearchConfig struct {
	URL            string        `mapstructure:"url"`
	APIKey         string        `mapstructure:"api_key"`
	APIKeyURI      string        `mapstructure:"api_key_uri"` // gocloud.dev/runtimevar URI, used when api_key is empty
	Timeout        time.Duration `mapstructure:"timeout"`
	RegionKeywords []string      `mapstructure:"region_keywords"`
	CacheTTL       int           `mapstructure:"cache_ttl"`
}

// Enabled reports whether remote search is configured.
func (c CRSSearchConfig) Enabled() bool {
	return c.URL != "" && c.APIKey != ""
}

type ClassifierConfig struct {
	MinProjected float64 `mapstructure:"min_projected"`
	MaxProjected float64 `mapstructure:"max_projected"`
}

type InterpolatorConfig struct {
	MaxAnchorDistance float64 `mapstructure:"max_anchor_distance"`
	MinLat            float64 `mapstructure:"min_lat"`
	MaxLat            float64 `mapstructure:"max_lat"`
	MinLon            float64 `mapstructure:"min_lon"`
	MaxLon            float64 `mapstructure:"max_lon"`
}

type ResolverConfig struct {
	Prefetch bool `mapstructure:"prefetch"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SITELOC_EVIDENCE_BUCKET_URL → evidence.bucket_url
	v.SetEnvPrefix("SITELOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "siteloc")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "siteloc")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.max_conn_idle_time", 30*time.Minute)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("evidence.bucket_url", "file:///srv/jobs")
	v.SetDefault("evidence.fetch_timeout", 5*time.Second)
	v.SetDefault("evidence.max_bytes", 4<<20)

	v.SetDefault("projection.url", "https://utility.arcgisonline.com/arcgis/rest/services/Geometry/GeometryServer")
	v.SetDefault("projection.timeout", 10*time.Second)
	v.SetDefault("projection.enabled", true)

	v.SetDefault("crs_search.url", "https://api.maptiler.com")
	v.SetDefault("crs_search.api_key", "")
	v.SetDefault("crs_search.api_key_uri", "")
	v.SetDefault("crs_search.timeout", 5*time.Second)
	v.SetDefault("crs_search.region_keywords", []string{"california", "los angeles", "ventura", "santa barbara", "usa"})
	v.SetDefault("crs_search.cache_ttl", 86400)

	v.SetDefault("classifier.min_projected", 1e3)
	v.SetDefault("classifier.max_projected", 1e7)

	v.SetDefault("interpolator.max_anchor_distance", 200000.0)
	v.SetDefault("interpolator.min_lat", 32.5)
	v.SetDefault("interpolator.max_lat", 35.8)
	v.SetDefault("interpolator.min_lon", -121.0)
	v.SetDefault("interpolator.max_lon", -116.0)

	v.SetDefault("resolver.prefetch", false)

	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "siteloc-backfill")
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.Database.MaxConns <= 0 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		errs = append(errs, fmt.Sprintf("database pool must satisfy 0 <= min_conns <= max_conns, max_conns > 0, got %d/%d",
			c.Database.MinConns, c.Database.MaxConns))
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		errs = append(errs, fmt.Sprintf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	if c.Evidence.BucketURL == "" {
		errs = append(errs, "evidence.bucket_url is required")
	}
	if c.Evidence.FetchTimeout <= 0 {
		errs = append(errs, "evidence.fetch_timeout must be positive")
	}
	if c.Evidence.MaxBytes <= 0 {
		errs = append(errs, "evidence.max_bytes must be positive")
	}
	if c.Projection.Enabled {
		if _, err := url.ParseRequestURI(c.Projection.URL); err != nil {
			errs = append(errs, fmt.Sprintf("projection.url is invalid: %v", err))
		}
		if c.Projection.Timeout <= 0 {
			errs = append(errs, "projection.timeout must be positive")
		}
	}
	if c.CRSSearch.Enabled() && c.CRSSearch.Timeout <= 0 {
		errs = append(errs, "crs_search.timeout must be positive")
	}

	if c.Classifier.MinProjected <= 0 || c.Classifier.MaxProjected <= c.Classifier.MinProjected {
		errs = append(errs, fmt.Sprintf("classifier thresholds must satisfy 0 < min_projected < max_projected, got %g/%g",
			c.Classifier.MinProjected, c.Classifier.MaxProjected))
	}
	if c.Interpolator.MaxAnchorDistance <= 0 {
		errs = append(errs, "interpolator.max_anchor_distance must be positive")
	}
	if c.Interpolator.MinLat >= c.Interpolator.MaxLat || c.Interpolator.MinLon >= c.Interpolator.MaxLon {
		errs = append(errs, "interpolator envelope must have min < max for lat and lon")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
