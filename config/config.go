// Package config loads the settings of the sample program: a YAML file,
// overlaid by ORMSAMPLE_* environment variables.
package config

import (
	"os"
	"slices"
	"strings"
	"time"

	"github.com/coderi421/ormsample/internal/errs"
	"github.com/coderi421/ormsample/sampledb"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// ConnectionName 示例程序使用的连接串名字
const ConnectionName = "AdventureWorksDb"

var ErrInvalidConfig = errs.ErrInvalidConfig

// SampleNames 所有已知的 sampler，也是默认的运行顺序
var SampleNames = []string{"sqlx", "gorm"}

type Config struct {
	Driver            string            `yaml:"driver"`
	ConnectionStrings map[string]string `yaml:"connection_strings"`
	// Samples 按顺序运行
	Samples []string `yaml:"samples"`
	// Pause 在两个 sampler 之间等待回车
	Pause    bool   `yaml:"pause"`
	Language string `yaml:"language"`
	Currency string `yaml:"currency"`

	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
	State   StateConfig   `yaml:"state"`
}

type LogConfig struct {
	// Level debug, info, warn, error
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	// Addr 为空时不暴露 /metrics
	Addr string `yaml:"addr"`
}

type TracingConfig struct {
	// Exporter none, zipkin, jaeger
	Exporter    string `yaml:"exporter"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

type StateConfig struct {
	// Store memory 或 redis
	Store      string        `yaml:"store"`
	RedisAddr  string        `yaml:"redis_addr"`
	Expiration time.Duration `yaml:"expiration"`
}

// Default returns the settings used when nothing is configured: every
// sampler against a private in-memory SQLite database.
func Default() *Config {
	return &Config{
		Driver:            "sqlite3",
		ConnectionStrings: map[string]string{ConnectionName: ""},
		Samples:           slices.Clone(SampleNames),
		Language:          "en-US",
		Currency:          "USD",
		Log:               LogConfig{Level: "info"},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "ormsample",
		},
		State: StateConfig{
			Store:      "memory",
			Expiration: 15 * time.Minute,
		},
	}
}

// Load reads path on top of Default, then applies the environment.
// An empty path skips the file. The result is not validated: callers
// apply their own overrides first and then call Validate.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err = yaml.Unmarshal(content, cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(lookup)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if val, ok := lookup(key); ok {
			*dst = val
		}
	}
	str("ORMSAMPLE_DRIVER", &c.Driver)
	str("ORMSAMPLE_LANGUAGE", &c.Language)
	str("ORMSAMPLE_CURRENCY", &c.Currency)
	str("ORMSAMPLE_LOG_LEVEL", &c.Log.Level)
	str("ORMSAMPLE_METRICS_ADDR", &c.Metrics.Addr)
	str("ORMSAMPLE_TRACING_EXPORTER", &c.Tracing.Exporter)
	str("ORMSAMPLE_TRACING_ENDPOINT", &c.Tracing.Endpoint)
	str("ORMSAMPLE_STATE_STORE", &c.State.Store)
	str("ORMSAMPLE_REDIS_ADDR", &c.State.RedisAddr)
	if val, ok := lookup("ORMSAMPLE_DSN"); ok {
		c.SetDSN(val)
	}
	if val, ok := lookup("ORMSAMPLE_SAMPLES"); ok {
		c.Samples = SplitSamples(val)
	}
}

// SplitSamples parses a comma separated list such as "sqlx, gorm".
func SplitSamples(val string) []string {
	var res []string
	for _, name := range strings.Split(val, ",") {
		if name = strings.TrimSpace(name); name != "" {
			res = append(res, name)
		}
	}
	return res
}

// DSN returns the AdventureWorksDb connection string.
func (c *Config) DSN() string {
	return c.ConnectionStrings[ConnectionName]
}

func (c *Config) SetDSN(dsn string) {
	if c.ConnectionStrings == nil {
		c.ConnectionStrings = make(map[string]string, 1)
	}
	c.ConnectionStrings[ConnectionName] = dsn
}

func (c *Config) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, errs.NewErrInvalidConfig("language", c.Language)
	}
	return tag, nil
}

func (c *Config) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, errs.NewErrInvalidConfig("currency", c.Currency)
	}
	return unit, nil
}

// Validate reports the first setting the program cannot run with.
func (c *Config) Validate() error {
	if _, err := sampledb.DialectOf(c.Driver); err != nil {
		return errs.NewErrInvalidConfig("driver", c.Driver)
	}
	if len(c.Samples) == 0 {
		return errs.NewErrInvalidConfig("samples", c.Samples)
	}
	for _, name := range c.Samples {
		if !slices.Contains(SampleNames, name) {
			return errs.NewErrInvalidConfig("samples", name)
		}
	}
	if _, err := c.LanguageTag(); err != nil {
		return err
	}
	if _, err := c.CurrencyUnit(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errs.NewErrInvalidConfig("log.level", c.Log.Level)
	}
	switch c.Tracing.Exporter {
	case "none", "":
	case "zipkin", "jaeger":
		if c.Tracing.Endpoint == "" {
			return errs.NewErrInvalidConfig("tracing.endpoint", c.Tracing.Endpoint)
		}
	default:
		return errs.NewErrInvalidConfig("tracing.exporter", c.Tracing.Exporter)
	}
	switch c.State.Store {
	case "memory":
	case "redis":
		if c.State.RedisAddr == "" {
			return errs.NewErrInvalidConfig("state.redis_addr", c.State.RedisAddr)
		}
	default:
		return errs.NewErrInvalidConfig("state.store", c.State.Store)
	}
	return nil
}
