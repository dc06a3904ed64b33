package liquiditick

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/liquiditick/internal/config"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey", "redis" or "memory"
	addrs    []string
	password string
	prefix   string

	dailyLimit int
	location   *time.Location
	now        func() time.Time

	source      Source
	sqliteDSN   string
	autoMigrate bool
	cacheTTL    time.Duration

	openAIKey   string
	openAIURL   string
	openAIModel string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey stores usage state in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverValkey
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis stores usage state in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithMemory keeps usage state in process memory. Nothing survives a restart.
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = config.DriverMemory
		c.addrs = nil
	})
}

// WithKeyPrefix namespaces every persisted key. Default: "liquiditick:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.prefix = prefix
	})
}

// WithDailyLimit sets the Free tier allowance. Default: 10.
func WithDailyLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dailyLimit = n
	})
}

// WithLocation sets the zone whose calendar day resets the quota.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return optionFunc(func(c *clientConfig) {
		c.location = loc
	})
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.now = now
	})
}

// WithSource plugs in a custom opportunity data source.
// Takes precedence over WithSQLite.
func WithSource(s Source) Option {
	return optionFunc(func(c *clientConfig) {
		c.source = s
	})
}

// WithSQLite reads opportunities from the scanner's SQLite database.
// With migrate set, missing tables are created.
func WithSQLite(dsn string, migrate bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.sqliteDSN = dsn
		c.autoMigrate = migrate
	})
}

// WithCacheTTL caches source fetches in the usage store for ttl.
// Zero disables caching (default).
func WithCacheTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheTTL = ttl
	})
}

// WithOpenAI enables model-written daily report narratives.
// An empty baseURL uses the OpenAI endpoint.
func WithOpenAI(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIURL = baseURL
		c.openAIModel = model
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
