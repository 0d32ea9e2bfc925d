package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hotelstaff/roster/pkg/logging"
)

const Production = "production"

const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files from the working directory, or from the
// nearest parent holding a go.mod when none exist there. It returns how many
// files were loaded.
func LoadEnv(envFiles []string) (int, error) {
	existing := existingFiles("", envFiles)
	if len(existing) == 0 {
		if root := moduleRoot(); root != "" {
			existing = existingFiles(root, envFiles)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func existingFiles(dir string, envFiles []string) []string {
	out := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		path := filepath.Join(dir, file)
		if fs.FileExists(path) {
			out = append(out, path)
		}
	}
	return out
}

func moduleRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"roster"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	MaxConns int32  `env:"DB_MAX_CONNS" envDefault:"10"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"roster"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"http://localhost:4318/v1/traces"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return errors.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return errors.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != BackendMemory && r.Storage != BackendRedis {
		return errors.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == BackendRedis && r.RedisURL == "" {
		return errors.New("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type RepairOptions struct {
	// Schedule is a cron expression; empty disables scheduled runs.
	Schedule     string        `env:"REPAIR_SCHEDULE" envDefault:""`
	FetchTimeout time.Duration `env:"REPAIR_FETCH_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"REPAIR_WRITE_TIMEOUT" envDefault:"10s"`
}

func (r *RepairOptions) Validate() error {
	if r.FetchTimeout <= 0 || r.WriteTimeout <= 0 {
		return errors.New("repair timeouts must be positive")
	}
	if strings.TrimSpace(r.Schedule) == "" {
		return nil
	}
	if _, err := cron.ParseStandard(r.Schedule); err != nil {
		return errors.Wrapf(err, "invalid REPAIR_SCHEDULE=%q", r.Schedule)
	}
	return nil
}

type Configuration struct {
	Database      DatabaseOptions
	Prometheus    PrometheusOptions
	OpenTelemetry OpenTelemetryOptions
	RateLimit     RateLimitOptions
	Repair        RepairOptions

	StoreBackend       string `env:"STORE_BACKEND" envDefault:"memory"`
	RedisURL           string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ServerPort         int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment   string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress      string `env:"-"`
	Domain             string `env:"DOMAIN" envDefault:"localhost"`
	Origin             string `env:"ORIGIN" envDefault:"http://localhost:3200"`
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`
	MaxUploadSize      int64  `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath            string `env:"LOG_PATH" envDefault:"./logs/roster.log"`
	// The server looks for this header in the request and generates a uuidv4 when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logFile io.Closer
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	return logging.ParseLevel(c.LogLevel)
}

func (c *Configuration) Scheme() string {
	if c.GoAppEnvironment == Production { // assume 'https' on production mode
		return "https"
	}
	return "http"
}

// AllowedOrigins lists CORS origins, falling back to Origin.
func (c *Configuration) AllowedOrigins() []string {
	var out []string
	for _, part := range strings.Split(c.CORSAllowedOrigins, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = append(out, c.Origin)
	}
	return out
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	if os.Getenv("ORIGIN") == "" && c.GoAppEnvironment == "development" {
		c.Origin = fmt.Sprintf("%s://%s:%d", c.Scheme(), c.Domain, c.ServerPort)
	}
	return nil
}

// Validate normalizes enumerated options and rejects invalid combinations.
func (c *Configuration) Validate() error {
	backend := strings.ToLower(strings.TrimSpace(c.StoreBackend))
	if backend == "" {
		backend = BackendMemory
	}
	switch backend {
	case BackendMemory, BackendPostgres, BackendRedis:
	default:
		return errors.Errorf("invalid STORE_BACKEND=%q (expected memory|postgres|redis)", c.StoreBackend)
	}
	c.StoreBackend = backend

	if c.MaxUploadSize <= 0 {
		return errors.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return errors.Wrap(err, "rate limit configuration error")
	}
	if err := c.Repair.Validate(); err != nil {
		return errors.Wrap(err, "repair configuration error")
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
