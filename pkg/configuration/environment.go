package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"ambassador_crm"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type TelegramOptions struct {
	BotToken          string `env:"TELEGRAM_BOT_TOKEN"`
	DistributorChatID int64  `env:"TELEGRAM_DISTRIBUTOR_CHAT_ID"`
}

// Enabled reports whether order notifications can be sent at all.
func (t *TelegramOptions) Enabled() bool {
	return strings.TrimSpace(t.BotToken) != "" && t.DistributorChatID != 0
}

type ImporterOptions struct {
	// DatePolicy controls what happens to rows with unparseable visit dates:
	// "strict" skips the row with a warning, "lenient" substitutes now().
	DatePolicy    string `env:"IMPORT_DATE_POLICY" envDefault:"strict"`
	SwapThreshold int    `env:"IMPORT_SWAP_THRESHOLD" envDefault:"40"`
	ProfilePath   string `env:"IMPORT_PROFILE_PATH"`
	// Comma-separated candidate input locations checked in order when the
	// CLI is run without an explicit file.
	InputCandidates string `env:"IMPORT_INPUT_CANDIDATES" envDefault:"./import.xlsx,./import.csv,./data/import.xlsx,./data/import.csv"`
}

func (i *ImporterOptions) Validate() error {
	switch i.DatePolicy {
	case "strict", "lenient":
	default:
		return fmt.Errorf("invalid IMPORT_DATE_POLICY=%q (expected strict|lenient)", i.DatePolicy)
	}
	if i.SwapThreshold < 0 {
		return fmt.Errorf("IMPORT_SWAP_THRESHOLD must be non-negative, got %d", i.SwapThreshold)
	}
	return nil
}

func (i *ImporterOptions) CandidatePaths() []string {
	parts := strings.Split(i.InputCandidates, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type GeocoderOptions struct {
	Enabled bool   `env:"GEOCODER_ENABLED" envDefault:"false"`
	BaseURL string `env:"GEOCODER_BASE_URL" envDefault:"https://nominatim.openstreetmap.org/search"`
	// Courtesy delay between requests to respect the provider's rate limit.
	Delay   time.Duration `env:"GEOCODER_DELAY" envDefault:"1s"`
	Timeout time.Duration `env:"GEOCODER_TIMEOUT" envDefault:"5s"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type Configuration struct {
	Database   DatabaseOptions
	Telegram   TelegramOptions
	Importer   ImporterOptions
	Geocoder   GeocoderOptions
	Prometheus PrometheusOptions
	RateLimit  RateLimitOptions

	ServerPort       int           `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string        `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string        `env:"-"`
	Domain           string        `env:"DOMAIN" envDefault:"localhost"`
	Origin           string        `env:"ORIGIN" envDefault:"http://localhost:3200"`
	AllowedOrigins   string        `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`
	PageSize         int           `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int           `env:"MAX_PAGE_SIZE" envDefault:"100"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string        `env:"LOG_PATH" envDefault:"./logs/app.log"`
	AuthSecret       string        `env:"AUTH_SECRET" envDefault:"dev-secret-change-me"`
	SessionDuration  time.Duration `env:"SESSION_DURATION" envDefault:"720h"`
	RequestIDHeader  string        `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	RealIPHeader     string        `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func (c *Configuration) Scheme() string {
	if c.GoAppEnvironment == Production {
		return "https"
	}
	return "http"
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

	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if err := c.Importer.Validate(); err != nil {
		return fmt.Errorf("importer configuration error: %w", err)
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

	if os.Getenv("ORIGIN") == "" {
		if c.GoAppEnvironment == "development" {
			c.Origin = fmt.Sprintf("%s://%s:%d", c.Scheme(), c.Domain, c.ServerPort)
		} else {
			c.Origin = fmt.Sprintf("%s://%s", c.Scheme(), c.Domain)
		}
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
