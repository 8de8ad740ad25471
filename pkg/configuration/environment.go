package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-mq/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c, err := Load([]string{".env", ".env.local"})
	if err != nil {
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist, looking in the working directory
// first and then in the enclosing module root.
func LoadEnv(envFiles []string) (int, error) {
	root := moduleRoot()

	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		switch {
		case fs.FileExists(file):
			existingFiles = append(existingFiles, file)
		case root != "" && fs.FileExists(filepath.Join(root, file)):
			existingFiles = append(existingFiles, filepath.Join(root, file))
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
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
	Driver   string `env:"DB_DRIVER" envDefault:"pgx" validate:"oneof=pgx pgx/v5 postgres mysql sqlite sqlite3"`
	DSN      string `env:"DB_DSN"`
	Name     string `env:"DB_NAME" envDefault:"iota_mq"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10" validate:"gte=0"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5" validate:"gte=0"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"10m"`
}

// ConnectionString returns DB_DSN when set and otherwise builds a DSN for the
// configured driver. For sqlite DB_NAME is the database file.
func (d *DatabaseOptions) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	switch d.Driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", d.User, d.Password, d.Host, d.Port, d.Name)
	case "sqlite", "sqlite3":
		return d.Name
	default:
		return fmt.Sprintf(
			"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
			d.Host, d.Port, d.User, d.Name, d.Password,
		)
	}
}

type QueueOptions struct {
	Table           string        `env:"MQ_TABLE" envDefault:"message_queue" validate:"required"`
	PollingInterval time.Duration `env:"MQ_POLLING_INTERVAL" envDefault:"1s" validate:"gt=0"`
	ReceiveTimeout  time.Duration `env:"MQ_RECEIVE_TIMEOUT" envDefault:"1s" validate:"gte=0"`
	MaxAttempts     int           `env:"MQ_MAX_ATTEMPTS" envDefault:"2" validate:"min=1"`

	// Consumer limits; zero disables a limit.
	TimeLimit     time.Duration `env:"MQ_TIME_LIMIT" envDefault:"0s" validate:"gte=0"`
	MessageLimit  int64         `env:"MQ_MESSAGE_LIMIT" envDefault:"0" validate:"gte=0"`
	MemoryLimitMB uint64        `env:"MQ_MEMORY_LIMIT_MB" envDefault:"0"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"iota-mq"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
	Addr    string `env:"PROMETHEUS_METRICS_ADDR" envDefault:"localhost:9090"`
}

type Configuration struct {
	Database      DatabaseOptions
	Queue         QueueOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions

	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error" validate:"oneof=silent error warn info debug"`
	// Empty LogPath logs to the console only.
	LogPath string `env:"LOG_PATH"`

	logFile io.Closer
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

func Use() *Configuration {
	return singleton()
}

// Load reads envFiles, parses the environment and validates the result.
// Use is the process-wide entry point; Load exists for tools and tests.
func Load(envFiles []string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		c.Unload()
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 && len(envFiles) > 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if c.LogPath == "" {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
		return nil
	}
	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger
	return nil
}

// Unload releases the log file.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
