package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	AppPort string

	APIBaseURL   string
	GatewayDebug bool

	DBDriver   string
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs     int
	SessionTTL       time.Duration
	ViewTTL          time.Duration
	DashboardRefresh string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getduration(k string, d time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := time.ParseDuration(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads the environment, after merging any .env files found in the working
// directory. Variables already set in the environment win over the files.
func Load(files ...string) *Config {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		// missing files are fine; production sets real env vars
		_ = godotenv.Load(f)
	}

	debug, _ := strconv.ParseBool(os.Getenv("GATEWAY_DEBUG"))
	return &Config{
		AppPort: getenv("APP_PORT", "8080"),

		APIBaseURL:   getenv("PORTAL_API_BASE_URL", "http://localhost:8090"),
		GatewayDebug: debug,

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", DriverSQLite)),
		SQLitePath: getenv("SQLITE_PATH", "portal.db"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "portal"),
		MySQLUser: getenv("MYSQL_USER", "portal"),
		MySQLPass: getenv("MYSQL_PASS", "portal"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs:     getint("IDEMPOTENCY_TTL_SECONDS", 300),
		SessionTTL:       getduration("SESSION_TTL", 24*time.Hour),
		ViewTTL:          getduration("VIEW_TTL", 30*time.Minute),
		DashboardRefresh: getenv("DASHBOARD_REFRESH", "@every 5m"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid PORTAL_API_BASE_URL %q", c.APIBaseURL)
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.DashboardRefresh == "" {
		return errors.New("missing DASHBOARD_REFRESH")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverMySQL {
		return c.MySQLDSN()
	}
	return c.SQLitePath
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}
