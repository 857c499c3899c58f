package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	StorageMySQL  = "mysql"
	StorageMemory = "memory"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	Storage       string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	CacheTTL      time.Duration

	AuthBase      string
	AuthKey       string
	AuthJWTSecret string
	AuthRPS       int

	AdminEmails []string
	AdminRole   string

	BookingRatePerMinute int
	TrustProxyHeaders    bool
}

func (c Config) Dev() bool { return c.AppEnv == "dev" }

// Load reads the environment. A .env file in the working directory is
// loaded first when present; real environment variables win.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		Storage:       strings.ToLower(env("STORAGE", StorageMySQL)),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/tarasamar?parseTime=true&charset=utf8mb4&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 60)) * time.Second,

		AuthBase:      strings.TrimRight(env("AUTH_BASE_URL", ""), "/"),
		AuthKey:       env("AUTH_API_KEY", ""),
		AuthJWTSecret: env("AUTH_JWT_SECRET", ""),
		AuthRPS:       atoi("AUTH_RPS", 5),

		AdminEmails: splitList(env("ADMIN_EMAILS", "TaraSamar@gmail.com")),
		AdminRole:   env("ADMIN_ROLE", ""),

		BookingRatePerMinute: atoi("BOOKING_RATE_PER_MINUTE", 10),
		TrustProxyHeaders:    parseBool("TRUST_PROXY_HEADERS"),
	}
	if c.AuthJWTSecret == "" {
		log.Warn().Msg("AUTH_JWT_SECRET is empty")
	}
	if c.AuthBase == "" && !c.Dev() {
		log.Warn().Msg("AUTH_BASE_URL is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseBool(k string) bool {
	v := os.Getenv(k)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("key", k).Str("value", v).Msg("not a boolean, using false")
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
