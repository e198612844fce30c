package config

import (
	"log"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
)

var (
	AppEnv       string
	IsStaging    bool
	IsProduction bool

	JWTSecret string
	Port      string

	// database selection: a MySQL DSN takes precedence, otherwise a
	// local sqlite file is used (dev and tests)
	DatabaseDSN string
	SQLitePath  string

	// optional redis backing for the token revocation store
	RedisURL string

	// polling cadence; the server advertises these to clients and the
	// sync engine uses MessagePollSeconds as its default tick
	MessagePollSeconds int
	ListPollSeconds    int
	HeartbeatSeconds   int

	// presence tunables
	PresenceTimeoutSeconds int
	ReaperIntervalSeconds  int
	ExpertCacheTTLSeconds  int

	// message-send protection
	RateLimitWindowSeconds int
	RateLimitCapacity      int
	DuplicateWindowSeconds int
)

// loadAppEnv: only load .env outside production; a missing file is
// fine (tests and CI run on plain environment variables).
func loadAppEnv() {
	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "production" {
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Printf("[config] no .env loaded: %v", err)
	}
}

func init() {
	loadAppEnv()

	AppEnv = os.Getenv("APP_ENV")
	if AppEnv == "" {
		AppEnv = "staging"
	}
	if !slices.Contains([]string{"staging", "production"}, AppEnv) {
		log.Fatal("environment variable APP_ENV must be 'staging' or 'production'")
	}
	IsStaging = AppEnv == "staging"
	IsProduction = AppEnv == "production"

	JWTSecret = os.Getenv("JWT_SECRET_KEY")
	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "5000"
	}

	DatabaseDSN = os.Getenv("DATABASE_DSN")
	SQLitePath = os.Getenv("SQLITE_PATH")
	if SQLitePath == "" {
		SQLitePath = "app.db"
	}
	RedisURL = os.Getenv("REDIS_URL")

	// Tunables with defaults
	MessagePollSeconds = atoiOr(os.Getenv("MESSAGE_POLL_SECONDS"), 2)
	ListPollSeconds = atoiOr(os.Getenv("LIST_POLL_SECONDS"), 5)
	HeartbeatSeconds = atoiOr(os.Getenv("HEARTBEAT_SECONDS"), 120)
	PresenceTimeoutSeconds = atoiOr(os.Getenv("PRESENCE_TIMEOUT_SECONDS"), 300)
	ReaperIntervalSeconds = atoiOr(os.Getenv("REAPER_INTERVAL_SECONDS"), 120)
	ExpertCacheTTLSeconds = atoiOr(os.Getenv("EXPERT_CACHE_TTL_SECONDS"), 5)
	RateLimitWindowSeconds = atoiOr(os.Getenv("RATE_LIMIT_WINDOW_SECONDS"), 10)
	RateLimitCapacity = atoiOr(os.Getenv("RATE_LIMIT_CAPACITY"), 5)
	DuplicateWindowSeconds = atoiOr(os.Getenv("DUPLICATE_WINDOW_SECONDS"), 45)

	// safety: never run production with an empty signing key
	if IsProduction && JWTSecret == "" {
		log.Fatal("JWT_SECRET_KEY must be set in production")
	}

	log.Printf("[config] AppEnv=%s IsStaging=%v IsProduction=%v", AppEnv, IsStaging, IsProduction)
	log.Printf("[config] DB=%s RedisPresent=%v", dbLabel(), RedisURL != "")
	log.Printf("[config] poll msg=%ds list=%ds heartbeat=%ds presenceTimeout=%ds reaper=%ds",
		MessagePollSeconds, ListPollSeconds, HeartbeatSeconds, PresenceTimeoutSeconds, ReaperIntervalSeconds)
	log.Printf("[config] RateLimit window=%ds capacity=%d dupWindow=%ds expertCacheTTL=%ds",
		RateLimitWindowSeconds, RateLimitCapacity, DuplicateWindowSeconds, ExpertCacheTTLSeconds)
}

func dbLabel() string {
	if DatabaseDSN != "" {
		return "mysql"
	}
	return "sqlite:" + SQLitePath
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
