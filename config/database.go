package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// EventBackend selects where events are persisted.
type EventBackend string

const (
	// EventBackendFile stores events in a pretty-printed JSON file.
	EventBackendFile EventBackend = "file"
	// EventBackendPostgres stores events in the events table.
	EventBackendPostgres EventBackend = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for EventBackend.
func (b *EventBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "file", "postgres":
		*b = EventBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid EventBackend: %q (valid options: file, postgres)", v)
	}
}

// EventStoreConfig contains event persistence configuration.
type EventStoreConfig struct {
	Backend EventBackend `env:"EVENTS_BACKEND" envDefault:"file"`
	// FilePath is the JSON file used by the file backend.
	FilePath string `env:"EVENTS_FILE" envDefault:"data/events.json"`
}

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	Host     string `env:"HOST"                    envDefault:"localhost"`
	Port     int    `env:"PORT"                    envDefault:"5432"`
	User     string `env:"USER"                    envDefault:"events"`
	Password string `env:"PASSWORD"                envDefault:"events"`
	Name     string `env:"NAME"                    envDefault:"events"`
	SSLMode  string `env:"SSL_MODE"                envDefault:"disable"` // Use 'disable' for local dev, 'require' for production
	// RunMigrationsOnStart controls whether the application automatically applies migrations during startup.
	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

// DSN renders a postgres:// URL; credentials are escaped.
func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   net.JoinHostPort(d.Host, strconv.Itoa(d.Port)),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisConfig contains Redis configuration.
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"             envDefault:""`
	SentinelPort       string   `env:"SENTINEL_PORT"        envDefault:"26379"`
	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`
	ClusterNodes       []string `env:"CLUSTER_NODES"        envDefault:""`
	UseCluster         bool     `env:"USE_CLUSTER"          envDefault:"false"`
}

// SessionConfig contains server-side session settings.
type SessionConfig struct {
	// TTL is how long an idle session is kept by the session store.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	if s.TTL < time.Minute {
		s.TTL = time.Minute
	}
}
