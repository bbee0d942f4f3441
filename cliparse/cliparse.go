package cliparse

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage backends
const (
	StoreMemory    = "memory"
	StoreSQLite    = "sqlite"
	StorePostgres  = "postgres"
	StoreFirestore = "firestore"
	StoreMongo     = "mongo"
)

// Identity providers
const (
	IdentityToken    = "token"
	IdentityFirebase = "firebase"
)

type Config struct {
	Port                int
	DatabaseURL         string
	DatabaseType        string
	MongoDatabase       string
	SessionSalt         string
	IdentityProvider    string
	FirebaseCredentials string
	FirebaseProjectID   string
	AdminEmails         []string
	AllowedOrigin       string
	LogLevel            slog.Level
	RetryAttempts       uint
	RetryDelay          time.Duration
}

// ParseFlags reads flags with environment fallback and validates the
// result. Flags override environment variables; every flag "foo-bar" can be
// set through FOO_BAR.
func ParseFlags(args []string) (Config, error) {
	fs := pflag.NewFlagSet("pollbooth", pflag.ContinueOnError)

	// Network and storage
	fs.IntP("port", "p", 3318, "Server port")
	fs.StringP("database-url", "d", "", "Database URL or file")
	fs.StringP("database-type", "t", StoreSQLite, "Storage backend (memory, sqlite, postgres, firestore, mongo)")
	fs.String("mongo-database", "pollbooth", "MongoDB database name")
	fs.String("allowed-origin", "*", "CORS allowed origin")

	// Identity (prefer env for secrets)
	fs.String("identity-provider", IdentityToken, "Identity provider (token or firebase)")
	fs.String("session-salt", "", "Session token salt (prefer env)")
	fs.String("firebase-credentials", "", "Path to a Firebase service account file")
	fs.String("firebase-project-id", "", "Firebase project id")
	fs.String("admin-emails", "", "Comma-separated emails registered as administrators")

	// Behaviour
	fs.String("log-level", "info", "Log level (debug, info, warn, error)")
	fs.Uint("vote-retry-attempts", 3, "Write attempts on a poll version conflict")
	fs.Duration("vote-retry-delay", 50*time.Millisecond, "Initial backoff between conflicting writes")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}

	cfg := Config{
		Port:                v.GetInt("port"),
		DatabaseURL:         v.GetString("database-url"),
		DatabaseType:        strings.ToLower(v.GetString("database-type")),
		MongoDatabase:       v.GetString("mongo-database"),
		SessionSalt:         v.GetString("session-salt"),
		IdentityProvider:    strings.ToLower(v.GetString("identity-provider")),
		FirebaseCredentials: v.GetString("firebase-credentials"),
		FirebaseProjectID:   v.GetString("firebase-project-id"),
		AdminEmails:         splitList(v.GetString("admin-emails")),
		AllowedOrigin:       v.GetString("allowed-origin"),
		RetryAttempts:       v.GetUint("vote-retry-attempts"),
		RetryDelay:          v.GetDuration("vote-retry-delay"),
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return Config{}, fmt.Errorf("invalid log level %q", v.GetString("log-level"))
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	switch c.DatabaseType {
	case StoreMemory:
	case StoreSQLite, StorePostgres, StoreMongo:
		if c.DatabaseURL == "" {
			return errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID required for firestore storage")
		}
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}

	switch c.IdentityProvider {
	case IdentityToken:
		// Secrets - MUST be provided
		if c.SessionSalt == "" {
			return errors.New("SESSION_SALT required")
		}
	case IdentityFirebase:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID required for firebase identity")
		}
	default:
		return fmt.Errorf("unsupported identity provider %q", c.IdentityProvider)
	}

	if c.RetryAttempts == 0 {
		return errors.New("vote retry attempts must be at least 1")
	}
	return nil
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// UsesFirebase reports whether a Firebase app has to be initialized.
func (c Config) UsesFirebase() bool {
	return c.DatabaseType == StoreFirestore || c.IdentityProvider == IdentityFirebase
}
