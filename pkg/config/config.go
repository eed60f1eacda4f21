package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Admin        AdminConfig
	Export       ExportConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VANLIST_APP_ENV" required:"true"`
	Port         string `envconfig:"VANLIST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VANLIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VANLIST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"VANLIST_DB_DSN"`
	Driver string `envconfig:"VANLIST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VANLIST_DB_HOST"`
	LegacyPort     int    `envconfig:"VANLIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VANLIST_DB_USER"`
	LegacyPassword string `envconfig:"VANLIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"VANLIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"VANLIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VANLIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VANLIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VANLIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VANLIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type JWTConfig struct {
	Secret            string `envconfig:"VANLIST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"VANLIST_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"VANLIST_JWT_EXPIRATION_MINUTES" required:"true"`
}

// TokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"VANLIST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"VANLIST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"VANLIST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"VANLIST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"VANLIST_ARGON_KEY_LEN" default:"32"`
}

type AdminConfig struct {
	DefaultUsername string `envconfig:"VANLIST_DEFAULT_ADMIN_USERNAME" default:"admin"`
	DefaultPassword string `envconfig:"VANLIST_DEFAULT_ADMIN_PASSWORD"`
}

type ExportConfig struct {
	MaxPeriodDays int `envconfig:"VANLIST_EXPORT_MAX_PERIOD_DAYS" default:"31"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"VANLIST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"VANLIST_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
