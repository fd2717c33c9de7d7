package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Session       SessionConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Gate          GateConfig
	AI            AIConfig
	Rates         RatesConfig
	Push          PushConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"GASTOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"GASTOS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GASTOS_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"GASTOS_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"GASTOS_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"GASTOS_CORS_ORIGINS"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GASTOS_DB_DSN"`
	Driver string `envconfig:"GASTOS_DB_DRIVER" default:"postgres"`

	// SQLitePath is only consulted when Driver is sqlite.
	SQLitePath string `envconfig:"GASTOS_DB_SQLITE_PATH" default:"gastos.db"`

	LegacyHost     string `envconfig:"GASTOS_DB_HOST"`
	LegacyPort     int    `envconfig:"GASTOS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GASTOS_DB_USER"`
	LegacyPassword string `envconfig:"GASTOS_DB_PASSWORD"`
	LegacyName     string `envconfig:"GASTOS_DB_NAME"`
	LegacySSLMode  string `envconfig:"GASTOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GASTOS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GASTOS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GASTOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GASTOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"GASTOS_REDIS_URL"`
	Address      string        `envconfig:"GASTOS_REDIS_ADDR"`
	Password     string        `envconfig:"GASTOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GASTOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GASTOS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GASTOS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GASTOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GASTOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GASTOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"GASTOS_SESSION_COOKIE_NAME" default:"session_token"`
	TTL          time.Duration `envconfig:"GASTOS_SESSION_TTL" default:"720h"`
	CookieSecure bool          `envconfig:"GASTOS_SESSION_COOKIE_SECURE" default:"false"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GASTOS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GASTOS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GASTOS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GASTOS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GASTOS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"GASTOS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"GASTOS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"GASTOS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

// GateConfig drives the edge-style request interceptor. ValidateURL is optional;
// when set the gate confirms the cookie against the session-validation endpoint
// before letting browser traffic through.
type GateConfig struct {
	Enabled         bool          `envconfig:"GASTOS_GATE_ENABLED" default:"true"`
	LoginPath       string        `envconfig:"GASTOS_GATE_LOGIN_PATH" default:"/login"`
	ValidateURL     string        `envconfig:"GASTOS_GATE_VALIDATE_URL"`
	ValidateTimeout time.Duration `envconfig:"GASTOS_GATE_VALIDATE_TIMEOUT" default:"3s"`
}

// AIConfig is the environment tier of the credential resolution chain plus the
// location of the legacy on-disk settings file.
type AIConfig struct {
	SettingsFile string `envconfig:"GASTOS_AI_SETTINGS_FILE" default:".data/google_settings.json"`

	GoogleAPIKey  string `envconfig:"GASTOS_AI_GOOGLE_API_KEY"`
	GoogleModel   string `envconfig:"GASTOS_AI_GOOGLE_MODEL" default:"gemini-1.5-flash"`
	GoogleBaseURL string `envconfig:"GASTOS_AI_GOOGLE_BASE_URL" default:"https://generativelanguage.googleapis.com/v1beta"`

	OpenAIAPIKey  string `envconfig:"GASTOS_AI_OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"GASTOS_AI_OPENAI_MODEL" default:"gpt-4o"`
	OpenAIBaseURL string `envconfig:"GASTOS_AI_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`

	RequestTimeout time.Duration `envconfig:"GASTOS_AI_REQUEST_TIMEOUT" default:"30s"`
}

type RatesConfig struct {
	USDARSEndpoint string        `envconfig:"GASTOS_RATES_USD_ARS_ENDPOINT" default:"https://dolarapi.com/v1/dolares/oficial"`
	RequestTimeout time.Duration `envconfig:"GASTOS_RATES_REQUEST_TIMEOUT" default:"5s"`
}

type PushConfig struct {
	ExpoEndpoint   string        `envconfig:"GASTOS_PUSH_EXPO_ENDPOINT" default:"https://exp.host/--/api/v2/push/send"`
	RequestTimeout time.Duration `envconfig:"GASTOS_PUSH_REQUEST_TIMEOUT" default:"10s"`
	DispatchLimit  int           `envconfig:"GASTOS_PUSH_DISPATCH_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GASTOS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
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
