package config

import (
	"time"

	"github.com/oratoria/oratoria-backend/internal/domain"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
	SRS      SRSConfig      `yaml:"srs"`
	Practice PracticeConfig `yaml:"practice"`
	CORS     CORSConfig     `yaml:"cors"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PATCH,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// AuthConfig holds JWT validation settings. Tokens are issued by the identity
// service; this backend only verifies them.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
	JWTIssuer string `yaml:"jwt_issuer" env:"AUTH_JWT_ISSUER" env-default:"oratoria"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// SRSConfig holds the deadline-capped scheduler parameters.
// Intervals are minutes since deadline pressure routinely pushes reviews
// below an hour.
type SRSConfig struct {
	DefaultEaseFactor  float64 `yaml:"default_ease_factor" env:"SRS_DEFAULT_EASE"         env-default:"2.5"`
	MinEaseFactor      float64 `yaml:"min_ease_factor"     env:"SRS_MIN_EASE"             env-default:"1.3"`
	MaxEaseFactor      float64 `yaml:"max_ease_factor"     env:"SRS_MAX_EASE"             env-default:"3.0"`
	GraduatingInterval int     `yaml:"graduating_interval" env:"SRS_GRADUATING_INTERVAL"  env-default:"1440"`
	EasyInterval       int     `yaml:"easy_interval"       env:"SRS_EASY_INTERVAL"        env-default:"5760"`
	LearningStepsRaw   string  `yaml:"learning_steps"      env:"SRS_LEARNING_STEPS"       env-default:"1m,10m"`

	// LearningSteps is parsed from LearningStepsRaw during validation.
	LearningSteps []time.Duration `yaml:"-" env:"-"`
}

// PracticeConfig holds the live matching and word visibility tuning.
type PracticeConfig struct {
	MatchThreshold  float64 `yaml:"match_threshold"   env:"PRACTICE_MATCH_THRESHOLD"   env-default:"0.5"`
	Lookahead       int     `yaml:"lookahead"         env:"PRACTICE_LOOKAHEAD"         env-default:"3"`
	SimpleWordsRaw  string  `yaml:"simple_words"      env:"PRACTICE_SIMPLE_WORDS"      env-default:"the,a,an,and,or,but,of,to,in,on,at,by,for,with,as,is,are,was,were,be,been,it,its,that,this,i,you,he,she,we,they"`
	SimpleHideAfter int     `yaml:"simple_hide_after" env:"PRACTICE_SIMPLE_HIDE_AFTER" env-default:"2"`
	HideAfter       int     `yaml:"hide_after"        env:"PRACTICE_HIDE_AFTER"        env-default:"4"`
	RecoveryMargin  int     `yaml:"recovery_margin"   env:"PRACTICE_RECOVERY_MARGIN"   env-default:"2"`

	// SimpleWords is parsed from SimpleWordsRaw during validation.
	SimpleWords []string `yaml:"-" env:"-"`
}

// ToDomain converts the loaded scheduler settings into the domain type.
func (s SRSConfig) ToDomain() domain.SRSConfig {
	return domain.SRSConfig{
		LearningSteps:             s.LearningSteps,
		GraduatingIntervalMinutes: s.GraduatingInterval,
		EasyIntervalMinutes:       s.EasyInterval,
		DefaultEaseFactor:         s.DefaultEaseFactor,
		MinEaseFactor:             s.MinEaseFactor,
		MaxEaseFactor:             s.MaxEaseFactor,
	}
}

// ToDomain converts the loaded practice settings into the domain type.
func (p PracticeConfig) ToDomain() domain.PracticeConfig {
	return domain.PracticeConfig{
		MatchThreshold:  p.MatchThreshold,
		Lookahead:       p.Lookahead,
		SimpleWords:     p.SimpleWords,
		SimpleHideAfter: p.SimpleHideAfter,
		HideAfter:       p.HideAfter,
		RecoveryMargin:  p.RecoveryMargin,
	}
}
