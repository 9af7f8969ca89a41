package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envPrefix = "PIRIVEN_WEB_"

	defaultEnvFile          = ".env"
	defaultPort             = "8080"
	defaultAPIBase          = "http://127.0.0.1:8000/api"
	defaultSiteURL          = "https://piriven.moe.gov.lk"
	defaultTemplatesDir     = "templates"
	defaultPublicDir        = "public"
	defaultLocalesDir       = "locales"
	defaultContentDir       = "content"
	defaultEnvironment      = "local"
	defaultCMSTimeout       = 5 * time.Second
	defaultFetchConcurrency = 8
	defaultEchoCache        = EchoCacheMemory
	defaultEchoCacheTTL     = 6 * time.Hour
	defaultRedisAddr        = "localhost:6379"
	defaultLogLevel         = "info"
	defaultReadTimeout      = 15 * time.Second
	defaultWriteTimeout     = 15 * time.Second
	defaultIdleTimeout      = 60 * time.Second
)

// Echo cache backends.
const (
	EchoCacheMemory = "memory"
	EchoCacheRedis  = "redis"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server    ServerConfig
	CMS       CMSConfig
	Site      SiteConfig
	Session   SessionConfig
	EchoCache EchoCacheConfig
	Redis     RedisConfig
	Log       LogConfig
	Analytics AnalyticsConfig
}

// ServerConfig configures the HTTP listener and on-disk assets.
type ServerConfig struct {
	Addr         string
	TemplatesDir string
	PublicDir    string
	LocalesDir   string
	ContentDir   string
	Dev          bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// CMSConfig points at the content backend.
type CMSConfig struct {
	APIBase          string
	Timeout          time.Duration
	FetchConcurrency int
}

// SiteConfig holds public URLs used for canonical links and the sitemap.
type SiteConfig struct {
	URL         string
	Environment string
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// EchoCacheConfig selects where the detail-page echo cache lives.
type EchoCacheConfig struct {
	Backend string
	TTL     time.Duration
}

// RedisConfig is only consulted when the echo cache backend is redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig sets the zap log level.
type LogConfig struct {
	Level string
}

// AnalyticsConfig is surfaced to templates.
type AnalyticsConfig struct {
	GA4MeasurementID string
}

// IsProduction reports whether the site runs in the prod environment.
func (c Config) IsProduction() bool {
	return c.Site.Environment == "prod" || c.Site.Environment == "production"
}

// ValidationError is returned when configuration values are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides. An empty
// path disables the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values that take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

type lookupFunc func(key string) (string, bool)

// Load assembles configuration from defaults, the .env file, the process
// environment and explicit overrides, in increasing precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		if v, ok := dotEnv[key]; ok {
			return v, true
		}
		return "", false
	}

	var invalid []string
	durationOf := func(key string, def time.Duration) time.Duration {
		d, ok := durationWithDefault(lookup, key, def)
		if !ok {
			invalid = append(invalid, key)
		}
		return d
	}
	intOf := func(key string, def int) int {
		n, ok := intWithDefault(lookup, key, def)
		if !ok {
			invalid = append(invalid, key)
		}
		return n
	}

	cfg := Config{
		Server: ServerConfig{
			Addr:         resolveAddr(lookup),
			TemplatesDir: stringWithDefault(lookup, envPrefix+"TEMPLATES_DIR", defaultTemplatesDir),
			PublicDir:    stringWithDefault(lookup, envPrefix+"PUBLIC_DIR", defaultPublicDir),
			LocalesDir:   stringWithDefault(lookup, envPrefix+"LOCALES_DIR", defaultLocalesDir),
			ContentDir:   stringWithDefault(lookup, envPrefix+"CONTENT_DIR", defaultContentDir),
			Dev:          boolWithDefault(lookup, envPrefix+"DEV", false) || boolWithDefault(lookup, "DEV", false),
			ReadTimeout:  durationOf(envPrefix+"READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout: durationOf(envPrefix+"WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:  durationOf(envPrefix+"IDLE_TIMEOUT", defaultIdleTimeout),
		},
		CMS: CMSConfig{
			APIBase:          strings.TrimRight(firstSet(lookup, defaultAPIBase, envPrefix+"API_BASE", "NEXT_PUBLIC_API"), "/"),
			Timeout:          durationOf(envPrefix+"CMS_TIMEOUT", defaultCMSTimeout),
			FetchConcurrency: intOf(envPrefix+"FETCH_CONCURRENCY", defaultFetchConcurrency),
		},
		Site: SiteConfig{
			URL:         strings.TrimRight(firstSet(lookup, defaultSiteURL, envPrefix+"SITE_URL", "NEXT_PUBLIC_SITE_URL"), "/"),
			Environment: strings.ToLower(stringWithDefault(lookup, envPrefix+"ENV", defaultEnvironment)),
		},
		Session: SessionConfig{
			SigningKey: stringWithDefault(lookup, envPrefix+"SESSION_SIGNING_KEY", ""),
		},
		EchoCache: EchoCacheConfig{
			Backend: strings.ToLower(stringWithDefault(lookup, envPrefix+"ECHO_CACHE", defaultEchoCache)),
			TTL:     durationOf(envPrefix+"ECHO_CACHE_TTL", defaultEchoCacheTTL),
		},
		Redis: RedisConfig{
			Addr:     stringWithDefault(lookup, envPrefix+"REDIS_ADDR", defaultRedisAddr),
			Password: stringWithDefault(lookup, envPrefix+"REDIS_PASSWORD", ""),
			DB:       intOf(envPrefix+"REDIS_DB", 0),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "LOG_LEVEL", defaultLogLevel)),
		},
		Analytics: AnalyticsConfig{
			GA4MeasurementID: stringWithDefault(lookup, envPrefix+"GA_MEASUREMENT_ID", ""),
		},
	}
	cfg.Session.Secure = cfg.IsProduction()

	if cfg.CMS.APIBase == "" {
		invalid = append(invalid, envPrefix+"API_BASE")
	}
	if cfg.CMS.FetchConcurrency <= 0 {
		invalid = append(invalid, envPrefix+"FETCH_CONCURRENCY")
	}
	switch cfg.EchoCache.Backend {
	case EchoCacheMemory, EchoCacheRedis:
	default:
		invalid = append(invalid, envPrefix+"ECHO_CACHE")
	}
	if cfg.IsProduction() && cfg.Session.SigningKey == "" {
		invalid = append(invalid, envPrefix+"SESSION_SIGNING_KEY")
	}
	if len(invalid) > 0 {
		return Config{}, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

// resolveAddr prefers an explicit address, then PIRIVEN_WEB_PORT, then PORT.
func resolveAddr(lookup lookupFunc) string {
	if v, ok := lookup(envPrefix + "ADDR"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	port := firstSet(lookup, defaultPort, envPrefix+"PORT", "PORT")
	return ":" + strings.TrimPrefix(port, ":")
}

func firstSet(lookup lookupFunc, def string, keys ...string) string {
	for _, key := range keys {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return def
}

func stringWithDefault(lookup lookupFunc, key, def string) string {
	return firstSet(lookup, def, key)
}

func boolWithDefault(lookup lookupFunc, key string, def bool) bool {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		// any other non-empty value switches the flag on, like DEV=yes
		return true
	}
	return b
}

func intWithDefault(lookup lookupFunc, key string, def int) (int, bool) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def, false
	}
	return n, true
}

func durationWithDefault(lookup lookupFunc, key string, def time.Duration) (time.Duration, bool) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return def, true
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil || d <= 0 {
		return def, false
	}
	return d, true
}
