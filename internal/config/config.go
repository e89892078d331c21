// Package config provides configuration management for the casadark service.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort     = 8788
	DefaultLogLevel = "info"
	DefaultDataDir  = ".casadark"

	// Environment variable names
	EnvPort     = "CASADARK_PORT"
	EnvLogLevel = "CASADARK_LOG_LEVEL"
	EnvDataDir  = "CASADARK_DATA_DIR"
	EnvHeadless = "CASADARK_HEADLESS"

	// Webhook environment variable names
	EnvWebhookURL   = "CASADARK_WEBHOOK_URL"
	EnvWebhookToken = "CASADARK_WEBHOOK_TOKEN"

	// Render environment variable names
	EnvRateLimitPerMin  = "CASADARK_RATE_LIMIT_PER_MIN"
	EnvRenderCacheTTL   = "CASADARK_RENDER_CACHE_TTL"
	EnvMaxCharsPerBlock = "CASADARK_MAX_CHARS_PER_BLOCK"
	EnvGapBetweenScenes = "CASADARK_GAP_BETWEEN_SCENES"
	EnvFPS              = "CASADARK_FPS"
	EnvTransitionFrames = "CASADARK_TRANSITION_FRAMES"

	// Database filename
	DBFilename = "casadark.db"

	// Render defaults
	DefaultRateLimitPerMin  = 120
	DefaultRenderCacheTTL   = 5 * time.Minute
	DefaultMaxCharsPerBlock = 499
	DefaultGapBetweenScenes = 10.0
	DefaultFPS              = 24
	DefaultTransitionFrames = 12
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	ExportsDir() string
	Headless() bool
	WebhookURL() string
	WebhookToken() string
	RateLimitPerMin() int
	RenderCacheTTL() time.Duration
	MaxCharsPerBlock() int
	GapBetweenScenes() float64
	FPS() int
	TransitionFrames() int
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string
	headless bool

	webhookURL   string
	webhookToken string

	rateLimitPerMin  int
	renderCacheTTL   time.Duration
	maxCharsPerBlock int
	gapBetweenScenes float64
	fps              int
	transitionFrames int
}

// LoadDotEnv loads variables from path into the environment without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:             DefaultPort,
		logLevel:         DefaultLogLevel,
		dataDir:          defaultDataDir(),
		rateLimitPerMin:  DefaultRateLimitPerMin,
		renderCacheTTL:   DefaultRenderCacheTTL,
		maxCharsPerBlock: DefaultMaxCharsPerBlock,
		gapBetweenScenes: DefaultGapBetweenScenes,
		fps:              DefaultFPS,
		transitionFrames: DefaultTransitionFrames,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	cfg.webhookURL = strings.TrimRight(os.Getenv(EnvWebhookURL), "/")
	cfg.webhookToken = os.Getenv(EnvWebhookToken)

	var err error
	if cfg.rateLimitPerMin, err = positiveInt(EnvRateLimitPerMin, cfg.rateLimitPerMin); err != nil {
		return nil, err
	}
	if cfg.maxCharsPerBlock, err = positiveInt(EnvMaxCharsPerBlock, cfg.maxCharsPerBlock); err != nil {
		return nil, err
	}
	if cfg.fps, err = positiveInt(EnvFPS, cfg.fps); err != nil {
		return nil, err
	}
	if cfg.transitionFrames, err = positiveInt(EnvTransitionFrames, cfg.transitionFrames); err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvRenderCacheTTL); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvRenderCacheTTL, err)
		}
		if ttl < 0 {
			return nil, fmt.Errorf("invalid %s: must not be negative", EnvRenderCacheTTL)
		}
		cfg.renderCacheTTL = ttl
	}

	if v := os.Getenv(EnvGapBetweenScenes); v != "" {
		gap, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvGapBetweenScenes, err)
		}
		if gap < 0 || math.IsNaN(gap) || math.IsInf(gap, 0) {
			return nil, fmt.Errorf("invalid %s: must be a non-negative number", EnvGapBetweenScenes)
		}
		cfg.gapBetweenScenes = gap
	}

	return cfg, nil
}

func positiveInt(env string, def int) (int, error) {
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", env, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("invalid %s: must be positive", env)
	}
	return n, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// ExportsDir is where the export runner writes rendered files.
func (c *EnvConfig) ExportsDir() string {
	return filepath.Join(c.dataDir, "exports")
}

func (c *EnvConfig) Headless() bool {
	return c.headless
}

func (c *EnvConfig) WebhookURL() string {
	return c.webhookURL
}

func (c *EnvConfig) WebhookToken() string {
	return c.webhookToken
}

func (c *EnvConfig) RateLimitPerMin() int {
	return c.rateLimitPerMin
}

// RenderCacheTTL is how long a rendered project document is served from
// memory. Zero disables the cache.
func (c *EnvConfig) RenderCacheTTL() time.Duration {
	return c.renderCacheTTL
}

func (c *EnvConfig) MaxCharsPerBlock() int {
	return c.maxCharsPerBlock
}

func (c *EnvConfig) GapBetweenScenes() float64 {
	return c.gapBetweenScenes
}

func (c *EnvConfig) FPS() int {
	return c.fps
}

func (c *EnvConfig) TransitionFrames() int {
	return c.transitionFrames
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
