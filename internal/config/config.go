package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/dungeongen/internal/database"
	"github.com/lawnchairsociety/dungeongen/internal/logger"
)

// Config is the full daemon configuration.
type Config struct {
	Dungeon  DungeonConfig   `yaml:"dungeon"`
	Server   ServerConfig    `yaml:"server"`
	Database database.Config `yaml:"database"`
	Logging  logger.Config   `yaml:"logging"`
}

// DungeonConfig controls level generation.
type DungeonConfig struct {
	// BaseSeed derives every level seed. 0 picks one from the clock at start-up.
	BaseSeed int64 `yaml:"base_seed"`

	// Open levels need RoomMaxSize+5 tiles per side, which takes at least 3 chunks.
	WidthInChunks  int `yaml:"width_in_chunks" validate:"gte=3,lte=512"`
	HeightInChunks int `yaml:"height_in_chunks" validate:"gte=3,lte=512"`

	// PreloadRadius is the chunk radius built around the centre on every enter.
	PreloadRadius int `yaml:"preload_radius" validate:"gte=0,lte=64"`

	// MaxLevel is the deepest level a client may request.
	MaxLevel int `yaml:"max_level" validate:"gte=1,lte=100000"`
}

// ServerConfig holds the streaming server settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr" validate:"required"`

	// AllowedOrigins is a list of origins allowed to connect via WebSocket.
	// Empty list enforces same-origin policy.
	// Use "*" to allow all origins (not recommended for production).
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound WebSocket message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size" validate:"gte=64"`

	// MaxConnsPerIP and MaxConnsTotal cap concurrent WebSocket sessions. 0 means unlimited.
	MaxConnsPerIP int `yaml:"max_conns_per_ip" validate:"gte=0"`
	MaxConnsTotal int `yaml:"max_conns_total" validate:"gte=0"`

	// RequestsPerMinute is the per-client HTTP API budget.
	RequestsPerMinute int `yaml:"requests_per_minute" validate:"gte=1"`
}

// DefaultConfig returns a Config with working local defaults.
func DefaultConfig() *Config {
	return &Config{
		Dungeon: DungeonConfig{
			BaseSeed:       42,
			WidthInChunks:  64,
			HeightInChunks: 64,
			PreloadRadius:  3,
			MaxLevel:       100,
		},
		Server: ServerConfig{
			ListenAddr:        ":8080",
			AllowedOrigins:    []string{}, // Same-origin only by default
			MaxMessageSize:    4096,
			MaxConnsPerIP:     3,
			MaxConnsTotal:     100,
			RequestsPerMinute: 600,
		},
		Database: database.DefaultConfig("data/journal.db"),
		Logging:  logger.DefaultConfig(),
	}
}

// LoadConfig loads a .env file if present, then the YAML file at path, then environment overrides.
// A missing YAML file yields defaults.
func LoadConfig(path string) (*Config, error) {
	// .env is optional; real environment variables still win
	_ = godotenv.Load()

	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, config); err != nil {
				return DefaultConfig(), fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return DefaultConfig(), fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return DefaultConfig(), err
	}
	logger.ApplyEnv(&config.Logging)

	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DUNGEON_BASE_SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DUNGEON_BASE_SEED %q: %w", v, err)
		}
		c.Dungeon.BaseSeed = seed
	}
	if v := os.Getenv("DUNGEON_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DUNGEON_LISTEN_ADDR"); v != "" {
		c.Server.ListenAddr = v
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints and returns one error listing every violation.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), validationMessage(fe)))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}

// IsOriginAllowed checks if the given origin is allowed based on the config.
// Returns true if:
// - AllowedOrigins contains "*" (allow all)
// - AllowedOrigins contains the exact origin
// - AllowedOrigins is empty and origin matches the request host (same-origin)
func (c *ServerConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}

	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin checks if the origin matches the request host.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true // Non-browser clients send no Origin header
	}

	// "http://localhost:3000" -> "localhost:3000"
	originHost := origin
	if idx := strings.Index(origin, "://"); idx != -1 {
		originHost = origin[idx+3:]
	}
	originHost = strings.TrimSuffix(originHost, "/")

	return originHost == requestHost
}
