package bazaar

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/always-cache/bazaar/cache"
	"github.com/always-cache/bazaar/pkg/problem"
	"github.com/always-cache/bazaar/registry"
)

const (
	DefaultPort      = 3030
	DefaultDatabase  = "bazaar.db"
	DefaultBodyLimit = 1 << 20
)

type Config struct {
	// Port to listen on.
	Port int `yaml:"port"`
	// SQLite database file. Use "memory" for an in-memory database.
	Database string `yaml:"database"`
	// Public URL of the API, used to build Location headers.
	// Defaults to http://localhost:<port>.
	APIURL string `yaml:"apiUrl"`
	// Capacity of every cache not listed in Caches.
	DefaultCacheCapacity int `yaml:"defaultCacheCapacity"`
	// Capacity per cache name, see registry.Names.
	Caches map[string]int `yaml:"caches"`
	// Maximum size of a request body in bytes.
	BodyLimit int64 `yaml:"bodyLimit"`
	// Origins allowed to call the API from a browser. Empty means none.
	AllowedOrigins []string `yaml:"allowedOrigins"`
	// Logger to use. Falls back to a console logger.
	Logger *zerolog.Logger `yaml:"-"`
}

// LoadConfig reads a YAML config file. Missing fields keep their defaults.
func LoadConfig(filename string) (Config, error) {
	config := Config{}
	configBytes, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	if err := yaml.Unmarshal(configBytes, &config); err != nil {
		return config, fmt.Errorf("could not parse %s: %w", filename, err)
	}
	return config, nil
}

// WithDefaults returns a copy of c with every unset field filled in.
func (c Config) WithDefaults() Config {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.APIURL == "" {
		c.APIURL = fmt.Sprintf("http://localhost:%d", c.Port)
	}
	if c.DefaultCacheCapacity == 0 {
		c.DefaultCacheCapacity = registry.DefaultCapacity
	}
	if c.BodyLimit == 0 {
		c.BodyLimit = DefaultBodyLimit
	}
	if c.Logger == nil {
		logger := zerolog.New(zerolog.NewConsoleWriter())
		c.Logger = &logger
	}
	return c
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.BodyLimit < 0 {
		return fmt.Errorf("body limit must be positive, got %d", c.BodyLimit)
	}
	if c.APIURL != "" {
		if _, err := url.Parse(c.APIURL); err != nil {
			return fmt.Errorf("invalid api url: %w", err)
		}
	}
	return c.RegistryConfig().Validate()
}

// RegistryConfig returns the cache configuration, with store and validation
// errors mapped to the API's problem documents.
func (c Config) RegistryConfig() registry.Config {
	return registry.Config{
		DefaultCapacity: c.DefaultCacheCapacity,
		Capacities:      c.Caches,
		ProblemMapper:   c.problemMapper(),
		Logger:          c.Logger,
	}
}

// problemMapper maps compute errors of the response caches and logs the
// unhandled ones with the configured logger.
func (c Config) problemMapper() cache.ProblemMapper {
	logger := c.Logger
	return func(err error) *problem.Problem {
		p := ProblemFromError(err)
		if p.Status >= http.StatusInternalServerError && logger != nil {
			logger.Error().Err(err).Msg("Unhandled error")
		}
		return p
	}
}
