// Package config resolves the indexer's TOML configuration file plus
// environment-variable overlay (§6), the way launcher/config.go merges
// defaults, config-file values, and overrides — except here the TOML
// decode is real, using pelletier/go-toml/v2, rather than left as a
// placeholder.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config is the indexer's merged configuration, per §6.
type Config struct {
	ListeningPort       uint16  `toml:"listening_port"`
	GethEndpoints       []string `toml:"geth_endpoints"`
	IndexerStartHeights []int64  `toml:"indexer_start_heights"`

	DatabaseURL   string
	MaxPoolSize   int
	RedisHostname string
	RedisPassword string
	IsTLS         bool
}

const defaultMaxPoolSize = 8

// Load reads path as TOML into a Config, then overlays the environment
// variables listed in §6. PORT, when set, overrides ListeningPort;
// DATABASE_URL has $(POSTGRES_USER)/$(POSTGRES_PASSWORD) placeholders
// substituted from POSTGRES_USER/POSTGRES_PASSWORD.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg.MaxPoolSize = defaultMaxPoolSize
	if v := os.Getenv("MAX_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxPoolSize = n
		}
	}

	cfg.DatabaseURL = substitutePGCredentials(os.Getenv("DATABASE_URL"))
	cfg.RedisHostname = os.Getenv("REDIS_HOSTNAME")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	_, cfg.IsTLS = os.LookupEnv("IS_TLS")

	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.ParseUint(port, 10, 16); err == nil {
			cfg.ListeningPort = uint16(n)
		}
	}

	return &cfg, nil
}

// substitutePGCredentials replaces the literal placeholders
// $(POSTGRES_USER) and $(POSTGRES_PASSWORD) in a DATABASE_URL, per §6.
func substitutePGCredentials(url string) string {
	user := os.Getenv("POSTGRES_USER")
	pass := os.Getenv("POSTGRES_PASSWORD")
	url = strings.ReplaceAll(url, "$(POSTGRES_USER)", user)
	url = strings.ReplaceAll(url, "$(POSTGRES_PASSWORD)", pass)
	return url
}

// StartHeightFor resolves the configured start height for the endpoint
// at position i; -1 or an out-of-range index means "no configured
// start", i.e. resume from analytics.
func (c *Config) StartHeightFor(i int) *int64 {
	if i < 0 || i >= len(c.IndexerStartHeights) {
		return nil
	}
	h := c.IndexerStartHeights[i]
	if h < 0 {
		return nil
	}
	return &h
}
