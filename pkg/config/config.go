package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStoreURL = "mongodb://localhost:27017/WikiDB"
	DefaultPort     = "3000"
)

// Config holds everything the server and CLI commands read at startup.
type Config struct {
	Env      string `yaml:"env" toml:"env"`
	Addr     string `yaml:"addr" toml:"addr"`
	StoreURL string `yaml:"store_url" toml:"store_url"`
	GinMode  string `yaml:"gin_mode" toml:"gin_mode"`

	// Import settings
	ImportConcurrency int `yaml:"import_concurrency" toml:"import_concurrency"`

	SecureHeaders bool `yaml:"secure_headers" toml:"secure_headers"`

	// DynamoDB settings
	DynamoRegion   string `yaml:"dynamodb_region" toml:"dynamodb_region"`
	DynamoEndpoint string `yaml:"dynamodb_endpoint" toml:"dynamodb_endpoint"`
}

func Default() *Config {
	return &Config{
		Env:               "development",
		Addr:              ":" + DefaultPort,
		StoreURL:          DefaultStoreURL,
		ImportConcurrency: 20,
		SecureHeaders:     true,
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads defaults, then the optional YAML or TOML file at path, then
// .env and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Error loading .env file:", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(content, c)
	case ".toml":
		err = toml.Unmarshal(content, c)
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	// Helper to get env with default
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	c.Env = getEnv("APP_ENV", c.Env)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)

	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	c.Addr = getEnv("ADDR", c.Addr)

	c.StoreURL = getEnv("MONGODB_URI", c.StoreURL)
	c.StoreURL = getEnv("STORE_URL", c.StoreURL)

	c.DynamoRegion = getEnv("DYNAMODB_REGION", getEnv("AWS_REGION", c.DynamoRegion))
	c.DynamoEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoEndpoint)

	if ic := os.Getenv("IMPORT_CONCURRENCY"); ic != "" {
		if val, err := strconv.Atoi(ic); err == nil && val > 0 {
			c.ImportConcurrency = val
		}
	}
	if sh := os.Getenv("SECURE_HEADERS"); sh != "" {
		if val, err := strconv.ParseBool(sh); err == nil {
			c.SecureHeaders = val
		}
	}
}
