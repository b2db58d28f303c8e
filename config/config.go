package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

type Config struct {
	Port        string
	GinMode     string
	StoreDriver string
	DBPath      string
	DataFile    string
	JWTSecret   []byte
	LogLevel    string

	// Estimate bounds in minutes, inclusive.
	PrepMin     int
	PrepMax     int
	DeliveryMin int
	DeliveryMax int

	// RandomSeed seeds agent selection and estimates; 0 seeds from the clock.
	RandomSeed uint64
}

// Load reads .env files (when present) and the process environment.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", ""),
		StoreDriver: getEnv("STORE_DRIVER", DriverSQLite),
		DBPath:      getEnv("DB_PATH", "food_delivery.db"),
		DataFile:    getEnv("DATA_FILE", "food_delivery_data.json"),
		JWTSecret:   []byte(getEnv("JWT_SECRET", "food_delivery_super_secret_2024")),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.PrepMin, err = getEnvInt("PREP_MIN", 10); err != nil {
		return nil, err
	}
	if cfg.PrepMax, err = getEnvInt("PREP_MAX", 30); err != nil {
		return nil, err
	}
	if cfg.DeliveryMin, err = getEnvInt("DELIVERY_MIN", 15); err != nil {
		return nil, err
	}
	if cfg.DeliveryMax, err = getEnvInt("DELIVERY_MAX", 45); err != nil {
		return nil, err
	}
	if cfg.RandomSeed, err = getEnvUint("RANDOM_SEED", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite, DriverJSON:
	default:
		return fmt.Errorf("config: STORE_DRIVER must be %q or %q, got %q", DriverSQLite, DriverJSON, c.StoreDriver)
	}
	if c.PrepMin < 0 || c.PrepMax < c.PrepMin {
		return fmt.Errorf("config: invalid preparation range %d..%d", c.PrepMin, c.PrepMax)
	}
	if c.DeliveryMin < 0 || c.DeliveryMax < c.DeliveryMin {
		return fmt.Errorf("config: invalid delivery range %d..%d", c.DeliveryMin, c.DeliveryMax)
	}
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("config: JWT_SECRET is empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvUint(key string, fallback uint64) (uint64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
