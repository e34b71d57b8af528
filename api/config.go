package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type config struct {
	port int
	env  string
	db   struct {
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	jwt struct {
		secret string
		ttl    time.Duration
	}
	cors struct {
		trustedOrigins []string
	}
}

// fileConfig is the tasknest.yaml shape. Everything is optional; flags win
// over file values.
type fileConfig struct {
	Port     int    `yaml:"port"`
	Env      string `yaml:"env"`
	Database struct {
		DSN                string `yaml:"dsn"`
		MaxOpenConnections int    `yaml:"max_open_connections"`
		MaxIdleConnections int    `yaml:"max_idle_connections"`
		MaxIdleTime        string `yaml:"max_idle_time"`
	} `yaml:"database"`
	JWT struct {
		Secret string `yaml:"secret"`
		TTL    string `yaml:"ttl"`
	} `yaml:"jwt"`
	CORS struct {
		TrustedOrigins []string `yaml:"trusted_origins"`
	} `yaml:"cors"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	if path == "" {
		for _, loc := range []string{"tasknest.yaml", "tasknest.yml"} {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &fc, nil
}

func parseDurationOrDefault(name, value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid value %s for %s defaulting to %s", value, name, fallback)
		return fallback
	}
	return d
}
