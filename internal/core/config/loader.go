package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.GRPC.DialTimeout == 0 {
		cfg.GRPC.DialTimeout = 10 * time.Second
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreFile
	}
	if cfg.Store.Backend == StoreFile && cfg.Store.Path == "" {
		cfg.Store.Path = "processed_events.json"
	}

	for i := range cfg.Contracts {
		if cfg.Contracts[i].PollInterval == 0 {
			cfg.Contracts[i].PollInterval = 10 * time.Second
		}
		if cfg.Contracts[i].PageLimit == 0 {
			cfg.Contracts[i].PageLimit = 100
		}
		if cfg.Contracts[i].Name == "" {
			cfg.Contracts[i].Name = cfg.Contracts[i].Address
		}
	}
}

func validate(cfg *AppConfig) error {
	if len(cfg.GRPC.Endpoints) == 0 {
		return fmt.Errorf("config: at least one grpc endpoint is required")
	}
	for _, ep := range cfg.GRPC.Endpoints {
		if ep.URL == "" {
			return fmt.Errorf("config: endpoint %q has no url", ep.Name)
		}
	}
	if len(cfg.Contracts) == 0 {
		return fmt.Errorf("config: at least one contract is required")
	}
	for _, c := range cfg.Contracts {
		if c.Address == "" {
			return fmt.Errorf("config: contract %q has no address", c.Name)
		}
		for _, a := range c.Actions {
			if _, err := domain.ParseActionType(a); err != nil {
				return fmt.Errorf("config: contract %q: %w", c.Name, err)
			}
		}
	}

	switch cfg.Store.Backend {
	case StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}
	if cfg.Store.Backend == StoreRedis && cfg.Redis.URL == "" {
		return fmt.Errorf("config: redis store requires redis.url")
	}
	if cfg.Store.Backend == StorePostgres && cfg.Database.URL == "" {
		return fmt.Errorf("config: postgres store requires database.url")
	}

	return nil
}
