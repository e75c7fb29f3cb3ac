package config

import (
	"time"

	redisclient "github.com/codewithdpk/fetch-network-event-poller/internal/infra/redis"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	GRPC      GRPCConfig         `yaml:"grpc"`
	Contracts []ContractConfig   `yaml:"contracts"`
	Store     StoreConfig        `yaml:"store"`
	Redis     redisclient.Config `yaml:"redis"`
	Database  postgres.Config    `yaml:"database"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// GRPCConfig holds settings for the transaction service endpoints.
type GRPCConfig struct {
	Endpoints   []EndpointConfig `yaml:"endpoints"`
	DialTimeout time.Duration    `yaml:"dial_timeout"`
}

// EndpointConfig identifies a single gRPC endpoint.
type EndpointConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ContractConfig holds polling settings for one contract.
type ContractConfig struct {
	Address          string        `yaml:"address"`
	Name             string        `yaml:"name"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	PageLimit        uint64        `yaml:"page_limit"`
	DiscardProcessed bool          `yaml:"discard_processed"`
	Actions          []string      `yaml:"actions"`        // empty = all actions
	WalletAddress    string        `yaml:"wallet_address"` // empty = all wallets
}

// StoreConfig selects the processed-event store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // memory, file, redis, postgres
	Path    string `yaml:"path"`    // file backend only
}

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)
