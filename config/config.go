// Package config loads runtime configuration for the bankaccountctl
// binary and any long-running server built on this module, via Viper —
// environment variables first, an optional config file underneath.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full set of settings a bank-account service needs.
type Config struct {
	Store     StoreConfig
	NATS      NATSConfig
	ReadModel ReadModelConfig
	Transport TransportConfig
}

// StoreConfig selects and configures the EventStore backend.
type StoreConfig struct {
	// Backend is one of "mem", "postgres", "dynamodb".
	Backend string

	PostgresURL string

	DynamoJournalTable  string
	DynamoSnapshotTable string
	DynamoEndpoint      string
}

// NATSConfig configures the optional NATS JetStream publisher. URL is
// empty when publishing is disabled.
type NATSConfig struct {
	URL        string
	StreamName string
	MaxAge     time.Duration
}

// ReadModelConfig configures the SQLite-backed read model.
type ReadModelConfig struct {
	DSN string
}

// TransportConfig configures the HTTP command/query surface.
type TransportConfig struct {
	Addr string
}

// Load reads configuration from environment variables (prefixed
// BANKLEDGER_) and, if present, a config file named bankledger.yaml on
// the current path. Environment variables always win.
func Load(configPaths ...string) (Config, error) {
	v := viper.New()

	v.SetDefault("store.backend", "mem")
	v.SetDefault("store.dynamo_journal_table", "bank_account_events")
	v.SetDefault("store.dynamo_snapshot_table", "bank_account_snapshots")
	v.SetDefault("nats.stream_name", "BANK_ACCOUNT_EVENTS")
	v.SetDefault("nats.max_age", 30*24*time.Hour)
	v.SetDefault("read_model.dsn", "bankledger.db")
	v.SetDefault("transport.addr", ":8080")

	v.SetEnvPrefix("BANKLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigName("bankledger")
	v.SetConfigType("yaml")
	for _, p := range configPaths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: could not read config file: %w", err)
		}
	}

	return Config{
		Store: StoreConfig{
			Backend:             v.GetString("store.backend"),
			PostgresURL:         v.GetString("store.postgres_url"),
			DynamoJournalTable:  v.GetString("store.dynamo_journal_table"),
			DynamoSnapshotTable: v.GetString("store.dynamo_snapshot_table"),
			DynamoEndpoint:      v.GetString("store.dynamo_endpoint"),
		},
		NATS: NATSConfig{
			URL:        v.GetString("nats.url"),
			StreamName: v.GetString("nats.stream_name"),
			MaxAge:     v.GetDuration("nats.max_age"),
		},
		ReadModel: ReadModelConfig{
			DSN: v.GetString("read_model.dsn"),
		},
		Transport: TransportConfig{
			Addr: v.GetString("transport.addr"),
		},
	}, nil
}
