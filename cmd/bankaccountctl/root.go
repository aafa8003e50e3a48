// Package main is bankaccountctl: a command-line front end for the
// bank-account event-sourced pipeline, wiring a chosen EventStore
// backend into the command use case. No publisher is wired, so appended
// events are not published.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/bankledger/eventbank/config"
	"github.com/bankledger/eventbank/eventstore"
	"github.com/bankledger/eventbank/eventstore/dynamostore"
	"github.com/bankledger/eventbank/eventstore/memstore"
	"github.com/bankledger/eventbank/eventstore/pgstore"
	"github.com/bankledger/eventbank/usecase"
)

var (
	cfg config.Config
	uc  *usecase.BankAccount
)

// rootCmd is the base command when bankaccountctl is called without
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "bankaccountctl",
	Short: "Open, update, deposit to, withdraw from, and close bank accounts",
	Long: `bankaccountctl drives the bank-account command pipeline from the
command line: open an account, rename it, deposit or withdraw funds,
close it, and read back its current state.`,
}

// Execute runs the root command. It is called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bankaccountctl: could not load config: %v\n", err)
		os.Exit(1)
	}
	cfg = loaded

	store, err := newStore(cfg.Store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bankaccountctl: could not initialize store: %v\n", err)
		os.Exit(1)
	}

	uc = usecase.New(store, nil, nil)

	rootCmd.AddCommand(openCmd, updateCmd, depositCmd, withdrawCmd, closeCmd, getCmd, serveCmd)
}

func newStore(c config.StoreConfig) (eventstore.EventStore, error) {
	switch c.Backend {
	case "", "mem":
		return memstore.New(), nil

	case "postgres":
		pool, err := pgxpool.New(ctx(), c.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("could not connect to postgres: %w", err)
		}
		store := pgstore.New(pool)
		if err := store.Migrate(ctx()); err != nil {
			return nil, fmt.Errorf("could not migrate postgres store: %w", err)
		}
		return store, nil

	case "dynamodb":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx())
		if err != nil {
			return nil, fmt.Errorf("could not load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if c.DynamoEndpoint != "" {
				o.BaseEndpoint = aws.String(c.DynamoEndpoint)
			}
		})
		return dynamostore.New(client, c.DynamoJournalTable, c.DynamoSnapshotTable), nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q (use mem, postgres, or dynamodb)", c.Backend)
	}
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "bankaccountctl: %v\n", err)
	os.Exit(1)
}

func ctx() context.Context {
	return context.Background()
}
