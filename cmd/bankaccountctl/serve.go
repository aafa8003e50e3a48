package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/bankledger/eventbank/logging"
	"github.com/bankledger/eventbank/transport"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bank-account command/query HTTP surface",
	Run: func(cmd *cobra.Command, args []string) {
		log := logging.New(logging.Options{Pretty: true})
		handler := transport.NewHandler(uc, log)

		log.Info().Str("addr", cfg.Transport.Addr).Msg("starting bankaccountctl http server")
		if err := http.ListenAndServe(cfg.Transport.Addr, handler); err != nil {
			exitWithError(fmt.Errorf("serve: %w", err))
		}
	},
}
