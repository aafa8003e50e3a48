package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bankledger/eventbank/bankaccount"
)

func parseOrNewID(s string) (bankaccount.ID, error) {
	if s == "" {
		return bankaccount.ParseID(uuid.New().String())
	}
	return bankaccount.ParseID(s)
}

var (
	flagAccountID string
	flagName      string
	flagAmount    int32
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a new bank account",
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseOrNewID(flagAccountID)
		if err != nil {
			exitWithError(err)
		}
		name, err := bankaccount.ParseName(flagName)
		if err != nil {
			exitWithError(err)
		}

		agg, err := uc.Handle(ctx(), bankaccount.NewOpen(id, name))
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("opened account %s (%q), balance %d, version %d\n", agg.State.ID, agg.State.Name, agg.State.Balance, agg.Version)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Rename an existing bank account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := bankaccount.ParseID(args[0])
		if err != nil {
			exitWithError(err)
		}
		name, err := bankaccount.ParseName(flagName)
		if err != nil {
			exitWithError(err)
		}

		agg, err := uc.Handle(ctx(), bankaccount.NewUpdate(id, name))
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("account %s renamed to %q, version %d\n", agg.State.ID, agg.State.Name, agg.Version)
	},
}

var depositCmd = &cobra.Command{
	Use:   "deposit [id]",
	Short: "Deposit funds into an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := bankaccount.ParseID(args[0])
		if err != nil {
			exitWithError(err)
		}

		agg, err := uc.Handle(ctx(), bankaccount.NewDeposit(id, flagAmount))
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("account %s balance is now %d, version %d\n", agg.State.ID, agg.State.Balance, agg.Version)
	},
}

var withdrawCmd = &cobra.Command{
	Use:   "withdraw [id]",
	Short: "Withdraw funds from an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := bankaccount.ParseID(args[0])
		if err != nil {
			exitWithError(err)
		}

		agg, err := uc.Handle(ctx(), bankaccount.NewWithdraw(id, flagAmount))
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("account %s balance is now %d, version %d\n", agg.State.ID, agg.State.Balance, agg.Version)
	},
}

var closeCmd = &cobra.Command{
	Use:   "close [id]",
	Short: "Close an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := bankaccount.ParseID(args[0])
		if err != nil {
			exitWithError(err)
		}

		agg, err := uc.Handle(ctx(), bankaccount.NewClose(id))
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("account %s closed, version %d\n", agg.State.ID, agg.Version)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Print an account's current state",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := bankaccount.ParseID(args[0])
		if err != nil {
			exitWithError(err)
		}

		agg, err := uc.Get(ctx(), id)
		if err != nil {
			exitWithError(err)
		}
		fmt.Printf("id=%s name=%q balance=%d closed=%t version=%d\n",
			agg.State.ID, agg.State.Name, agg.State.Balance, agg.State.Closed, agg.Version)
	},
}

func init() {
	openCmd.Flags().StringVar(&flagAccountID, "id", "", "account id (UUID generated if empty)")
	openCmd.Flags().StringVar(&flagName, "name", "", "account name")

	updateCmd.Flags().StringVar(&flagName, "name", "", "new account name")

	depositCmd.Flags().Int32Var(&flagAmount, "amount", 0, "amount to deposit")
	withdrawCmd.Flags().Int32Var(&flagAmount, "amount", 0, "amount to withdraw")
}
