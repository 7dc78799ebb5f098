package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/spf13/cobra"
)

var data string

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send data to be recorded in the ledger",
	Args:  cobra.NoArgs,
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&data, "data", "d", "", "Data to record.")
}

func sendRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tx := database.NewTx(data)

	v, err := newClient().SubmitTransaction(ctx, tx)
	if err != nil {
		return err
	}

	if !v.Success {
		return errors.New(v.String())
	}

	fmt.Fprintln(cmd.OutOrStdout(), v.Message)

	return nil
}
