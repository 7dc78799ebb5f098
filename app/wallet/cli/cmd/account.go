package cmd

import (
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Print the miner id for the specific wallet",
	Args:  cobra.NoArgs,
	RunE:  accountRun,
}

func init() {
	rootCmd.AddCommand(accountCmd)
}

func accountRun(cmd *cobra.Command, args []string) error {
	minerID, err := signature.LoadMinerID(getPrivateKeyPath())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), minerID)

	return nil
}
