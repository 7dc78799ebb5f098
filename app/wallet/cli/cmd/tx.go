package cmd

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx <hash>",
	Short: "Look a transaction up in the mempool and the chain",
	Args:  cobra.ExactArgs(1),
	RunE:  txRun,
}

func init() {
	rootCmd.AddCommand(txCmd)
}

func txRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ts, err := newClient().QueryTransaction(ctx, args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(ts)
}
