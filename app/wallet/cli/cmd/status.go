package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the status of the node's ledger",
	Args:  cobra.NoArgs,
	RunE:  statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	status, err := newClient().Status(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "valid:   %v\n", status.Valid.Success)
	if !status.Valid.Success {
		fmt.Fprintf(out, "reason:  %s\n", status.Valid)
	}
	fmt.Fprintf(out, "blocks:  %d\n", status.NumberOfBlocks)
	fmt.Fprintf(out, "latest:  %s\n", status.LastBlock.Hash)
	fmt.Fprintf(out, "mempool: %d\n", status.Mempool)

	return nil
}
