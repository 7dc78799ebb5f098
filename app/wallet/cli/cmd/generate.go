package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new private key for a miner",
	Args:  cobra.NoArgs,
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) error {
	path := getPrivateKeyPath()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	privateKey, err := signature.GenerateKey(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", path, signature.MinerID(privateKey.PublicKey))

	return nil
}
