// Package cmd contains the wallet commands.
package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/client"
	"github.com/spf13/cobra"
)

var (
	accountName string
	accountPath string
	nodeURL     string
	timeout     time.Duration
)

const (
	keyExtenstion = ".ecdsa"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "private.ecdsa", "Path to the private key.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with private keys.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "Timeout for calls to the node.")
}

var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "Your simple ledger wallet",
	SilenceUsage: true,
}

// Execute runs the command specified on the command line.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func getPrivateKeyPath() string {
	name := accountName
	if !strings.HasSuffix(name, keyExtenstion) {
		name += keyExtenstion
	}

	return filepath.Join(accountPath, name)
}

func newClient() *client.Client {
	return client.New(nodeURL, timeout)
}
