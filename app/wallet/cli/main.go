// This program is a wallet for submitting data to a ledger node.
package main

import "github.com/ardanlabs/powledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
