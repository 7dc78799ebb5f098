// Package commands contains the functionality for the set of commands
// currently supported by the admin tool.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// Genesis writes a genesis file carrying the default policy values to the
// path in args[2], or zblock/genesis.json.
func Genesis(args []string, out io.Writer) error {
	path := "zblock/genesis.json"
	if len(args) > 2 {
		path = args[2]
	}

	content, err := json.MarshalIndent(genesis.Default(), "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, content, 0600); err != nil {
		return err
	}

	fmt.Fprintf(out, "genesis written to %s\n", path)

	return nil
}
