// Package nameservice reads a folder of miner key files and creates a name
// service lookup for the miner ids found in the chain.
package nameservice

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
)

// NameService maintains a map of miner ids for name lookup.
type NameService struct {
	miners map[string]string
}

// New constructs a name service with the miners whose keys are in the root
// folder. The key file name, less the extension, is the miner's name. A
// missing folder yields an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		miners: make(map[string]string),
	}

	fn := func(fileName string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && fileName == root {
				return fs.SkipAll
			}
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if d.IsDir() || path.Ext(fileName) != ".ecdsa" {
			return nil
		}

		minerID, err := signature.LoadMinerID(fileName)
		if err != nil {
			return fmt.Errorf("loading %s: %w", fileName, err)
		}

		ns.miners[minerID] = strings.TrimSuffix(path.Base(fileName), ".ecdsa")

		return nil
	}

	if err := filepath.WalkDir(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified miner id. The id itself is
// returned when the miner is unknown.
func (ns *NameService) Lookup(minerID string) string {
	name, exists := ns.miners[minerID]
	if !exists {
		return minerID
	}
	return name
}

// Copy returns a copy of the map of miner ids and names.
func (ns *NameService) Copy() map[string]string {
	cpy := make(map[string]string, len(ns.miners))
	for minerID, name := range ns.miners {
		cpy[minerID] = name
	}
	return cpy
}
