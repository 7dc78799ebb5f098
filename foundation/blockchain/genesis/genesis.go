// Package genesis maintains access to the genesis file that carries the
// ledger policy values.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date             time.Time `json:"date"`              // Date the genesis block is stamped with.
	DifficultyFactor uint      `json:"difficulty_factor"` // Number of blocks per increment of difficulty.
	MaxDifficulty    uint      `json:"max_difficulty"`    // Ceiling surfaced to miners, not enforced by validation.
	TxPerBlock       uint16    `json:"tx_per_block"`      // The maximum number of transactions handed out per block.
	FeePerTx         uint64    `json:"fee_per_tx"`        // Fee paid to the miner for each transaction mined into a block.
}

// Default returns the policy values the ledger runs with when no genesis
// file is provided.
func Default() Genesis {
	return Genesis{
		Date:             time.Now().UTC(),
		DifficultyFactor: 5,
		MaxDifficulty:    62,
		TxPerBlock:       2,
		FeePerTx:         1,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Values missing from the file
// keep their defaults.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	genesis := Default()
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file: %w", err)
	}

	if err := genesis.Validate(); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}

// Validate checks the policy values can drive a ledger.
func (g Genesis) Validate() error {
	if g.DifficultyFactor == 0 {
		return errors.New("difficulty factor must be greater than 0")
	}

	if g.TxPerBlock == 0 {
		return errors.New("transactions per block must be greater than 0")
	}

	return nil
}

// Difficulty returns the number of leading zeros a block hash needs when
// the chain holds the specified number of blocks: ceil(blocks/factor).
func (g Genesis) Difficulty(blocks int) uint {
	return (uint(blocks) + g.DifficultyFactor - 1) / g.DifficultyFactor
}
