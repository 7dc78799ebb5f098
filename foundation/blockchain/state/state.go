// Package state is the core API for the ledger and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// EventHandler defines a function that is called when events
// occur in the processing of transactions and blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the ledger.
type Config struct {
	Genesis   genesis.Genesis
	EvHandler EventHandler
}

// State manages the ledger. Every exported method that changes the chain
// or the mempool runs inside one exclusive section so validation and the
// change it guards can't interleave with another caller.
type State struct {
	mu        sync.Mutex
	genesis   genesis.Genesis
	evHandler EventHandler

	db      *database.Database
	mempool *mempool.Mempool
}

// New constructs a new ledger seeded with a genesis block.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if err := cfg.Genesis.Validate(); err != nil {
		return nil, fmt.Errorf("validating genesis: %w", err)
	}

	if cfg.Genesis.Date.IsZero() {
		cfg.Genesis.Date = time.Now().UTC()
	}

	// The chain always starts with the genesis block, it carries a single
	// fee transaction and is exempt from the mining rules.
	db, err := database.New(database.NewGenesisBlock(cfg.Genesis.Date))
	if err != nil {
		return nil, err
	}

	state := State{
		genesis:   cfg.Genesis,
		evHandler: ev,
		db:        db,
		mempool:   mempool.New(),
	}

	ev("state: New: genesis[%s]", db.LatestBlock())

	return &state, nil
}

// Difficulty returns the number of leading zeros a block hash needs to be
// accepted. It grows by one for every DifficultyFactor blocks in the chain.
func (s *State) Difficulty() uint {
	return s.difficulty(s.db.Count())
}

// FeePerTx returns the fee a miner is paid for each transaction.
func (s *State) FeePerTx() uint64 {
	return s.genesis.FeePerTx
}

// Validate walks the chain from the tip back to the genesis block checking
// each block against its parent at the current difficulty. The genesis
// block is never checked.
func (s *State) Validate() validation.Validation {
	s.mu.Lock()
	defer s.mu.Unlock()

	blocks := s.db.Copy()
	difficulty := s.difficulty(len(blocks))

	for i := len(blocks) - 1; i > 0; i-- {
		block := blocks[i]
		prev := blocks[i-1]

		if v := block.Validate(prev.Hash, prev.Index, difficulty); !v.Success {
			s.evHandler("state: Validate: blk[%d]: ERROR: %s", block.Index, v.Message)
			return validation.Wrap(validation.InvalidBlockAt, fmt.Sprintf("invalid block #%d", block.Index), v)
		}
	}

	return validation.Ok("")
}

// =============================================================================

// difficulty calculates the difficulty for a chain of the specified size.
func (s *State) difficulty(blocks int) uint {
	return s.genesis.Difficulty(blocks)
}
