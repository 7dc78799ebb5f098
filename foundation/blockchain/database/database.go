// Package database handles all the lower level support for maintaining the
// blocks and transactions that make up the ledger in memory.
package database

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a block is looked up that doesn't exist.
var ErrNotFound = errors.New("block not found")

// =============================================================================

// Iterator provides support to walk the chain from the genesis block
// forward.
type Iterator struct {
	db    *Database
	index int
}

// Next retrieves the next block in the chain. The bool is false once the
// end of the chain is reached.
func (it *Iterator) Next() (Block, bool) {
	it.db.mu.RLock()
	defer it.db.mu.RUnlock()

	if it.index >= len(it.db.blocks) {
		return Block{}, false
	}

	block := it.db.blocks[it.index]
	it.index++

	return block, true
}

// =============================================================================

// Database manages the ordered set of blocks accepted into the ledger.
// Blocks are only ever appended, never removed or reordered.
type Database struct {
	mu     sync.RWMutex
	blocks []Block
}

// New constructs a database seeded with the genesis block.
func New(genesisBlock Block) (*Database, error) {
	if genesisBlock.Index != 0 {
		return nil, errors.New("genesis block must have index 0")
	}

	if genesisBlock.PrevHash != "" {
		return nil, errors.New("genesis block can't have a previous hash")
	}

	db := Database{
		blocks: []Block{genesisBlock},
	}

	return &db, nil
}

// Write appends the block to the end of the chain. The caller is
// responsible for validating the block first.
func (db *Database) Write(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.blocks = append(db.blocks, block)
}

// Count returns the number of blocks in the chain.
func (db *Database) Count() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.blocks)
}

// LatestBlock returns the tip of the chain. There is always at least the
// genesis block.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.blocks[len(db.blocks)-1]
}

// GetBlock returns the block at the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if index >= uint64(len(db.blocks)) {
		return Block{}, ErrNotFound
	}

	return db.blocks[index], nil
}

// GetBlockByHash performs a linear search for the block with the
// specified hash.
func (db *Database) GetBlockByHash(hash string) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.blocks {
		if block.Hash == hash {
			return block, nil
		}
	}

	return Block{}, ErrNotFound
}

// FindTx searches the blocks front to back, and the transactions in each
// block in order, for the transaction with the specified hash. The index
// of the block is -1 when not found.
func (db *Database) FindTx(hash string) (Tx, int) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for i, block := range db.blocks {
		for _, tx := range block.Trans {
			if tx.Hash == hash {
				return tx, i
			}
		}
	}

	return Tx{}, -1
}

// Copy returns a copy of the blocks in the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	blocks := make([]Block, len(db.blocks))
	copy(blocks, db.blocks)

	return blocks
}

// ForEach returns an iterator to walk the chain from the genesis block.
func (db *Database) ForEach() *Iterator {
	return &Iterator{db: db}
}
