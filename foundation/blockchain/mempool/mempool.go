// Package mempool maintains the mempool for the ledger.
package mempool

import (
	"errors"
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// ErrDuplicate is returned when a transaction with the same hash is
// already queued.
var ErrDuplicate = errors.New("transaction already in mempool")

// Mempool represents the queue of transactions waiting to be mined. It
// preserves the order transactions were admitted in. Transactions handed
// to a miner leave the queue and are held as reserved until a block is
// accepted, reserved transactions are never handed out again.
type Mempool struct {
	mu       sync.RWMutex
	pool     []database.Tx
	reserved []database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{}
}

// Count returns the current number of transaction in the queue.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// CountReserved returns the number of transactions handed to miners that
// haven't been mined yet.
func (mp *Mempool) CountReserved() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.reserved)
}

// Push adds the transaction to the back of the queue and returns the new
// size of the queue.
func (mp *Mempool) Push(tx database.Tx) (int, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if indexOf(mp.pool, tx.Hash) != -1 || indexOf(mp.reserved, tx.Hash) != -1 {
		return len(mp.pool), ErrDuplicate
	}

	mp.pool = append(mp.pool, tx)

	return len(mp.pool), nil
}

// Find returns the transaction with the specified hash and its position
// in the queue. The position is -1 when not found.
func (mp *Mempool) Find(hash string) (database.Tx, int) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	idx := indexOf(mp.pool, hash)
	if idx == -1 {
		return database.Tx{}, -1
	}

	return mp.pool[idx], idx
}

// FindReserved returns the reserved transaction with the specified hash.
func (mp *Mempool) FindReserved(hash string) (database.Tx, bool) {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	idx := indexOf(mp.reserved, hash)
	if idx == -1 {
		return database.Tx{}, false
	}

	return mp.reserved[idx], true
}

// Reserve removes up to howMany transactions from the front of the queue
// and returns them. The transactions leave the queue immediately and are
// held as reserved.
func (mp *Mempool) Reserve(howMany int) []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if howMany > len(mp.pool) {
		howMany = len(mp.pool)
	}

	trans := make([]database.Tx, howMany)
	copy(trans, mp.pool[:howMany])

	mp.pool = append([]database.Tx(nil), mp.pool[howMany:]...)
	mp.reserved = append(mp.reserved, trans...)

	return trans
}

// Consume removes the transactions with the specified hashes from the
// mempool. Every hash must match exactly one queued or reserved
// transaction, if not the mempool is left untouched and false is returned.
// On success every reservation is released: the chain moved forward so
// any other block built from them can't be accepted anymore.
func (mp *Mempool) Consume(hashes []string) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	consumed := make(map[string]struct{}, len(hashes))
	for _, hash := range hashes {
		consumed[hash] = struct{}{}
	}

	residual := make([]database.Tx, 0, len(mp.pool))
	for _, tx := range mp.pool {
		if _, exists := consumed[tx.Hash]; !exists {
			residual = append(residual, tx)
		}
	}

	var residualReserved int
	for _, tx := range mp.reserved {
		if _, exists := consumed[tx.Hash]; !exists {
			residualReserved++
		}
	}

	if len(residual)+residualReserved+len(hashes) != len(mp.pool)+len(mp.reserved) {
		return false
	}

	mp.pool = residual
	mp.reserved = nil

	return true
}

// Copy returns a copy of the queued transactions in order.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	trans := make([]database.Tx, len(mp.pool))
	copy(trans, mp.pool)

	return trans
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = nil
	mp.reserved = nil
}

// =============================================================================

// indexOf returns the position of the transaction with the specified hash.
func indexOf(pool []database.Tx, hash string) int {
	for i, tx := range pool {
		if tx.Hash == hash {
			return i
		}
	}

	return -1
}
