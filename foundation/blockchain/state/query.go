package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
)

// TxSearch is the result of looking a transaction up. An index is -1 when
// the transaction isn't found there. A transaction handed to a miner but
// not yet mined is found with both indexes at -1 and Reserved set.
type TxSearch struct {
	Tx           *database.Tx `json:"transaction,omitempty"`
	MempoolIndex int          `json:"mempool_index"`
	BlockIndex   int          `json:"block_index"`
	Reserved     bool         `json:"reserved,omitempty"`
}

// Found reports whether the transaction was located.
func (ts TxSearch) Found() bool {
	return ts.Tx != nil
}

// =============================================================================

// QueryTransaction looks for the transaction in the mempool first and then
// in the blocks from the genesis block forward.
func (s *State) QueryTransaction(hash string) TxSearch {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tx, idx := s.mempool.Find(hash); idx != -1 {
		return TxSearch{
			Tx:           &tx,
			MempoolIndex: idx,
			BlockIndex:   -1,
		}
	}

	if tx, reserved := s.mempool.FindReserved(hash); reserved {
		return TxSearch{
			Tx:           &tx,
			MempoolIndex: -1,
			BlockIndex:   -1,
			Reserved:     true,
		}
	}

	if tx, idx := s.db.FindTx(hash); idx != -1 {
		return TxSearch{
			Tx:           &tx,
			MempoolIndex: -1,
			BlockIndex:   idx,
		}
	}

	return TxSearch{
		MempoolIndex: -1,
		BlockIndex:   -1,
	}
}

// QueryBlockByHash returns the block with the specified hash.
func (s *State) QueryBlockByHash(hash string) (database.Block, bool) {
	block, err := s.db.GetBlockByHash(hash)
	if err != nil {
		return database.Block{}, false
	}

	return block, true
}

// QueryBlockByIndex returns the block at the specified position.
func (s *State) QueryBlockByIndex(index uint64) (database.Block, bool) {
	block, err := s.db.GetBlock(index)
	if err != nil {
		return database.Block{}, false
	}

	return block, true
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryReservedLength returns the number of transactions handed to miners
// that haven't been mined yet.
func (s *State) QueryReservedLength() int {
	return s.mempool.CountReserved()
}

// QueryBlockCount returns the number of blocks in the chain.
func (s *State) QueryBlockCount() int {
	return s.db.Count()
}
