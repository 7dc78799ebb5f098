package state

import (
	"encoding/json"
	"fmt"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// ProposeBlock takes a mined block, validates it against the tip of the
// chain and, if that passes, removes the transactions it consumes from the
// mempool and appends it. Every non fee transaction in the block must be
// queued or reserved in the mempool exactly once. On success the message of the
// validation is the hash of the block.
func (s *State) ProposeBlock(block database.Block) validation.Validation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: ProposeBlock: started: prevBlk[%s]: newBlk[%s]: numTrans[%d]", block.PrevHash, block.Hash, len(block.Trans))
	defer s.evHandler("state: ProposeBlock: completed: newBlk[%s]", block.Hash)

	tip := s.db.LatestBlock()
	difficulty := s.difficulty(s.db.Count())

	if v := block.Validate(tip.Hash, tip.Index, difficulty); !v.Success {
		s.evHandler("state: ProposeBlock: REJECTED: %s", v.Message)
		return validation.Wrap(validation.InvalidBlock, "invalid block", v)
	}

	var hashes []string
	for _, tx := range block.Trans {
		switch tx.Type {
		case database.TxTypeRegular:
			hashes = append(hashes, tx.Hash)
		case database.TxTypeFee:
		}
	}

	if !s.mempool.Consume(hashes) {
		s.evHandler("state: ProposeBlock: REJECTED: transactions don't match the mempool")
		return validation.Fail(validation.TransactionMismatch, "invalid transaction in block: %d transactions not found in mempool", len(hashes))
	}

	s.db.Write(block)

	s.evHandler("state: ProposeBlock: blk[%s]: mempool[%d]", block, s.mempool.Count())
	s.blockEvent(block)

	return validation.Ok(block.Hash)
}

// NextBlock returns the instruction to build the next block. This call
// changes the mempool: the transactions handed out leave the queue
// immediately and are held as reserved until a block is accepted. They
// are never handed out again, so if the block is never proposed they are
// dropped. The bool is false when the mempool is empty.
func (s *State) NextBlock() (database.NextBlock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mempool.Count() == 0 {
		return database.NextBlock{}, false
	}

	trans := s.mempool.Reserve(int(s.genesis.TxPerBlock))

	nb := database.NextBlock{
		Index:         uint64(s.db.Count()),
		PrevHash:      s.db.LatestBlock().Hash,
		Trans:         trans,
		FeePerTx:      s.genesis.FeePerTx,
		Difficulty:    s.difficulty(s.db.Count()),
		MaxDifficulty: s.genesis.MaxDifficulty,
	}

	s.evHandler("state: NextBlock: blk[%d]: numTrans[%d]: difficulty[%d]: mempool[%d]", nb.Index, len(trans), nb.Difficulty, s.mempool.Count())

	return nb, true
}

// =============================================================================

// blockEvent provides a specific event about a new block in the chain for
// application specific support.
func (s *State) blockEvent(block database.Block) {
	blockJSON, err := json.Marshal(block)
	if err != nil {
		blockJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: block: %s`, string(blockJSON))
}

// txEvent provides a specific event about a new transaction in the mempool
// for application specific support.
func (s *State) txEvent(tx database.Tx) {
	txJSON, err := json.Marshal(tx)
	if err != nil {
		txJSON = []byte(fmt.Sprintf("%q", err.Error()))
	}

	s.evHandler(`viewer: tx: %s`, string(txJSON))
}
