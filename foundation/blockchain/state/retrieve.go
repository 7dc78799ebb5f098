package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
)

// RetrieveGenesis returns a copy of the genesis information.
func (s *State) RetrieveGenesis() genesis.Genesis {
	return s.genesis
}

// RetrieveLatestBlock returns a copy the current latest block.
func (s *State) RetrieveLatestBlock() database.Block {
	return s.db.LatestBlock()
}

// RetrieveMempool returns a copy of the mempool in the order the
// transactions will be handed out.
func (s *State) RetrieveMempool() []database.Tx {
	return s.mempool.Copy()
}

// RetrieveBlocks returns a copy of the chain.
func (s *State) RetrieveBlocks() []database.Block {
	return s.db.Copy()
}

// RetrieveGenesisBlock returns the first block in the chain.
func (s *State) RetrieveGenesisBlock() database.Block {
	block, _ := s.db.GetBlock(0)
	return block
}
