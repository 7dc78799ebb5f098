package state

import (
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// SubmitTransaction accepts a transaction from a client for inclusion. On
// success the message of the validation is the hash of the transaction.
func (s *State) SubmitTransaction(tx database.Tx) validation.Validation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: SubmitTransaction: started: tx[%s]", tx)

	if v := tx.Validate(); !v.Success {
		s.evHandler("state: SubmitTransaction: REJECTED: tx[%s]: %s", tx, v.Message)
		return validation.Wrap(validation.InvalidTransaction, "invalid transaction", v)
	}

	if _, idx := s.mempool.Find(tx.Hash); idx != -1 {
		return validation.Fail(validation.DuplicateInMempool, "transaction already in mempool: %s", tx.Hash)
	}

	if _, reserved := s.mempool.FindReserved(tx.Hash); reserved {
		return validation.Fail(validation.DuplicateInMempool, "transaction already being mined: %s", tx.Hash)
	}

	if _, idx := s.db.FindTx(tx.Hash); idx != -1 {
		return validation.Fail(validation.DuplicateInChain, "transaction already in blockchain: %s", tx.Hash)
	}

	// The lookups above ran under the state lock so the push can't see a
	// duplicate.
	count, err := s.mempool.Push(tx)
	if err != nil {
		return validation.Fail(validation.DuplicateInMempool, "transaction already in mempool: %s", tx.Hash)
	}

	s.evHandler("state: SubmitTransaction: completed: tx[%s]: mempool[%d]", tx, count)
	s.txEvent(tx)

	return validation.Ok(tx.Hash)
}
