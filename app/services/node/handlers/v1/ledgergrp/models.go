package ledgergrp

import (
	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// status is the summary of the ledger.
type status struct {
	Valid          validation.Validation `json:"valid"`
	LastBlock      database.Block        `json:"last_block"`
	NumberOfBlocks int                   `json:"number_of_blocks"`
	Mempool        int                   `json:"mempool"`
}

// newTx is what a client submits to be recorded. The hash is checked by
// the ledger, not here.
type newTx struct {
	Hash      string          `json:"hash" validate:"required"`
	Data      string          `json:"data"`
	TimeStamp int64           `json:"timestamp" validate:"min=0"`
	Type      database.TxType `json:"type" validate:"required"`
}

// Validate checks the data in the model is considered clean.
func (ntx newTx) Validate() error {
	return validate.Check(ntx)
}

func toDBTx(ntx newTx) database.Tx {
	return database.Tx{
		Hash:      ntx.Hash,
		Data:      ntx.Data,
		TimeStamp: ntx.TimeStamp,
		Type:      ntx.Type,
	}
}
