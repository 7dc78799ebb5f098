package database

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// TxType represents the kind of transaction. The set is closed, any value
// not declared below is not a transaction type.
type TxType uint8

// Set of transaction types.
const (
	TxTypeRegular TxType = 1 // Client supplied data.
	TxTypeFee     TxType = 2 // Miner compensation, at most one per block.
)

// String implements the fmt.Stringer interface.
func (t TxType) String() string {
	switch t {
	case TxTypeRegular:
		return "REGULAR"
	case TxTypeFee:
		return "FEE"
	}
	return fmt.Sprintf("TxType(%d)", uint8(t))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (t TxType) MarshalText() ([]byte, error) {
	switch t {
	case TxTypeRegular, TxTypeFee:
		return []byte(t.String()), nil
	}
	return nil, fmt.Errorf("unknown transaction type %d", uint8(t))
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (t *TxType) UnmarshalText(data []byte) error {
	switch string(data) {
	case "REGULAR":
		*t = TxTypeRegular
	case "FEE":
		*t = TxTypeFee
	default:
		return fmt.Errorf("unknown transaction type %q", string(data))
	}
	return nil
}

// =============================================================================

// Tx is the unit of data recorded in the ledger. Once constructed the
// hash is fixed and the transaction is never changed.
type Tx struct {
	Hash      string `json:"hash"`      // Digest of type, data and timestamp.
	Data      string `json:"data"`      // Payload supplied by the client, can't be empty.
	TimeStamp int64  `json:"timestamp"` // Milliseconds since the epoch the transaction was created.
	Type      TxType `json:"type"`      // REGULAR or FEE.
}

// TxOption overrides a default while constructing a transaction.
type TxOption func(tx *Tx)

// WithType sets the transaction type. The default is REGULAR.
func WithType(txType TxType) TxOption {
	return func(tx *Tx) {
		tx.Type = txType
	}
}

// WithTimeStamp sets the creation time in milliseconds. The default is now.
func WithTimeStamp(timeStamp int64) TxOption {
	return func(tx *Tx) {
		tx.TimeStamp = timeStamp
	}
}

// NewTx constructs a transaction for the data and calculates its hash.
func NewTx(data string, opts ...TxOption) Tx {
	tx := Tx{
		Data:      data,
		TimeStamp: time.Now().UTC().UnixMilli(),
		Type:      TxTypeRegular,
	}

	for _, opt := range opts {
		opt(&tx)
	}

	tx.Hash = tx.ComputeHash()

	return tx
}

// ComputeHash returns the digest for the transaction's content.
func (tx Tx) ComputeHash() string {
	return signature.Hash(
		strconv.Itoa(int(tx.Type)),
		tx.Data,
		strconv.FormatInt(tx.TimeStamp, 10),
	)
}

// Validate checks the stored hash still matches the content and that there
// is data to record.
func (tx Tx) Validate() validation.Validation {
	if tx.Hash != tx.ComputeHash() {
		return validation.Fail(validation.InvalidHash, "invalid hash")
	}

	if tx.Data == "" {
		return validation.Fail(validation.InvalidData, "invalid data")
	}

	switch tx.Type {
	case TxTypeRegular, TxTypeFee:
	default:
		return validation.Fail(validation.InvalidData, "invalid type %d", uint8(tx.Type))
	}

	return validation.Ok("")
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	hash := tx.Hash
	if len(hash) > 12 {
		hash = hash[:12]
	}

	return fmt.Sprintf("%s:%s", tx.Type, hash)
}
