package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/signature"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// ErrMiningAborted is returned from Mine when the context is cancelled
// before a solution is found.
var ErrMiningAborted = errors.New("mining aborted")

// =============================================================================

// NextBlock is the instruction a miner needs to build the next block in
// the chain.
type NextBlock struct {
	Index         uint64 `json:"index"`
	PrevHash      string `json:"previous_hash"`
	Trans         []Tx   `json:"transactions"`
	FeePerTx      uint64 `json:"fee_per_tx"`
	Difficulty    uint   `json:"difficulty"`
	MaxDifficulty uint   `json:"max_difficulty"`
}

// =============================================================================

// Block represents a group of transactions batched together.
type Block struct {
	Index     uint64 `json:"index"`         // Position of the block in the chain.
	TimeStamp int64  `json:"timestamp"`     // Milliseconds since the epoch the block was built.
	Hash      string `json:"hash"`          // Digest of the block identified by mining.
	PrevHash  string `json:"previous_hash"` // Hash of the previous block in the chain.
	Trans     []Tx   `json:"transactions"`  // Transactions recorded by this block.
	Nonce     uint64 `json:"nonce"`         // Value identified to solve the hash solution.
	Miner     string `json:"miner"`         // Identity of the miner who solved the hash.
}

// NewBlock constructs an unmined block from the instruction. The caller is
// responsible for calling Mine before the block is proposed.
func NewBlock(nb NextBlock) Block {
	trans := make([]Tx, len(nb.Trans))
	copy(trans, nb.Trans)

	b := Block{
		Index:     nb.Index,
		TimeStamp: time.Now().UTC().UnixMilli(),
		PrevHash:  nb.PrevHash,
		Trans:     trans,
	}
	b.Hash = b.ComputeHash()

	return b
}

// NewGenesisBlock constructs the first block in the chain. It carries one
// fee transaction describing the date of creation and is never mined.
func NewGenesisBlock(date time.Time) Block {
	tx := NewTx(date.UTC().Format(time.RFC1123), WithType(TxTypeFee), WithTimeStamp(date.UTC().UnixMilli()))

	b := Block{
		Index:     0,
		TimeStamp: date.UTC().UnixMilli(),
		PrevHash:  "",
		Trans:     []Tx{tx},
	}
	b.Hash = b.ComputeHash()

	return b
}

// ComputeHash returns the digest for the block's content.
func (b Block) ComputeHash() string {
	var txHashes strings.Builder
	for _, tx := range b.Trans {
		txHashes.WriteString(tx.Hash)
	}

	return signature.Hash(
		strconv.FormatUint(b.Index, 10),
		txHashes.String(),
		strconv.FormatInt(b.TimeStamp, 10),
		b.PrevHash,
		strconv.FormatUint(b.Nonce, 10),
		b.Miner,
	)
}

// Mine does the work of finding a nonce that produces a hash with the
// specified number of leading zeros. Pointer semantics are being used since
// the nonce, hash and miner are set on the block. The search only stops on
// a solution or when the context is cancelled.
func (b *Block) Mine(ctx context.Context, difficulty uint, minerID string, ev func(v string, args ...any)) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: Mine: MINING: started: blk[%d]: difficulty[%d]", b.Index, difficulty)
	defer ev("database: Mine: MINING: completed: blk[%d]", b.Index)

	for _, tx := range b.Trans {
		ev("database: Mine: MINING: tx[%s]", tx)
	}

	b.Miner = minerID

	var attempts uint64
	for {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: Mine: MINING: attempts[%d]", attempts)
		}

		// Did we get asked to stop trying to solve the problem.
		if err := ctx.Err(); err != nil {
			ev("database: Mine: MINING: CANCELLED: attempts[%d]", attempts)
			return fmt.Errorf("%w: %w", ErrMiningAborted, err)
		}

		b.Nonce++
		b.Hash = b.ComputeHash()
		if !signature.IsHashSolved(difficulty, b.Hash) {
			continue
		}

		ev("database: Mine: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: attempts[%d]", b.PrevHash, b.Hash, attempts)

		return nil
	}
}

// Validate takes the hash and index of the previous block and the current
// difficulty and checks the block can follow it in the chain. The checks
// are ordered and the first one that fails is returned.
func (b Block) Validate(prevHash string, prevIndex uint64, difficulty uint) validation.Validation {
	if len(b.Trans) > 0 {
		var fees int
		var failures []string

		for _, tx := range b.Trans {
			switch tx.Type {
			case TxTypeFee:
				fees++
			case TxTypeRegular:
			}
		}

		if fees > 1 {
			return validation.Fail(validation.TooManyFeeTransactions, "too many fee transactions: %d", fees)
		}

		for _, tx := range b.Trans {
			if v := tx.Validate(); !v.Success {
				failures = append(failures, fmt.Sprintf("tx[%s]: %s", tx, v.Message))
			}
		}

		if len(failures) > 0 {
			return validation.Fail(validation.InvalidTransactions, "invalid transactions: %s", strings.Join(failures, "; "))
		}
	}

	if prevIndex+1 != b.Index {
		return validation.Fail(validation.InvalidIndex, "invalid index, got %d, exp %d", b.Index, prevIndex+1)
	}

	if b.TimeStamp < 1 {
		return validation.Fail(validation.InvalidTimestamp, "invalid timestamp %d", b.TimeStamp)
	}

	if b.PrevHash != prevHash {
		return validation.Fail(validation.InvalidPreviousHash, "invalid previous hash, got %q, exp %q", b.PrevHash, prevHash)
	}

	if b.Nonce == 0 || b.Miner == "" {
		return validation.Fail(validation.NotMined, "no mined")
	}

	if b.Hash != b.ComputeHash() || !signature.IsHashSolved(difficulty, b.Hash) {
		return validation.Fail(validation.InvalidHash, "invalid hash %q for difficulty %d", b.Hash, difficulty)
	}

	return validation.Ok("")
}

// String implements the fmt.Stringer interface for logging.
func (b Block) String() string {
	return fmt.Sprintf("%d:%s", b.Index, b.Hash)
}
