package database_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

const minerID = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"

// mined constructs and mines the block that follows the genesis block.
func mined(t *testing.T, genesis database.Block, difficulty uint, trans ...database.Tx) database.Block {
	t.Helper()

	block := database.NewBlock(database.NextBlock{
		Index:      genesis.Index + 1,
		PrevHash:   genesis.Hash,
		Trans:      trans,
		Difficulty: difficulty,
	})

	if err := block.Mine(context.Background(), difficulty, minerID, nil); err != nil {
		t.Fatalf("\t%s\tShould be able to mine the block: %s", failed, err)
	}

	return block
}

func Test_Mine(t *testing.T) {
	genesis := database.NewGenesisBlock(time.Now())

	t.Log("Given the need to mine blocks.")
	{
		for difficulty := uint(0); difficulty <= 3; difficulty++ {
			t.Logf("\tTest %d:\tWhen mining at difficulty %d.", difficulty, difficulty)
			{
				block := mined(t, genesis, difficulty, database.NewTx("a"))

				if !strings.HasPrefix(block.Hash, strings.Repeat("0", int(difficulty))) {
					t.Logf("\t%s\tTest %d:\tgot: %s", failed, difficulty, block.Hash)
					t.Fatalf("\t%s\tTest %d:\tShould have %d leading zeros.", failed, difficulty, difficulty)
				}
				t.Logf("\t%s\tTest %d:\tShould have %d leading zeros.", success, difficulty, difficulty)

				if block.Nonce == 0 || block.Miner != minerID {
					t.Fatalf("\t%s\tTest %d:\tShould record the nonce and miner.", failed, difficulty)
				}
				t.Logf("\t%s\tTest %d:\tShould record the nonce and miner.", success, difficulty)

				if v := block.Validate(genesis.Hash, genesis.Index, difficulty); !v.Success {
					t.Fatalf("\t%s\tTest %d:\tShould be valid: %s", failed, difficulty, v)
				}
				t.Logf("\t%s\tTest %d:\tShould be valid.", success, difficulty)
			}
		}
	}
}

func Test_MineCancel(t *testing.T) {
	genesis := database.NewGenesisBlock(time.Now())

	block := database.NewBlock(database.NextBlock{
		Index:    1,
		PrevHash: genesis.Hash,
		Trans:    []database.Tx{database.NewTx("a")},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A difficulty of 64 can't be solved, only cancellation ends the search.
	err := block.Mine(ctx, 64, minerID, nil)
	if !errors.Is(err, database.ErrMiningAborted) {
		t.Fatalf("%s\tShould get back an aborted error: %v", failed, err)
	}
	t.Logf("%s\tShould get back an aborted error.", success)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("%s\tShould carry the context error: %v", failed, err)
	}
	t.Logf("%s\tShould carry the context error.", success)
}

func Test_MineTimeout(t *testing.T) {
	genesis := database.NewGenesisBlock(time.Now())

	block := database.NewBlock(database.NextBlock{
		Index:    1,
		PrevHash: genesis.Hash,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var events int
	ev := func(v string, args ...any) { events++ }

	if err := block.Mine(ctx, 64, minerID, ev); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("%s\tShould stop when the deadline passes: %v", failed, err)
	}
	t.Logf("%s\tShould stop when the deadline passes.", success)

	if events == 0 {
		t.Fatalf("%s\tShould report mining events.", failed)
	}
	t.Logf("%s\tShould report mining events.", success)
}

func Test_Validate(t *testing.T) {
	const difficulty = 1
	genesis := database.NewGenesisBlock(time.Now())

	type table struct {
		name   string
		mutate func(b *database.Block)
		prev   func() (string, uint64)
		reason validation.Reason
	}

	genesisPrev := func() (string, uint64) { return genesis.Hash, genesis.Index }

	tt := []table{
		{
			name:   "valid",
			mutate: func(b *database.Block) {},
			prev:   genesisPrev,
			reason: validation.None,
		},
		{
			name: "two-fees",
			mutate: func(b *database.Block) {
				b.Trans = append(b.Trans,
					database.NewTx("fee1", database.WithType(database.TxTypeFee)),
					database.NewTx("fee2", database.WithType(database.TxTypeFee)),
				)
				b.Index = 99
				b.Hash = "bad"
			},
			prev:   genesisPrev,
			reason: validation.TooManyFeeTransactions,
		},
		{
			name:   "tx-data",
			mutate: func(b *database.Block) { b.Trans[0].Data = "changed" },
			prev:   genesisPrev,
			reason: validation.InvalidTransactions,
		},
		{
			name:   "index",
			mutate: func(b *database.Block) { b.Index = 5 },
			prev:   genesisPrev,
			reason: validation.InvalidIndex,
		},
		{
			name:   "prev-index",
			mutate: func(b *database.Block) {},
			prev:   func() (string, uint64) { return genesis.Hash, 3 },
			reason: validation.InvalidIndex,
		},
		{
			name:   "timestamp",
			mutate: func(b *database.Block) { b.TimeStamp = -1 },
			prev:   genesisPrev,
			reason: validation.InvalidTimestamp,
		},
		{
			name:   "prev-hash",
			mutate: func(b *database.Block) { b.PrevHash = "" },
			prev:   genesisPrev,
			reason: validation.InvalidPreviousHash,
		},
		{
			name: "not-mined",
			mutate: func(b *database.Block) {
				b.Nonce = 0
				b.Hash = b.ComputeHash()
			},
			prev:   genesisPrev,
			reason: validation.NotMined,
		},
		{
			name:   "no-miner",
			mutate: func(b *database.Block) { b.Miner = "" },
			prev:   genesisPrev,
			reason: validation.NotMined,
		},
		{
			name:   "hash",
			mutate: func(b *database.Block) { b.Hash = "" },
			prev:   genesisPrev,
			reason: validation.InvalidHash,
		},
		{
			name:   "miner",
			mutate: func(b *database.Block) { b.Miner = "someone-else" },
			prev:   genesisPrev,
			reason: validation.InvalidHash,
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			block := mined(t, genesis, difficulty, database.NewTx("a"))
			tst.mutate(&block)

			prevHash, prevIndex := tst.prev()
			v := block.Validate(prevHash, prevIndex, difficulty)

			if v.Success != (tst.reason == validation.None) {
				t.Logf("Test %s:\tgot: %s", tst.name, v)
				t.Fatalf("Test %s:\tShould get back the right outcome.", tst.name)
			}

			if v.Reason != tst.reason {
				t.Logf("Test %s:\tgot: %s", tst.name, v.Reason)
				t.Logf("Test %s:\texp: %s", tst.name, tst.reason)
				t.Fatalf("Test %s:\tShould report the first failed check.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_ValidateUnsolved(t *testing.T) {
	genesis := database.NewGenesisBlock(time.Now())

	// Find a block whose hash doesn't start with a zero and check it is
	// rejected at difficulty 1 while being fine at difficulty 0.
	block := mined(t, genesis, 0, database.NewTx("a"))
	for strings.HasPrefix(block.Hash, "0") {
		block.Nonce++
		block.Hash = block.ComputeHash()
	}

	if v := block.Validate(genesis.Hash, genesis.Index, 0); !v.Success {
		t.Fatalf("%s\tShould be valid at difficulty 0: %s", failed, v)
	}
	t.Logf("%s\tShould be valid at difficulty 0.", success)

	if v := block.Validate(genesis.Hash, genesis.Index, 1); v.Reason != validation.InvalidHash {
		t.Fatalf("%s\tShould be invalid at difficulty 1: %s", failed, v)
	}
	t.Logf("%s\tShould be invalid at difficulty 1.", success)
}

func Test_NewBlock(t *testing.T) {
	trans := []database.Tx{database.NewTx("a"), database.NewTx("b")}

	nb := database.NextBlock{
		Index:      7,
		PrevHash:   "abc",
		Trans:      trans,
		Difficulty: 2,
	}

	block := database.NewBlock(nb)

	if block.Index != 7 || block.PrevHash != "abc" || len(block.Trans) != 2 {
		t.Fatalf("%s\tShould copy the instruction: %+v", failed, block)
	}
	t.Logf("%s\tShould copy the instruction.", success)

	if block.Nonce != 0 || block.Miner != "" {
		t.Fatalf("%s\tShould not be mined.", failed)
	}
	t.Logf("%s\tShould not be mined.", success)

	if block.TimeStamp < 1 {
		t.Fatalf("%s\tShould set the timestamp.", failed)
	}
	t.Logf("%s\tShould set the timestamp.", success)

	trans[0] = database.NewTx("changed")
	if block.Trans[0].Data != "a" {
		t.Fatalf("%s\tShould not share the transactions with the instruction.", failed)
	}
	t.Logf("%s\tShould not share the transactions with the instruction.", success)
}

func Test_Genesis(t *testing.T) {
	genesis := database.NewGenesisBlock(time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC))

	if genesis.Index != 0 || genesis.PrevHash != "" {
		t.Fatalf("%s\tShould be the first block.", failed)
	}
	t.Logf("%s\tShould be the first block.", success)

	if len(genesis.Trans) != 1 || genesis.Trans[0].Type != database.TxTypeFee {
		t.Fatalf("%s\tShould carry one fee transaction.", failed)
	}
	t.Logf("%s\tShould carry one fee transaction.", success)

	if v := genesis.Trans[0].Validate(); !v.Success {
		t.Fatalf("%s\tShould carry a valid transaction: %s", failed, v)
	}
	t.Logf("%s\tShould carry a valid transaction.", success)

	if genesis.Hash != genesis.ComputeHash() {
		t.Fatalf("%s\tShould have a matching hash.", failed)
	}
	t.Logf("%s\tShould have a matching hash.", success)
}
