package mempool_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/mempool"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func newTxs(data ...string) []database.Tx {
	txs := make([]database.Tx, len(data))
	for i, d := range data {
		txs[i] = database.NewTx(d, database.WithTimeStamp(int64(i+1)))
	}
	return txs
}

func Test_CRUD(t *testing.T) {
	type table struct {
		name string
		txs  []database.Tx
	}

	tt := []table{
		{
			name: "basic",
			txs:  newTxs("a", "b", "c", "d"),
		},
	}

	t.Log("Given the need to validate mempool api.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a set of transaction.", testID)
			{
				f := func(t *testing.T) {
					mp := mempool.New()

					for _, tx := range tst.txs {
						if _, err := mp.Push(tx); err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould be able to add new transaction: %s", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould be able to add new transaction: %s", success, testID, tx)
					}

					if _, err := mp.Push(tst.txs[0]); !errors.Is(err, mempool.ErrDuplicate) {
						t.Fatalf("\t%s\tTest %d:\tShould reject a duplicate transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject a duplicate transaction.", success, testID)

					for i, tx := range mp.Copy() {
						if tx.Hash != tst.txs[i].Hash {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, tx)
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.txs[i])
							t.Fatalf("\t%s\tTest %d:\tShould keep the admission order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould keep the admission order.", success, testID)

					if _, idx := mp.Find(tst.txs[2].Hash); idx != 2 {
						t.Fatalf("\t%s\tTest %d:\tShould find the transaction at position 2, got %d.", failed, testID, idx)
					}
					t.Logf("\t%s\tTest %d:\tShould find the transaction by hash.", success, testID)

					picked := mp.Reserve(2)
					if len(picked) != 2 || picked[0].Hash != tst.txs[0].Hash || picked[1].Hash != tst.txs[1].Hash {
						t.Fatalf("\t%s\tTest %d:\tShould reserve from the front.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reserve from the front.", success, testID)

					if mp.Count() != 2 || mp.CountReserved() != 2 {
						t.Fatalf("\t%s\tTest %d:\tShould move the reserved transactions out of the queue, got %d.", failed, testID, mp.Count())
					}
					t.Logf("\t%s\tTest %d:\tShould move the reserved transactions out of the queue.", success, testID)

					if _, idx := mp.Find(tst.txs[0].Hash); idx != -1 {
						t.Fatalf("\t%s\tTest %d:\tShould not find a reserved transaction in the queue.", failed, testID)
					}
					if _, ok := mp.FindReserved(tst.txs[0].Hash); !ok {
						t.Fatalf("\t%s\tTest %d:\tShould find the reserved transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould find the reserved transaction.", success, testID)

					if _, err := mp.Push(tst.txs[0]); !errors.Is(err, mempool.ErrDuplicate) {
						t.Fatalf("\t%s\tTest %d:\tShould reject a reserved transaction.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reject a reserved transaction.", success, testID)

					if picked := mp.Reserve(10); len(picked) != 2 {
						t.Fatalf("\t%s\tTest %d:\tShould reserve what is left.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reserve what is left.", success, testID)

					mp.Truncate()
					mp.Push(tst.txs[0])
					mp.Truncate()
					if mp.Count() != 0 || mp.CountReserved() != 0 {
						t.Fatalf("\t%s\tTest %d:\tShould be able to truncate mempool.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to truncate mempool.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_Consume(t *testing.T) {
	txs := newTxs("a", "b", "c", "d")

	// The first transaction is reserved, the rest stay queued.
	type table struct {
		name     string
		hashes   []string
		ok       bool
		left     int
		reserved int
	}

	tt := []table{
		{name: "queued", hashes: []string{txs[1].Hash, txs[3].Hash}, ok: true, left: 1, reserved: 0},
		{name: "reserved", hashes: []string{txs[0].Hash}, ok: true, left: 3, reserved: 0},
		{name: "mixed", hashes: []string{txs[0].Hash, txs[1].Hash, txs[2].Hash, txs[3].Hash}, ok: true, left: 0, reserved: 0},
		{name: "none", hashes: nil, ok: true, left: 3, reserved: 0},
		{name: "missing", hashes: []string{txs[1].Hash, "missing"}, ok: false, left: 3, reserved: 1},
		{name: "twice", hashes: []string{txs[2].Hash, txs[2].Hash}, ok: false, left: 3, reserved: 1},
		{name: "reserved-twice", hashes: []string{txs[0].Hash, txs[0].Hash}, ok: false, left: 3, reserved: 1},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			mp := mempool.New()
			for _, tx := range txs {
				mp.Push(tx)
			}
			mp.Reserve(1)

			if ok := mp.Consume(tst.hashes); ok != tst.ok {
				t.Fatalf("Test %s:\tShould get back %v.", tst.name, tst.ok)
			}

			if mp.Count() != tst.left || mp.CountReserved() != tst.reserved {
				t.Logf("Test %s:\tgot: %d/%d", tst.name, mp.Count(), mp.CountReserved())
				t.Logf("Test %s:\texp: %d/%d", tst.name, tst.left, tst.reserved)
				t.Fatalf("Test %s:\tShould leave the right transactions.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}
