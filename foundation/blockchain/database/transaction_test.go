package database_test

import (
	"encoding/json"
	"testing"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_TxValidate(t *testing.T) {
	type table struct {
		name   string
		tx     func() database.Tx
		reason validation.Reason
	}

	tt := []table{
		{
			name:   "regular",
			tx:     func() database.Tx { return database.NewTx("tx 2") },
			reason: validation.None,
		},
		{
			name:   "fee",
			tx:     func() database.Tx { return database.NewTx("tx", database.WithType(database.TxTypeFee)) },
			reason: validation.None,
		},
		{
			name: "hash",
			tx: func() database.Tx {
				tx := database.NewTx("tx")
				tx.Hash = "abc"
				return tx
			},
			reason: validation.InvalidHash,
		},
		{
			name: "data-changed",
			tx: func() database.Tx {
				tx := database.NewTx("tx")
				tx.Data = "other"
				return tx
			},
			reason: validation.InvalidHash,
		},
		{
			name:   "data-empty",
			tx:     func() database.Tx { return database.NewTx("") },
			reason: validation.InvalidData,
		},
		{
			name:   "type",
			tx:     func() database.Tx { return database.NewTx("tx", database.WithType(database.TxType(9))) },
			reason: validation.InvalidData,
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			v := tst.tx().Validate()

			if v.Reason != tst.reason || v.Success != (tst.reason == validation.None) {
				t.Logf("Test %s:\tgot: %s", tst.name, v)
				t.Logf("Test %s:\texp: %s", tst.name, tst.reason)
				t.Fatalf("Test %s:\tShould get back the right validation.", tst.name)
			}
		}

		t.Run(tst.name, f)
	}
}

func Test_TxHash(t *testing.T) {
	tx1 := database.NewTx("a", database.WithTimeStamp(1000))
	tx2 := database.NewTx("a", database.WithTimeStamp(1000))

	if tx1.Hash != tx2.Hash {
		t.Fatalf("%s\tShould produce the same hash for the same content.", failed)
	}
	t.Logf("%s\tShould produce the same hash for the same content.", success)

	tx3 := database.NewTx("a", database.WithTimeStamp(1000), database.WithType(database.TxTypeFee))
	if tx1.Hash == tx3.Hash {
		t.Fatalf("%s\tShould produce a different hash for a different type.", failed)
	}
	t.Logf("%s\tShould produce a different hash for a different type.", success)

	tx4 := database.NewTx("a", database.WithTimeStamp(1001))
	if tx1.Hash == tx4.Hash {
		t.Fatalf("%s\tShould produce a different hash for a different timestamp.", failed)
	}
	t.Logf("%s\tShould produce a different hash for a different timestamp.", success)
}

func Test_TxJSON(t *testing.T) {
	tx := database.NewTx("a", database.WithType(database.TxTypeFee))

	data, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("%s\tShould be able to marshal: %s", failed, err)
	}

	var got database.Tx
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("%s\tShould be able to unmarshal: %s", failed, err)
	}

	if got != tx {
		t.Fatalf("%s\tShould get back the same transaction.", failed)
	}
	t.Logf("%s\tShould get back the same transaction.", success)

	bad := []byte(`{"hash":"x","data":"a","timestamp":1,"type":"BONUS"}`)
	if err := json.Unmarshal(bad, &got); err == nil {
		t.Fatalf("%s\tShould reject an unknown transaction type.", failed)
	}
	t.Logf("%s\tShould reject an unknown transaction type.", success)
}
