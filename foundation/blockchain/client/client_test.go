package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/client"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
	"github.com/ardanlabs/powledger/foundation/blockchain/worker"
	"github.com/stretchr/testify/require"
)

// The client is what a remote miner mines through.
var _ worker.Source = (*client.Client)(nil)

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newServer(t *testing.T, mux *http.ServeMux) *client.Client {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return client.New(srv.URL, 5*time.Second)
}

// =============================================================================

func Test_NextBlock(t *testing.T) {
	tx := database.NewTx("a")
	var empty atomic.Bool
	empty.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/blocks/next", func(w http.ResponseWriter, r *http.Request) {
		if empty.Load() {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respond(w, http.StatusOK, database.NextBlock{Index: 1, PrevHash: "prev", Trans: []database.Tx{tx}, FeePerTx: 1, Difficulty: 1, MaxDifficulty: 62})
	})

	c := newServer(t, mux)

	_, ok, err := c.NextBlock(context.Background())
	require.NoError(t, err)
	require.False(t, ok, "should have nothing to mine")

	empty.Store(false)

	nb, ok, err := c.NextBlock(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(1), nb.Index)
	require.Equal(t, "prev", nb.PrevHash)
	require.Equal(t, []database.Tx{tx}, nb.Trans)
	require.Equal(t, uint(62), nb.MaxDifficulty)
}

func Test_ProposeBlock(t *testing.T) {
	var accept atomic.Bool
	accept.Store(true)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/blocks", func(w http.ResponseWriter, r *http.Request) {
		var block database.Block
		if err := json.NewDecoder(r.Body).Decode(&block); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}

		if !accept.Load() {
			respond(w, http.StatusBadRequest, validation.Fail(validation.TransactionMismatch, "mismatch"))
			return
		}
		respond(w, http.StatusCreated, block)
	})

	c := newServer(t, mux)
	block := database.Block{Index: 1, Hash: "0abc", Miner: "miner", Nonce: 1}

	v, err := c.ProposeBlock(context.Background(), block)
	require.NoError(t, err)
	require.True(t, v.Success)
	require.Equal(t, "0abc", v.Message)

	accept.Store(false)

	v, err = c.ProposeBlock(context.Background(), block)
	require.NoError(t, err)
	require.False(t, v.Success)
	require.Equal(t, validation.TransactionMismatch, v.Reason)
	require.Equal(t, "mismatch", v.Message)
}

func Test_SubmitTransaction(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		var tx database.Tx
		json.NewDecoder(r.Body).Decode(&tx)

		if v := tx.Validate(); !v.Success {
			respond(w, http.StatusBadRequest, validation.Wrap(validation.InvalidTransaction, "invalid transaction", v))
			return
		}
		respond(w, http.StatusCreated, validation.Ok(tx.Hash))
	})

	c := newServer(t, mux)

	tx := database.NewTx("a")
	v, err := c.SubmitTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.True(t, v.Success)
	require.Equal(t, tx.Hash, v.Message)

	v, err = c.SubmitTransaction(context.Background(), database.NewTx(""))
	require.NoError(t, err)
	require.False(t, v.Success)
	require.Equal(t, validation.InvalidTransaction, v.Reason)
	require.Equal(t, "invalid transaction: invalid data", v.Message)
}

func Test_SubmitTransactionRequestErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/transactions", func(w http.ResponseWriter, r *http.Request) {
		var tx database.Tx
		json.NewDecoder(r.Body).Decode(&tx)

		if tx.Hash == "" {
			respond(w, http.StatusBadRequest, map[string]any{
				"error":  "data validation error",
				"fields": map[string]string{"hash": "hash is a required field"},
			})
			return
		}
		respond(w, http.StatusBadRequest, map[string]string{"error": "unable to decode payload"})
	})

	c := newServer(t, mux)

	_, err := c.SubmitTransaction(context.Background(), database.Tx{Data: "a", TimeStamp: 1, Type: database.TxTypeRegular})
	require.ErrorContains(t, err, "data validation error")
	require.ErrorContains(t, err, "hash is a required field")

	_, err = c.SubmitTransaction(context.Background(), database.NewTx("a"))
	require.ErrorContains(t, err, "unable to decode payload")
}

func Test_QueryTransaction(t *testing.T) {
	tx := database.NewTx("a")

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/transactions/{hash}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("hash") != tx.Hash {
			respond(w, http.StatusNotFound, map[string]string{"error": "transaction not found"})
			return
		}
		respond(w, http.StatusOK, state.TxSearch{Tx: &tx, MempoolIndex: -1, BlockIndex: 1})
	})

	c := newServer(t, mux)

	ts, err := c.QueryTransaction(context.Background(), tx.Hash)
	require.NoError(t, err)
	require.Equal(t, 1, ts.BlockIndex)
	require.Equal(t, -1, ts.MempoolIndex)
	require.Equal(t, tx, *ts.Tx)

	_, err = c.QueryTransaction(context.Background(), "missing")
	require.ErrorIs(t, err, client.ErrNotFound)
}

func Test_Status(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/status", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, client.Status{Valid: validation.Ok(""), LastBlock: database.Block{Index: 3}, NumberOfBlocks: 4, Mempool: 2})
	})
	mux.HandleFunc("GET /v1/mempool", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusInternalServerError, map[string]string{"error": "boom"})
	})

	c := newServer(t, mux)

	status, err := c.Status(context.Background())
	require.NoError(t, err)
	require.True(t, status.Valid.Success)
	require.Equal(t, uint64(3), status.LastBlock.Index)
	require.Equal(t, 4, status.NumberOfBlocks)
	require.Equal(t, 2, status.Mempool)

	_, err = c.Mempool(context.Background())
	require.ErrorContains(t, err, "boom")
}
