// Package ledgergrp maintains the group of handlers for ledger access.
package ledgergrp

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/ardanlabs/powledger/business/sys/validate"
	"github.com/ardanlabs/powledger/business/web/errs"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// digits identifies a block lookup by index rather than by hash.
var digits = regexp.MustCompile(`^[0-9]+$`)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Status returns the validity and size of the ledger.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := status{
		Valid:          h.State.Validate(),
		LastBlock:      h.State.RetrieveLatestBlock(),
		NumberOfBlocks: h.State.QueryBlockCount(),
		Mempool:        h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Genesis returns the policy values the ledger runs with.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// NextBlock hands out the instruction to mine the next block. The
// transactions in it leave the mempool.
func (h Handlers) NextBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	nb, ok := h.State.NextBlock()
	if !ok {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, nb, http.StatusOK)
}

// Blocks returns the chain from the genesis block forward.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveBlocks(), http.StatusOK)
}

// QueryBlock returns the block identified by its index or its hash.
func (h Handlers) QueryBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	indexOrHash := web.Param(r, "indexOrHash")

	var block database.Block
	var found bool

	switch {
	case digits.MatchString(indexOrHash):
		index, err := strconv.ParseUint(indexOrHash, 10, 64)
		if err == nil {
			block, found = h.State.QueryBlockByIndex(index)
		}

	default:
		block, found = h.State.QueryBlockByHash(indexOrHash)
	}

	if !found {
		return errs.NewNotFound("block not found")
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// ProposeBlock takes a mined block, validates it and if that passes, adds
// it to the chain.
func (h Handlers) ProposeBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var block database.Block
	if err := web.Decode(r, &block); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if block.Hash == "" {
		return errs.NewTrusted(errors.New("block hash is required"), http.StatusUnprocessableEntity)
	}

	h.Log.Infow("propose block", "traceid", v.TraceID, "blk", block, "miner", h.NS.Lookup(block.Miner), "trans", len(block.Trans))

	if result := h.State.ProposeBlock(block); !result.Success {
		return web.Respond(ctx, w, result, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, block, http.StatusCreated)
}

// SubmitTransaction adds a new transaction to the mempool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var ntx newTx
	if err := web.Decode(r, &ntx); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	tx := toDBTx(ntx)

	h.Log.Infow("submit tx", "traceid", v.TraceID, "tx", tx)

	result := h.State.SubmitTransaction(tx)
	if !result.Success {
		return web.Respond(ctx, w, result, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, result, http.StatusCreated)
}

// QueryTransaction looks a transaction up in the mempool and the chain.
func (h Handlers) QueryTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	ts := h.State.QueryTransaction(web.Param(r, "hash"))
	if !ts.Found() {
		return errs.NewNotFound("transaction not found")
	}

	return web.Respond(ctx, w, ts, http.StatusOK)
}

// Mempool returns the transactions waiting to be mined.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveMempool(), http.StatusOK)
}

// Miners returns the names of the miners this node knows.
func (h Handlers) Miners(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.NS.Copy(), http.StatusOK)
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	// Once upgraded the connection is no longer HTTP, don't return errors
	// the error middleware would try to respond to.
	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Infow("events", "traceid", v.TraceID, "status", "upgrade failed", "ERROR", err)
		return nil
	}
	defer c.Close()

	web.SetStatusCode(ctx, http.StatusSwitchingProtocols)

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				h.Log.Infow("events", "traceid", v.TraceID, "status", "write failed", "ERROR", err)
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}

		case <-ctx.Done():
			return nil
		}
	}
}
