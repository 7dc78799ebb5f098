package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
	"golang.org/x/sync/errgroup"
)

// requestTimeout bounds every call made to the source.
const requestTimeout = 10 * time.Second

// miningOperations handles mining.
func (w *Worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case <-w.startMining:
			if !w.isShutdown() {
				w.runMiningOperation()
			}
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// runMiningOperation asks the source for the next block, mines it and
// proposes the result.
func (w *Worker) runMiningOperation() {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	nb, ok, err := w.nextBlock()
	if err != nil {
		w.evHandler("worker: runMiningOperation: MINING: nextBlock: ERROR: %s", err)
		return
	}

	if !ok {
		w.evHandler("worker: runMiningOperation: MINING: no transactions to mine")
		return
	}

	// Drain the cancel mining channel before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	// Create a context so mining can be cancelled.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	// This G exists to cancel the mining operation.
	g.Go(func() error {
		defer cancel()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: requested")
		case <-w.shut:
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: shutdown")
		case <-ctx.Done():
		}

		return nil
	})

	// This G is performing the mining.
	var block database.Block
	g.Go(func() error {
		defer cancel()

		t := time.Now()
		var err error
		block, err = w.mine(ctx, nb)
		w.evHandler("worker: runMiningOperation: MINING: mining duration[%v]", time.Since(t))

		return err
	})

	if err := g.Wait(); err != nil {
		switch {
		case errors.Is(err, database.ErrMiningAborted):
			w.evHandler("worker: runMiningOperation: MINING: CANCEL: complete")
		default:
			w.evHandler("worker: runMiningOperation: MINING: ERROR: %s", err)
		}
		return
	}

	// WOW, we mined a block. Propose the new block to the ledger.
	v, err := w.proposeBlock(block)
	if err != nil {
		w.evHandler("worker: runMiningOperation: MINING: proposeBlock: ERROR: %s", err)
		return
	}

	if !v.Success {
		w.evHandler("worker: runMiningOperation: MINING: proposeBlock: REJECTED: %s", v)
		return
	}

	w.evHandler("worker: runMiningOperation: MINING: ACCEPTED: blk[%s]", block)

	// There could be more work waiting.
	w.SignalStartMining()
}

// mine builds the block from the instruction, rewards this miner with a
// fee transaction and searches for the nonce.
func (w *Worker) mine(ctx context.Context, nb database.NextBlock) (database.Block, error) {
	reward := nb.FeePerTx * uint64(len(nb.Trans))
	fee := database.NewTx(w.minerID, database.WithType(database.TxTypeFee))
	nb.Trans = append(append([]database.Tx(nil), nb.Trans...), fee)

	w.evHandler("worker: mine: blk[%d]: numTrans[%d]: reward[%d]: difficulty[%d]", nb.Index, len(nb.Trans), reward, nb.Difficulty)

	block := database.NewBlock(nb)
	if err := block.Mine(ctx, nb.Difficulty, w.minerID, w.evHandler); err != nil {
		return database.Block{}, err
	}

	return block, nil
}

// nextBlock asks the source for work bounded by the request timeout.
func (w *Worker) nextBlock() (database.NextBlock, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	return w.source.NextBlock(ctx)
}

// proposeBlock hands the block to the source bounded by the request
// timeout.
func (w *Worker) proposeBlock(block database.Block) (validation.Validation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	return w.source.ProposeBlock(ctx, block)
}
