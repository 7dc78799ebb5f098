// Package worker implements the mining workflow a miner runs against a
// ledger: poll for the next block, mine it and propose it.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
)

// DefaultPollInterval is how often the ledger is asked for work when no
// interval is configured.
const DefaultPollInterval = 5 * time.Second

// Source represents the ledger a worker mines for.
type Source interface {
	NextBlock(ctx context.Context) (database.NextBlock, bool, error)
	ProposeBlock(ctx context.Context, block database.Block) (validation.Validation, error)
}

// Config represents the configuration required to start a worker.
type Config struct {
	Source       Source
	MinerID      string
	PollInterval time.Duration
	EvHandler    state.EventHandler
}

// =============================================================================

// Worker manages the POW workflow for a miner.
type Worker struct {
	source       Source
	minerID      string
	wg           sync.WaitGroup
	ticker       *time.Ticker
	shut         chan struct{}
	startMining  chan bool
	cancelMining chan bool
	evHandler    state.EventHandler
}

// Run creates a worker and starts up all the background processes.
func Run(cfg Config) *Worker {
	ev := cfg.EvHandler
	if ev == nil {
		ev = func(string, ...any) {}
	}

	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	w := Worker{
		source:       cfg.Source,
		minerID:      cfg.MinerID,
		ticker:       time.NewTicker(interval),
		shut:         make(chan struct{}),
		startMining:  make(chan bool, 1),
		cancelMining: make(chan bool, 1),
		evHandler:    ev,
	}

	// Load the set of operations we need to run.
	operations := []func(){
		w.pollOperations,
		w.miningOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for range g {
		<-hasStarted
	}

	// Don't wait for the first tick to look for work.
	w.SignalStartMining()

	return &w
}

// Shutdown terminates the goroutines performing work. A mining operation in
// progress is cancelled.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: stop ticker")
	w.ticker.Stop()

	w.evHandler("worker: shutdown: signal cancel mining")
	w.SignalCancelMining()

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalStartMining starts a mining operation. If there is already a signal
// pending in the channel, just return since a mining operation will start.
func (w *Worker) SignalStartMining() {
	select {
	case w.startMining <- true:
	default:
	}
	w.evHandler("worker: SignalStartMining: mining signaled")
}

// SignalCancelMining signals the G executing the runMiningOperation function
// to stop immediately.
func (w *Worker) SignalCancelMining() {
	select {
	case w.cancelMining <- true:
	default:
	}
	w.evHandler("worker: SignalCancelMining: MINING: CANCEL: signaled")
}

// =============================================================================

// pollOperations asks for a mining operation on every tick.
func (w *Worker) pollOperations() {
	w.evHandler("worker: pollOperations: G started")
	defer w.evHandler("worker: pollOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.SignalStartMining()
			}
		case <-w.shut:
			w.evHandler("worker: pollOperations: received shut signal")
			return
		}
	}
}

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// =============================================================================

// StateSource adapts a ledger running in the same process to a Source.
type StateSource struct {
	State *state.State
}

// NextBlock implements the Source interface.
func (s StateSource) NextBlock(ctx context.Context) (database.NextBlock, bool, error) {
	nb, ok := s.State.NextBlock()
	return nb, ok, nil
}

// ProposeBlock implements the Source interface.
func (s StateSource) ProposeBlock(ctx context.Context, block database.Block) (validation.Validation, error) {
	return s.State.ProposeBlock(block), nil
}
