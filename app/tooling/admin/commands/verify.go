package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"go.uber.org/zap"
)

// Node is the part of a ledger node the verification needs.
type Node interface {
	Genesis(ctx context.Context) (genesis.Genesis, error)
	Blocks(ctx context.Context) ([]database.Block, error)
}

// Verify downloads the chain from a node and checks every block against
// its predecessor independently of the node. It stops at the first block
// that fails. The error wraps a *validation.Error naming the failed rule.
func Verify(node Node, out io.Writer, log *zap.SugaredLogger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gen, err := node.Genesis(ctx)
	if err != nil {
		return err
	}

	blocks, err := node.Blocks(ctx)
	if err != nil {
		return err
	}

	if len(blocks) == 0 {
		return fmt.Errorf("node returned no blocks")
	}

	difficulty := gen.Difficulty(len(blocks))
	log.Infow("verify", "blocks", len(blocks), "difficulty", difficulty)

	for i := 1; i < len(blocks); i++ {
		prev := blocks[i-1]
		if err := blocks[i].Validate(prev.Hash, prev.Index, difficulty).Err(); err != nil {
			return fmt.Errorf("invalid block #%d: %w", blocks[i].Index, err)
		}
	}

	fmt.Fprintf(out, "chain of %d blocks is valid at difficulty %d\n", len(blocks), difficulty)

	return nil
}
