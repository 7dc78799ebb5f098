package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ardanlabs/powledger/app/tooling/admin/commands"
	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type node struct {
	gen    genesis.Genesis
	blocks []database.Block
}

func (n node) Genesis(ctx context.Context) (genesis.Genesis, error) { return n.gen, nil }
func (n node) Blocks(ctx context.Context) ([]database.Block, error) { return n.blocks, nil }

func Test_Genesis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.json")

	var out bytes.Buffer
	require.NoError(t, commands.Genesis([]string{"admin", "genesis", path}, &out))
	require.Contains(t, out.String(), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var gen genesis.Genesis
	require.NoError(t, json.Unmarshal(content, &gen))
	require.Equal(t, uint(5), gen.DifficultyFactor)

	loaded, err := genesis.Load(path)
	require.NoError(t, err)
	require.Equal(t, gen.TxPerBlock, loaded.TxPerBlock)
}

func Test_Verify(t *testing.T) {
	gen := genesis.Default()
	first := database.NewGenesisBlock(time.Now())

	block := database.NewBlock(database.NextBlock{Index: 1, PrevHash: first.Hash, Trans: []database.Tx{database.NewTx("a")}})
	require.NoError(t, block.Mine(context.Background(), gen.Difficulty(2), "miner", nil))

	log := zaptest.NewLogger(t).Sugar()

	var out bytes.Buffer
	require.NoError(t, commands.Verify(node{gen: gen, blocks: []database.Block{first, block}}, &out, log))
	require.Contains(t, out.String(), "chain of 2 blocks is valid")

	block.Trans[0].Data = "b"
	err := commands.Verify(node{gen: gen, blocks: []database.Block{first, block}}, &out, log)
	require.ErrorContains(t, err, "invalid block #1: invalid transactions")

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, validation.InvalidTransactions, verr.Reason)
}
