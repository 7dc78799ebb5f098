// Package client provides support to access a ledger node over HTTP.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/blockchain/validation"
	"github.com/go-resty/resty/v2"
)

// ErrNotFound is returned when the node doesn't know the requested item.
var ErrNotFound = errors.New("not found")

// Status represents the summary a node reports about its ledger.
type Status struct {
	Valid          validation.Validation `json:"valid"`
	LastBlock      database.Block        `json:"last_block"`
	NumberOfBlocks int                   `json:"number_of_blocks"`
	Mempool        int                   `json:"mempool"`
}

// errorResponse is the form used for API responses from failures.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// rejection holds a 400 response. The node answers with a validation when
// the ledger rejects the request and with an error response when the
// request never reached the ledger.
type rejection struct {
	validation.Validation
	errorResponse
}

// result returns the validation, or an error when the body was an error
// response.
func (rj rejection) result(op string, resp *resty.Response) (validation.Validation, error) {
	if rj.Error == "" {
		return rj.Validation, nil
	}

	if len(rj.Fields) > 0 {
		return validation.Validation{}, fmt.Errorf("%s: %s: %s: %v", op, resp.Status(), rj.Error, rj.Fields)
	}

	return validation.Validation{}, fmt.Errorf("%s: %s: %s", op, resp.Status(), rj.Error)
}

// =============================================================================

// Client provides the API for talking to a node.
type Client struct {
	rc *resty.Client
}

// New constructs a client for the node at the specified host, such as
// http://localhost:9080.
func New(host string, timeout time.Duration) *Client {
	rc := resty.New().
		SetBaseURL(host).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Client{rc: rc}
}

// Status returns the summary of the node's ledger.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var status Status
	var er errorResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&status).
		SetError(&er).
		Get("/v1/status")
	if err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}

	if resp.IsError() {
		return Status{}, responseError(resp, er)
	}

	return status, nil
}

// NextBlock returns the instruction to build the next block. The bool is
// false when the node has nothing to mine.
func (c *Client) NextBlock(ctx context.Context) (database.NextBlock, bool, error) {
	var nb database.NextBlock
	var er errorResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&nb).
		SetError(&er).
		Get("/v1/blocks/next")
	if err != nil {
		return database.NextBlock{}, false, fmt.Errorf("next block: %w", err)
	}

	switch {
	case resp.StatusCode() == http.StatusNoContent:
		return database.NextBlock{}, false, nil
	case resp.IsError():
		return database.NextBlock{}, false, responseError(resp, er)
	}

	return nb, true, nil
}

// ProposeBlock submits a mined block. A rejection by the ledger is reported
// through the validation, the error is only for transport failures.
func (c *Client) ProposeBlock(ctx context.Context, block database.Block) (validation.Validation, error) {
	var accepted database.Block
	var rj rejection

	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(block).
		SetResult(&accepted).
		SetError(&rj).
		Post("/v1/blocks")
	if err != nil {
		return validation.Validation{}, fmt.Errorf("propose block: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusCreated:
		return validation.Ok(accepted.Hash), nil
	case http.StatusBadRequest:
		return rj.result("propose block", resp)
	}

	if rj.Error != "" {
		return validation.Validation{}, fmt.Errorf("propose block: %s: %s", resp.Status(), rj.Error)
	}

	return validation.Validation{}, fmt.Errorf("propose block: unexpected status %s", resp.Status())
}

// SubmitTransaction submits a transaction to the node's mempool. A
// rejection by the ledger is reported through the validation.
func (c *Client) SubmitTransaction(ctx context.Context, tx database.Tx) (validation.Validation, error) {
	var v validation.Validation
	var rj rejection

	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(tx).
		SetResult(&v).
		SetError(&rj).
		Post("/v1/transactions")
	if err != nil {
		return validation.Validation{}, fmt.Errorf("submit transaction: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusCreated:
		return v, nil
	case http.StatusBadRequest:
		return rj.result("submit transaction", resp)
	}

	return validation.Validation{}, fmt.Errorf("submit transaction: unexpected status %s", resp.Status())
}

// QueryTransaction looks the transaction up by hash.
func (c *Client) QueryTransaction(ctx context.Context, hash string) (state.TxSearch, error) {
	var ts state.TxSearch
	var er errorResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("hash", hash).
		SetResult(&ts).
		SetError(&er).
		Get("/v1/transactions/{hash}")
	if err != nil {
		return state.TxSearch{}, fmt.Errorf("query transaction: %w", err)
	}

	if resp.IsError() {
		return state.TxSearch{}, responseError(resp, er)
	}

	return ts, nil
}

// QueryBlock returns the block identified by its index or its hash.
func (c *Client) QueryBlock(ctx context.Context, indexOrHash string) (database.Block, error) {
	var block database.Block
	var er errorResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetPathParam("indexOrHash", indexOrHash).
		SetResult(&block).
		SetError(&er).
		Get("/v1/blocks/{indexOrHash}")
	if err != nil {
		return database.Block{}, fmt.Errorf("query block: %w", err)
	}

	if resp.IsError() {
		return database.Block{}, responseError(resp, er)
	}

	return block, nil
}

// Blocks returns the node's chain from the genesis block forward.
func (c *Client) Blocks(ctx context.Context) ([]database.Block, error) {
	var blocks []database.Block
	var er errorResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&blocks).
		SetError(&er).
		Get("/v1/blocks")
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}

	if resp.IsError() {
		return nil, responseError(resp, er)
	}

	return blocks, nil
}

// Genesis returns the policy values the node runs with.
func (c *Client) Genesis(ctx context.Context) (genesis.Genesis, error) {
	var gen genesis.Genesis
	var er errorResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&gen).
		SetError(&er).
		Get("/v1/genesis")
	if err != nil {
		return genesis.Genesis{}, fmt.Errorf("genesis: %w", err)
	}

	if resp.IsError() {
		return genesis.Genesis{}, responseError(resp, er)
	}

	return gen, nil
}

// Mempool returns the transactions queued on the node.
func (c *Client) Mempool(ctx context.Context) ([]database.Tx, error) {
	var trans []database.Tx
	var er errorResponse

	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&trans).
		SetError(&er).
		Get("/v1/mempool")
	if err != nil {
		return nil, fmt.Errorf("mempool: %w", err)
	}

	if resp.IsError() {
		return nil, responseError(resp, er)
	}

	return trans, nil
}

// =============================================================================

// responseError converts a failed response into an error.
func responseError(resp *resty.Response, er errorResponse) error {
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}

	if er.Error != "" {
		return fmt.Errorf("%s: %s", resp.Status(), er.Error)
	}

	return fmt.Errorf("unexpected status %s", resp.Status())
}
