// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/ardanlabs/powledger/app/services/node/handlers/v1/ledgergrp"
	"github.com/ardanlabs/powledger/foundation/blockchain/state"
	"github.com/ardanlabs/powledger/foundation/events"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	lgh := ledgergrp.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", lgh.Events)
	app.Handle(http.MethodGet, version, "/status", lgh.Status)
	app.Handle(http.MethodGet, version, "/genesis", lgh.Genesis)
	app.Handle(http.MethodGet, version, "/blocks", lgh.Blocks)
	app.Handle(http.MethodGet, version, "/blocks/next", lgh.NextBlock)
	app.Handle(http.MethodGet, version, "/blocks/:indexOrHash", lgh.QueryBlock)
	app.Handle(http.MethodPost, version, "/blocks", lgh.ProposeBlock)
	app.Handle(http.MethodPost, version, "/transactions", lgh.SubmitTransaction)
	app.Handle(http.MethodGet, version, "/transactions/:hash", lgh.QueryTransaction)
	app.Handle(http.MethodGet, version, "/mempool", lgh.Mempool)
	app.Handle(http.MethodGet, version, "/miners", lgh.Miners)
}
