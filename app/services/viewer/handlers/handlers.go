// Package handlers contains the full set of handler functions and routes
// supported by the viewer website.
package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/ardanlabs/powledger/business/web/mid"
	"github.com/ardanlabs/powledger/foundation/web"
	"go.uber.org/zap"
)

// UIMux constructs an http.Handler with all application routes defined. The
// page it serves opens a websocket against the node's events endpoint.
func UIMux(shutdown chan os.Signal, log *zap.SugaredLogger, nodeHost string) (*web.App, error) {
	app := web.NewApp(
		shutdown,
		mid.Logger(log),
		mid.Errors(log),
		mid.Panics(),
		mid.Cors("*"),
	)

	// Register the index page for the website.
	ig, err := newIndex(nodeHost)
	if err != nil {
		return nil, fmt.Errorf("loading index template: %w", err)
	}
	app.Handle(http.MethodGet, "", "/", ig.handler)

	return app, nil
}
