package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/powledger/app/services/viewer/handlers"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Index(t *testing.T) {
	t.Log("Given the need to serve the viewer page.")
	{
		app, err := handlers.UIMux(make(chan os.Signal, 1), zaptest.NewLogger(t).Sugar(), "http://localhost:8080")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Header().Get("Content-Type"), "text/html")
		require.Contains(t, w.Body.String(), "ws://localhost:8080/v1/events")
		require.Contains(t, w.Body.String(), "http://localhost:8080/v1")
		t.Logf("\t%s\tShould point the page at the node.", success)
	}

	t.Log("Given a node host over https.")
	{
		app, err := handlers.UIMux(make(chan os.Signal, 1), zaptest.NewLogger(t).Sugar(), "https://ledger.example.com")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "wss://ledger.example.com/v1/events")
		t.Logf("\t%s\tShould use a secure websocket.", success)
	}

	t.Log("Given a node host without a scheme.")
	{
		_, err := handlers.UIMux(make(chan os.Signal, 1), zaptest.NewLogger(t).Sugar(), "localhost")
		if err == nil {
			t.Fatalf("\t%s\tShould reject a host that can't be parsed into a url.", failed)
		}
		t.Logf("\t%s\tShould reject a host that can't be parsed into a url.", success)
	}
}
