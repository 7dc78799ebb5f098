package handlers

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
)

//go:embed views
var views embed.FS

type index struct {
	tmpl   *template.Template
	events string
	api    string
}

func newIndex(nodeHost string) (index, error) {
	u, err := url.Parse(nodeHost)
	if err != nil {
		return index{}, fmt.Errorf("parsing node host %q: %w", nodeHost, err)
	}

	if u.Host == "" {
		return index{}, fmt.Errorf("node host %q is missing a host", nodeHost)
	}

	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}

	tmpl, err := template.ParseFS(views, "views/index.html")
	if err != nil {
		return index{}, err
	}

	ig := index{
		tmpl:   tmpl,
		events: fmt.Sprintf("%s://%s/v1/events", scheme, u.Host),
		api:    fmt.Sprintf("%s://%s/v1", u.Scheme, u.Host),
	}

	return ig, nil
}

func (ig index) handler(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	data := struct {
		Events string
		API    string
	}{
		Events: ig.events,
		API:    ig.api,
	}

	var buf bytes.Buffer
	if err := ig.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing index template: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	return nil
}
