package webtest

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/trellis-web/trellis/pkg/chain"
	"github.com/trellis-web/trellis/pkg/server"
)

func newTestApp(t *testing.T) *server.App[server.NoGlobal, chain.NoState] {
	t.Helper()
	return server.New[chain.NoState](&server.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestClientRoundTrip(t *testing.T) {
	app := newTestApp(t)

	err := app.Get("/greet/:name", func(ctx context.Context, ex *chain.Exchange[server.NoGlobal, chain.NoState]) error {
		ex.Resp = chain.Text(http.StatusOK, "hello "+ex.Params["name"])
		return nil
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	client := New(app)

	rr := client.Get("/greet/dixie")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != "hello dixie" {
		t.Fatalf("body = %q", got)
	}

	if rr := client.Get("/nope"); rr.Code != http.StatusNotFound {
		t.Fatalf("unmatched status = %d, want 404", rr.Code)
	}
}

func TestClientPostBody(t *testing.T) {
	app := newTestApp(t)

	err := app.Post("/upload", func(ctx context.Context, ex *chain.Exchange[server.NoGlobal, chain.NoState]) error {
		body, err := io.ReadAll(ex.Req.Body)
		if err != nil {
			return err
		}
		ex.Resp = chain.Text(http.StatusCreated, string(body))
		return nil
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	rr := New(app).PostString("/upload", "payload")
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != "payload" {
		t.Fatalf("body = %q", got)
	}
}

func TestClientWithHeaders(t *testing.T) {
	app := newTestApp(t)

	err := app.Get("/auth", func(ctx context.Context, ex *chain.Exchange[server.NoGlobal, chain.NoState]) error {
		if ex.Req.Header.Get("Authorization") != "Bearer token" {
			return chain.Status(http.StatusUnauthorized, "missing token")
		}
		ex.Resp = chain.Text(http.StatusOK, "in")
		return nil
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	plain := New(app)
	authed := plain.WithHeaders(http.Header{"Authorization": []string{"Bearer token"}})

	if rr := plain.Get("/auth"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bare client status = %d, want 401", rr.Code)
	}
	if rr := authed.Get("/auth"); rr.Code != http.StatusOK {
		t.Fatalf("authed client status = %d, want 200", rr.Code)
	}

	// WithHeaders must not mutate the receiver.
	if rr := plain.Get("/auth"); rr.Code != http.StatusUnauthorized {
		t.Fatal("WithHeaders leaked into the original client")
	}
}
