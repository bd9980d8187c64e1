package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/trellis-web/trellis/pkg/chain"
	"github.com/trellis-web/trellis/pkg/server"
	"github.com/trellis-web/trellis/pkg/ws"
)

// visits is the demo's shared state: a hit counter behind the global
// state guard.
type visits struct {
	total int
}

type demoApp = server.App[visits, chain.NoState]
type demoExchange = chain.Exchange[visits, chain.NoState]

// buildApp registers the demo routes.
func buildApp(cfg *server.Config) (*demoApp, error) {
	app := server.NewWithState[visits, chain.NoState](visits{}, cfg)

	register := func(errs ...error) error {
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
		return nil
	}

	return app, register(
		app.Get("/", func(ctx context.Context, ex *demoExchange) error {
			ex.Resp = chain.Text(http.StatusOK, "hello from trellis\n")
			return nil
		}),

		app.Get("/healthz", func(ctx context.Context, ex *demoExchange) error {
			ex.Resp = chain.Text(http.StatusOK, "ok\n")
			return nil
		}),

		app.Get("/greet/:name", countVisit, func(ctx context.Context, ex *demoExchange) error {
			ex.Resp = chain.Text(http.StatusOK, fmt.Sprintf("hello, %s!\n", ex.Params["name"]))
			return nil
		}),

		app.Get("/files/*", func(ctx context.Context, ex *demoExchange) error {
			ex.Resp = chain.Text(http.StatusOK, "you asked for "+ex.Params["*"]+"\n")
			return nil
		}),

		app.Post("/echo", func(ctx context.Context, ex *demoExchange) error {
			body, err := io.ReadAll(ex.Req.Body)
			if err != nil {
				return err
			}
			ex.Resp = chain.NewResponse(http.StatusOK)
			ex.Resp.Body = body
			return nil
		}),

		app.Get("/visits", func(ctx context.Context, ex *demoExchange) error {
			var total int
			ex.Global.Do(func(v *visits) { total = v.total })
			ex.Resp = chain.Text(http.StatusOK, fmt.Sprintf("%d visits\n", total))
			return nil
		}),

		app.Get("/ws/echo", ws.Step(echoSocket, nil)),
	)
}

// countVisit is a chain step shared by routes that should bump the
// counter before their handler runs.
func countVisit(ctx context.Context, ex *demoExchange) error {
	ex.Global.Do(func(v *visits) { v.total++ })
	return nil
}

func echoSocket(ctx context.Context, ex *demoExchange, conn *websocket.Conn) error {
	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if ws.IsExpectedClose(err) {
				return nil
			}
			return err
		}
		if err := conn.WriteMessage(kind, msg); err != nil {
			return err
		}
	}
}
