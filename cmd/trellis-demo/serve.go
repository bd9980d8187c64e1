package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/trellis-web/trellis/internal/config"
	"github.com/trellis-web/trellis/pkg/middleware"
	"github.com/trellis-web/trellis/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		configFile  string
		unixSocket  string
		certFile    string
		keyFile     string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the demo server",
		Long: `Start the demo server. Flags override trellis.json; with neither,
built-in defaults apply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fileCfg := &config.Config{}
			if configFile != "" {
				loaded, err := config.LoadFile(configFile)
				if err != nil {
					return err
				}
				fileCfg = loaded
			} else if loaded, err := config.Load("."); err == nil {
				fileCfg = loaded
			}

			serverCfg, err := fileCfg.ServerConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				serverCfg.Address = addr
			}
			if unixSocket == "" {
				unixSocket = fileCfg.UnixSocket
			}
			if certFile == "" {
				certFile = fileCfg.TLS.CertFile
				keyFile = fileCfg.TLS.KeyFile
			}
			if metricsAddr == "" {
				metricsAddr = fileCfg.MetricsAddress
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: fileCfg.Level(),
			}))
			serverCfg.Logger = logger.With("component", "dispatcher")

			serverCfg.Recorders = []server.Recorder{
				middleware.AccessLog(logger),
			}
			if metricsAddr != "" {
				serverCfg.Recorders = append(serverCfg.Recorders, middleware.Prometheus())
				go func() {
					mux := http.NewServeMux()
					mux.Handle("/metrics", promhttp.Handler())
					logger.Info("metrics listening", "address", metricsAddr)
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						logger.Error("metrics server failed", "error", err)
					}
				}()
			}

			app, err := buildApp(serverCfg)
			if err != nil {
				return err
			}

			switch {
			case unixSocket != "":
				return app.ServeUnix(unixSocket)
			case certFile != "":
				if keyFile == "" {
					return fmt.Errorf("--tls-cert requires --tls-key")
				}
				return app.ServeTLS(certFile, keyFile)
			default:
				return app.Serve()
			}
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "TCP listen address (default from trellis.json or :8080)")
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to trellis.json")
	cmd.Flags().StringVar(&unixSocket, "unix-socket", "", "Serve on a Unix domain socket instead of TCP")
	cmd.Flags().StringVar(&certFile, "tls-cert", "", "TLS certificate file")
	cmd.Flags().StringVar(&keyFile, "tls-key", "", "TLS key file")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address")

	return cmd
}

func routesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the demo route table",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp(server.DefaultConfig())
			if err != nil {
				return err
			}
			for _, route := range app.Table().All() {
				fmt.Printf("%-8s %s\n", route.Method, route.Pattern.String())
			}
			return nil
		},
	}
}
