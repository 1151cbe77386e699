package main

import (
	"context"
	"log"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/quotemill/quotemill/config"
	"github.com/quotemill/quotemill/internal/server"
	"github.com/quotemill/quotemill/internal/store"
)

func serveCMD() *cobra.Command {
	var serveAddr string
	var cfgPath string

	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the ops HTTP server (health, stats, metrics)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			st, err := store.New(context.Background(), cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}
			defer st.Close()

			if serveAddr == "" {
				serveAddr = cfg.Server.Address
			}
			logger := log.New(os.Stdout, "[HTTP] ", log.LstdFlags)
			registry, ok := prometheus.DefaultRegisterer.(*prometheus.Registry)
			if !ok {
				registry = prometheus.NewRegistry()
			}
			return server.New(st, registry, logger).Start(serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.yaml)")

	return serve
}
