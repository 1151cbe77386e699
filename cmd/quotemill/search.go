package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quotemill/quotemill/config"
	"github.com/quotemill/quotemill/internal/search"
	"github.com/quotemill/quotemill/internal/store"
)

func searchCMD() *cobra.Command {
	var cfgPath string
	var lang string
	var limit int
	var indexPath string

	var cmd = &cobra.Command{
		Use:   "search <query>",
		Short: "Search persisted quotations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()

			st, err := store.New(ctx, cfg.Storage.Postgres.DSN())
			if err != nil {
				return err
			}
			defer st.Close()

			idx, err := search.Open(indexPath)
			if err != nil {
				return err
			}
			defer idx.Close()

			if _, err := idx.Build(ctx, st); err != nil {
				return fmt.Errorf("build index: %w", err)
			}

			hits, err := idx.Query(strings.Join(args, " "), lang, limit)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			for _, h := range hits {
				if h.Author != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "%s — %s (%s)\n", h.Text, h.Author, h.Lang)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", h.Text, h.Lang)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "restrict to one original language (en, ru)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	cmd.Flags().StringVar(&indexPath, "index", "", "index directory; empty rebuilds in memory")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is ./config/config.yaml)")

	return cmd
}
