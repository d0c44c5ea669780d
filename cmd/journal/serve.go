package main

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/api"
	"github.com/pbaille/journal/internal/classifier"
	"github.com/pbaille/journal/internal/embedding"
)

func (a *app) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}

			opts := []api.Option{
				api.WithLogger(a.logger),
				api.WithEmbedder(embedding.New(a.cfg.Embedding)),
			}
			if !embedding.HasRemoteKey(a.cfg.Embedding) {
				a.logger.Info("no embedding api key, using local embeddings")
			}
			if clf, err := classifier.New(a.cfg.Classifier); err == nil {
				opts = append(opts, api.WithClassifier(clf))
			} else {
				a.logger.Info("classification disabled", zap.Error(err))
			}

			err = api.New(s, addr, opts...).Run(cmd.Context())
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "server address (overrides config)")
	return cmd
}
