package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/born-ml/sentiment/internal/server"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var addr, modelPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a trained model over HTTP",
		Long:  "Serve POST /v1/predict, GET /v1/model and GET /healthz for a trained model.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("model") {
				cfg.Server.ModelPath = modelPath
			}

			model, tok, header, err := server.LoadModel(cfg.Server.ModelPath)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"model":      cfg.Server.ModelPath,
				"cell":       model.Config().CellType(),
				"parameters": model.NumParameters(),
				"tokenizer":  tok.Name(),
			}).Info("model loaded")

			srv := server.New(model, tok, header, server.Options{
				Threshold: cfg.Server.Threshold,
				MaxBatch:  cfg.Server.MaxBatch,
				MaxLen:    cfg.Data.MaxLen,
			}, log)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx, cfg.Server.Addr, cfg.Server.RequestTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model file (overrides server.model_path)")
	return cmd
}
