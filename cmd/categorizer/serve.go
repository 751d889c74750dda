package main

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/despesalab/categorizer/internal/config"
	"github.com/despesalab/categorizer/internal/pipeline"
	"github.com/despesalab/categorizer/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long: `Load the persisted model once and serve predictions until interrupted.

The canonical model artifact is loaded from the configured model
directory at startup; a model update requires a restart. If the
artifact is missing the service refuses to start.`,
		RunE: runServe,
	}

	// Flags
	cmd.Flags().String("addr", "", "listen address (default from config)")
	cmd.Flags().String("model-dir", "", "directory with persisted models")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	modelDir := viper.GetString("model.dir")
	if flagDir, _ := cmd.Flags().GetString("model-dir"); flagDir != "" {
		modelDir = flagDir
	}
	modelPath := filepath.Join(config.ExpandPath(modelDir), pipeline.CanonicalName)

	// The model is loaded exactly once per process lifetime.
	pipe, err := pipeline.Load(modelPath)
	if err != nil {
		return err
	}
	slog.Info("Model loaded", "path", modelPath, "candidate", pipe.Name)

	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8000"
	}

	srv := server.New(pipe, version)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	slog.Info("Inference service stopped")
	return nil
}
