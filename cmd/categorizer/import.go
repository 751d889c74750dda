package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/despesalab/categorizer/internal/config"
	"github.com/despesalab/categorizer/internal/dataset"
	"github.com/despesalab/categorizer/internal/storage"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import labeled expenses into the local database",
		Long: `Import a CSV of labeled expenses (columns name, amount_cents,
category_id) into the local database for 'categorizer train --db'.
Rows with missing or non-numeric values are dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	raw, err := dataset.LoadCSV(config.ExpandPath(args[0]))
	if err != nil {
		return err
	}
	rows := dataset.Clean(raw)
	if len(rows) == 0 {
		return fmt.Errorf("no usable rows in %s", args[0])
	}

	dbPath := config.ExpandPath(viper.GetString("database.path"))
	db, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("failed to run migrations: %w", migrateErr)
	}

	if err := db.InsertLabeled(ctx, rows); err != nil {
		return fmt.Errorf("failed to import expenses: %w", err)
	}

	total, err := db.Count(ctx)
	if err != nil {
		return err
	}

	slog.Info("Import complete",
		"imported", len(rows),
		"dropped", len(raw)-len(rows),
		"total_in_db", total,
		"database", dbPath)
	return nil
}
