// Package main contains the categorizer CLI commands.
package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/despesalab/categorizer/internal/common"
	"github.com/despesalab/categorizer/internal/config"
	"github.com/despesalab/categorizer/internal/dataset"
	"github.com/despesalab/categorizer/internal/expense"
	"github.com/despesalab/categorizer/internal/storage"
	"github.com/despesalab/categorizer/internal/training"
)

func trainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and select the category classifier",
		Long: `Train every catalog candidate on the labeled expense data, compare them
on a held-out validation split, and persist the most accurate pipeline.

By default the training data is read from a CSV file with the columns
name, amount_cents and category_id. With --db the labeled expenses are
read from the local database instead (see 'categorizer import').

Examples:
  categorizer train                      # Train from the configured CSV
  categorizer train --data expenses.csv  # Train from a specific CSV
  categorizer train --db                 # Train from the local database`,
		RunE: runTrain,
	}

	// Flags
	cmd.Flags().StringP("data", "d", "", "CSV file with labeled expenses")
	cmd.Flags().Bool("db", false, "read training data from the local database")
	cmd.Flags().String("model-dir", "", "directory for persisted models")
	cmd.Flags().Int64("seed", 0, "random seed (0 = configured default)")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("training.from_db", cmd.Flags().Lookup("db"))

	return cmd
}

func runTrain(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	slog.Info("Starting training run")

	rows, err := loadTrainingRows(cmd)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: no usable rows in the training data", common.ErrEmptyDataset)
	}

	labelCounts := make(map[int]int)
	for _, r := range rows {
		labelCounts[r.CategoryID]++
	}
	singles := 0
	for _, n := range labelCounts {
		if n == 1 {
			singles++
		}
	}
	slog.Info("Training data ready",
		"rows", len(rows),
		"categories", len(labelCounts),
		"singleton_categories", singles)

	modelDir := viper.GetString("model.dir")
	if flagDir, _ := cmd.Flags().GetString("model-dir"); flagDir != "" {
		modelDir = flagDir
	}
	seed := viper.GetInt64("training.seed")
	if flagSeed, _ := cmd.Flags().GetInt64("seed"); flagSeed != 0 {
		seed = flagSeed
	}

	cfg := training.Config{
		ModelDir:    config.ExpandPath(modelDir),
		Seed:        seed,
		ValFraction: viper.GetFloat64("training.validation_split"),
		Caps: training.Capabilities{
			RegularizedBoosting: viper.GetBool("training.extra_boosters"),
			HistogramBoosting:   viper.GetBool("training.extra_boosters"),
		},
	}

	best, err := training.Run(ctx, rows, cfg)
	if err != nil {
		return fmt.Errorf("training run failed: %w", err)
	}

	slog.Info("Training complete", "best", best.Name, "accuracy", best.Accuracy)
	return nil
}

func loadTrainingRows(cmd *cobra.Command) ([]expense.Labeled, error) {
	if viper.GetBool("training.from_db") {
		dbPath := config.ExpandPath(viper.GetString("database.path"))
		db, err := storage.New(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("Failed to close database", "error", closeErr)
			}
		}()

		if migrateErr := db.Migrate(cmd.Context()); migrateErr != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", migrateErr)
		}

		rows, err := db.ListLabeled(cmd.Context())
		if err != nil {
			return nil, err
		}
		slog.Info("Loaded training data from database", "path", dbPath, "rows", len(rows))
		return rows, nil
	}

	dataPath := viper.GetString("training.data")
	if flagData, _ := cmd.Flags().GetString("data"); flagData != "" {
		dataPath = flagData
	}
	dataPath = config.ExpandPath(dataPath)

	raw, err := dataset.LoadCSV(dataPath)
	if err != nil {
		return nil, err
	}
	rows := dataset.Clean(raw)
	slog.Info("Loaded training data from CSV",
		"path", dataPath,
		"raw_rows", len(raw),
		"clean_rows", len(rows))
	return rows, nil
}
