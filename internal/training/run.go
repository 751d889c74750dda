package training

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"github.com/despesalab/categorizer/internal/common"
	"github.com/despesalab/categorizer/internal/dataset"
	"github.com/despesalab/categorizer/internal/expense"
	"github.com/despesalab/categorizer/internal/pipeline"
)

// Config carries a training run's settings.
type Config struct {
	ModelDir    string
	Seed        int64
	ValFraction float64
	Caps        Capabilities
}

// Run executes the full offline flow on cleaned rows: stratified
// split, fit and score every candidate, print the comparison, persist
// the winner under its own name and the canonical name. It returns the
// winning result.
func Run(ctx context.Context, rows []expense.Labeled, cfg Config) (EvaluationResult, error) {
	if len(rows) == 0 {
		return EvaluationResult{}, common.ErrEmptyDataset
	}

	split, err := dataset.StratifiedSplit(rows, cfg.ValFraction, cfg.Seed)
	if err != nil {
		return EvaluationResult{}, fmt.Errorf("failed to split dataset: %w", err)
	}
	slog.Info("Dataset split",
		"train", len(split.Train),
		"validation", len(split.Val),
		"seed", cfg.Seed)

	cands := Candidates(cfg.Caps, cfg.Seed)
	bar := progressbar.NewOptions(len(cands),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Training candidates...[reset]"),
	)

	results := make([]EvaluationResult, 0, len(cands))
	for _, cand := range cands {
		if err := ctx.Err(); err != nil {
			return EvaluationResult{}, err
		}

		result, err := Evaluate(cand, split)
		if err != nil {
			// A failing candidate is skipped, not fatal to the run.
			common.LogError(err, "Candidate failed, skipping", common.Fields{"candidate": cand.Name})
			_ = bar.Add(1)
			continue
		}

		slog.Info("Candidate evaluated",
			"candidate", result.Name,
			"accuracy", result.Accuracy,
			"f1_macro", result.F1Macro,
			"f1_weighted", result.F1Weighted,
			"duration", result.Duration)
		results = append(results, result)
		_ = bar.Add(1)
	}

	Report(os.Stdout, results)

	best, err := SelectBest(results)
	if err != nil {
		return EvaluationResult{}, err
	}

	namedPath := filepath.Join(cfg.ModelDir, pipeline.ArtifactName(best.Name))
	canonicalPath := filepath.Join(cfg.ModelDir, pipeline.CanonicalName)

	// Both writes must succeed; each is atomic on its own.
	if err := pipeline.Save(best.Pipeline, namedPath); err != nil {
		return EvaluationResult{}, fmt.Errorf("failed to persist winner: %w", err)
	}
	if err := pipeline.Save(best.Pipeline, canonicalPath); err != nil {
		return EvaluationResult{}, fmt.Errorf("failed to persist canonical model: %w", err)
	}

	common.LogInfo("Winning model persisted", common.Fields{
		"candidate": best.Name,
		"path":      namedPath,
		"canonical": canonicalPath,
	})

	return best, nil
}
