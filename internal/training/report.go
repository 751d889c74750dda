package training

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/despesalab/categorizer/internal/cli"
	"github.com/despesalab/categorizer/internal/common"
)

// SelectBest ranks results and returns the winner. The tie-break is
// deterministic: highest accuracy, then highest macro-F1, then the
// lexicographically smaller name.
func SelectBest(results []EvaluationResult) (EvaluationResult, error) {
	if len(results) == 0 {
		return EvaluationResult{}, common.ErrNoCandidates
	}
	ranked := rank(results)
	return ranked[0], nil
}

func rank(results []EvaluationResult) []EvaluationResult {
	ranked := make([]EvaluationResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(a, b int) bool {
		if ranked[a].Accuracy != ranked[b].Accuracy {
			return ranked[a].Accuracy > ranked[b].Accuracy
		}
		if ranked[a].F1Macro != ranked[b].F1Macro {
			return ranked[a].F1Macro > ranked[b].F1Macro
		}
		return ranked[a].Name < ranked[b].Name
	})
	return ranked
}

// Report writes the accuracy-ranked comparison table and the winner
// callout.
func Report(w io.Writer, results []EvaluationResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, cli.ErrorStyle.Render("No candidate finished training."))
		return
	}

	ranked := rank(results)

	fmt.Fprintln(w, cli.TitleStyle.Render("Model comparison"))
	fmt.Fprintln(w, cli.HeaderStyle.Render(fmt.Sprintf("%-26s %-10s %-12s %-14s %-10s",
		"Model", "Accuracy", "F1 (macro)", "F1 (weighted)", "Time")))
	fmt.Fprintln(w, cli.SubtleStyle.Render(strings.Repeat("-", 74)))

	for _, r := range ranked {
		line := fmt.Sprintf("%-26s %-10.4f %-12.4f %-14.4f %-10s",
			r.Name, r.Accuracy, r.F1Macro, r.F1Weighted, r.Duration.Round(10*time.Millisecond))
		if r.Name == ranked[0].Name {
			line = cli.WinnerStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, cli.SuccessStyle.Render(fmt.Sprintf("Best model: %s (accuracy %.4f)",
		ranked[0].Name, ranked[0].Accuracy)))
}
