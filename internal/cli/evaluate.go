package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/happyhackingspace/percept"
	"github.com/spf13/cobra"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var dataPath string
	var cvFolds int
	var conjunctions bool

	cmd := &cobra.Command{
		Use:     "evaluate",
		Short:   "Evaluate model accuracy via cross-validation",
		Example: `  percept evaluate --data corpus.db --cv 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath == "" {
				dataPath = c.cfg.DataPath
			}
			slog.Info("Evaluating", "folds", cvFolds, "data", dataPath)
			start := time.Now()
			trainCfg := percept.DefaultTrainConfig()
			trainCfg.Iterations = c.cfg.Iterations
			trainCfg.Conjunctions = conjunctions
			result, err := percept.Evaluate(dataPath, &percept.EvalConfig{
				Folds: cvFolds,
				Train: trainCfg,
			})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			fmt.Printf("Accuracy: %.1f%% (%d/%d)\n",
				result.Accuracy*100, result.Correct, result.Total)
			printConfusionMatrix(result.Confusion)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Path to corpus database")
	cmd.Flags().IntVar(&cvFolds, "cv", 10, "Number of cross-validation folds")
	cmd.Flags().BoolVar(&conjunctions, "conjunctions", false, "Expand instances with pairwise conjunction features")
	return cmd
}

func printConfusionMatrix(confusion [][]int) {
	if len(confusion) == 0 {
		return
	}

	fmt.Printf("\nConfusion matrix (rows=true, cols=predicted):\n")
	fmt.Printf("%6s", "")
	for c := range confusion {
		fmt.Printf(" %5d", c)
	}
	fmt.Printf("  total  acc%%\n")

	for trueClass, row := range confusion {
		fmt.Printf("%6d", trueClass)
		total := 0
		for predClass, count := range row {
			total += count
			if count == 0 && predClass != trueClass {
				fmt.Printf(" %5s", ".")
			} else {
				fmt.Printf(" %5d", count)
			}
		}
		acc := 0.0
		if total > 0 {
			acc = float64(row[trueClass]) / float64(total) * 100
		}
		fmt.Printf("  %5d %5.1f\n", total, acc)
	}
}
