package cli

import (
	"log/slog"
	"time"

	"github.com/happyhackingspace/percept"
	"github.com/spf13/cobra"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var dataPath string
	var iterations, numClasses, maxCells int
	var noAverage, conjunctions bool

	cmd := &cobra.Command{
		Use:   "train <modelfile>",
		Short: "Train a model on an imported corpus",
		Args:  cobra.ExactArgs(1),
		Example: `  percept train model.json --data corpus.db
  percept train model.json --data corpus.db --iterations 10 --conjunctions
  percept train model.json -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			modelPath := args[0]
			if dataPath == "" {
				dataPath = c.cfg.DataPath
			}
			if !cmd.Flags().Changed("iterations") {
				iterations = c.cfg.Iterations
			}

			slog.Info("Training model", "data", dataPath, "output", modelPath, "iterations", iterations)
			start := time.Now()
			tagger, err := percept.Train(dataPath, &percept.TrainConfig{
				Iterations:   iterations,
				NumClasses:   numClasses,
				MaxCells:     maxCells,
				Averaged:     !noAverage,
				Conjunctions: conjunctions,
				Verbose:      c.verbose,
			})
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start), "cells", tagger.Cells())
			if err := tagger.Save(modelPath); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath, "classes", tagger.NumClasses())
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Path to corpus database")
	cmd.Flags().IntVar(&iterations, "iterations", 5, "Number of training passes")
	cmd.Flags().IntVar(&numClasses, "classes", 0, "Number of classes (0 = infer from corpus)")
	cmd.Flags().IntVar(&maxCells, "max-cells", 0, "Maximum number of weight cells (0 = unbounded)")
	cmd.Flags().BoolVar(&noAverage, "no-average", false, "Keep raw final weights instead of averaged weights")
	cmd.Flags().BoolVar(&conjunctions, "conjunctions", false, "Expand instances with pairwise conjunction features")
	return cmd
}
