package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/happyhackingspace/percept"
	"github.com/happyhackingspace/percept/perceptron"
	"github.com/spf13/cobra"
)

// tagInput is one unlabeled instance read from a tag request.
type tagInput struct {
	Features []perceptron.Feature `json:"features,omitempty"`
	Attrs    map[string]any       `json:"attrs,omitempty"`
}

// tagOutput is one prediction written per input line.
type tagOutput struct {
	Class  perceptron.Class `json:"class"`
	Scores []float64        `json:"scores,omitempty"`
}

func (c *CLI) newTagCommand() *cobra.Command {
	var modelPath string
	var withScores bool

	cmd := &cobra.Command{
		Use:   "tag [file]",
		Short: "Classify JSONL instances from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Classify instances from a file
  percept tag instances.jsonl --model model.json

  # Pipe instances from stdin
  cat instances.jsonl | percept tag --model model.json

  # Include per-class scores in the output
  percept tag instances.jsonl --model model.json --scores`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = os.Stdin
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open input: %w", err)
				}
				defer func() { _ = f.Close() }()
				in = f
			} else if isStdinTerminal() {
				return cmd.Help()
			}

			start := time.Now()
			tagger, err := percept.Load(modelPath)
			if err != nil {
				return err
			}
			slog.Debug("Model loaded", "path", modelPath, "classes", tagger.NumClasses(),
				"cells", tagger.Cells(), "duration", time.Since(start))

			enc := json.NewEncoder(os.Stdout)
			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
			line := 0
			for scanner.Scan() {
				line++
				raw := scanner.Bytes()
				if len(raw) == 0 {
					continue
				}
				var inst tagInput
				if err := json.Unmarshal(raw, &inst); err != nil {
					return fmt.Errorf("line %d: %w", line, err)
				}
				features := inst.Features
				if len(features) == 0 {
					features = perceptron.Featurize(inst.Attrs)
				}

				scores := tagger.Scores(features)
				out := tagOutput{Class: perceptron.Decide(scores)}
				if withScores {
					out.Scores = scores
				}
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "model.json", "Path to model file")
	cmd.Flags().BoolVar(&withScores, "scores", false, "Include per-class scores")
	return cmd
}

func isStdinTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
