package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/happyhackingspace/percept/internal/storage"
	"github.com/spf13/cobra"
)

func (c *CLI) newDataCommand() *cobra.Command {
	dataCmd := &cobra.Command{
		Use:   "data",
		Short: "Manage the corpus database",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	var importDataPath string
	importCmd := &cobra.Command{
		Use:   "import <file.jsonl>",
		Short: "Import JSONL instances into the corpus database",
		Args:  cobra.ExactArgs(1),
		Example: `  percept data import instances.jsonl
  percept data import instances.jsonl --data corpus.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if importDataPath == "" {
				importDataPath = c.cfg.DataPath
			}
			return dataImport(args[0], importDataPath)
		},
	}
	importCmd.Flags().StringVar(&importDataPath, "data", "", "Path to corpus database")

	var statsDataPath string
	statsCmd := &cobra.Command{
		Use:     "stats",
		Short:   "Print corpus size and label distribution",
		Example: `  percept data stats --data corpus.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if statsDataPath == "" {
				statsDataPath = c.cfg.DataPath
			}
			return dataStats(statsDataPath)
		},
	}
	statsCmd.Flags().StringVar(&statsDataPath, "data", "", "Path to corpus database")

	dataCmd.AddCommand(importCmd, statsCmd)
	return dataCmd
}

func dataImport(srcPath, dataPath string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", srcPath, err)
	}
	defer func() { _ = f.Close() }()

	store, err := storage.Open(dataPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := store.ImportJSONL(f)
	if err != nil {
		return fmt.Errorf("import %s: %w", srcPath, err)
	}
	slog.Info("Instances imported", "count", n, "corpus", dataPath)
	return nil
}

func dataStats(dataPath string) error {
	store, err := storage.Open(dataPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	total, err := store.Count()
	if err != nil {
		return err
	}
	counts, err := store.LabelCounts()
	if err != nil {
		return err
	}

	fmt.Printf("Instances: %d\n", total)
	for label := 0; ; label++ {
		n, ok := counts[label]
		if !ok {
			if label > maxLabel(counts) {
				break
			}
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = float64(n) / float64(total) * 100
		}
		fmt.Printf("  label %d: %d (%.1f%%)\n", label, n, pct)
	}
	return nil
}

func maxLabel(counts map[int]int) int {
	max := -1
	for label := range counts {
		if label > max {
			max = label
		}
	}
	return max
}
