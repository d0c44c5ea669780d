package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbaille/journal/internal/analysis"
	"github.com/pbaille/journal/internal/domain"
)

func (a *app) analyzeCmd() *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Extract tasks and perspectives from entries",
		Long: `Analyze stored entries, oldest first, or the JSON array of entries in --file
("-" reads stdin). Prints a summary with the extracted tasks and perspectives.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				entries []domain.Entry
				err     error
			)
			if file != "" {
				entries, err = readEntries(cmd, file)
			} else {
				entries, err = a.storedEntries()
			}
			if err != nil {
				return err
			}

			result := analysis.ProcessEntries(entries)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			printResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file of entries to analyze instead of the database")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func (a *app) storedEntries() ([]domain.Entry, error) {
	s, err := a.getStore()
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.AllEntries()
}

func readEntries(cmd *cobra.Command, path string) ([]domain.Entry, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open entries file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var entries []domain.Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

func printResult(w io.Writer, result domain.ProcessedResult) {
	fmt.Fprintln(w, result.Summary)

	if len(result.Tasks) > 0 {
		fmt.Fprintf(w, "\nTasks:\n")
		for _, t := range result.Tasks {
			line := fmt.Sprintf("  [%s] %s", shortID(t.SourceEntryID), t.Text)
			if t.DueDate != nil {
				line += fmt.Sprintf(" (due: %s)", *t.DueDate)
			}
			if t.Category != nil {
				line += fmt.Sprintf(" #%s", *t.Category)
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(result.Perspectives) > 0 {
		fmt.Fprintf(w, "\nPerspectives:\n")
		for _, p := range result.Perspectives {
			score := "-"
			if p.EmotionScore != nil {
				score = fmt.Sprintf("%.2f", *p.EmotionScore)
			}
			fmt.Fprintf(w, "  [%s] %-9s %5s  %s\n", shortID(p.SourceEntryID), p.Type, score, truncate(p.Text, 70))
		}
	}
}
