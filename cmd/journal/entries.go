package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/journal/internal/analysis"
	"github.com/pbaille/journal/internal/classifier"
	"github.com/pbaille/journal/internal/domain"
	"github.com/pbaille/journal/internal/embedding"
	"github.com/pbaille/journal/internal/fetcher"
	"github.com/pbaille/journal/internal/sample"
	"github.com/pbaille/journal/internal/store"
)

func (a *app) addCmd() *cobra.Command {
	var (
		noClassify bool
		fromURL    string
		userID     string
		tags       []string
		score      float64
	)

	cmd := &cobra.Command{
		Use:   "add [transcript]",
		Short: "Add a new entry",
		Args: func(cmd *cobra.Command, args []string) error {
			if fromURL == "" && len(args) == 0 {
				return errors.New("requires a transcript or --url")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			transcript := strings.Join(args, " ")
			if fromURL != "" {
				text, err := fetcher.New().Fetch(ctx, fromURL)
				if err != nil {
					return fmt.Errorf("fetch transcript: %w", err)
				}
				transcript = text
			}

			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			in := store.NewEntry{UserID: userID, TranscriptRaw: transcript, TagsUser: tags}
			if cmd.Flags().Changed("score") {
				in.EmotionScore = &score
			}

			entry, err := s.AddEntry(in)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Added entry: %s\n", shortID(entry.ID))
			fmt.Fprintf(out, "Transcript: %s\n", truncate(entry.TranscriptUser, 80))

			emb := embedding.New(a.cfg.Embedding)
			if vector, err := emb.Embed(ctx, entry.TranscriptUser); err != nil {
				a.logger.Warn("embedding skipped", zap.Error(err))
			} else if err := s.SaveEmbedding(entry.ID, vector, emb.Model()); err != nil {
				a.logger.Warn("save embedding failed", zap.Error(err))
			}

			if noClassify {
				fmt.Fprintln(out, "(skipped classification)")
				return nil
			}

			clf, err := classifier.New(a.cfg.Classifier)
			if err != nil {
				fmt.Fprintf(out, "(classification skipped: %v)\n", err)
				return nil
			}

			all, err := s.AllEntries()
			if err != nil {
				return err
			}
			existing := analysis.CountTags(all)
			known := make([]string, 0, len(existing))
			for tag := range existing {
				known = append(known, tag)
			}
			sort.Strings(known)

			fmt.Fprint(out, "Classifying... ")
			result, err := clf.Classify(ctx, entry.TranscriptUser, known)
			if err != nil {
				fmt.Fprintf(out, "failed: %v\n", err)
				return nil
			}
			fmt.Fprintln(out, "done")

			var category *string
			if result.Category != "" {
				category = &result.Category
			}
			if err := s.SetModelTags(entry.ID, result.Tags, category); err != nil {
				return err
			}
			for _, tag := range result.Tags {
				fmt.Fprintf(out, "  + %s\n", tag)
			}
			if category != nil {
				fmt.Fprintf(out, "  category: %s\n", *category)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noClassify, "no-classify", false, "skip automatic classification")
	cmd.Flags().StringVar(&fromURL, "url", "", "fetch the transcript from a URL")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "owning user id")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "user tag (repeatable)")
	cmd.Flags().Float64Var(&score, "score", 0, "emotion score in [-1, 1]")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.ListEntries(limit, 0)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entries yet. Use 'journal add' or 'journal seed' to create some.")
				return nil
			}

			printEntries(cmd, entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show entry details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.ResolveID(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}

			entry, err := s.GetEntry(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", entry.ID)
			fmt.Fprintf(out, "User:    %s\n", entry.UserID)
			fmt.Fprintf(out, "Created: %s\n", entry.CreatedAt.Format("2006-01-02 15:04:05"))
			if entry.EmotionScore != nil {
				fmt.Fprintf(out, "Score:   %.2f\n", *entry.EmotionScore)
			}
			if entry.Category != nil {
				fmt.Fprintf(out, "Category: %s\n", *entry.Category)
			}
			fmt.Fprintf(out, "Transcript:\n%s\n", entry.TranscriptUser)

			if len(entry.TagsUser)+len(entry.TagsModel) > 0 {
				fmt.Fprintf(out, "\nTags:\n")
				for _, t := range entry.TagsUser {
					fmt.Fprintf(out, "  - %s\n", t)
				}
				for _, t := range entry.TagsModel {
					fmt.Fprintf(out, "  - %s (model)\n", t)
				}
			}

			return nil
		},
	}
}

func (a *app) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.SearchEntries(args[0])
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching entries found.")
				return nil
			}

			printEntries(cmd, entries)
			return nil
		},
	}
}

func (a *app) similarCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "similar [id]",
		Short: "List entries similar to an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.ResolveID(args[0])
			if err != nil {
				return fmt.Errorf("%w: %s", err, args[0])
			}
			entry, err := s.GetEntry(id)
			if err != nil {
				return err
			}

			vector := entry.Embedding
			if len(vector) == 0 {
				emb := embedding.New(a.cfg.Embedding)
				if vector, err = emb.Embed(cmd.Context(), entry.TranscriptUser); err != nil {
					return fmt.Errorf("embed entry: %w", err)
				}
				if err := s.SaveEmbedding(entry.ID, vector, emb.Model()); err != nil {
					return err
				}
			}

			similar, err := s.FindSimilar(vector, k, entry.ID)
			if err != nil {
				return err
			}
			if len(similar) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No similar entries found.")
				return nil
			}
			for _, sim := range similar {
				fmt.Fprintf(cmd.OutOrStdout(), "%.3f  %s  %s\n", sim.Score, shortID(sim.Entry.ID), truncate(sim.Entry.TranscriptUser, 60))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&k, "limit", "n", 5, "number of entries to show")
	return cmd
}

func (a *app) tagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List tags by frequency",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries, err := s.AllEntries()
			if err != nil {
				return err
			}

			freq := analysis.CountTags(entries)
			if len(freq) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tags yet.")
				return nil
			}

			tags := make([]string, 0, len(freq))
			for tag := range freq {
				tags = append(tags, tag)
			}
			sort.Slice(tags, func(i, j int) bool {
				if freq[tags[i]] != freq[tags[j]] {
					return freq[tags[i]] > freq[tags[j]]
				}
				return tags[i] < tags[j]
			})
			for _, tag := range tags {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", freq[tag], tag)
			}
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.getStore()
			if err != nil {
				return err
			}
			defer s.Close()

			entries := sample.Entries()
			for _, e := range entries {
				if err := s.ImportEntry(e); err != nil {
					return err
				}
			}
			a.logger.Debug("seeded sample entries", zap.Int("count", len(entries)))
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d sample entries.\n", len(entries))
			return nil
		},
	}
}

func printEntries(cmd *cobra.Command, entries []domain.Entry) {
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", shortID(e.ID), truncate(e.TranscriptUser, 60))
	}
}
