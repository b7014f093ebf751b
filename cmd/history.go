package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/zjrosen/maskfield/internal/config"
	"github.com/zjrosen/maskfield/internal/infrastructure/sqlite"
	"github.com/zjrosen/maskfield/internal/submission"
)

var historyCmd = &cobra.Command{
	Use:   "history [guid]",
	Short: "List stored submissions",
	Long: `List submissions stored with --db (or store.path), newest first.
With a GUID, show that submission only.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("db", "", "SQLite file (default: store.path or ~/.config/maskfield/history.db)")
	historyCmd.Flags().IntP("limit", "n", 20, "number of submissions to show, 0 for all")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = v.GetString("store::path")
	}
	if path == "" {
		path = config.DefaultStorePath()
	}

	db, err := sqlite.NewDB(path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() { _ = db.Close() }()
	repo := db.SubmissionRepository()

	if len(args) == 1 {
		s, err := repo.FindByGUID(args[0])
		if err != nil {
			return err
		}
		printSubmissions(cmd.OutOrStdout(), []*submission.Submission{s})
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	subs, err := repo.List(limit)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No submissions stored.")
		return nil
	}
	printSubmissions(cmd.OutOrStdout(), subs)
	return nil
}

func printSubmissions(w io.Writer, subs []*submission.Submission) {
	header := color.New(color.Bold)
	dim := color.New(color.Faint)
	incomplete := color.New(color.FgYellow)

	for i, s := range subs {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = header.Fprintf(w, "%s", s.CreatedAt().Format("2006-01-02 15:04:05"))
		_, _ = dim.Fprintf(w, "  %s\n", s.GUID())
		for _, val := range s.Values() {
			_, _ = fmt.Fprintf(w, "  %s=%s", val.Name, val.Value)
			if val.Value != "" && !val.Complete {
				_, _ = incomplete.Fprint(w, "  (incomplete)")
			}
			_, _ = fmt.Fprintln(w)
		}
	}
}
