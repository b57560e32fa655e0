package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nunnai/marketmentor/internal/db"
	"github.com/nunnai/marketmentor/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List or prune the backend's question log",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().String("route", "", "Only show questions with this route (keyword, model, rejected, error)")
	historyCmd.Flags().Int("limit", 20, "Maximum number of questions to show")
	historyCmd.Flags().Duration("prune", 0, "Delete questions older than this instead of listing")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Server.HistoryDB == "" {
		return fmt.Errorf("server.history_db is not set; the question log is disabled")
	}
	if _, err := os.Stat(cfg.Server.HistoryDB); err != nil {
		return fmt.Errorf("opening question log: %w", err)
	}

	database, err := db.Open(cfg.Server.HistoryDB)
	if err != nil {
		return err
	}
	defer database.Close()
	store := history.NewStore(database)
	ctx := context.Background()

	if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
		n, err := store.DeleteBefore(ctx, time.Now().Add(-prune))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d questions older than %s\n", n, prune)
		return nil
	}

	route, _ := cmd.Flags().GetString("route")
	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.Query(ctx, history.QueryFilter{Route: route, Limit: limit})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No questions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ASKED\tCHANNEL\tROUTE\tDURATION\tQUESTION")
	for _, e := range entries {
		route := e.Route
		if e.Failed {
			route += " (failed)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.AskedAt.Local().Format(time.DateTime),
			e.Channel,
			route,
			e.Duration.Round(time.Millisecond),
			truncate(e.Question, 60),
		)
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
