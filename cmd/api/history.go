package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	appanalysis "github.com/bryanwahyu/aidetect/internal/application/analysis"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent detection results",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.svc.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No detections yet.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tAI\tACTION\tPREVIEW")
		for _, r := range list {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%s\t%s\n",
				r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.AIProbability, r.SuggestedAction, oneLine(r.TextPreview, 60))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", appanalysis.DefaultHistoryLimit, "number of results (max 100)")
}

func oneLine(s string, n int) string {
	rs := []rune(s)
	for i, r := range rs {
		if r == '\n' || r == '\r' || r == '\t' {
			rs[i] = ' '
		}
	}
	if len(rs) > n {
		return string(rs[:n-3]) + "..."
	}
	return string(rs)
}
