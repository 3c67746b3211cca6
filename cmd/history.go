package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epiplan/app"
	"github.com/kilianp07/epiplan/infra/store"
)

var historyFlags struct {
	id        string
	algorithm string
	since     time.Duration
	limit     int
	out       string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored solver runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.StringVar(&historyFlags.id, "id", "", "only the run with this id")
	f.StringVar(&historyFlags.algorithm, "algorithm", "", "only runs of this algorithm")
	f.DurationVar(&historyFlags.since, "since", 0, "only runs younger than this")
	f.IntVar(&historyFlags.limit, "limit", 20, "keep the most recent runs")
	f.StringVarP(&historyFlags.out, "out", "o", "", "export the most recent matching run to a .json, .yaml or .csv file")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	q := store.Query{ID: historyFlags.id, Algorithm: historyFlags.algorithm, Limit: historyFlags.limit}
	if historyFlags.since > 0 {
		q.Since = time.Now().Add(-historyFlags.since)
	}
	return withService(cfg, func(svc *app.Service) error {
		records, err := svc.History(context.Background(), q)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tALGORITHM\tCREATED\tITERATIONS\tBACKUPS\tSTATES\tDURATION\tERROR")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
				r.ID, r.Algorithm, r.CreatedAt.Format(time.RFC3339), r.Statistics.Iterations,
				r.Statistics.BellmanBackupsDone, len(r.Policy), r.Duration.Round(time.Millisecond), r.Error)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		if historyFlags.out == "" {
			return nil
		}
		if len(records) == 0 {
			return fmt.Errorf("no run to export")
		}
		return exportRecord(historyFlags.out, records[len(records)-1])
	})
}
