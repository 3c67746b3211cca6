package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/epiplan/app"
	"github.com/kilianp07/epiplan/config"
	"github.com/kilianp07/epiplan/core/solver"
	"github.com/kilianp07/epiplan/infra/store"
	"github.com/kilianp07/epiplan/pkg/export"
)

var solveFlags struct {
	gamma     float64
	horizon   int
	epsilon   float64
	maxDepth  int
	maxTrials int
	seed      uint64
	out       string
	rollout   int
}

var solveCmd = &cobra.Command{
	Use:       "solve [vi|lrtdp|simulator]",
	Short:     "Solve the epidemic control problem and store the policy",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{config.AlgorithmVI, config.AlgorithmLRTDP, config.AlgorithmSimulator},
	RunE:      runSolve,
}

func init() {
	f := solveCmd.Flags()
	f.Float64Var(&solveFlags.gamma, "gamma", 0, "discount factor")
	f.IntVar(&solveFlags.horizon, "horizon", 0, "value iteration horizon")
	f.Float64Var(&solveFlags.epsilon, "epsilon", 0, "LRTDP convergence threshold")
	f.IntVar(&solveFlags.maxDepth, "max-depth", 0, "LRTDP trial depth")
	f.IntVar(&solveFlags.maxTrials, "max-trials", 0, "LRTDP trial bound")
	f.Uint64Var(&solveFlags.seed, "seed", 0, "LRTDP random seed")
	f.StringVarP(&solveFlags.out, "out", "o", "", "export policy and values to a .json, .yaml or .csv file")
	f.IntVar(&solveFlags.rollout, "rollout", 0, "follow the solved SIR policy for this many steps")
	rootCmd.AddCommand(solveCmd)
}

// applySolveFlags copies the flags set on the command line into cfg.
func applySolveFlags(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) == 1 {
		cfg.Solver.Algorithm = args[0]
	}
	f := cmd.Flags()
	if f.Changed("gamma") {
		cfg.Solver.Gamma = solveFlags.gamma
	}
	if f.Changed("horizon") {
		cfg.Solver.Horizon = solveFlags.horizon
	}
	if f.Changed("epsilon") {
		cfg.Solver.Epsilon = solveFlags.epsilon
	}
	if f.Changed("max-depth") {
		cfg.Solver.MaxDepth = solveFlags.maxDepth
	}
	if f.Changed("max-trials") {
		cfg.Solver.MaxTrials = solveFlags.maxTrials
	}
	if f.Changed("seed") {
		seed := solveFlags.seed
		cfg.Solver.Seed = &seed
	}
	return cfg.Validate()
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applySolveFlags(cmd, cfg, args); err != nil {
		return err
	}
	return withService(cfg, func(svc *app.Service) error {
		rec, err := svc.Solve(ctx, "")
		if err != nil && !errors.Is(err, solver.ErrTrialLimit) {
			return err
		}
		w := cmd.OutOrStdout()
		printRecord(w, rec)
		if solveFlags.out != "" {
			if err := exportRecord(solveFlags.out, rec); err != nil {
				return err
			}
			fmt.Fprintf(w, "exported to %s\n", solveFlags.out)
		}
		if solveFlags.rollout > 0 {
			tr, rerr := svc.Rollout(rec, "", solveFlags.rollout)
			if rerr != nil {
				return rerr
			}
			for k, s := range tr.States {
				fmt.Fprintf(w, "%3d  %s", k, s)
				if k < len(tr.Actions) {
					fmt.Fprintf(w, "  beta=%s", tr.Actions[k])
				}
				fmt.Fprintln(w)
			}
		}
		return nil
	})
}

func printRecord(w io.Writer, rec store.Record) {
	fmt.Fprintf(w, "run %s (%s)\n", rec.ID, rec.Algorithm)
	fmt.Fprintf(w, "  iterations: %d\n", rec.Statistics.Iterations)
	fmt.Fprintf(w, "  backups:    %d\n", rec.Statistics.BellmanBackupsDone)
	fmt.Fprintf(w, "  states:     %d\n", len(rec.Policy))
	fmt.Fprintf(w, "  duration:   %s\n", rec.Duration)
	if rec.Error != "" {
		fmt.Fprintf(w, "  warning:    %s\n", rec.Error)
	}
	if s := rec.Parameters.InitialState; s != "" {
		if a, ok := rec.Policy.Lookup(s); ok {
			fmt.Fprintf(w, "  %s -> %s (value %.4f)\n", s, a, rec.Values.Get(s))
		}
	}
}

func exportRecord(path string, rec store.Record) error {
	format, err := export.FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, format, export.Entries(rec.Policy, rec.Values)); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
