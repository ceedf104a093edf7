package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kvarnsen/fmex/internal/config"
	"github.com/kvarnsen/fmex/internal/storage"
)

var (
	dataDir    string
	configFile string
	duration   float64
	points     int
	plotName   string
	setPairs   []string
	initPairs  []string
	strict     bool
	noPlot     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fmex",
		Short: "explorative simulation of dynamical models with run-to-run continuity",
		Run: func(cmd *cobra.Command, args []string) {
			printBanner()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".fmex", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fresh simulation from the current parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd, "init")
		},
	}
	contCmd := &cobra.Command{
		Use:   "cont",
		Short: "continue from the previous run's end state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return simulate(cmd, "cont")
		},
	}
	for _, c := range []*cobra.Command{runCmd, contCmd} {
		c.Flags().Float64Var(&duration, "time", 0, "simulation duration")
		c.Flags().IntVar(&points, "points", 0, "communication points per run")
		c.Flags().StringVar(&plotName, "plot", "", "plot layout")
		c.Flags().StringArrayVar(&setPairs, "set", nil, "parameter update name=value (repeatable)")
		c.Flags().StringArrayVar(&initPairs, "init", nil, "initial value update name=value (repeatable)")
		c.Flags().BoolVar(&strict, "strict", false, "reject updates on any validation finding")
		c.Flags().BoolVar(&noPlot, "no-plot", false, "skip diagram rendering")
	}

	setCmd := &cobra.Command{
		Use:   "set [name=value ...]",
		Short: "update parameters without simulating",
		Args:  cobra.MinimumNArgs(1),
		RunE:  setParameters,
	}
	setCmd.Flags().BoolVar(&strict, "strict", false, "reject updates on any validation finding")

	initCmd := &cobra.Command{
		Use:   "init [name=value ...]",
		Short: "update initial values without simulating",
		Args:  cobra.MinimumNArgs(1),
		RunE:  setInitialValues,
	}
	initCmd.Flags().BoolVar(&strict, "strict", false, "reject updates on any validation finding")

	getCmd := &cobra.Command{
		Use:   "get [name]",
		Short: "resolve a variable or parameter to its current value",
		Args:  cobra.ExactArgs(1),
		RunE:  getValue,
	}

	dispCmd := &cobra.Command{
		Use:   "disp [filter]",
		Short: "display parameters and initial values from the model",
		Args:  cobra.MaximumNArgs(1),
		RunE:  dispParameters,
	}

	describeCmd := &cobra.Command{
		Use:   "describe [name]",
		Short: "describe a variable, parameter or model part",
		Args:  cobra.ExactArgs(1),
		RunE:  describeName,
	}

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "session and model information",
		RunE:  showInfo,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run (latest if omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotName, "plot", "", "plot layout")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a stored run to CSV on stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  replayRun,
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "discard carried state and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := storage.New(dataDir)
			if err := st.Init(cmd.Context()); err != nil {
				return err
			}
			defer st.Close()
			if err := st.ClearSnapshot(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("session reset: next run starts from defaults")
			return nil
		},
	}

	plotsCmd := &cobra.Command{
		Use:   "plots",
		Short: "list available plot layouts",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, p := range config.ListPlots() {
				fmt.Println(p)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, contCmd, setCmd, initCmd, getCmd, dispCmd,
		describeCmd, infoCmd, listCmd, plotCmd, exportCSVCmd, tuiCmd, resetCmd, plotsCmd)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: "+err.Error()))
		os.Exit(1)
	}
}
