package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kvarnsen/fmex/internal/bioreactor"
	"github.com/kvarnsen/fmex/internal/config"
	"github.com/kvarnsen/fmex/internal/diagram"
	"github.com/kvarnsen/fmex/internal/model"
	"github.com/kvarnsen/fmex/internal/session"
	"github.com/kvarnsen/fmex/internal/storage"
	"github.com/kvarnsen/fmex/internal/store"
	"github.com/kvarnsen/fmex/internal/tui"
)

var (
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// loadScenario resolves the active scenario: the --config file if given,
// the built-in batch scenario otherwise, with command flags layered on
// top.
func loadScenario(cmd *cobra.Command) (*config.Scenario, error) {
	sc := config.DefaultScenario()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load scenario: %w", err)
		}
		sc = loaded
	}
	if cmd.Flags().Changed("time") {
		sc.Duration = duration
	}
	if cmd.Flags().Changed("points") {
		sc.Points = points
	}
	if cmd.Flags().Changed("plot") {
		sc.Plot = plotName
	}
	return sc, nil
}

// buildSession constructs the session for a scenario, restores the
// persisted snapshot and re-attaches the latest stored result.
func buildSession(ctx context.Context, sc *config.Scenario) (*session.Session, *storage.Store, error) {
	var m model.Model
	switch sc.Model {
	case "", "batch-bioreactor":
		m = bioreactor.New()
	default:
		return nil, nil, fmt.Errorf("unknown model: %s", sc.Model)
	}

	opts, err := sc.Options()
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.New(m, opts)
	if err != nil {
		return nil, nil, err
	}
	if strict {
		sess.SetPolicy(store.Strict)
	}

	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return nil, nil, err
	}

	snap, ok, err := st.LoadSnapshot(ctx)
	if err != nil {
		st.Close()
		return nil, nil, err
	}
	if ok {
		sess.Restore(snap)
		if runs, err := st.ListRuns(ctx); err == nil && len(runs) > 0 {
			if _, res, err := st.LoadRun(ctx, runs[0].ID); err == nil {
				sess.AdoptResult(res)
			}
		}
	}
	return sess, st, nil
}

// parsePairs splits name=value arguments into an update map.
func parsePairs(pairs []string) (map[string]float64, error) {
	updates := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		name, raw, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=value, got %q", p)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("value for %s: %w", name, err)
		}
		updates[name] = v
	}
	return updates, nil
}

func printDiagnostics(diags []store.Diagnostic) {
	for _, d := range diags {
		fmt.Println(warnStyle.Render("warning: " + d.String()))
	}
}

func simulate(cmd *cobra.Command, mode string) error {
	ctx := cmd.Context()
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sess, st, err := buildSession(ctx, sc)
	if err != nil {
		return err
	}
	defer st.Close()

	if len(setPairs) > 0 {
		updates, err := parsePairs(setPairs)
		if err != nil {
			return err
		}
		diags, err := sess.SetParameters(updates)
		printDiagnostics(diags)
		if err != nil {
			return err
		}
	}
	if len(initPairs) > 0 {
		updates, err := parsePairs(initPairs)
		if err != nil {
			return err
		}
		diags, err := sess.SetInitialValues(updates)
		printDiagnostics(diags)
		if err != nil {
			return err
		}
	}

	if !noPlot {
		sess.SetRenderer(diagram.NewRenderer(os.Stdout))
	}

	fmt.Printf("running %s simulation over %.3g...\n", mode, sc.Duration)
	start := time.Now()
	res, err := sess.Simulate(ctx, mode, sc.Duration)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.SaveRun(ctx, storage.RunMetadata{
		Model:     sess.Model().Name(),
		Mode:      mode,
		StartTime: res.Times[0],
		StopTime:  res.FinalTime(),
		Points:    res.Len(),
	}, res)
	if err != nil {
		return err
	}
	if err := st.SaveSnapshot(ctx, sess.Snapshot()); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("interval: [%.4g, %.4g]  samples: %d\n", res.Times[0], res.FinalTime(), res.Len())
	fmt.Println(dimStyle.Render("carried state:"))
	for _, key := range sess.StateKeys() {
		if v, err := sess.Get(key); err == nil {
			fmt.Printf("  %s: %.4f\n", key, v)
		}
	}
	return nil
}

func setParameters(cmd *cobra.Command, args []string) error {
	return applyUpdates(cmd, args, func(s *session.Session, u map[string]float64) ([]store.Diagnostic, error) {
		return s.SetParameters(u)
	})
}

func setInitialValues(cmd *cobra.Command, args []string) error {
	return applyUpdates(cmd, args, func(s *session.Session, u map[string]float64) ([]store.Diagnostic, error) {
		return s.SetInitialValues(u)
	})
}

func applyUpdates(cmd *cobra.Command, args []string,
	apply func(*session.Session, map[string]float64) ([]store.Diagnostic, error)) error {
	ctx := cmd.Context()
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sess, st, err := buildSession(ctx, sc)
	if err != nil {
		return err
	}
	defer st.Close()

	updates, err := parsePairs(args)
	if err != nil {
		return err
	}
	diags, err := apply(sess, updates)
	printDiagnostics(diags)
	if err != nil {
		return err
	}
	if err := st.SaveSnapshot(ctx, sess.Snapshot()); err != nil {
		return err
	}
	for _, name := range sess.ParameterNames() {
		if _, ok := updates[name]; !ok {
			continue
		}
		v, _ := sess.Parameter(name)
		fmt.Printf("%s: %g\n", name, v)
	}
	return nil
}

func getValue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sess, st, err := buildSession(ctx, sc)
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := sess.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s: %g\n", args[0], v)
	return nil
}

func dispParameters(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sess, st, err := buildSession(ctx, sc)
	if err != nil {
		return err
	}
	defer st.Close()

	filter := ""
	if len(args) > 0 {
		filter = args[0]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tLOCATION\tVALUE")
	for _, e := range sess.Display(filter) {
		if e.Err != nil {
			fmt.Fprintf(w, "%s\t%s\t(%v)\n", e.Name, e.Location, e.Err)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.4g\n", e.Name, e.Location, e.Value)
	}
	return w.Flush()
}

func describeName(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sess, st, err := buildSession(ctx, sc)
	if err != nil {
		return err
	}
	defer st.Close()

	name := args[0]
	switch name {
	case "parts":
		for _, c := range sess.Catalog().Components() {
			fmt.Println(c)
		}
		return nil
	case "time":
		fmt.Println("Time [h]")
		return nil
	}

	desc, unit, err := sess.Describe(name)
	if err != nil {
		return err
	}
	v, verr := sess.Get(name)
	switch {
	case verr != nil && unit != "":
		fmt.Printf("%s [%s] (value %v)\n", desc, unit, verr)
	case verr != nil:
		fmt.Printf("%s (value %v)\n", desc, verr)
	case unit != "":
		fmt.Printf("%s: %.4g [%s]\n", desc, v, unit)
	default:
		fmt.Printf("%s: %.4g\n", desc, v)
	}
	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	sess, st, err := buildSession(ctx, sc)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Println(titleStyle.Render("session"))
	fmt.Printf("  model: %s\n", sess.Model().Name())
	fmt.Printf("  variables: %d\n", sess.Catalog().Len())
	fmt.Printf("  state entries: %s\n", strings.Join(sess.StateKeys(), ", "))
	fmt.Printf("  key variables: %s\n", strings.Join(sess.KeyVariables(), ", "))
	if sess.Cursor() > 0 {
		fmt.Printf("  continuation cursor: %.4g\n", sess.Cursor())
	} else {
		fmt.Println("  continuation cursor: unset (no completed run)")
	}
	fmt.Printf("  plot layouts: %s\n", strings.Join(config.ListPlots(), ", "))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tMODE\tCREATED\tINTERVAL\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t[%.4g, %.4g]\t%d\n",
			run.ID, run.Model, run.Mode,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.StartTime, run.StopTime, run.Points)
	}
	return w.Flush()
}

// resolveRun loads the named run, or the latest one when id is empty.
func resolveRun(ctx context.Context, st *storage.Store, args []string) (storage.RunMetadata, *model.Result, error) {
	if len(args) > 0 {
		return st.LoadRun(ctx, args[0])
	}
	runs, err := st.ListRuns(ctx)
	if err != nil {
		return storage.RunMetadata{}, nil, err
	}
	if len(runs) == 0 {
		return storage.RunMetadata{}, nil, errors.New("no stored runs")
	}
	return st.LoadRun(ctx, runs[0].ID)
}

func plotRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sc, err := loadScenario(cmd)
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	meta, res, err := resolveRun(ctx, st, args)
	if err != nil {
		return err
	}
	specs, ok := config.PlotLayout(sc.Plot)
	if !ok {
		return fmt.Errorf("unknown plot layout %q", sc.Plot)
	}

	fmt.Printf("run: %s\nmodel: %s\nsamples: %d\n\n", meta.ID, meta.Model, res.Len())
	return diagram.NewRenderer(os.Stdout).Render(res, specs)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	_, res, err := resolveRun(ctx, st, args)
	if err != nil {
		return err
	}

	columns := make([]string, 0, len(res.Columns))
	for c := range res.Columns {
		columns = append(columns, c)
	}
	sort.Strings(columns)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := append([]string{"time"}, columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for i, t := range res.Times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, c := range columns {
			row[j+1] = strconv.FormatFloat(res.Columns[c][i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st := storage.New(dataDir)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer st.Close()

	meta, res, err := resolveRun(ctx, st, args)
	if err != nil {
		return err
	}
	return tui.Run(fmt.Sprintf("%s (%s)", meta.ID, meta.Mode), res)
}

func printBanner() {
	fmt.Println(titleStyle.Render("fmex - explorative simulation with run-to-run continuity"))
	fmt.Println()
	fmt.Println("Key commands:")
	fmt.Println("  run        - fresh simulation and plot")
	fmt.Println("  cont       - continue from the previous end state")
	fmt.Println("  set        - change parameters")
	fmt.Println("  init       - change initial values only")
	fmt.Println("  disp       - display parameters and initial values")
	fmt.Println("  describe   - describe parameters and variables with values and units")
	fmt.Println("  get        - resolve one value")
	fmt.Println("  plot, tui  - view a stored run")
	fmt.Println()
	fmt.Println(dimStyle.Render("disp and describe take values from the last completed run"))
}
