package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/virtuallist/internal/config"
	"github.com/rshade/virtuallist/internal/logging"
	"github.com/rshade/virtuallist/internal/scenario"
)

// ExpectationError is returned by simulate when at least one scenario expectation failed.
// main maps it to its own exit code.
type ExpectationError struct {
	Failed int
	Total  int
}

// Error implements error.
func (e *ExpectationError) Error() string {
	return fmt.Sprintf("%d of %d scenarios failed their expectations", e.Failed, e.Total)
}

type simulateParams struct {
	output   string
	parallel int
	steps    bool
}

// NewSimulateCmd creates the simulate command, which replays scenario files.
func NewSimulateCmd() *cobra.Command {
	var params simulateParams

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>...",
		Short: "Replay scenario files against the range engine",
		Long: `Loads every scenario from the given YAML files, replays them concurrently and
reports the resulting ranges. Scenarios may contain several YAML documents.
The command fails when an expectation does not hold.`,
		Example: `  # Replay all scenarios in a directory
  vlist simulate scenarios/*.yaml

  # Show the range after every step as JSON
  vlist simulate --output json scenarios/reorder.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args, params)
		},
	}

	cmd.Flags().StringVar(&params.output, "output", "",
		"Output format: table, json, or ndjson (default from output.default_format)")
	cmd.Flags().IntVar(&params.parallel, "parallel", 0, "scenarios run at once (0 = number of CPUs)")
	cmd.Flags().BoolVar(&params.steps, "steps", false, "print every step in table output")

	return cmd
}

func runSimulate(cmd *cobra.Command, paths []string, params simulateParams) error {
	if params.output == "" {
		params.output = config.GetGlobalConfig().Output.DefaultFormat
	}
	if err := checkOutputFormat(params.output); err != nil {
		return err
	}

	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	scenarios, err := scenario.LoadAll(paths)
	if err != nil {
		return err
	}
	log.Debug().Str("operation", "simulate").Int("scenarios", len(scenarios)).Msg("loaded scenarios")

	results, err := scenario.RunAll(ctx, scenarios, params.parallel)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch params.output {
	case formatJSON:
		err = renderJSON(w, results)
	case formatNDJSON:
		err = renderNDJSON(w, results)
	default:
		err = renderSimulateTable(w, results, params.steps)
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if !res.Passed() {
			failed++
		}
	}
	if failed > 0 {
		return &ExpectationError{Failed: failed, Total: len(results)}
	}
	return nil
}

func renderSimulateTable(w io.Writer, results []*scenario.Result, steps bool) error {
	p := newPrinter()
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)

	fmt.Fprintln(tw, "Scenario\tSteps\tChanges\tFinal Range\tResult")
	fmt.Fprintln(tw, "--------\t-----\t-------\t-----------\t------")
	for _, res := range results {
		status := "ok"
		if !res.Passed() {
			status = p.Sprintf("FAILED (%d)", len(res.Failures))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			res.Name, p.Sprint(len(res.Steps)), p.Sprint(len(res.Changes)), res.Final().Range, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, res := range results {
		if steps {
			if err := renderSteps(w, res); err != nil {
				return err
			}
		}
		for _, f := range res.Failures {
			fmt.Fprintf(w, "%s: %s\n", res.Name, f)
		}
	}
	return nil
}

func renderSteps(w io.Writer, res *scenario.Result) error {
	p := newPrinter()
	fmt.Fprintf(w, "\n%s (run %s)\n", res.Name, res.RunID)

	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "#\tOp\tStart\tEnd\tPad Front\tPad Behind\tOffset\tDirection")
	for _, s := range res.Steps {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			s.Step, s.Op, s.Range.Start, s.Range.End,
			p.Sprintf("%.1f", s.Range.PadFront), p.Sprintf("%.1f", s.Range.PadBehind),
			p.Sprintf("%.1f", s.Offset), s.Direction)
	}
	return tw.Flush()
}
