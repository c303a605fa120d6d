package cli

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/virtuallist/internal/config"
	"github.com/rshade/virtuallist/internal/logging"
	"github.com/rshade/virtuallist/internal/virtual"
)

// benchSettleRounds bounds the measure/relayout iterations after one scroll.
const benchSettleRounds = 4

type benchParams struct {
	items    int
	scrolls  int
	keeps    int
	estimate float64
	minSize  float64
	maxSize  float64
	seed     uint64
	output   string
}

// BenchReport summarizes one bench run. Unmeasured counts items of the final range that were never
// measured.
type BenchReport struct {
	Items         int           `json:"items"`
	Scrolls       int           `json:"scrolls"`
	Keeps         int           `json:"keeps"`
	RangeChanges  int           `json:"range_changes"`
	Measured      int           `json:"measured"`
	Unmeasured    int           `json:"unmeasured"`
	TotalSize     float64       `json:"total_size"`
	Elapsed       time.Duration `json:"elapsed"`
	NsPerScroll   float64       `json:"ns_per_scroll"`
	ScrollsPerSec float64       `json:"scrolls_per_sec"`
}

// NewBenchCmd creates the bench command, which drives random scrolls over a generated list.
func NewBenchCmd() *cobra.Command {
	var params benchParams

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure scroll throughput of the range engine",
		Long: `Generates a list of unmeasured items, then scrolls to random offsets. Every item that
becomes materialized is measured with a random size, the way a host would measure rendered rows.`,
		Example: `  vlist bench --items 1000000 --scrolls 100000
  vlist bench --items 5000 --min-size 20 --max-size 400 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBench(cmd, params)
		},
	}

	cmd.Flags().IntVar(&params.items, "items", 100_000, "number of items")
	cmd.Flags().IntVar(&params.scrolls, "scrolls", 10_000, "number of scroll events")
	cmd.Flags().IntVar(&params.keeps, "keeps", 0, "materialized items (0 = list.keeps from config)")
	cmd.Flags().Float64Var(&params.estimate, "estimate", 0, "estimated item size (0 = list.estimate_size)")
	cmd.Flags().Float64Var(&params.minSize, "min-size", 1, "smallest measured item size")
	cmd.Flags().Float64Var(&params.maxSize, "max-size", 10, "largest measured item size")
	cmd.Flags().Uint64Var(&params.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&params.output, "output", "", "Output format: table, json, or ndjson")

	return cmd
}

func runBench(cmd *cobra.Command, params benchParams) error {
	cfg := config.GetGlobalConfig()
	if params.keeps <= 0 {
		params.keeps = cfg.List.Keeps
	}
	if params.estimate <= 0 {
		params.estimate = cfg.List.EstimateSize
	}
	if params.output == "" {
		params.output = cfg.Output.DefaultFormat
	}
	if err := checkOutputFormat(params.output); err != nil {
		return err
	}
	if params.items < 0 || params.scrolls < 0 {
		return errors.New("--items and --scrolls must not be negative")
	}
	if params.minSize < 0 || params.maxSize < params.minSize {
		return fmt.Errorf("invalid size bounds [%g, %g]", params.minSize, params.maxSize)
	}

	log := logging.FromContext(cmd.Context())
	report := bench(params)
	log.Debug().
		Str("operation", "bench").
		Int("items", report.Items).
		Dur("elapsed", report.Elapsed).
		Msg("bench finished")

	w := cmd.OutOrStdout()
	switch params.output {
	case formatJSON:
		return renderJSON(w, report)
	case formatNDJSON:
		return renderNDJSON(w, []BenchReport{report})
	default:
		renderBenchTable(w, report)
		return nil
	}
}

// bench runs the scroll loop. After each scroll the materialized items are measured, again and
// again while the measurements keep moving the range.
func bench(params benchParams) BenchReport {
	rng := rand.New(rand.NewPCG(params.seed, params.seed^0x9e3779b97f4a7c15))

	ids := make([]int, params.items)
	for i := range ids {
		ids[i] = i
	}

	changes := 0
	var pending virtual.Range
	vl := virtual.New(virtual.Config[int]{
		Keeps:        params.keeps,
		Buffer:       virtual.DefaultBuffer(params.keeps),
		EstimateSize: params.estimate,
		UniqueIDs:    ids,
	}, func(r virtual.Range) {
		changes++
		pending = r
	})
	defer vl.Destroy()
	pending = vl.GetRange()

	size := func() float64 {
		return params.minSize + rng.Float64()*(params.maxSize-params.minSize)
	}

	measured := make(map[int]bool)
	measureRange := func(r virtual.Range) {
		for i := r.Start; i <= r.End; i++ {
			if !measured[i] {
				measured[i] = true
				vl.SaveSize(i, size())
			}
		}
	}
	// settle measures the current range until measuring stops moving it.
	settle := func() {
		for range benchSettleRounds {
			r := pending
			measureRange(r)
			if pending == r {
				return
			}
		}
	}
	settle()

	started := time.Now()
	for range params.scrolls {
		offset := rng.Float64() * vl.TotalSize()
		vl.HandleScroll(offset)
		settle()
	}
	elapsed := time.Since(started)

	unmeasured := 0
	final := vl.GetRange()
	for i := final.Start; i <= final.End; i++ {
		if !measured[i] {
			unmeasured++
		}
	}

	report := BenchReport{
		Items:        params.items,
		Scrolls:      params.scrolls,
		Keeps:        params.keeps,
		RangeChanges: changes,
		Measured:     vl.SizeCount(),
		Unmeasured:   unmeasured,
		TotalSize:    vl.TotalSize(),
		Elapsed:      elapsed,
	}
	if params.scrolls > 0 {
		report.NsPerScroll = float64(elapsed.Nanoseconds()) / float64(params.scrolls)
	}
	if elapsed > 0 {
		report.ScrollsPerSec = float64(params.scrolls) / elapsed.Seconds()
	}
	return report
}

func renderBenchTable(w io.Writer, r BenchReport) {
	p := newPrinter()
	p.Fprintf(w, "Items:          %d\n", r.Items)
	p.Fprintf(w, "Scrolls:        %d\n", r.Scrolls)
	p.Fprintf(w, "Keeps:          %d\n", r.Keeps)
	p.Fprintf(w, "Range changes:  %d\n", r.RangeChanges)
	p.Fprintf(w, "Measured items: %d\n", r.Measured)
	p.Fprintf(w, "Unmeasured:     %d\n", r.Unmeasured)
	p.Fprintf(w, "Total size:     %.1f\n", r.TotalSize)
	p.Fprintf(w, "Elapsed:        %v\n", r.Elapsed)
	p.Fprintf(w, "Per scroll:     %.0f ns\n", r.NsPerScroll)
	p.Fprintf(w, "Throughput:     %.0f scrolls/s\n", r.ScrollsPerSec)
}
