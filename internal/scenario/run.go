package scenario

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/virtuallist/internal/logging"
	"github.com/rshade/virtuallist/internal/virtual"
)

// expectTolerance is the allowed difference when comparing sizes and offsets.
const expectTolerance = 1e-6

// Snapshot is the engine state after one step.
type Snapshot struct {
	Step      int           `json:"step"`
	Op        string        `json:"op"`
	Range     virtual.Range `json:"range"`
	Offset    float64       `json:"offset"`
	Direction string        `json:"direction"`
	Front     bool          `json:"front"`
	Behind    bool          `json:"behind"`
	Len       int           `json:"len"`
	Measured  int           `json:"measured"`
	// Value holds the result of offset_of.
	Value float64 `json:"value,omitempty"`
}

// Result is the outcome of one scenario run.
type Result struct {
	RunID    string          `json:"run_id"`
	Name     string          `json:"name"`
	Source   string          `json:"source,omitempty"`
	Changes  []virtual.Range `json:"changes"`
	Steps    []Snapshot      `json:"steps"`
	Failures []string        `json:"failures,omitempty"`
	Duration time.Duration   `json:"duration"`
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// Final returns the state after the last step, or the zero Snapshot when there were no steps.
func (r *Result) Final() Snapshot {
	if len(r.Steps) == 0 {
		return Snapshot{}
	}
	return r.Steps[len(r.Steps)-1]
}

// runner holds the state of one scenario run.
type runner struct {
	s      *Scenario
	cfg    ListConfig
	log    zerolog.Logger
	keys   []string
	vl     *virtual.Virtual[string]
	result *Result
}

// Run replays s against a fresh engine. Failed expectations are recorded in the result; the
// error is only set for invalid scenarios and cancellation.
func Run(ctx context.Context, s *Scenario) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	r := &runner{
		s:    s,
		cfg:  s.Config,
		keys: s.InitialKeys(),
		result: &Result{
			RunID:  logging.NewID(),
			Name:   s.Name,
			Source: s.Source,
		},
	}
	r.log = logging.FromContext(ctx).With().
		Str("component", "scenario").
		Str("scenario", s.Name).
		Str("run_id", r.result.RunID).
		Logger()

	started := time.Now()
	r.install()
	defer func() { r.vl.Destroy() }()

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("scenario %q interrupted at step %d: %w", s.Name, i+1, err)
		}

		value := r.apply(step)
		snap := r.snapshot(i+1, step.Op, value)
		r.result.Steps = append(r.result.Steps, snap)
		if step.Expect != nil {
			r.check(i+1, step, snap)
		}
	}

	r.result.Duration = time.Since(started)
	r.log.Debug().
		Int("steps", len(s.Steps)).
		Int("changes", len(r.result.Changes)).
		Int("failures", len(r.result.Failures)).
		Dur("duration", r.result.Duration).
		Msg("scenario finished")
	return r.result, nil
}

// RunAll runs the scenarios concurrently, at most limit at a time (runtime.NumCPU() when
// limit <= 0). Results keep the input order.
func RunAll(ctx context.Context, scenarios []*Scenario, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]*Result, len(scenarios))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, s := range scenarios {
		g.Go(func() error {
			res, err := Run(gCtx, s)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *runner) install() {
	cfg := r.cfg
	buffer := virtual.DefaultBuffer(cfg.Keeps)
	if cfg.Buffer != nil {
		buffer = *cfg.Buffer
	}

	r.vl = virtual.New(virtual.Config[string]{
		SlotHeaderSize: cfg.Header,
		SlotFooterSize: cfg.Footer,
		Keeps:          cfg.Keeps,
		Buffer:         buffer,
		EstimateSize:   cfg.EstimateSize,
		UniqueIDs:      r.keys,
	}, func(rng virtual.Range) {
		r.result.Changes = append(r.result.Changes, rng)
	}, virtual.WithLogger[string](r.log))
}

// apply performs one step and returns the value it produced, if any.
func (r *runner) apply(step Step) float64 {
	switch step.Op {
	case OpScroll:
		r.vl.HandleScroll(step.Offset)

	case OpSize:
		r.vl.SaveSize(step.Key, step.Size)

	case OpSizes:
		if len(step.Sizes) > 0 {
			for _, ks := range step.Sizes {
				r.vl.SaveSize(ks.Key, ks.Size)
			}
			break
		}
		for i := max(step.From, 0); i <= step.To && i < len(r.keys); i++ {
			r.vl.SaveSize(r.keys[i], step.Size)
		}

	case OpInsert:
		at := min(max(step.Index, 0), len(r.keys))
		r.setKeys(slices.Insert(slices.Clone(r.keys), at, step.Keys...))

	case OpRemove:
		r.setKeys(slices.DeleteFunc(slices.Clone(r.keys), func(k string) bool {
			return slices.Contains(step.Keys, k)
		}))

	case OpReplace:
		r.setKeys(slices.Clone(step.Keys))

	case OpKeeps:
		r.cfg.Keeps = int(step.Value)
		_ = r.vl.UpdateParam(virtual.ParamKeeps, int(step.Value))
		r.vl.HandleSlotSizeChange()

	case OpHeader:
		_ = r.vl.UpdateParam(virtual.ParamSlotHeaderSize, step.Value)
		r.vl.HandleSlotSizeChange()

	case OpFooter:
		_ = r.vl.UpdateParam(virtual.ParamSlotFooterSize, step.Value)
		r.vl.HandleSlotSizeChange()

	case OpOffsetOf:
		return r.vl.GetOffset(step.Index)

	case OpReset:
		cfg := r.vl.Config()
		r.vl.Destroy()
		r.cfg.Header, r.cfg.Footer = cfg.SlotHeaderSize, cfg.SlotFooterSize
		r.install()
	}
	return 0
}

func (r *runner) setKeys(keys []string) {
	r.keys = keys
	_ = r.vl.UpdateParam(virtual.ParamUniqueIDs, keys)
	r.vl.HandleDataSourcesChange()
}

func (r *runner) snapshot(step int, op string, value float64) Snapshot {
	return Snapshot{
		Step:      step,
		Op:        op,
		Range:     r.vl.GetRange(),
		Offset:    r.vl.Offset(),
		Direction: r.vl.Direction().String(),
		Front:     r.vl.IsFront(),
		Behind:    r.vl.IsBehind(),
		Len:       r.vl.Len(),
		Measured:  r.vl.SizeCount(),
		Value:     value,
	}
}

// check compares snap against the step's expectations and records mismatches.
func (r *runner) check(step int, st Step, snap Snapshot) {
	e := st.Expect
	fail := func(field string, want, got any) {
		r.result.Failures = append(r.result.Failures,
			fmt.Sprintf("step %d (%s): %s = %v, want %v", step, st.Op, field, got, want))
	}

	if e.Start != nil && *e.Start != snap.Range.Start {
		fail("start", *e.Start, snap.Range.Start)
	}
	if e.End != nil && *e.End != snap.Range.End {
		fail("end", *e.End, snap.Range.End)
	}
	if e.PadFront != nil && !near(*e.PadFront, snap.Range.PadFront) {
		fail("pad_front", *e.PadFront, snap.Range.PadFront)
	}
	if e.PadBehind != nil && !near(*e.PadBehind, snap.Range.PadBehind) {
		fail("pad_behind", *e.PadBehind, snap.Range.PadBehind)
	}
	if e.Offset != nil && !near(*e.Offset, snap.Offset) {
		fail("offset", *e.Offset, snap.Offset)
	}
	if e.Value != nil && !near(*e.Value, snap.Value) {
		fail("value", *e.Value, snap.Value)
	}
	if e.Front != nil && *e.Front != snap.Front {
		fail("front", *e.Front, snap.Front)
	}
	if e.Behind != nil && *e.Behind != snap.Behind {
		fail("behind", *e.Behind, snap.Behind)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) <= expectTolerance
}
