// Package driver runs batches of generated programs through the oracle.
package driver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"strconv"
	"time"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"jsfuzz/internal/corpus"
	"jsfuzz/internal/jscheck"
	"jsfuzz/internal/jsgen"
	"jsfuzz/internal/observ"
	"jsfuzz/internal/trace"
)

// BatchRequest describes a run of Count cases starting at Seed.
type BatchRequest struct {
	Seed      uint64
	Count     int
	Jobs      int // <= 0 uses GOMAXPROCS
	Generator jsgen.Options
	Check     jscheck.Options
	Store     *corpus.Store // nil disables persistence
	Progress  ProgressSink
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	Index   int
	Seed    uint64
	Program *jsgen.Program
	Check   jscheck.Result
	StoreID string // corpus ID when the case was stored
	Timing  observ.Report
}

// Finding reports whether the case is worth keeping.
func (r CaseResult) Finding() bool { return r.Check.Verdict.Finding() }

// BatchResult collects every case in index order.
type BatchResult struct {
	Cases   []CaseResult
	Counts  map[jscheck.Verdict]int
	Timing  observ.Report
	Elapsed time.Duration
}

// Findings returns the cases whose verdict is a finding.
func (r BatchResult) Findings() []CaseResult {
	var out []CaseResult
	for _, c := range r.Cases {
		if c.Finding() {
			out = append(out, c)
		}
	}
	return out
}

// ErrSeedOverflow is returned when base+i does not fit in a uint64.
var ErrSeedOverflow = errors.New("driver: case seed overflows uint64")

// CaseSeed derives the seed of case i. Seeds never wrap around.
func CaseSeed(base uint64, i int) (uint64, error) {
	off, err := safecast.Conv[uint64](i)
	if err != nil {
		return 0, fmt.Errorf("case index %d: %w", i, err)
	}
	if off > math.MaxUint64-base {
		return 0, fmt.Errorf("%w: seed %d + case %d", ErrSeedOverflow, base, i)
	}
	return base + off, nil
}

// RunBatch generates and checks req.Count programs, up to req.Jobs at a time.
// Each case owns its own generator state, so cases share nothing but the
// store and the sink. A failing case cancels the rest of the batch.
func RunBatch(ctx context.Context, req BatchRequest) (BatchResult, error) {
	if req.Count < 0 {
		return BatchResult{}, fmt.Errorf("negative case count %d", req.Count)
	}
	start := time.Now()
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.LayerDriver, "batch", 0).
		WithField("seed", strconv.FormatUint(req.Seed, 10)).
		WithField("count", strconv.Itoa(req.Count))

	results := make([]CaseResult, req.Count)
	if req.Count == 0 {
		span.End("empty")
		return BatchResult{Counts: map[jscheck.Verdict]int{}}, nil
	}

	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	for i := range req.Count {
		seed, err := CaseSeed(req.Seed, i)
		if err != nil {
			span.End("error")
			return BatchResult{}, err
		}
		emit(req.Progress, Event{Case: i, Seed: seed, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, req.Count))

	for i := range req.Count {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			seed, err := CaseSeed(req.Seed, i)
			if err != nil {
				return err
			}
			res, err := runCase(gctx, i, seed, req, span.ID())
			if err != nil {
				emit(req.Progress, Event{Case: i, Seed: seed, Status: StatusError, Err: err})
				return fmt.Errorf("case %d (seed %d): %w", i, seed, err)
			}
			// Each goroutine writes only its own index.
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.End("error")
		return BatchResult{Cases: results, Elapsed: time.Since(start)}, err
	}

	out := BatchResult{
		Cases:   results,
		Counts:  make(map[jscheck.Verdict]int),
		Elapsed: time.Since(start),
	}
	reports := make([]observ.Report, 0, len(results))
	for _, r := range results {
		out.Counts[r.Check.Verdict]++
		reports = append(reports, r.Timing)
	}
	out.Timing = observ.Merge(reports...)
	span.End(fmt.Sprintf("%d findings", len(out.Findings())))
	return out, nil
}

func runCase(ctx context.Context, index int, seed uint64, req BatchRequest, parent uint64) (CaseResult, error) {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.LayerCase, "case", parent).
		WithField("index", strconv.Itoa(index))
	timer := observ.NewTimer()
	res := CaseResult{Index: index, Seed: seed}

	emit(req.Progress, Event{Case: index, Seed: seed, Stage: StageGenerate, Status: StatusWorking})
	idx := timer.Begin(string(StageGenerate))
	genStart := time.Now()
	prog, err := jsgen.Generate(ctx, seed, req.Generator)
	timer.End(idx, "")
	if err != nil {
		span.End("generate failed")
		return res, err
	}
	res.Program = prog
	recordGeneration(prog, time.Since(genStart))

	emit(req.Progress, Event{Case: index, Seed: seed, Stage: StageCheck, Status: StatusWorking})
	idx = timer.Begin(string(StageCheck))
	res.Check = jscheck.Check(ctx, caseName(seed), prog.Source, req.Check)
	timer.End(idx, res.Check.Verdict.String())
	recordCheck(res.Check)

	// A timeout caused by the batch being canceled is not a verdict.
	if res.Check.Verdict == jscheck.VerdictTimeout && ctx.Err() != nil {
		span.End("canceled")
		return res, ctx.Err()
	}

	if res.Finding() && req.Store != nil {
		emit(req.Progress, Event{Case: index, Seed: seed, Stage: StageStore, Status: StatusWorking})
		idx = timer.Begin(string(StageStore))
		id, err := store(req.Store, req.Generator, prog, res.Check)
		timer.End(idx, id)
		if err != nil {
			span.End("store failed")
			return res, err
		}
		res.StoreID = id
		observ.CorpusWrites.Inc()
	}

	res.Timing = timer.Report()
	emit(req.Progress, Event{
		Case:    index,
		Seed:    seed,
		Status:  StatusDone,
		Verdict: res.Check.Verdict.String(),
		Elapsed: time.Duration(res.Timing.TotalMS * float64(time.Millisecond)),
	})
	span.End(res.Check.Verdict.String())
	return res, nil
}

func recordGeneration(prog *jsgen.Program, dur time.Duration) {
	observ.ProgramsGenerated.Inc()
	observ.ShadowedPicks.Add(float64(prog.Stats.Shadowed))
	observ.ReferenceFallbacks.Add(float64(prog.Stats.Fallbacks))
	observ.GenerationDuration.Observe(dur.Seconds())
}

func recordCheck(res jscheck.Result) {
	v := res.Verdict.String()
	observ.Verdicts.WithLabelValues(v).Inc()
	observ.CheckDuration.WithLabelValues(v).Observe(res.Elapsed.Seconds())
}

func store(s *corpus.Store, opts jsgen.Options, prog *jsgen.Program, check jscheck.Result) (string, error) {
	c := &corpus.Case{
		Seed:    prog.Seed,
		Options: opts,
		Source:  prog.Source,
		Stats:   prog.Stats,
		Verdict: check.Verdict.String(),
		Message: check.Message,
	}
	if err := s.Put(c); err != nil {
		return "", fmt.Errorf("store finding: %w", err)
	}
	return c.ID, nil
}

func caseName(seed uint64) string {
	return "seed-" + strconv.FormatUint(seed, 10) + ".js"
}
