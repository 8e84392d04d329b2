package observ

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProgramsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jsfuzz_programs_generated_total",
		Help: "Number of programs generated",
	})

	Verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsfuzz_verdicts_total",
		Help: "Check verdicts by kind",
	}, []string{"verdict"})

	ShadowedPicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jsfuzz_shadowed_picks_total",
		Help: "Symbol picks rejected because a local declaration shadows the outer name",
	})

	ReferenceFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jsfuzz_reference_fallbacks_total",
		Help: "Identifier references replaced by literals after a failed pick",
	})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "jsfuzz_generation_duration_seconds",
		Help:    "Time spent generating one program",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	CheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jsfuzz_check_duration_seconds",
		Help:    "Time spent checking one program",
		Buckets: prometheus.DefBuckets,
	}, []string{"verdict"})

	CorpusWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jsfuzz_corpus_writes_total",
		Help: "Findings stored in the corpus",
	})
)
