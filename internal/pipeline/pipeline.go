// Package pipeline wires the enrichment and scoring stages together into a
// bounded-concurrency worker pool, with a circuit breaker that downgrades
// the whole run to heuristic scoring once the model host looks unreachable.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/literature"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/llm"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/scrape"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/score"
)

// healthProber is implemented by *llm.Client; narrowed to an interface so the
// pipeline's tests can substitute a fake model client without a health probe.
type healthProber interface {
	Ping(ctx context.Context) error
}

// Thresholds configures the inclusion predicate.
type Thresholds struct {
	MinBioScore           float64
	MinDocumentationScore float64
}

// Options configures a Pipeline run.
type Options struct {
	Scraper    *scrape.Scraper
	Literature *literature.Enricher
	Model      string
	Temperature float64
	SchemaRetries int
	Concurrency int
	Thresholds  Thresholds

	// OnProgress, if set, is called once per completed candidate in
	// arbitrary order; used to drive a CLI progress bar.
	OnProgress func()

	Logger zerolog.Logger
}

// Pipeline runs candidates through enrichment and scoring. It holds the
// shared circuit breaker state for a single run; create a new Pipeline per
// run rather than reusing one across runs.
type Pipeline struct {
	opts    Options
	client  score.Generator
	breaker *gobreaker.CircuitBreaker

	mu         sync.Mutex
	degraded   bool
}

// New builds a Pipeline. client is the model client used for scoring until
// (and unless) the run downgrades to heuristic-only scoring.
func New(client score.Generator, opts Options) *Pipeline {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "model-host",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Pipeline{opts: opts, client: client, breaker: breaker}
}

// Run enriches and scores every candidate, returning one Decision per
// candidate in input order regardless of completion order.
func (p *Pipeline) Run(ctx context.Context, candidates []candidate.Candidate) []candidate.Decision {
	if prober, ok := p.client.(healthProber); ok {
		if err := prober.Ping(ctx); err != nil {
			p.opts.Logger.Warn().Err(err).Msg("model health probe failed; scoring this run heuristically")
			p.setDegraded()
		}
	}

	decisions := make([]candidate.Decision, len(candidates))
	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			decisions[i] = p.process(ctx, candidates[i])
			if p.opts.OnProgress != nil {
				p.opts.OnProgress()
			}
		}
	}

	for w := 0; w < p.opts.Concurrency; w++ {
		wg.Add(1)
		go worker()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return decisions
}

func (p *Pipeline) process(ctx context.Context, c candidate.Candidate) candidate.Decision {
	if p.opts.Scraper != nil {
		p.opts.Scraper.Scrape(ctx, &c)
	}
	if p.opts.Literature != nil {
		p.opts.Literature.Enrich(ctx, &c)
	}

	s := p.scoreCandidate(ctx, c)
	include := includeCandidate(s, p.opts.Thresholds, c)

	return candidate.Decision{
		Candidate: c,
		Score:     s,
		Homepage:  s.Homepage,
		Include:   include,
	}
}

// scoreCandidate scores c via the model, falling back to the deterministic
// heuristic once the run is degraded (failed health probe, a model-host
// transport failure, or an open circuit breaker). The breaker
// trips on the model host, not on individual candidates: a handful of
// schema-retry exhaustions don't trip it, only repeated transport failure.
func (p *Pipeline) scoreCandidate(ctx context.Context, c candidate.Candidate) candidate.Score {
	if p.isDegraded() {
		return score.Heuristic(c)
	}

	mgr := &score.RetryManager{
		Client:        p.client,
		Model:         p.opts.Model,
		Temperature:   p.opts.Temperature,
		SchemaRetries: p.opts.SchemaRetries,
	}

	var runErr error
	result, err := p.breaker.Execute(func() (interface{}, error) {
		s, _, e := mgr.Run(ctx, c)
		if e != nil && errors.Is(e, llm.ErrModelUnreachable) {
			return candidate.Score{}, e
		}
		// Any other error is kept out of the breaker's failure count.
		runErr = e
		return s, nil
	})
	if err == nil && runErr == nil {
		return result.(candidate.Score)
	}

	if errors.Is(err, llm.ErrModelUnreachable) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		p.setDegraded()
		return score.Heuristic(c)
	}
	// A non-transport error (e.g. schema retries exhausted) scores this one
	// candidate heuristically without downgrading the whole run.
	return score.Heuristic(c)
}

func (p *Pipeline) isDegraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

func (p *Pipeline) setDegraded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.degraded = true
}

func includeCandidate(s candidate.Score, t Thresholds, c candidate.Candidate) bool {
	hasHomepage := s.Homepage != "" || c.Homepage != ""
	return s.BioScore >= t.MinBioScore && s.DocumentationScore >= t.MinDocumentationScore && hasHomepage
}
