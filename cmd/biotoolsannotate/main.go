// Command biotoolsannotate runs the enrichment-and-scoring pipeline over a
// Pub2Tools candidate export: it scrapes homepages, enriches literature via
// Europe PMC, scores each candidate against the bio.tools rubric using a
// locally-hosted model, and emits a registry payload plus JSONL/CSV reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"

	"github.com/elixir-belgium/biotoolsllmannotate/internal/cache"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/candidate"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/config"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/fetch"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/literature"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/llm"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/pipeline"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/report"
	"github.com/elixir-belgium/biotoolsllmannotate/internal/scrape"
)

func main() {
	cfg := config.Defaults()

	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	inputPath := flag.String("input", cfg.InputPath, "path to Pub2Tools candidate export")
	outputPath := flag.String("output", cfg.OutputPath, "path to write the registry payload")
	reportDir := flag.String("report-dir", cfg.ReportDir, "directory for JSONL/CSV/PDF reports")
	dryRun := flag.Bool("dry-run", cfg.DryRun, "score candidates but do not write the registry payload")
	writePDF := flag.Bool("pdf", cfg.WritePDF, "also write a one-page PDF run summary")
	verbose := flag.Bool("verbose", cfg.Verbose, "enable debug logging")
	ollamaHost := flag.String("ollama-host", cfg.OllamaHost, "base URL of the Ollama-compatible model host")
	ollamaModel := flag.String("ollama-model", cfg.OllamaModel, "model name to request")
	concurrency := flag.Int("concurrency", cfg.Concurrency, "number of candidates scored concurrently")
	minBio := flag.Float64("min-bio-score", cfg.MinBioScore, "minimum bio score required for inclusion")
	minDoc := flag.Float64("min-documentation-score", cfg.MinDocumentationScore, "minimum documentation score required for inclusion")
	cacheClear := flag.Bool("cache-clear", cfg.CacheClear, "wipe the homepage and model response caches before running")
	cacheMaxAgeHours := flag.Float64("cache-max-age-hours", cfg.CacheMaxAgeHours, "purge cache entries older than this many hours (0 disables)")
	flag.Parse()

	_ = config.LoadFile(&cfg, *configPath, false)
	config.ApplyEnvOverrides(&cfg)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPath
		case "output":
			cfg.OutputPath = *outputPath
		case "report-dir":
			cfg.ReportDir = *reportDir
		case "dry-run":
			cfg.DryRun = *dryRun
		case "pdf":
			cfg.WritePDF = *writePDF
		case "verbose":
			cfg.Verbose = *verbose
		case "ollama-host":
			cfg.OllamaHost = *ollamaHost
		case "ollama-model":
			cfg.OllamaModel = *ollamaModel
		case "concurrency":
			cfg.Concurrency = *concurrency
		case "min-bio-score":
			cfg.MinBioScore = *minBio
		case "min-documentation-score":
			cfg.MinDocumentationScore = *minDoc
		case "cache-clear":
			cfg.CacheClear = *cacheClear
		case "cache-max-age-hours":
			cfg.CacheMaxAgeHours = *cacheMaxAgeHours
		}
	})

	logger := newLogger(cfg.Verbose)

	if err := run(cfg, logger); err != nil {
		logger.Error().Err(err).Msg("run failed")
		if err == errInvalidPayload {
			os.Exit(2)
		}
		os.Exit(3)
	}
}

func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

var errInvalidPayload = fmt.Errorf("registry payload failed validation")

func run(cfg config.Config, logger zerolog.Logger) error {
	data, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	candidates, err := candidate.LoadCandidates(data)
	if err != nil {
		return fmt.Errorf("load candidates: %w", err)
	}
	candidates = candidate.Deduplicate(candidates)
	logger.Info().Int("count", len(candidates)).Msg("loaded candidates")

	llmCacheDir := cfg.CacheDir + "/llm"
	if cfg.CacheClear {
		if err := cache.ClearDir(cfg.CacheDir); err != nil {
			logger.Warn().Err(err).Msg("failed to clear homepage/http cache")
		}
		if err := cache.ClearDir(llmCacheDir); err != nil {
			logger.Warn().Err(err).Msg("failed to clear model response cache")
		}
	} else if cfg.CacheMaxAgeHours > 0 {
		maxAge := time.Duration(cfg.CacheMaxAgeHours * float64(time.Hour))
		if n, err := cache.PurgeHTTPCacheByAge(cfg.CacheDir, maxAge); err != nil {
			logger.Warn().Err(err).Msg("failed to purge aged http cache entries")
		} else if n > 0 {
			logger.Info().Int("removed", n).Msg("purged aged http cache entries")
		}
		if n, err := cache.PurgeLLMCacheByAge(llmCacheDir, maxAge); err != nil {
			logger.Warn().Err(err).Msg("failed to purge aged model response cache entries")
		} else if n > 0 {
			logger.Info().Int("removed", n).Msg("purged aged model response cache entries")
		}
	}
	if cfg.CacheMaxBytes > 0 || cfg.CacheMaxCount > 0 {
		if n, err := cache.EnforceHTTPCacheLimits(cfg.CacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount); err != nil {
			logger.Warn().Err(err).Msg("failed to enforce http cache limits")
		} else if n > 0 {
			logger.Info().Int("evicted", n).Msg("evicted http cache entries over limit")
		}
		if n, err := cache.EnforceLLMCacheLimits(llmCacheDir, cfg.CacheMaxBytes, cfg.CacheMaxCount); err != nil {
			logger.Warn().Err(err).Msg("failed to enforce model response cache limits")
		} else if n > 0 {
			logger.Info().Int("evicted", n).Msg("evicted model response cache entries over limit")
		}
	}

	fetchClient := &fetch.Client{
		HTTPClient:        &http.Client{},
		UserAgent:         cfg.HomepageUserAgent,
		MaxAttempts:       2,
		PerRequestTimeout: time.Duration(cfg.HomepageTimeoutSeconds) * time.Second,
		RedirectMaxHops:   5,
		MaxConcurrent:     cfg.Concurrency,
		Cache:             &cache.HTTPCache{Dir: cfg.CacheDir},
	}
	scraper := scrape.New(scrape.Options{
		Client:          fetchClient,
		UserAgent:       cfg.HomepageUserAgent,
		MaxBytes:        cfg.HomepageMaxBytes,
		MaxFrameFetches: cfg.HomepageMaxFrameFetches,
		MaxFrameDepth:   cfg.HomepageMaxFrameDepth,
	})
	if !cfg.HomepageEnabled {
		scraper = nil
	}

	var enricher *literature.Enricher
	if cfg.EuropePMCEnabled {
		enricher = literature.New(literature.Options{
			Timeout:          time.Duration(cfg.EuropePMCTimeoutSeconds) * time.Second,
			MaxPublications:  cfg.EuropePMCMaxPublications,
			IncludeFullText:  cfg.EuropePMCIncludeFullText,
			MaxFullTextChars: cfg.EuropePMCMaxFullTextChars,
		})
	}

	llmClient := &llm.Client{
		HTTPClient:   &http.Client{Timeout: 120 * time.Second},
		BaseURL:      cfg.OllamaHost,
		MaxAttempts:  cfg.OllamaMaxRetries,
		RetryBackoff: time.Duration(cfg.OllamaRetryBackoffSeconds) * time.Second,
		AuditLogPath: cfg.AuditLogPath,
		Cache:        &cache.LLMCache{Dir: llmCacheDir},
	}

	bar := progressbar.Default(int64(len(candidates)), "scoring candidates")
	p := pipeline.New(llmClient, pipeline.Options{
		Scraper:       scraper,
		Literature:    enricher,
		Model:         cfg.OllamaModel,
		Temperature:   cfg.OllamaTemperature,
		SchemaRetries: cfg.SchemaRetries,
		Concurrency:   cfg.Concurrency,
		Thresholds: pipeline.Thresholds{
			MinBioScore:           cfg.MinBioScore,
			MinDocumentationScore: cfg.MinDocumentationScore,
		},
		OnProgress: func() { _ = bar.Add(1) },
		Logger:     logger,
	})

	decisions := p.Run(context.Background(), candidates)

	if err := os.MkdirAll(cfg.ReportDir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := report.WriteJSONL(cfg.ReportDir+"/report.jsonl", decisions); err != nil {
		return fmt.Errorf("write jsonl report: %w", err)
	}
	if err := report.WriteCSV(cfg.ReportDir+"/report.csv", decisions); err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	if cfg.WritePDF {
		if err := report.WritePDFSummary(cfg.ReportDir+"/summary.pdf", decisions, cfg.OllamaModel); err != nil {
			logger.Warn().Err(err).Msg("failed to write pdf summary")
		}
	}

	payload := report.BuildPayload(cfg.PayloadVersion, decisions)
	if errs := payload.Validate(); len(errs) > 0 {
		_ = report.WriteJSON(cfg.ReportDir+"/payload.invalid.json", map[string]any{"errors": errs, "payload": payload})
		return errInvalidPayload
	}

	if cfg.DryRun {
		logger.Info().Msg("dry run: skipping payload write")
		return nil
	}
	if err := report.WriteJSON(cfg.OutputPath, payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	logger.Info().Int("entries", len(payload.Entries)).Msg("run complete")
	return nil
}
