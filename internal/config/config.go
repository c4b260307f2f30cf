// Package config loads pipeline configuration from three layers, in
// increasing precedence: built-in defaults and an optional YAML file, then
// environment variables, then command-line flags.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the fully resolved configuration for one pipeline run.
type Config struct {
	InputPath   string `yaml:"input_path"`
	OutputPath  string `yaml:"output_path"`
	ReportDir   string `yaml:"report_dir"`
	PayloadVersion string `yaml:"payload_version"`
	DryRun      bool   `yaml:"dry_run"`

	OllamaHost        string  `yaml:"ollama_host"`
	OllamaModel       string  `yaml:"ollama_model"`
	OllamaTemperature float64 `yaml:"ollama_temperature"`
	OllamaMaxRetries  int     `yaml:"ollama_max_retries"`
	OllamaRetryBackoffSeconds int `yaml:"ollama_retry_backoff_seconds"`
	SchemaRetries     int     `yaml:"schema_retries"`
	Concurrency       int     `yaml:"concurrency"`

	MinBioScore           float64 `yaml:"min_bio_score"`
	MinDocumentationScore float64 `yaml:"min_documentation_score"`

	EuropePMCEnabled         bool `yaml:"europe_pmc_enabled"`
	EuropePMCIncludeFullText bool `yaml:"europe_pmc_include_full_text"`
	EuropePMCMaxPublications int  `yaml:"europe_pmc_max_publications"`
	EuropePMCMaxFullTextChars int `yaml:"europe_pmc_max_full_text_chars"`
	EuropePMCTimeoutSeconds  int  `yaml:"europe_pmc_timeout_seconds"`

	HomepageEnabled       bool   `yaml:"homepage_enabled"`
	HomepageTimeoutSeconds int   `yaml:"homepage_timeout_seconds"`
	HomepageUserAgent     string `yaml:"homepage_user_agent"`
	HomepageMaxBytes      int64  `yaml:"homepage_max_bytes"`
	HomepageMaxFrameFetches int  `yaml:"homepage_max_frame_fetches"`
	HomepageMaxFrameDepth  int   `yaml:"homepage_max_frame_depth"`

	CacheDir    string `yaml:"cache_dir"`
	CacheClear  bool   `yaml:"cache_clear"`
	CacheMaxAgeHours float64 `yaml:"cache_max_age_hours"`
	CacheMaxBytes    int64   `yaml:"cache_max_bytes"`
	CacheMaxCount    int     `yaml:"cache_max_count"`
	AuditLogPath string `yaml:"audit_log_path"`
	WritePDF    bool   `yaml:"write_pdf"`
	Verbose     bool   `yaml:"verbose"`
}

// Defaults returns the built-in configuration baseline that the YAML file,
// environment variables and flags are layered over.
func Defaults() Config {
	return Config{
		OutputPath:     "updated_entries.json",
		ReportDir:      ".",
		PayloadVersion: "1.0",

		OllamaHost:                "http://localhost:11434",
		OllamaModel:               "llama3.2",
		OllamaTemperature:         0.01,
		OllamaMaxRetries:          3,
		OllamaRetryBackoffSeconds: 2,
		SchemaRetries:             1,
		Concurrency:               8,

		MinBioScore:           0.5,
		MinDocumentationScore: 0.5,

		EuropePMCEnabled:          true,
		EuropePMCIncludeFullText:  true,
		EuropePMCMaxPublications:  1,
		EuropePMCMaxFullTextChars: 4000,
		EuropePMCTimeoutSeconds:   15,

		HomepageEnabled:         true,
		HomepageTimeoutSeconds:  8,
		HomepageUserAgent:       "biotoolsllmannotate/1.0 (+https://github.com/ELIXIR-Belgium/biotoolsLLMAnnotate)",
		HomepageMaxBytes:        2_000_000,
		HomepageMaxFrameFetches: 5,
		HomepageMaxFrameDepth:   2,

		CacheDir:         ".cache",
		CacheMaxAgeHours: 0,
		CacheMaxBytes:    0,
		CacheMaxCount:    0,
	}
}

// LoadFile overlays YAML file contents at path onto cfg. A missing file at
// the default path is not an error; an explicitly-requested missing file is.
func LoadFile(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
