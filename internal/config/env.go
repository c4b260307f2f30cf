package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnvOverrides forcefully overwrites cfg fields with environment
// variables when the corresponding variable is set, so that env takes
// precedence over the YAML file while command-line flags, applied after
// this call, still take precedence over env.
func ApplyEnvOverrides(cfg *Config) {
	setString(&cfg.OllamaHost, "OLLAMA_HOST")
	setString(&cfg.OllamaModel, "OLLAMA_MODEL")
	setString(&cfg.InputPath, "INPUT_PATH")
	setString(&cfg.OutputPath, "OUTPUT_PATH")
	setString(&cfg.ReportDir, "REPORT_DIR")
	setString(&cfg.CacheDir, "CACHE_DIR")
	setString(&cfg.AuditLogPath, "AUDIT_LOG_PATH")

	setFloat(&cfg.OllamaTemperature, "OLLAMA_TEMPERATURE")
	setFloat(&cfg.MinBioScore, "MIN_BIO_SCORE")
	setFloat(&cfg.MinDocumentationScore, "MIN_DOCUMENTATION_SCORE")

	setInt(&cfg.OllamaMaxRetries, "OLLAMA_MAX_RETRIES")
	setInt(&cfg.OllamaRetryBackoffSeconds, "OLLAMA_RETRY_BACKOFF_SECONDS")
	setInt(&cfg.SchemaRetries, "SCHEMA_RETRIES")
	setInt(&cfg.Concurrency, "CONCURRENCY")
	setInt(&cfg.EuropePMCMaxPublications, "EUROPE_PMC_MAX_PUBLICATIONS")
	setInt(&cfg.EuropePMCTimeoutSeconds, "EUROPE_PMC_TIMEOUT_SECONDS")
	setInt(&cfg.HomepageTimeoutSeconds, "HOMEPAGE_TIMEOUT_SECONDS")

	setBool(&cfg.DryRun, "DRY_RUN")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.WritePDF, "WRITE_PDF")
	setBool(&cfg.EuropePMCEnabled, "EUROPE_PMC_ENABLED")
	setBool(&cfg.HomepageEnabled, "HOMEPAGE_ENABLED")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")

	setFloat(&cfg.CacheMaxAgeHours, "CACHE_MAX_AGE_HOURS")
	setInt64(&cfg.CacheMaxBytes, "CACHE_MAX_BYTES")
	setInt(&cfg.CacheMaxCount, "CACHE_MAX_COUNT")
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	s := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch s {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	}
}
