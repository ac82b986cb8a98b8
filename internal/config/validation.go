package config

import (
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/mathspan/internal/foundation/errors"
	"git.home.luguber.info/inful/mathspan/internal/retry"
)

const (
	maxWatchDebounce = time.Minute
	minWatchRescan   = time.Second
)

// Validate checks cfg and canonicalizes its enum fields.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateLogging,
		validateOutput,
		validateMetrics,
		validateWatch,
		validateMath,
		validateNotify,
	}
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateLogging(cfg *Config) error {
	level, err := logLevelNormalizer.NormalizeWithValidation(string(cfg.Logging.Level))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid logging configuration").Fatal().Build()
	}
	format, err := logFormatNormalizer.NormalizeWithValidation(string(cfg.Logging.Format))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid logging configuration").Fatal().Build()
	}
	cfg.Logging.Level = level
	cfg.Logging.Format = format
	return nil
}

func validateOutput(cfg *Config) error {
	if strings.TrimSpace(cfg.Output.Directory) == "" {
		return ferrors.ConfigError("output.directory must not be empty").Build()
	}
	ext := cfg.Output.Extension
	if !strings.HasPrefix(ext, ".") || len(ext) < 2 || strings.ContainsAny(ext, `/\`) {
		return ferrors.ConfigError("output.extension must look like .html").
			WithContext("extension", ext).
			Build()
	}
	return nil
}

func validateMetrics(cfg *Config) error {
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Listen) == "" {
		return ferrors.ConfigError("metrics.listen is required when metrics are enabled").Build()
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Rescan < 0 || cfg.Watch.Rescan > 0 && cfg.Watch.Rescan < minWatchRescan {
		return ferrors.ConfigError("watch.rescan must be 0 or at least 1s").
			WithContext("rescan", cfg.Watch.Rescan.String()).
			Build()
	}
	if cfg.Watch.Debounce < 0 || cfg.Watch.Debounce > maxWatchDebounce {
		return ferrors.ConfigError("watch.debounce must be between 0 and 1m").
			WithContext("debounce", cfg.Watch.Debounce.String()).
			Build()
	}
	return nil
}

func validateMath(cfg *Config) error {
	for key := range cfg.Math.Options {
		if strings.TrimSpace(key) == "" {
			return ferrors.ConfigError("math.options keys must not be empty").Build()
		}
	}
	return nil
}

func validateNotify(cfg *Config) error {
	if strings.ContainsAny(cfg.Notify.Subject, " \t*>") {
		return ferrors.ConfigError("notify.subject must be a literal NATS subject").
			WithContext("subject", cfg.Notify.Subject).
			Build()
	}
	if cfg.Notify.MaxRetries < 0 {
		return ferrors.ConfigError("notify.max_retries cannot be negative").Build()
	}
	if _, err := retry.ParseMode(cfg.Notify.Backoff); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryConfig, "invalid notify configuration").Fatal().Build()
	}
	return nil
}
