package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"dupefinder/config"
	"dupefinder/dedupe"
	"dupefinder/imageprocessor"
	"dupefinder/logging"
	"dupefinder/scanner"
)

type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	logFile    string
}

type commandContext struct {
	flags *globalFlags

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.flags.configPath))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if v := strings.TrimSpace(c.flags.logLevel); v != "" {
			cfg.Logging.Level = strings.ToLower(v)
		}
		if v := strings.TrimSpace(c.flags.logFormat); v != "" {
			cfg.Logging.Format = strings.ToLower(v)
		}
		if v := strings.TrimSpace(c.flags.logFile); v != "" {
			cfg.Logging.File = v
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config, c.configPath, c.configExists = cfg, path, exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		outputs := []string{"stderr"}
		if cfg.Logging.File != "" {
			outputs = append(outputs, cfg.Logging.File)
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
	})
	return c.logger, c.loggerErr
}

// engineOptions assembles dedupe options from the effective config
func (c *commandContext) engineOptions(cfg *config.Config, params dedupe.Params, progress scanner.ProgressReporter) (dedupe.Options, error) {
	logger, err := c.ensureLogger()
	if err != nil {
		return dedupe.Options{}, err
	}
	strategy, err := dedupe.ParseStrategy(cfg.Search.Strategy)
	if err != nil {
		return dedupe.Options{}, err
	}
	resampler, err := imageprocessor.NewResampler(cfg.Search.Resampler, cfg.Search.Filter)
	if err != nil {
		return dedupe.Options{}, err
	}
	return dedupe.Options{
		Params:          params,
		Strategy:        strategy,
		FingerprintSize: cfg.Index.FingerprintSize,
		Buckets:         cfg.Index.Buckets,
		Workers:         cfg.Index.Workers,
		Resampler:       resampler,
		Logger:          logger,
		Progress:        progress,
	}, nil
}
