// Package loadgen drives a scripted save/get/delete workload against a
// running chorddfs ring and reports per-request latency. Grounded on the
// teacher's internal/client/tester package, re-targeted at the HTTP
// /files surface (internal/dhtclient) instead of grpc Lookup calls, and
// widened from a single lookup operation to a weighted save/get/delete mix
// representative of spec.md §4's file operations.
package loadgen

import (
	"fmt"
	"strings"
	"time"

	"chorddfs/internal/config"
	"chorddfs/internal/configloader"
	"chorddfs/internal/logger"
)

// SimulationConfig controls the overall run duration.
type SimulationConfig struct {
	Duration time.Duration `yaml:"duration"`
}

// ParallelismConfig bounds how many concurrent workers a wave uses.
type ParallelismConfig struct {
	MinWorkers int `yaml:"min"`
	MaxWorkers int `yaml:"max"`
}

// MixConfig weights which operation a generated request performs. Weights
// need not sum to 1; they are normalized at selection time.
type MixConfig struct {
	Save   float64 `yaml:"save"`
	Get    float64 `yaml:"get"`
	Delete float64 `yaml:"delete"`
}

// WorkloadConfig defines how requests are generated and paced.
type WorkloadConfig struct {
	Rate        float64           `yaml:"rate"` // request waves per second; each wave issues MinWorkers..MaxWorkers requests
	Timeout     time.Duration     `yaml:"timeout"`
	PayloadSize int               `yaml:"payloadSize"` // bytes of random data per save
	Parallelism ParallelismConfig `yaml:"parallelism"`
	Mix         MixConfig         `yaml:"mix"`
}

// CSVConfig controls result reporting.
type CSVConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Config is the root configuration for the load generator.
type Config struct {
	Logger     config.LoggerConfig    `yaml:"logger"`
	Simulation SimulationConfig       `yaml:"simulation"`
	Bootstrap  config.BootstrapConfig `yaml:"bootstrap"`
	CSV        CSVConfig              `yaml:"csv"`
	Workload   WorkloadConfig         `yaml:"workload"`
}

// Load reads path and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := configloader.LoadYAML(path, cfg); err != nil {
		return nil, err
	}

	configloader.OverrideBool(&cfg.Logger.Active, "LOGGER_ACTIVE")
	configloader.OverrideString(&cfg.Logger.Level, "LOGGER_LEVEL")
	configloader.OverrideString(&cfg.Logger.Encoding, "LOGGER_ENCODING")
	configloader.OverrideString(&cfg.Logger.Mode, "LOGGER_MODE")
	configloader.OverrideString(&cfg.Logger.File.Path, "LOGGER_FILE_PATH")
	configloader.OverrideInt(&cfg.Logger.File.MaxSize, "LOGGER_FILE_MAXSIZE")
	configloader.OverrideInt(&cfg.Logger.File.MaxBackups, "LOGGER_FILE_MAXBACKUPS")
	configloader.OverrideInt(&cfg.Logger.File.MaxAge, "LOGGER_FILE_MAXAGE")
	configloader.OverrideBool(&cfg.Logger.File.Compress, "LOGGER_FILE_COMPRESS")

	configloader.OverrideDuration(&cfg.Simulation.Duration, "LOADGEN_DURATION")

	configloader.OverrideString(&cfg.Bootstrap.Mode, "BOOTSTRAP_MODE")
	configloader.OverrideStringSlice(&cfg.Bootstrap.Peers, "BOOTSTRAP_PEERS")
	configloader.OverrideString(&cfg.Bootstrap.Docker.Suffix, "DOCKER_SUFFIX")
	configloader.OverrideString(&cfg.Bootstrap.Docker.Network, "DOCKER_NETWORK")
	configloader.OverrideInt(&cfg.Bootstrap.Docker.Port, "DOCKER_PORT")
	configloader.OverrideString(&cfg.Bootstrap.Route53.HostedZoneID, "ROUTE53_ZONE_ID")
	configloader.OverrideString(&cfg.Bootstrap.Route53.DomainSuffix, "ROUTE53_DOMAIN_SUFFIX")
	configloader.OverrideInt64(&cfg.Bootstrap.Route53.TTL, "ROUTE53_TTL")

	configloader.OverrideBool(&cfg.CSV.Enabled, "CSV_ENABLED")
	configloader.OverrideString(&cfg.CSV.Path, "CSV_PATH")

	configloader.OverrideFloat(&cfg.Workload.Rate, "LOADGEN_RATE")
	configloader.OverrideDuration(&cfg.Workload.Timeout, "LOADGEN_TIMEOUT")
	configloader.OverrideInt(&cfg.Workload.PayloadSize, "LOADGEN_PAYLOAD_SIZE")
	configloader.OverrideInt(&cfg.Workload.Parallelism.MinWorkers, "LOADGEN_PARALLELISM_MIN")
	configloader.OverrideInt(&cfg.Workload.Parallelism.MaxWorkers, "LOADGEN_PARALLELISM_MAX")

	return cfg, nil
}

// Validate rejects a configuration that cannot drive a run.
func (c *Config) Validate() error {
	var errs []string

	if c.Logger.Active {
		switch c.Logger.Level {
		case "debug", "info", "warn", "error":
		default:
			errs = append(errs, fmt.Sprintf("logger.level must be one of [debug, info, warn, error], got %q", c.Logger.Level))
		}
		if c.Logger.Mode == "file" && c.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path must be set when logger.mode = file")
		}
	}

	if c.Simulation.Duration <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.duration must be > 0 (got %v)", c.Simulation.Duration))
	}

	switch c.Bootstrap.Mode {
	case "static", "dns", "route53", "docker":
	default:
		errs = append(errs, fmt.Sprintf("bootstrap.mode must be one of [static, dns, route53, docker], got %q", c.Bootstrap.Mode))
	}

	if c.CSV.Enabled && c.CSV.Path == "" {
		errs = append(errs, "csv.path must be set when csv.enabled = true")
	}

	if c.Workload.Rate <= 0 {
		errs = append(errs, fmt.Sprintf("workload.rate must be > 0 (got %f)", c.Workload.Rate))
	}
	if c.Workload.PayloadSize <= 0 {
		errs = append(errs, fmt.Sprintf("workload.payloadSize must be > 0 (got %d)", c.Workload.PayloadSize))
	}
	if c.Workload.Parallelism.MinWorkers <= 0 {
		errs = append(errs, fmt.Sprintf("workload.parallelism.min must be > 0 (got %d)", c.Workload.Parallelism.MinWorkers))
	}
	if c.Workload.Parallelism.MaxWorkers < c.Workload.Parallelism.MinWorkers {
		errs = append(errs, fmt.Sprintf("workload.parallelism.max must be >= min (got %d < %d)",
			c.Workload.Parallelism.MaxWorkers, c.Workload.Parallelism.MinWorkers))
	}
	if c.Workload.Mix.Save+c.Workload.Mix.Get+c.Workload.Mix.Delete <= 0 {
		errs = append(errs, "workload.mix must have at least one positive weight")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig reports the loaded configuration at INFO level.
func (c *Config) LogConfig(lgr logger.Logger) {
	lgr.Info("loaded load generator configuration",
		logger.F("logger.active", c.Logger.Active),
		logger.F("logger.level", c.Logger.Level),
		logger.F("simulation.duration", c.Simulation.Duration.String()),
		logger.F("bootstrap.mode", c.Bootstrap.Mode),
		logger.F("csv.enabled", c.CSV.Enabled),
		logger.F("csv.path", c.CSV.Path),
		logger.F("workload.rate", c.Workload.Rate),
		logger.F("workload.payloadSize", c.Workload.PayloadSize),
		logger.F("workload.parallelism.min", c.Workload.Parallelism.MinWorkers),
		logger.F("workload.parallelism.max", c.Workload.Parallelism.MaxWorkers),
	)
}
