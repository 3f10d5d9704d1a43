// Package config loads and validates node configuration: a YAML file
// supplying structured defaults, overridden field-by-field by the
// CHORD_* environment variables spec.md §6.2 requires plus the ambient
// settings (logging, bootstrap discovery, telemetry, storage backend)
// a deployable node also needs.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"chorddfs/internal/configloader"
	"chorddfs/internal/logger"
)

type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

type LoggerConfig struct {
	Active   bool             `yaml:"active"`
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"`
	Mode     string           `yaml:"mode"`
	File     FileLoggerConfig `yaml:"file"`
}

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

// Route53Config parameterizes Route53-SRV-record based discovery.
type Route53Config struct {
	HostedZoneID string `yaml:"hostedZoneId"`
	DomainSuffix string `yaml:"domainSuffix"`
	TTL          int64  `yaml:"ttl"`
}

// DNSConfig parameterizes DNS SRV (or plain A/AAAA) based discovery.
type DNSConfig struct {
	Name     string `yaml:"name"`
	SRV      bool   `yaml:"srv"`
	Service  string `yaml:"service"`
	Proto    string `yaml:"proto"`
	Port     int    `yaml:"port"`
	Resolver string `yaml:"resolver"`
}

// DockerConfig parameterizes Docker container based discovery.
type DockerConfig struct {
	Suffix  string `yaml:"suffix"`
	Port    int    `yaml:"port"`
	Network string `yaml:"network"`
}

type BootstrapConfig struct {
	Mode    string        `yaml:"mode"` // static | dns | route53 | docker
	Peers   []string      `yaml:"peers"`
	DNS     DNSConfig     `yaml:"dns"`
	Route53 Route53Config `yaml:"route53"`
	Docker  DockerConfig  `yaml:"docker"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // memory | disk
	Path    string `yaml:"path"`
}

// ChordConfig holds the overlay parameters named in spec.md §6.2:
// identifier bit width, stabilization period, and per-call RPC timeout.
type ChordConfig struct {
	MBits           int           `yaml:"mBits"`
	StabilizePeriod time.Duration `yaml:"stabilizePeriod"`
	RPCTimeout      time.Duration `yaml:"rpcTimeout"`
}

type NodeConfig struct {
	Id            string `yaml:"id"`
	Bind          string `yaml:"bind"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	BootstrapHost string `yaml:"bootstrapHost"`
	BootstrapPort int    `yaml:"bootstrapPort"`
}

type Config struct {
	Logger    LoggerConfig    `yaml:"logger"`
	Chord     ChordConfig     `yaml:"chord"`
	Node      NodeConfig      `yaml:"node"`
	Bootstrap BootstrapConfig `yaml:"bootstrap"`
	Storage   StorageConfig   `yaml:"storage"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoadConfig loads the configuration from a YAML file at path. Only
// syntactic parsing happens here; call ApplyEnvOverrides then
// ValidateConfig before use.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := configloader.LoadYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnvOverrides applies spec.md §6.2's CHORD_* environment variables,
// plus the ambient settings this repository adds, over whatever was loaded
// from YAML.
//
//	CHORD_HOST             -> Node.Host
//	CHORD_PORT             -> Node.Port
//	CHORD_BOOTSTRAP_HOST   -> Node.BootstrapHost (also seeds Bootstrap.Peers in static mode)
//	CHORD_BOOTSTRAP_PORT   -> Node.BootstrapPort
//	CHORD_STORAGE_PATH     -> Storage.Path
//	CHORD_M                -> Chord.MBits
//	CHORD_STABILIZE_PERIOD -> Chord.StabilizePeriod
//	CHORD_RPC_TIMEOUT      -> Chord.RPCTimeout
//	NODE_ID, NODE_BIND     -> Node.Id, Node.Bind
//	BOOTSTRAP_MODE         -> Bootstrap.Mode
//	LOGGER_*, TRACE_*      -> Logger.*, Telemetry.Tracing.*
func (cfg *Config) ApplyEnvOverrides() {
	configloader.OverrideString(&cfg.Node.Host, "CHORD_HOST")
	configloader.OverrideInt(&cfg.Node.Port, "CHORD_PORT")
	configloader.OverrideString(&cfg.Node.BootstrapHost, "CHORD_BOOTSTRAP_HOST")
	configloader.OverrideInt(&cfg.Node.BootstrapPort, "CHORD_BOOTSTRAP_PORT")
	configloader.OverrideString(&cfg.Storage.Path, "CHORD_STORAGE_PATH")
	configloader.OverrideInt(&cfg.Chord.MBits, "CHORD_M")
	configloader.OverrideDuration(&cfg.Chord.StabilizePeriod, "CHORD_STABILIZE_PERIOD")
	configloader.OverrideDuration(&cfg.Chord.RPCTimeout, "CHORD_RPC_TIMEOUT")

	configloader.OverrideString(&cfg.Node.Id, "NODE_ID")
	configloader.OverrideString(&cfg.Node.Bind, "NODE_BIND")
	if cfg.Node.Bind == "" {
		cfg.Node.Bind = "0.0.0.0"
	}

	configloader.OverrideString(&cfg.Bootstrap.Mode, "BOOTSTRAP_MODE")
	configloader.OverrideStringSlice(&cfg.Bootstrap.Peers, "BOOTSTRAP_PEERS")

	if cfg.Node.BootstrapHost != "" {
		cfg.Bootstrap.Mode = "static"
		cfg.Bootstrap.Peers = []string{fmt.Sprintf("%s:%d", cfg.Node.BootstrapHost, cfg.Node.BootstrapPort)}
	}

	configloader.OverrideBool(&cfg.Logger.Active, "LOGGER_ENABLED")
	configloader.OverrideString(&cfg.Logger.Level, "LOGGER_LEVEL")
	configloader.OverrideString(&cfg.Logger.Encoding, "LOGGER_ENCODING")
	configloader.OverrideString(&cfg.Logger.Mode, "LOGGER_MODE")
	configloader.OverrideString(&cfg.Logger.File.Path, "LOGGER_FILE_PATH")

	configloader.OverrideBool(&cfg.Telemetry.Tracing.Enabled, "TRACE_ENABLED")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Exporter, "TRACE_EXPORTER")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Endpoint, "TRACE_ENDPOINT")
}

// ValidateConfig checks structural and enum-field correctness, accumulating
// every problem found into a single error.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	if cfg.Chord.MBits <= 0 || cfg.Chord.MBits >= 64 {
		errs = append(errs, "chord.mBits must be in (0,64)")
	}
	if cfg.Chord.StabilizePeriod <= 0 {
		errs = append(errs, "chord.stabilizePeriod must be > 0")
	}
	if cfg.Chord.RPCTimeout <= 0 {
		errs = append(errs, "chord.rpcTimeout must be > 0")
	}

	if cfg.Node.Port < 0 || cfg.Node.Port > 65535 {
		errs = append(errs, fmt.Sprintf("node.port must be in [0,65535], got %d", cfg.Node.Port))
	}

	switch cfg.Bootstrap.Mode {
	case "static":
		for _, p := range cfg.Bootstrap.Peers {
			if _, _, err := net.SplitHostPort(p); err != nil {
				errs = append(errs, fmt.Sprintf("invalid peer address %q in bootstrap.peers: %v", p, err))
			}
		}
	case "dns":
		if cfg.Bootstrap.DNS.Name == "" {
			errs = append(errs, "bootstrap.dns.name is required in mode=dns")
		}
	case "route53":
		if cfg.Bootstrap.Route53.HostedZoneID == "" {
			errs = append(errs, "bootstrap.route53.hostedZoneId is required in mode=route53")
		}
		if cfg.Bootstrap.Route53.DomainSuffix == "" {
			errs = append(errs, "bootstrap.route53.domainSuffix is required in mode=route53")
		}
	case "docker":
		if cfg.Bootstrap.Docker.Suffix == "" {
			errs = append(errs, "bootstrap.docker.suffix is required in mode=docker")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid bootstrap.mode: %s (must be static, dns, route53 or docker)", cfg.Bootstrap.Mode))
	}

	switch cfg.Storage.Backend {
	case "memory":
	case "disk":
		if cfg.Storage.Path == "" {
			errs = append(errs, "storage.path is required when storage.backend=disk")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid storage.backend: %s", cfg.Storage.Backend))
	}

	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			errs = append(errs, fmt.Sprintf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter))
		}
		if cfg.Telemetry.Tracing.Endpoint == "" && cfg.Telemetry.Tracing.Exporter != "stdout" {
			errs = append(errs, "telemetry.tracing.endpoint is required for non-stdout exporters")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig dumps the loaded configuration at DEBUG level.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("loaded configuration",
		logger.F("logger.active", cfg.Logger.Active),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),

		logger.F("chord.mBits", cfg.Chord.MBits),
		logger.F("chord.stabilizePeriod", cfg.Chord.StabilizePeriod.String()),
		logger.F("chord.rpcTimeout", cfg.Chord.RPCTimeout.String()),

		logger.F("node.id", cfg.Node.Id),
		logger.F("node.host", cfg.Node.Host),
		logger.F("node.port", cfg.Node.Port),
		logger.F("node.bootstrapHost", cfg.Node.BootstrapHost),
		logger.F("node.bootstrapPort", cfg.Node.BootstrapPort),

		logger.F("bootstrap.mode", cfg.Bootstrap.Mode),
		logger.F("bootstrap.peers", cfg.Bootstrap.Peers),

		logger.F("storage.backend", cfg.Storage.Backend),
		logger.F("storage.path", cfg.Storage.Path),

		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
		logger.F("telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter),
	)
}
