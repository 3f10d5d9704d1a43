package bootstrap

import (
	"fmt"

	"chorddfs/internal/config"
	"chorddfs/internal/logger"
)

// New builds the configured Bootstrap implementation (static | dns |
// route53 | docker), mirroring the teacher's register.NewRegistrar
// dispatch-by-mode shape.
func New(cfg config.BootstrapConfig, lgr logger.Logger) (Bootstrap, error) {
	switch cfg.Mode {
	case "", "static":
		return NewStatic(cfg.Peers), nil
	case "dns":
		return NewDNS(cfg.DNS, lgr), nil
	case "route53":
		return NewRoute53(cfg.Route53)
	case "docker":
		return NewDocker(cfg.Docker, lgr)
	default:
		return nil, fmt.Errorf("bootstrap: unsupported mode %q", cfg.Mode)
	}
}
