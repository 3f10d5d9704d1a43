package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"chorddfs/internal/config"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
)

// Docker discovers peers by listing containers on a shared Docker network
// whose name carries a configured suffix, using the Docker SDK rather than
// shelling out to the docker CLI.
type Docker struct {
	cli     *client.Client
	suffix  string
	port    int
	network string
	lgr     logger.Logger
}

// NewDocker builds a Docker bootstrap from the local daemon socket.
func NewDocker(cfg config.DockerConfig, lgr logger.Logger) (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("docker bootstrap: connect to daemon: %w", err)
	}
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &Docker{
		cli:     cli,
		suffix:  strings.TrimSpace(cfg.Suffix),
		port:    cfg.Port,
		network: strings.TrimSpace(cfg.Network),
		lgr:     lgr,
	}, nil
}

// Discover lists running containers attached to the configured network and
// returns "<container-name>:<port>" for each whose name carries the
// configured suffix. Container names double as addresses because they
// resolve via the Docker network's embedded DNS.
func (d *Docker) Discover(ctx context.Context) ([]string, error) {
	args := filters.NewArgs()
	if d.network != "" {
		args.Add("network", d.network)
	}
	containers, err := d.cli.ContainerList(ctx, container.ListOptions{Filters: args})
	if err != nil {
		return nil, fmt.Errorf("docker bootstrap: list containers: %w", err)
	}

	var out []string
	for _, c := range containers {
		name := strings.TrimPrefix(firstName(c.Names), "/")
		if name == "" || !strings.Contains(name, d.suffix) {
			continue
		}
		if d.network != "" {
			if _, ok := c.NetworkSettings.Networks[d.network]; !ok {
				continue
			}
		}
		out = append(out, fmt.Sprintf("%s:%d", name, d.port))
	}
	d.lgr.Debug("bootstrap: docker discovery", logger.F("found", len(out)))
	return out, nil
}

func firstName(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// Register is a no-op: container membership in the network is the only
// registration mechanism, and that happens outside this process.
func (d *Docker) Register(ctx context.Context, self ring.Node) error { return nil }

// Deregister is a no-op for the same reason.
func (d *Docker) Deregister(ctx context.Context, self ring.Node) error { return nil }
