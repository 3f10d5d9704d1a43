package loadgen

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	mathrand "math/rand"
	"sync"
	"time"

	"chorddfs/internal/bootstrap"
	"chorddfs/internal/chorderr"
	"chorddfs/internal/dhtclient"
	"chorddfs/internal/loadgen/writer"
	"chorddfs/internal/logger"
)

// Runner drives a weighted save/get/delete workload against whatever
// peers bootstrap discovery reports, the way the teacher's Tester drives
// a lookup-only workload. Generated file names are remembered across
// waves so get/delete requests exercise real, previously-saved files
// rather than always missing.
type Runner struct {
	cfg     *Config
	logger  logger.Logger
	writer  writer.Writer
	boot    bootstrap.Bootstrap
	client  *dhtclient.Client
	started time.Time

	mu    sync.Mutex
	names []string
}

// New builds a Runner from its fully validated configuration.
func New(cfg *Config, lgr logger.Logger, w writer.Writer, boot bootstrap.Bootstrap) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: lgr,
		writer: w,
		boot:   boot,
		client: dhtclient.New(cfg.Workload.Timeout),
	}
}

// Run drives waves of requests until the configured duration elapses or
// ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Info("load generator started", logger.F("duration", r.cfg.Simulation.Duration))
	r.started = time.Now()
	endTime := r.started.Add(r.cfg.Simulation.Duration)
	interval := time.Duration(float64(time.Second) / r.cfg.Workload.Rate)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if time.Now().After(endTime) {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.runWave(ctx); err != nil {
				r.logger.Error("request wave failed", logger.F("err", err.Error()))
			}
		}
	}

	r.logger.Info("load generator finished")
	return nil
}

func (r *Runner) runWave(ctx context.Context) error {
	nodes, err := r.boot.Discover(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap discovery failed: %w", err)
	}
	if len(nodes) == 0 {
		r.logger.Warn("no nodes discovered")
		return nil
	}

	p := randomInt(r.cfg.Workload.Parallelism.MinWorkers, r.cfg.Workload.Parallelism.MaxWorkers)
	r.logger.Debug("starting request wave", logger.F("parallel", p), logger.F("nodes", len(nodes)))

	var wg sync.WaitGroup
	wg.Add(p)
	for i := 0; i < p; i++ {
		go func() {
			defer wg.Done()
			select {
			case <-ctx.Done():
			default:
				r.doRequest(nodes)
			}
		}()
	}
	wg.Wait()
	return nil
}

func (r *Runner) doRequest(nodes []string) {
	node := nodes[mathrand.Intn(len(nodes))]
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Workload.Timeout)
	defer cancel()

	switch r.pickOp() {
	case "save":
		r.doSave(ctx, node)
	case "get":
		r.doGet(ctx, node)
	case "delete":
		r.doDelete(ctx, node)
	}
}

// pickOp chooses an operation according to the configured mix weights.
func (r *Runner) pickOp() string {
	mix := r.cfg.Workload.Mix
	total := mix.Save + mix.Get + mix.Delete
	roll := mathrand.Float64() * total
	switch {
	case roll < mix.Save:
		return "save"
	case roll < mix.Save+mix.Get:
		return "get"
	default:
		return "delete"
	}
}

func (r *Runner) doSave(ctx context.Context, node string) {
	name, err := r.generateName()
	if err != nil {
		r.logger.Warn("failed to generate name", logger.F("err", err.Error()))
		return
	}
	payload := make([]byte, r.cfg.Workload.PayloadSize)
	if _, err := rand.Read(payload); err != nil {
		r.logger.Warn("failed to generate payload", logger.F("err", err.Error()))
		return
	}

	delay, err := r.client.Save(ctx, node, name, payload)
	r.report(node, "save", name, delay, err)
	if err == nil {
		r.remember(name)
	}
}

func (r *Runner) doGet(ctx context.Context, node string) {
	name, ok := r.randomKnownName()
	if !ok {
		r.doSave(ctx, node)
		return
	}
	_, delay, err := r.client.Get(ctx, node, name)
	r.report(node, "get", name, delay, err)
}

func (r *Runner) doDelete(ctx context.Context, node string) {
	name, ok := r.forgetRandomName()
	if !ok {
		r.doSave(ctx, node)
		return
	}
	delay, err := r.client.Delete(ctx, node, name)
	r.report(node, "delete", name, delay, err)
}

func (r *Runner) report(node, op, name string, delay time.Duration, err error) {
	var result string
	switch {
	case err == nil:
		result = "SUCCESS"
	case errors.Is(err, chorderr.ErrNotFound):
		result = "NOT_FOUND"
	case errors.Is(err, chorderr.ErrTransport):
		r.logger.Debug("node unreachable (skipping CSV)",
			logger.F("node", node), logger.F("op", op), logger.F("name", name), logger.F("err", err.Error()))
		return
	default:
		result = fmt.Sprintf("ERROR_%v", err)
	}

	r.logger.Info("request result",
		logger.F("node", node),
		logger.F("op", op),
		logger.F("name", name),
		logger.F("result", result),
		logger.F("delay_ms", delay.Milliseconds()),
	)
	if err := r.writer.WriteRow(op, name, result, delay); err != nil {
		r.logger.Warn("failed to write result row", logger.F("err", err.Error()))
	}
}

func (r *Runner) remember(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.names = append(r.names, name)
}

func (r *Runner) randomKnownName() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.names) == 0 {
		return "", false
	}
	return r.names[mathrand.Intn(len(r.names))], true
}

// forgetRandomName removes and returns a random known name so a deleted
// file isn't picked again by a later get/delete.
func (r *Runner) forgetRandomName() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.names) == 0 {
		return "", false
	}
	i := mathrand.Intn(len(r.names))
	name := r.names[i]
	r.names[i] = r.names[len(r.names)-1]
	r.names = r.names[:len(r.names)-1]
	return name, true
}

func randomInt(min, max int) int {
	if min >= max {
		return min
	}
	return mathrand.Intn(max-min+1) + min
}

func (r *Runner) generateName() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random name: %w", err)
	}
	return "loadgen-" + hex.EncodeToString(buf) + ".bin", nil
}
