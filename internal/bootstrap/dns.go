package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"chorddfs/internal/config"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
)

// DNS resolves bootstrap peers via SRV or A/AAAA lookups. A failed or
// empty lookup is reported as zero peers, not an error: the caller then
// falls back to bootstrapping alone.
type DNS struct {
	cfg config.DNSConfig
	lgr logger.Logger
}

// NewDNS builds a DNS bootstrap from the configured zone/service/resolver.
func NewDNS(cfg config.DNSConfig, lgr logger.Logger) *DNS {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &DNS{cfg: cfg, lgr: lgr}
}

// Register is a no-op: plain DNS has no write path this node can use.
func (d *DNS) Register(ctx context.Context, self ring.Node) error { return nil }

// Deregister is a no-op for the same reason.
func (d *DNS) Deregister(ctx context.Context, self ring.Node) error { return nil }

func (d *DNS) server() string {
	server := d.cfg.Resolver
	if server == "" {
		return "8.8.8.8:53"
	}
	if !strings.Contains(server, ":") {
		return server + ":53"
	}
	return server
}

// Discover queries SRV records when cfg.SRV is set, otherwise plain A/AAAA.
func (d *DNS) Discover(ctx context.Context) ([]string, error) {
	client := &dns.Client{Timeout: 2 * time.Second}
	server := d.server()

	qctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if d.cfg.SRV {
		return d.discoverSRV(qctx, client, server)
	}
	return d.discoverHost(qctx, client, server)
}

func (d *DNS) discoverSRV(ctx context.Context, client *dns.Client, server string) ([]string, error) {
	name := fmt.Sprintf("_%s._%s.%s", d.cfg.Service, d.cfg.Proto, d.cfg.Name)
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeSRV)
	d.lgr.Info("bootstrap: sending SRV query", logger.F("qname", msg.Question[0].Name))

	in, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		d.lgr.Warn("bootstrap: SRV lookup failed", logger.F("qname", name), logger.F("err", err.Error()))
		return []string{}, nil
	}
	if len(in.Answer) == 0 {
		d.lgr.Warn("bootstrap: SRV lookup returned no answers", logger.F("qname", name))
		return []string{}, nil
	}

	targets := map[string][]string{}
	for _, extra := range in.Extra {
		switch rr := extra.(type) {
		case *dns.A:
			n := strings.TrimSuffix(rr.Hdr.Name, ".")
			targets[n] = append(targets[n], rr.A.String())
		case *dns.AAAA:
			n := strings.TrimSuffix(rr.Hdr.Name, ".")
			targets[n] = append(targets[n], rr.AAAA.String())
		}
	}

	var out []string
	for _, ans := range in.Answer {
		srv, ok := ans.(*dns.SRV)
		if !ok {
			continue
		}
		target := strings.TrimSuffix(srv.Target, ".")
		ips, found := targets[target]
		if !found {
			ips = d.resolveHost(ctx, client, server, target)
		}
		for _, ip := range ips {
			out = append(out, formatAddr(ip, int(srv.Port)))
		}
	}
	return out, nil
}

func (d *DNS) resolveHost(ctx context.Context, client *dns.Client, server, target string) []string {
	var ips []string
	msgA := new(dns.Msg)
	msgA.SetQuestion(dns.Fqdn(target), dns.TypeA)
	if inA, _, err := client.ExchangeContext(ctx, msgA, server); err == nil {
		for _, a := range inA.Answer {
			if arec, ok := a.(*dns.A); ok {
				ips = append(ips, arec.A.String())
			}
		}
	}
	msgAAAA := new(dns.Msg)
	msgAAAA.SetQuestion(dns.Fqdn(target), dns.TypeAAAA)
	if inAAAA, _, err := client.ExchangeContext(ctx, msgAAAA, server); err == nil {
		for _, a := range inAAAA.Answer {
			if aaaa, ok := a.(*dns.AAAA); ok {
				ips = append(ips, aaaa.AAAA.String())
			}
		}
	}
	return ips
}

func (d *DNS) discoverHost(ctx context.Context, client *dns.Client, server string) ([]string, error) {
	name := dns.Fqdn(d.cfg.Name)
	msg := new(dns.Msg)
	msg.SetQuestion(name, dns.TypeA)

	in, _, err := client.ExchangeContext(ctx, msg, server)
	if err != nil {
		d.lgr.Warn("bootstrap: A lookup failed", logger.F("qname", name), logger.F("err", err.Error()))
		return []string{}, nil
	}

	var out []string
	for _, ans := range in.Answer {
		if a, ok := ans.(*dns.A); ok {
			out = append(out, formatAddr(a.A.String(), d.cfg.Port))
		}
	}
	if len(out) == 0 {
		msg6 := new(dns.Msg)
		msg6.SetQuestion(name, dns.TypeAAAA)
		if in6, _, err := client.ExchangeContext(ctx, msg6, server); err == nil {
			for _, ans := range in6.Answer {
				if aaaa, ok := ans.(*dns.AAAA); ok {
					out = append(out, formatAddr(aaaa.AAAA.String(), d.cfg.Port))
				}
			}
		}
	}
	if len(out) == 0 {
		d.lgr.Warn("bootstrap: host lookup returned no addresses", logger.F("qname", name))
	}
	return out, nil
}

func formatAddr(ip string, port int) string {
	if strings.Contains(ip, ":") {
		return fmt.Sprintf("[%s]:%d", ip, port)
	}
	return fmt.Sprintf("%s:%d", ip, port)
}
