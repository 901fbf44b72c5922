// Package dnsx wraps MX record resolution behind a small interface so
// the fallback resolver can be tested without the network.
package dnsx

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/zap"
)

// MXResolver resolves MX records for a domain. An empty result with a
// nil error means the domain has no MX records.
type MXResolver interface {
	LookupMX(ctx context.Context, domain string) ([]string, error)
}

// Resolver queries the configured nameservers directly. It tries each
// server in order and returns on the first usable answer.
type Resolver struct {
	client  *dns.Client
	servers []string
	logger  *zap.Logger
}

// NewResolver creates an MX resolver. With no servers given it reads
// the system resolv.conf and falls back to well-known public resolvers.
func NewResolver(servers []string, timeout time.Duration, logger *zap.Logger) *Resolver {
	if len(servers) == 0 {
		servers = systemNameservers()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Resolver{
		client:  &dns.Client{Timeout: timeout},
		servers: servers,
		logger:  logger,
	}
}

// LookupMX returns the MX target hosts for domain, ordered as answered.
// The context deadline bounds each exchange; callers own the overall
// budget.
func (r *Resolver) LookupMX(ctx context.Context, domain string) ([]string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(domain), dns.TypeMX)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range r.servers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, _, err := r.client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			r.logger.Debug("mx exchange failed",
				zap.String("domain", domain),
				zap.String("server", server),
				zap.Error(err))
			continue
		}

		if resp.Rcode == dns.RcodeNameError {
			return nil, nil
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("dns query for %s returned rcode %d", domain, resp.Rcode)
			continue
		}

		var hosts []string
		for _, rr := range resp.Answer {
			if mx, ok := rr.(*dns.MX); ok {
				hosts = append(hosts, mx.Mx)
			}
		}
		return hosts, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no nameservers configured")
	}
	return nil, fmt.Errorf("mx lookup for %s failed: %w", domain, lastErr)
}

func systemNameservers() []string {
	var servers []string
	if conf, err := dns.ClientConfigFromFile("/etc/resolv.conf"); err == nil {
		for _, s := range conf.Servers {
			servers = append(servers, s+":"+conf.Port)
		}
	}
	if len(servers) == 0 {
		servers = []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	return servers
}
