// Package analytics is the client for a tokenised Amazon-marketplace
// analytics provider (sales rank and price history by ASIN). It issues
// plain HTTP GET requests against the provider's REST API; there is no
// SDK to wrap.
package analytics

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// HTTPClientConfig mirrors the connection-pooling knobs a
// latency-sensitive external API client needs: explicit connect/read/
// write/total timeouts plus a bounded idle-connection pool so repeated
// calls against the same host reuse TCP/TLS handshakes.
type HTTPClientConfig struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	TotalTimeout   time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration

	TLSHandshakeTimeout time.Duration
	KeepAliveInterval   time.Duration
}

// DefaultHTTPClientConfig returns timeouts and pool sizes appropriate for
// a single-host JSON API client issuing one request per scan tick.
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    10 * time.Second,
		TotalTimeout:   30 * time.Second,

		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout: 5 * time.Second,
		KeepAliveInterval:   30 * time.Second,
	}
}

func newHTTPClient(cfg HTTPClientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.ConnectTimeout,
		KeepAlive: cfg.KeepAliveInterval,
	}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if deadline, ok := ctx.Deadline(); ok {
				if timeout := time.Until(deadline); timeout < cfg.ConnectTimeout {
					return (&net.Dialer{Timeout: timeout, KeepAlive: cfg.KeepAliveInterval}).DialContext(ctx, network, addr)
				}
			}
			return dialer.DialContext(ctx, network, addr)
		},
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		ResponseHeaderTimeout: cfg.ReadTimeout,
	}
	return &http.Client{Transport: transport, Timeout: cfg.TotalTimeout}
}

var (
	globalHTTPClient     *http.Client
	globalHTTPClientOnce sync.Once
)

func globalClient() *http.Client {
	globalHTTPClientOnce.Do(func() {
		globalHTTPClient = newHTTPClient(DefaultHTTPClientConfig())
	})
	return globalHTTPClient
}
