// Package chain certificate chain discovery: AIA walk and issuer linkage
package chain

import (
	"context"
	"crypto/x509"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/whitekid/goxp/fx"
	"github.com/whitekid/goxp/log"
	"github.com/whitekid/goxp/request"

	"certhub/certmanager/parser"
	"certhub/certmanager/types"
	"certhub/pkg/metrics"
	"certhub/pkg/simplekv"
)

const (
	maxCertificateSize = 1 << 20
	maxFetchTimeout    = time.Second
	defaultMaxDepth    = 10
)

// Fetcher download issuer certificates by AIA CA issuers url
type Fetcher struct {
	timeout  time.Duration
	maxDepth int
	cacheTTL time.Duration
	cache    simplekv.Interface[string, []byte]
}

// NewFetcher create fetcher. fetched certificates are cached for cacheTTL, zero cacheTTL disables cache.
// timeout is capped to one second and non positive maxDepth means default depth
func NewFetcher(timeout time.Duration, maxDepth int, cacheTTL time.Duration) *Fetcher {
	if timeout <= 0 || timeout > maxFetchTimeout {
		timeout = maxFetchTimeout
	}

	return &Fetcher{
		timeout:  timeout,
		maxDepth: fx.Ternary(maxDepth <= 0, defaultMaxDepth, maxDepth),
		cacheTTL: cacheTTL,
		cache:    simplekv.New[string, []byte](),
	}
}

// FetchChain walk AIA from cert and returns DER of fetched issuers, nearest first.
// walk stops at certificate without AIA, repeated url, max depth or first failure.
// the error reports the failure; the certificates fetched before it are still returned
func (f *Fetcher) FetchChain(ctx context.Context, cert *x509.Certificate) ([][]byte, error) {
	log.Debugf("FetchChain(): subject=%s", cert.Subject)

	chain := [][]byte{}
	visited := map[string]struct{}{}
	urls := cert.IssuingCertificateURL

	for depth := 0; depth < f.maxDepth; depth++ {
		url := firstURL(urls)
		if url == "" {
			break
		}

		if _, ok := visited[url]; ok {
			log.Debugf("stop chain download, loop detected: url=%s", url)
			break
		}
		visited[url] = struct{}{}

		body, err := f.fetch(ctx, url)
		if err != nil {
			metrics.ChainFetches.WithLabelValues("failed").Inc()
			return chain, err
		}
		metrics.ChainFetches.WithLabelValues("success").Inc()

		issuer, err := parser.Parse(body)
		if err != nil {
			return chain, errors.Wrapf(types.ErrChainFetch, "invalid certificate from %s: %s", url, err)
		}

		chain = append(chain, issuer.DER)
		urls = issuer.IssuingURLs
	}

	return chain, nil
}

func firstURL(urls []string) string {
	for _, u := range urls {
		if u != "" {
			return u
		}
	}
	return ""
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	if f.cacheTTL > 0 {
		if body, err := f.cache.Get(ctx, url); err == nil {
			log.Debugf("fetch %s: cached", url)
			return body, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	resp, err := request.Get("%s", url).Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(types.ErrChainFetch, "fetch %s: %s", url, err)
	}
	defer resp.Body.Close()

	if !resp.Success() {
		return nil, errors.Wrapf(types.ErrChainFetch, "fetch %s: status=%d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCertificateSize))
	if err != nil {
		return nil, errors.Wrapf(types.ErrChainFetch, "fetch %s: %s", url, err)
	}

	if f.cacheTTL > 0 {
		f.cache.Set(ctx, url, body, f.cacheTTL)
	}

	return body, nil
}

// Cleanup remove expired cache entries
func (f *Fetcher) Cleanup(ctx context.Context) error { return f.cache.Cleanup(ctx) }
