package ipinfolib

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/9seconds/ipinfo/refdata"
)

// Client resolves IP addresses with remote API. It keeps an LRU cache of
// resolved addresses so repeated lookups cost nothing, splits big
// lookups into batches and enriches results with reference data.
//
// Client is safe for concurrent use. It has to be shutdown to release
// its workers.
type Client struct {
	logger       Logger
	cache        *Cache
	enricher     enricher
	fetcher      *fetcher
	stats        *UsageStats
	maxBatchSize int

	// closes http client if it was created by NewClient
	closeHTTPClient func()

	rwmutex    sync.RWMutex
	closeOnce  sync.Once
	workerPool *ants.PoolWithFunc
	closed     bool
}

// LookupBatch resolves all given addresses. Returned map has an entry
// for every requested value, in a form it was requested.
//
// Top-level error is returned only if nothing can be done: addresses are
// absent, client is shutdown or misconfigured. Everything else is
// reported per address.
func (c *Client) LookupBatch(ctx context.Context, ips []string) (BatchResults, error) {
	c.rwmutex.RLock()
	defer c.rwmutex.RUnlock()

	if c.closed {
		return nil, ErrClientShutdown
	}

	if len(ips) == 0 {
		return nil, ErrNoAddresses
	}

	parts := partitionAddresses(ips, c.cache)
	resolved := make(map[string]BatchItem, parts.total())
	hits := 0

	for _, ip := range parts.cached {
		// address could be evicted after partitioning
		if result, ok := c.cache.Get(ip); ok {
			resolved[ip] = BatchItem{Result: result}
			hits++
		} else {
			parts.uncached = append(parts.uncached, ip)
		}
	}

	for _, ip := range parts.bogons {
		resolved[ip] = BatchItem{Result: &Result{IP: ip, Bogon: true}}
	}

	if len(parts.uncached) > 0 && c.fetcher.token == "" {
		return nil, &ConfigError{Option: "token", Err: ErrMissingToken}
	}

	c.stats.Used(hits, len(parts.uncached), len(parts.bogons), len(parts.invalid))
	metricCacheHits.Add(float64(hits))
	metricCacheMisses.Add(float64(len(parts.uncached)))

	for _, res := range c.fetchAll(ctx, parts.uncached) {
		for _, ip := range res.ips {
			if res.err != nil {
				resolved[ip] = BatchItem{Err: res.err}
			} else {
				resolved[ip] = res.items[ip]
			}
		}
	}

	rv := assembleResults(parts, resolved)

	for raw, item := range rv {
		if item.Err != nil {
			c.logger.AddressFailed(raw, item.Err)
			metricAddressErrors.WithLabelValues(ErrorKind(item.Err)).Inc()
		}
	}

	return rv, nil
}

// Lookup resolves a single address.
func (c *Client) Lookup(ctx context.Context, ip string) (*Result, error) {
	results, err := c.LookupBatch(ctx, []string{ip})
	if err != nil {
		return nil, err
	}

	item := results[ip]
	if item.Err != nil {
		return nil, item.Err
	}

	return item.Result, nil
}

// LookupSelf resolves an address which remote API sees as a source of
// the request. This result is not cached.
func (c *Client) LookupSelf(ctx context.Context) (*Result, error) {
	c.rwmutex.RLock()
	defer c.rwmutex.RUnlock()

	if c.closed {
		return nil, ErrClientShutdown
	}

	result, err := c.fetcher.FetchSelf(ctx)
	if err != nil {
		return nil, err
	}

	c.enricher.Enrich(result)

	return result, nil
}

// GetMap uploads given addresses to the map tool of remote API and
// returns an URL of the report. Invalid addresses are skipped.
func (c *Client) GetMap(ctx context.Context, ips []string) (string, error) {
	c.rwmutex.RLock()
	defer c.rwmutex.RUnlock()

	switch {
	case c.closed:
		return "", ErrClientShutdown
	case len(ips) == 0:
		return "", ErrNoAddresses
	case len(ips) > MaxMapSize:
		return "", fmt.Errorf("%w: map accepts at most %d addresses", ErrTooManyAddresses, MaxMapSize)
	}

	toSend := make([]string, 0, len(ips))
	seen := make(map[string]struct{}, len(ips))

	for _, raw := range ips {
		addr, err := NormalizeAddress(raw)
		if err != nil {
			c.logger.AddressFailed(raw, err)

			continue
		}

		normalized := addr.String()

		if _, ok := seen[normalized]; !ok {
			seen[normalized] = struct{}{}
			toSend = append(toSend, normalized)
		}
	}

	if len(toSend) == 0 {
		return "", ErrNoAddresses
	}

	return c.fetcher.FetchMap(ctx, toSend)
}

// Stats returns usage statistics of the client.
func (c *Client) Stats() *UsageStats {
	return c.stats
}

// Shutdown releases workers of the client. All calls after shutdown
// return ErrClientShutdown.
func (c *Client) Shutdown() {
	c.rwmutex.Lock()
	defer c.rwmutex.Unlock()

	c.closed = true

	c.closeOnce.Do(func() {
		c.workerPool.Release()
		c.closeHTTPClient()
	})
}

// fetchAll resolves addresses chunk by chunk in worker pool. Every
// address of a chunk which was not scheduled gets an error of closed
// context.
func (c *Client) fetchAll(ctx context.Context, ips []string) []fetchChunkResult {
	chunks := splitChunks(ips, c.maxBatchSize)
	if len(chunks) == 0 {
		return nil
	}

	resultChannel := make(chan fetchChunkResult, len(chunks))
	rv := make([]fetchChunkResult, 0, len(chunks))
	wg := &sync.WaitGroup{}
	groupRequest := newPoolChunkRequest(ctx, resultChannel, wg, c.workerPool)

	for i, chunk := range chunks {
		if err := groupRequest.Do(chunk); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				err = ctxErr
			}

			for _, notScheduled := range chunks[i:] {
				rv = append(rv, fetchChunkResult{
					ips: notScheduled,
					err: &FetchError{Err: err},
				})
			}

			break
		}
	}

	go func() {
		wg.Wait()
		close(resultChannel)
	}()

	for res := range resultChannel {
		rv = append(rv, res)
	}

	return rv
}

func (c *Client) fetchChunk(args interface{}) {
	params := args.(*fetchChunkRequest)
	defer params.wg.Done()

	rv := fetchChunkResult{
		ips: params.ips,
	}

	if err := params.ctx.Err(); err != nil {
		rv.err = &FetchError{Err: err}
	} else {
		started := time.Now()
		rv.items, rv.err = c.fetcher.FetchBatch(params.ctx, params.ips)
		elapsed := time.Since(started)

		metricChunkRequests.Inc()
		metricChunkDuration.Observe(elapsed.Seconds())

		if rv.err == nil {
			commitChunk(rv.items, c.enricher, c.cache)
			c.logger.ChunkFetched(len(params.ips), elapsed)
		}
	}

	failed := len(params.ips)

	if rv.err != nil {
		c.logger.ChunkFailed(len(params.ips), rv.err)
		metricChunkFailures.WithLabelValues(ErrorKind(rv.err)).Inc()
	} else {
		failed = 0

		for _, item := range rv.items {
			if item.Err != nil {
				failed++
			}
		}
	}

	c.stats.Fetched(len(params.ips), failed, rv.err)

	params.resultChannel <- rv
}

// NewClient builds a new client. Reference data is loaded here, once per
// client.
func NewClient(opts ClientOpts) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	store, err := refdata.Load(opts.ReferenceData)
	if err != nil {
		return nil, &ConfigError{Option: "reference_data", Err: err}
	}

	cache, err := NewCache(opts.GetCacheCapacity(), func(string) {
		metricCacheEvictions.Inc()
	})
	if err != nil {
		return nil, &ConfigError{Option: "cache_capacity", Err: err}
	}

	transport := opts.HTTPClient
	closeHTTPClient := func() {}

	if transport == nil {
		ownClient := NewHTTPClient(&http.Client{Timeout: opts.GetTimeout()},
			opts.GetUserAgent(),
			opts.GetRateLimitInterval(),
			opts.GetRateLimitBurst(),
			opts.GetCircuitBreakerOpenThreshold(),
			opts.GetCircuitBreakerHalfOpenTimeout(),
			opts.GetCircuitBreakerResetFailuresTimeout())
		transport = ownClient
		closeHTTPClient = func() {
			ownClient.(*httpClient).Close() // nolint: errcheck
		}
	}

	rv := &Client{
		logger:   opts.GetLogger(),
		cache:    cache,
		enricher: enricher{store: store},
		fetcher: &fetcher{
			baseURL: opts.GetBaseURL(),
			token:   opts.Token,
			timeout: opts.GetTimeout(),
			client:  transport,
		},
		stats:           &UsageStats{cache: cache},
		maxBatchSize:    opts.GetMaxBatchSize(),
		closeHTTPClient: closeHTTPClient,
	}

	rv.workerPool, err = ants.NewPoolWithFunc(opts.GetConcurrency(), rv.fetchChunk,
		ants.WithExpiryDuration(workerPoolExpireTime))
	if err != nil {
		closeHTTPClient()

		return nil, fmt.Errorf("cannot create worker pool: %w", err)
	}

	return rv, nil
}
