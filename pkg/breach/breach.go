// Package breach queries a k-anonymity breach-count service.
//
// Only the first five hex characters of a secret's SHA-1 fingerprint leave
// the process; the remaining 35 are matched locally against the returned
// range. Network failures degrade to a sentinel rather than an error so that
// health analysis always completes.
package breach

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"passvault/pkg/crypto"
)

const (
	// DefaultEndpoint is the range-query endpoint of the public
	// Pwned Passwords service.
	DefaultEndpoint = "https://api.pwnedpasswords.com/range"

	// DefaultTimeout is the hard deadline for a single range query.
	DefaultTimeout = 5 * time.Second

	// DefaultChunkSize bounds how many range queries run concurrently.
	DefaultChunkSize = 10

	// UnknownCount is returned when the oracle is unreachable. It is
	// distinct from 0, which means the service confirmed zero breaches.
	UnknownCount = -1

	prefixLength = 5
)

// Client queries the breach oracle.
type Client struct {
	endpoint  string
	chunkSize int
	http      *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the range-query endpoint.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = strings.TrimRight(endpoint, "/") }
}

// WithTimeout overrides the per-query timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.http.Timeout = timeout }
}

// WithChunkSize overrides the concurrency bound for batched checks.
func WithChunkSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// NewClient creates a breach oracle client with the default endpoint,
// 5-second timeout, and chunk size of 10.
func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:  DefaultEndpoint,
		chunkSize: DefaultChunkSize,
		http:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckCount returns the number of known breaches for a secret.
//
// An empty secret short-circuits to 0 without a network call. Timeouts,
// non-2xx responses, and transport failures all yield UnknownCount.
func (c *Client) CheckCount(ctx context.Context, secret string) int {
	if secret == "" {
		return 0
	}

	fingerprint := crypto.Fingerprint(secret)
	prefix := fingerprint[:prefixLength]
	suffix := fingerprint[prefixLength:]

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s", c.endpoint, prefix), nil)
	if err != nil {
		return UnknownCount
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return UnknownCount
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return UnknownCount
	}

	// Response is newline-separated SUFFIX:COUNT lines; the suffix match is
	// case-insensitive.
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		candidate, countStr, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if !strings.EqualFold(candidate, suffix) {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(countStr))
		if err != nil {
			return UnknownCount
		}
		return count
	}
	if err := scanner.Err(); err != nil {
		return UnknownCount
	}

	// Suffix absent from the range: confirmed zero breaches.
	return 0
}

// CheckAll checks a set of secrets and returns a breach count per distinct
// value. Each distinct secret is queried exactly once, with at most
// chunkSize queries in flight. Individual failures degrade to UnknownCount
// and never abort the batch.
func (c *Client) CheckAll(ctx context.Context, secrets []string) map[string]int {
	distinct := make(map[string]struct{}, len(secrets))
	for _, s := range secrets {
		distinct[s] = struct{}{}
	}

	var mu sync.Mutex
	results := make(map[string]int, len(distinct))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.chunkSize)
	for secret := range distinct {
		secret := secret
		g.Go(func() error {
			count := c.CheckCount(ctx, secret)
			mu.Lock()
			results[secret] = count
			mu.Unlock()
			return nil
		})
	}
	// CheckCount never returns an error, so Wait cannot fail.
	_ = g.Wait()

	return results
}
