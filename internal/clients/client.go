// Package clients holds the outbound side of the pipeline: the image
// resolver with its privileged-helper and direct fetch paths, and the page
// grabber that seeds chapters from a web page.
package clients

import (
	"math/rand"
	"time"

	"resty.dev/v3"
)

// HTTPOptions tunes the shared resty client.
type HTTPOptions struct {
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	UserAgent        string
}

// DefaultHTTPOptions mirrors a patient scraper: a handful of retries with a
// fixed wait and a short per-request timeout.
func DefaultHTTPOptions() *HTTPOptions {
	return &HTTPOptions{
		RetryCount:       5,
		RetryWaitTime:    5 * time.Second,
		RetryMaxWaitTime: 5 * time.Second,
		Timeout:          10 * time.Second,
		UserAgent:        RandomUserAgent(),
	}
}

func newHTTPClient(t *HTTPOptions) *resty.Client {
	return resty.New().
		SetRetryCount(t.RetryCount).
		SetRetryWaitTime(t.RetryWaitTime).
		SetRetryMaxWaitTime(t.RetryMaxWaitTime).
		SetTimeout(t.Timeout).
		SetHeader("User-Agent", t.UserAgent)
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Safari/605.1.15",
	"Mozilla/5.0 (Linux; Android 10; SM-G980F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.120 Mobile Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 13_2_3 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/13.0.3 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.114 Safari/537.36",
}

func RandomUserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}
