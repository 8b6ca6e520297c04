// Package network holds the shared HTTP client used for catalog and media requests.
package network

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/coursecast/coursecast/constant"
)

// Client is shared by the catalog, providers and the streaming engine.
var Client = &http.Client{
	Timeout:   time.Minute,
	Transport: newTransport(),
}

func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 32
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	return t
}

// StatusError is returned by Get for any non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// Get issues a GET with the application user agent and the given extra headers.
// The caller owns the response body on success.
func Get(ctx context.Context, client *http.Client, url string, headers map[string]string) (*http.Response, error) {
	if client == nil {
		client = Client
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set(constant.HeaderUserAgent, constant.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: url, Code: resp.StatusCode}
	}

	return resp, nil
}
