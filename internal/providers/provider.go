package providers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// CacheProvider interface for cache operations
type CacheProvider interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}

// StatusError is returned when an upstream answers with a non-2xx status
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// doRequest sends req and returns the body of a 2xx response
func doRequest(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{URL: req.URL.Path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}

	return body, nil
}

func newGetRequest(ctx context.Context, rawURL string, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// NormalizePosition maps stats.nba.com positions ("Guard", "F-C", ...) onto
// the defense-vs-position buckets PG, SG, SF, PF and C. Unknown is "N/A".
func NormalizePosition(position string) string {
	p := strings.ToUpper(strings.TrimSpace(position))
	p = strings.NewReplacer("GUARD", "G", "FORWARD", "F", "CENTER", "C", " ", "").Replace(p)

	switch p {
	case "PG", "SG", "SF", "PF", "C":
		return p
	case "G":
		return "PG"
	case "F":
		return "SF"
	case "G-F":
		return "SG"
	case "F-G":
		return "SF"
	case "F-C":
		return "PF"
	case "C-F":
		return "C"
	case "":
		return "N/A"
	}

	for _, bucket := range []string{"PG", "SG", "SF", "PF"} {
		if strings.Contains(p, bucket) {
			return bucket
		}
	}
	return "N/A"
}
