// Package github is a minimal GitHub content client: folder listings,
// raw file downloads and README retrieval, with an ETag disk cache and
// rate-limit aware retries.
package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dailynews/internal/logger"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound marks a 404 for an optional resource (e.g. a date with no
// snapshot file yet). Callers treat it as a soft miss.
var ErrNotFound = errors.New("github: resource not found")

// APIError is a non-retryable GitHub API failure.
type APIError struct {
	StatusCode int
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: %s returned status %d", e.URL, e.StatusCode)
}

// RateLimitError is returned when the rate limit window is too far away
// to wait out in-process.
type RateLimitError struct {
	ResetIn time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limited, resets in %s", e.ResetIn.Round(time.Second))
}

// maxRateLimitWait is the longest reset window worth sleeping through.
const maxRateLimitWait = 300 * time.Second

// backoffSchedule spaces the retry attempts.
var backoffSchedule = []time.Duration{1 * time.Second, 3 * time.Second, 7 * time.Second}

// Entry is one item of a repository folder listing.
type Entry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Path        string `json:"path"`
	DownloadURL string `json:"download_url"`
}

// cacheRecord is the on-disk ETag cache format, one file per resource.
type cacheRecord struct {
	ETag      string              `json:"etag"`
	Data      jsoniter.RawMessage `json:"data"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Client talks to the GitHub REST API. Base URLs and the sleep function
// are injectable for tests.
type Client struct {
	http     *http.Client
	base     string
	rawBase  string
	token    string
	cacheDir string
	sleep    func(time.Duration)
}

// NewClient builds a client using GITHUB_TOKEN from the environment when
// present. cacheDir may be "" to disable the ETag cache.
func NewClient(cacheDir string) *Client {
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		base:     "https://api.github.com",
		rawBase:  "https://raw.githubusercontent.com",
		token:    os.Getenv("GITHUB_TOKEN"),
		cacheDir: cacheDir,
		sleep:    time.Sleep,
	}
}

// ListFolderContents lists a repository folder at a ref, serving 304
// responses from the ETag cache.
func (c *Client) ListFolderContents(ctx context.Context, owner, repo, folder, ref string) ([]Entry, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s", c.base, owner, repo, folder, ref)
	cacheKey := strings.NewReplacer("/", "_").Replace(fmt.Sprintf("%s_%s_%s_%s", owner, repo, folder, ref))

	body, err := c.getWithETag(ctx, endpoint, cacheKey)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("github: folder listing for %s/%s/%s is not an array: %w", owner, repo, folder, err)
	}
	return entries, nil
}

// DownloadFileContent fetches a raw file body. A 404 yields ErrNotFound.
func (c *Client) DownloadFileContent(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// RawURL builds a raw.githubusercontent.com URL for a repository path.
func (c *Client) RawURL(owner, repo, ref, path string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", c.rawBase, owner, repo, ref, path)
}

// Readme returns the decoded README markdown of a repository.
func (c *Client) Readme(ctx context.Context, owner, repo string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/readme", c.base, owner, repo)
	resp, err := c.do(ctx, endpoint, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var payload struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("github: malformed readme response for %s/%s: %w", owner, repo, err)
	}

	if payload.Encoding != "base64" {
		return payload.Content, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(payload.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("github: failed to decode readme of %s/%s: %w", owner, repo, err)
	}
	return string(decoded), nil
}

// getWithETag performs a conditional GET. On 304 the cached body is
// returned; if the cache file is missing the request is retried without
// the conditional header.
func (c *Client) getWithETag(ctx context.Context, url, cacheKey string) (jsoniter.RawMessage, error) {
	cached := c.loadCache(cacheKey)

	etag := ""
	if cached != nil {
		etag = cached.ETag
	}
	resp, err := c.do(ctx, url, etag)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		if cached != nil {
			logger.Debug("github cache hit", "key", cacheKey)
			return cached.Data, nil
		}
		// Cache was deleted between sending the ETag and the 304.
		resp.Body.Close()
		resp, err = c.do(ctx, url, "")
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if tag := resp.Header.Get("ETag"); tag != "" {
		c.saveCache(cacheKey, tag, body)
	}
	return body, nil
}

// do issues a GET with auth and retry handling, returning only 2xx
// responses and 304.
func (c *Client) do(ctx context.Context, url, etag string) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt < len(backoffSchedule); attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		if etag != "" {
			req.Header.Set("If-None-Match", etag)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			logger.Warn("github request failed", "url", url, "attempt", attempt+1, "error", err.Error())
			c.sleep(backoffSchedule[attempt])
			continue
		}

		switch {
		case resp.StatusCode == http.StatusNotModified,
			resp.StatusCode >= 200 && resp.StatusCode < 300:
			return resp, nil

		case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
			resp.Body.Close()
			wait := rateLimitWait(resp)
			if wait > maxRateLimitWait {
				return nil, &RateLimitError{ResetIn: wait}
			}
			logger.Warn("github rate limited", "url", url, "wait", wait.String())
			c.sleep(wait)
			lastErr = &APIError{StatusCode: resp.StatusCode, URL: url}
			continue

		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return nil, ErrNotFound

		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, URL: url}
			logger.Warn("github server error", "url", url, "status", resp.StatusCode, "attempt", attempt+1)
			c.sleep(backoffSchedule[attempt])
			continue

		default:
			resp.Body.Close()
			return nil, &APIError{StatusCode: resp.StatusCode, URL: url}
		}
	}
	return nil, fmt.Errorf("github: retries exhausted for %s: %w", url, lastErr)
}

// rateLimitWait derives the sleep duration from X-RateLimit-Reset, with
// one extra second of slack.
func rateLimitWait(resp *http.Response) time.Duration {
	reset := resp.Header.Get("X-RateLimit-Reset")
	if reset == "" {
		return backoffSchedule[len(backoffSchedule)-1]
	}
	epoch, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		return backoffSchedule[len(backoffSchedule)-1]
	}
	wait := time.Until(time.Unix(epoch, 0)) + time.Second
	if wait < time.Second {
		wait = time.Second
	}
	return wait
}

func (c *Client) cachePath(key string) string {
	return filepath.Join(c.cacheDir, key+".json")
}

func (c *Client) loadCache(key string) *cacheRecord {
	if c.cacheDir == "" {
		return nil
	}
	data, err := os.ReadFile(c.cachePath(key))
	if err != nil {
		return nil
	}
	var record cacheRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil
	}
	return &record
}

func (c *Client) saveCache(key, etag string, body []byte) {
	if c.cacheDir == "" {
		return
	}
	if err := os.MkdirAll(c.cacheDir, 0o755); err != nil {
		logger.Warn("failed to create github cache dir", "dir", c.cacheDir, "error", err.Error())
		return
	}
	record := cacheRecord{ETag: etag, Data: body, UpdatedAt: time.Now().UTC()}
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	if err := os.WriteFile(c.cachePath(key), data, 0o644); err != nil {
		logger.Warn("failed to write github cache", "key", key, "error", err.Error())
	}
}
