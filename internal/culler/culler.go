// Package culler finds bookmarks whose pages are gone.
package culler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/lnk/internal/logger"
	"github.com/nikbrunner/lnk/internal/model"
	"github.com/sirupsen/logrus"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

const (
	DefaultConcurrency = 10
	DefaultTimeout     = 10 * time.Second
	maxRedirects       = 10
)

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   *model.Bookmark
	Status     Status
	StatusCode int    // 0 if the connection failed
	Error      string // readable reason for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// Options tune a check run. Zero values fall back to the defaults.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	// ExcludeDomains are hosts where a 404 usually means "private", not gone.
	ExcludeDomains []string
	OnProgress     ProgressFunc
	Client         *http.Client
	Logger         *logrus.Logger
}

// CheckURLs checks all bookmark URLs concurrently. Results are in input
// order. Cancelling ctx marks the remaining bookmarks unreachable.
func CheckURLs(ctx context.Context, bookmarks []model.Bookmark, opts Options) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	log := logger.OrDiscard(opts.Logger)
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	concurrency = min(concurrency, len(bookmarks))

	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	excludeMap := make(map[string]bool)
	for _, domain := range opts.ExcludeDomains {
		excludeMap[strings.ToLower(domain)] = true
	}

	results := make([]Result, len(bookmarks))
	jobs := make(chan int, len(bookmarks))
	var wg sync.WaitGroup

	var progressMu sync.Mutex
	completed := 0

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = checkURL(ctx, client, &bookmarks[idx], excludeMap)
				log.WithFields(logrus.Fields{
					"url":    bookmarks[idx].URL,
					"status": results[idx].Status,
					"code":   results[idx].StatusCode,
				}).Debug("cull: checked")

				if opts.OnProgress != nil {
					progressMu.Lock()
					completed++
					opts.OnProgress(completed, len(bookmarks))
					progressMu.Unlock()
				}
			}
		}()
	}

	for i := range bookmarks {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

func checkURL(ctx context.Context, client *http.Client, bookmark *model.Bookmark, excludeMap map[string]bool) Result {
	result := Result{Bookmark: bookmark}

	if err := ctx.Err(); err != nil {
		result.Status = Unreachable
		result.Error = "Cancelled"
		return result
	}

	// HEAD first, GET for servers that refuse it
	resp, err := do(ctx, client, http.MethodHead, bookmark.URL)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp.Body.Close()
		resp, err = do(ctx, client, http.MethodGet, bookmark.URL)
	} else if err != nil && ctx.Err() == nil {
		resp, err = do(ctx, client, http.MethodGet, bookmark.URL)
	}
	if err != nil {
		result.Status = Unreachable
		result.Error = normalizeError(err)
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isExcludedDomain(bookmark.URL, excludeMap) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 5xx and auth walls may be temporary
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func do(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "lnk-cull/1.0")
	return client.Do(req)
}

// isExcludedDomain checks the host and its parent domains against the exclude list.
func isExcludedDomain(rawURL string, excludeMap map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if excludeMap[host] {
		return true
	}
	for domain := range excludeMap {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(err error) string {
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "unsupported protocol scheme"):
		return "Unsupported URL"
	default:
		return err.Error()
	}
}

// Summary counts results by status.
type Summary struct {
	Healthy     int
	Dead        int
	Unreachable int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case Healthy:
			s.Healthy++
		case Dead:
			s.Dead++
		default:
			s.Unreachable++
		}
	}
	return s
}

// DeadBookmarks returns the bookmarks whose status is Dead.
func DeadBookmarks(results []Result) []model.Bookmark {
	var out []model.Bookmark
	for _, r := range results {
		if r.Status == Dead && r.Bookmark != nil {
			out = append(out, *r.Bookmark)
		}
	}
	return out
}

// Archiver archives a bookmark on the server.
type Archiver interface {
	SetArchived(ctx context.Context, id int, archived bool) (*model.Bookmark, error)
}

// ArchiveDead archives every dead bookmark and returns how many succeeded.
// Failures are joined into the returned error; the rest are still attempted.
func ArchiveDead(ctx context.Context, a Archiver, results []Result, log *logrus.Logger) (int, error) {
	log = logger.OrDiscard(log)
	var errs []error
	archived := 0
	for _, b := range DeadBookmarks(results) {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := a.SetArchived(ctx, b.ID, true); err != nil {
			log.WithError(err).WithField("id", b.ID).Warn("cull: archive failed")
			errs = append(errs, err)
			continue
		}
		archived++
	}
	return archived, errors.Join(errs...)
}
