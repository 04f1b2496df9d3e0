package kaggle

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/paperforge/paperforge/internal/domain"
)

// DefaultBaseURL is the public Kaggle API v1 endpoint
const DefaultBaseURL = "https://www.kaggle.com/api/v1"

// Client handles communication with the Kaggle public API
type Client struct {
	httpClient  *http.Client
	username    string
	key         string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Kaggle API client authenticated with the given
// username and API key. requestsPerMinute caps the outgoing request rate;
// values below 1 fall back to 60.
func NewClient(username, key, baseURL string, requestsPerMinute int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// Kaggle publishes no hard limit; default to a polite 60/min
	if requestsPerMinute < 1 {
		requestsPerMinute = 60
	}
	// rate.Limit is requests per second, so 60/60 = 1 request/sec
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		username:    username,
		key:         key,
		baseURL:     baseURL,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait time before retry attempt n
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// doRequest executes an authenticated HTTP GET request
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.username, c.key)
	req.Header.Set("User-Agent", "paperforge/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrKaggleAPIFailure, err)
	}

	return resp, nil
}

// getJSON performs a rate-limited GET with retries and decodes the JSON body
// into out. 404 maps to ErrDatasetNotFound; other non-200 statuses retry up
// to three times.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[KAGGLE] Request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return domain.ErrDatasetNotFound
		}
		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[KAGGLE] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrKaggleAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	return lastErr
}

// SearchDatasets searches the dataset catalog and returns up to limit hits.
// License information is enriched per hit via the dataset view endpoint;
// a failed view leaves the license absent rather than failing the search.
func (c *Client) SearchDatasets(ctx context.Context, query string, limit int) ([]domain.CatalogHit, error) {
	log.Printf("[KAGGLE] SearchDatasets called with query: %q", query)

	endpoint := fmt.Sprintf("%s/datasets/list", c.baseURL)
	params := url.Values{}
	params.Add("search", query)
	params.Add("pageSize", strconv.Itoa(limit))

	var listed []datasetListItem
	if err := c.getJSON(ctx, fmt.Sprintf("%s?%s", endpoint, params.Encode()), &listed); err != nil {
		return nil, err
	}

	if len(listed) > limit {
		listed = listed[:limit]
	}

	hits := make([]domain.CatalogHit, 0, len(listed))
	for _, item := range listed {
		hit := mapListItem(item)
		if hit.Ref == "" {
			continue
		}
		if hit.License == "" {
			hit.License = c.viewLicense(ctx, hit.Ref)
		}
		hits = append(hits, hit)
	}

	log.Printf("[KAGGLE] Found %d datasets for query: %q", len(hits), query)
	return hits, nil
}

// viewLicense fetches the license name for a dataset ref, returning ""
// when the view call fails for any reason.
func (c *Client) viewLicense(ctx context.Context, ref string) string {
	owner, slug, err := splitRef(ref)
	if err != nil {
		return ""
	}

	var view datasetView
	endpoint := fmt.Sprintf("%s/datasets/view/%s/%s", c.baseURL, owner, slug)
	if err := c.getJSON(ctx, endpoint, &view); err != nil {
		if c.debug {
			log.Printf("[KAGGLE] View failed for %s: %v", ref, err)
		}
		return ""
	}
	return view.LicenseName
}

// ListFiles returns the file listing and aggregate size in MB for a dataset
// without downloading any data
func (c *Client) ListFiles(ctx context.Context, ref string) ([]domain.DatasetFile, *float64, error) {
	owner, slug, err := splitRef(ref)
	if err != nil {
		return nil, nil, err
	}

	var listing fileListing
	endpoint := fmt.Sprintf("%s/datasets/list/files/%s/%s", c.baseURL, owner, slug)
	if err := c.getJSON(ctx, endpoint, &listing); err != nil {
		return nil, nil, err
	}

	files, totalMB := mapFileListing(listing)
	return files, totalMB, nil
}

// DownloadDataset downloads a dataset archive and extracts it into dest
func (c *Client) DownloadDataset(ctx context.Context, ref, dest string) error {
	owner, slug, err := splitRef(ref)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("failed to create dataset dir: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/datasets/download/%s/%s", c.baseURL, owner, slug)
	log.Printf("[KAGGLE] Downloading %s", ref)

	resp, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.ErrDatasetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrKaggleAPIFailure, resp.StatusCode)
	}

	archive, err := os.CreateTemp("", "paperforge-dataset-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp archive: %w", err)
	}
	defer os.Remove(archive.Name())

	written, err := io.Copy(archive, resp.Body)
	archive.Close()
	if err != nil {
		return fmt.Errorf("failed to save archive: %w", err)
	}
	log.Printf("[KAGGLE] Downloaded %.1f MB, extracting to %s", float64(written)/(1024*1024), dest)

	return unzip(archive.Name(), dest)
}

// unzip extracts a zip archive into dest, refusing entries that escape it
func unzip(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	destRoot := filepath.Clean(dest)
	for _, f := range r.File {
		target := filepath.Join(destRoot, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, destRoot+string(os.PathSeparator)) && target != destRoot {
			return fmt.Errorf("archive entry escapes destination: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}

		src, err := f.Open()
		if err != nil {
			return err
		}
		dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// splitRef splits "owner/slug" into its two parts
func splitRef(ref string) (string, string, error) {
	owner, slug, ok := strings.Cut(ref, "/")
	if !ok || owner == "" || slug == "" {
		return "", "", fmt.Errorf("%w: malformed ref %q", domain.ErrInvalidRequest, ref)
	}
	return owner, slug, nil
}
