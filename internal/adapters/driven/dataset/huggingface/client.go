// Package huggingface reads Wikipedia articles from the Hugging Face
// datasets-server rows API.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/wikichat/internal/core/domain"
	"github.com/custodia-labs/wikichat/internal/core/ports/driven"
	"github.com/custodia-labs/wikichat/internal/logger"
)

// Ensure Client implements the interface.
var _ driven.DatasetSource = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL  = domain.DefaultDatasetBaseURL
	DefaultTimeout  = 60 * time.Second
	DefaultPageSize = 100
)

// Config holds configuration for the datasets-server client.
type Config struct {
	// BaseURL is the datasets-server root (default: https://datasets-server.huggingface.co).
	BaseURL string

	// Token is an optional Hugging Face access token for gated datasets.
	Token string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration

	// PageSize is the number of rows per request, at most 100 (default: 100).
	PageSize int
}

// Client fetches dataset rows page by page.
type Client struct {
	client   *http.Client
	baseURL  string
	token    string
	pageSize int
}

// rowsResponse is the datasets-server /rows response format.
type rowsResponse struct {
	Rows []struct {
		RowIdx int `json:"row_idx"`
		Row    struct {
			ID    string `json:"id"`
			URL   string `json:"url"`
			Title string `json:"title"`
			Text  string `json:"text"`
		} `json:"row"`
	} `json:"rows"`
	NumRowsTotal int    `json:"num_rows_total"`
	Error        string `json:"error,omitempty"`
}

// NewClient creates a new datasets-server client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PageSize <= 0 || cfg.PageSize > DefaultPageSize {
		cfg.PageSize = DefaultPageSize
	}

	return &Client{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		pageSize: cfg.PageSize,
	}
}

// Fetch returns up to q.Limit articles from the start of the split.
// Rows with neither a title nor text are skipped.
func (c *Client) Fetch(ctx context.Context, q driven.DatasetQuery) ([]domain.Article, error) {
	if q.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidInput, q.Limit)
	}
	if q.Dataset == "" {
		q.Dataset = domain.DefaultDatasetName
	}
	if q.Split == "" {
		q.Split = domain.DefaultDatasetSplit
	}

	articles := make([]domain.Article, 0, q.Limit)
	for offset := 0; offset < q.Limit; {
		length := min(c.pageSize, q.Limit-offset)

		page, err := c.fetchPage(ctx, q, offset, length)
		if err != nil {
			return nil, err
		}

		for _, r := range page.Rows {
			a := domain.Article{Title: r.Row.Title, URL: r.Row.URL, Text: r.Row.Text}
			if a.IsBlank() {
				logger.Warn("skipping dataset row %d (id %q): no title or text", r.RowIdx, r.Row.ID)
				continue
			}
			articles = append(articles, a)
		}

		offset += len(page.Rows)
		if len(page.Rows) < length || (page.NumRowsTotal > 0 && offset >= page.NumRowsTotal) {
			break
		}
	}

	logger.Debug("huggingface: fetched %d articles from %s/%s", len(articles), q.Dataset, q.Subset)
	return articles, nil
}

func (c *Client) fetchPage(ctx context.Context, q driven.DatasetQuery, offset, length int) (*rowsResponse, error) {
	params := url.Values{}
	params.Set("dataset", q.Dataset)
	params.Set("config", q.Subset)
	params.Set("split", q.Split)
	params.Set("offset", strconv.Itoa(offset))
	params.Set("length", strconv.Itoa(length))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/rows?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: datasets-server returned 429", domain.ErrRateLimited)
	}

	var page rowsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d: %s", domain.ErrDatasetUnavailable, resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if page.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrDatasetUnavailable, page.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrDatasetUnavailable, resp.StatusCode)
	}

	return &page, nil
}
