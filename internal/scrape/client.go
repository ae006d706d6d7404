// Package scrape talks to the third-party scraping service: it starts actor
// runs, polls them to completion and pages the resulting dataset items.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"carvan/internal"
	"carvan/internal/config"
)

const itemsPageSize = 500

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

type RunInfo struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	DefaultDatasetID string `json:"defaultDatasetId"`
}

type runEnvelope struct {
	Data RunInfo `json:"data"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.ScrapeTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.ScrapeRateLimitRPS),
	}
}

func (r RunInfo) Finished() bool {
	switch r.Status {
	case "SUCCEEDED", "FAILED", "ABORTED", "TIMED-OUT":
		return true
	default:
		return false
	}
}

// StartRun launches a new run of the configured actor.
func (c *Client) StartRun(ctx context.Context) (RunInfo, error) {
	if strings.TrimSpace(c.cfg.ScrapeActorID) == "" {
		return RunInfo{}, errors.New("missing SCRAPE_ACTOR_ID")
	}
	body, err := c.fetchJSON(ctx, http.MethodPost, "acts/"+c.cfg.ScrapeActorID+"/runs", nil)
	if err != nil {
		return RunInfo{}, err
	}
	var env runEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return RunInfo{}, err
	}
	if env.Data.ID == "" {
		return RunInfo{}, fmt.Errorf("scrape api returned no run id: %s", string(body))
	}
	return env.Data, nil
}

func (c *Client) GetRun(ctx context.Context, runID string) (RunInfo, error) {
	body, err := c.fetchJSON(ctx, http.MethodGet, "actor-runs/"+runID, nil)
	if err != nil {
		return RunInfo{}, err
	}
	var env runEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return RunInfo{}, err
	}
	return env.Data, nil
}

// WaitForRun polls until the run reaches a terminal status or the poll budget
// is spent. A run that finishes in any state but SUCCEEDED is an error.
func (c *Client) WaitForRun(ctx context.Context, runID string) (RunInfo, error) {
	interval := time.Duration(c.cfg.ScrapePollIntervalS) * time.Second
	for attempt := 0; attempt < c.cfg.ScrapeMaxPolls; attempt++ {
		run, err := c.GetRun(ctx, runID)
		if err != nil {
			return RunInfo{}, err
		}
		if run.Finished() {
			if run.Status != "SUCCEEDED" {
				return run, fmt.Errorf("scrape run %s finished with status %s", runID, run.Status)
			}
			return run, nil
		}

		select {
		case <-ctx.Done():
			return RunInfo{}, ctx.Err()
		case <-time.After(interval):
		}
	}
	return RunInfo{}, fmt.Errorf("scrape run %s did not finish within %d polls", runID, c.cfg.ScrapeMaxPolls)
}

// FetchDatasetItems pages through a dataset until a short page.
func (c *Client) FetchDatasetItems(ctx context.Context, datasetID string) ([]internal.RawRecord, error) {
	all := make([]internal.RawRecord, 0)
	offset := 0

	for {
		params := map[string]string{
			"format": "json",
			"offset": strconv.Itoa(offset),
			"limit":  strconv.Itoa(itemsPageSize),
		}
		body, err := c.fetchJSON(ctx, http.MethodGet, "datasets/"+datasetID+"/items", params)
		if err != nil {
			return nil, err
		}

		var page []internal.RawRecord
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, err
		}
		all = append(all, page...)

		if len(page) < itemsPageSize {
			break
		}
		offset += len(page)
	}

	return all, nil
}

func (c *Client) fetchJSON(ctx context.Context, method, endpoint string, params map[string]string) ([]byte, error) {
	if strings.TrimSpace(c.cfg.ScrapeAPIToken) == "" {
		return nil, errors.New("missing SCRAPE_API_TOKEN")
	}

	baseURL := strings.TrimRight(c.cfg.ScrapeAPIBaseURL, "/") + "/"
	u, err := url.Parse(baseURL + endpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("token", c.cfg.ScrapeAPIToken)
	for k, v := range params {
		if strings.TrimSpace(v) != "" {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		c.limiter.WaitTurn()

		req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 5 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("scrape api status %d", resp.StatusCode)
				continue
			}
			return nil, fmt.Errorf("scrape api error: status=%d body=%s", resp.StatusCode, string(body))
		}

		return body, nil
	}

	if lastErr == nil {
		lastErr = errors.New("scrape request failed")
	}
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
