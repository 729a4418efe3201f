package loadgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/nameprop/pkg/logger"
)

// Client talks to the service HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a client with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: timeout}}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}

// Health checks that the service answers on /healthz.
func (c *Client) Health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("healthz: status %d", status)
	}
	return nil
}

// Submit posts one session and reports the acknowledgement.
func (c *Client) Submit(ctx context.Context, s Session) (AckResponse, int, error) {
	var ack AckResponse
	status, err := c.do(ctx, http.MethodPost, "/sessions", s, &ack)
	return ack, status, err
}

// Progress reports how many sessions the service has scored and how many
// it gave up on.
type Progress struct {
	Evaluated int
	Failed    int
}

// Done is the number of sessions the service is finished with.
func (p Progress) Done() int { return p.Evaluated + p.Failed }

// Progress reads the evaluation counters from the service stats.
func (c *Client) Progress(ctx context.Context) (Progress, error) {
	var stats map[string]any
	if _, err := c.do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return Progress{}, err
	}
	evaluated, _ := stats["evaluated"].(float64)
	failed, _ := stats["failed"].(float64)
	return Progress{Evaluated: int(evaluated), Failed: int(failed)}, nil
}

// Results returns the ranked rows of condition.
func (c *Client) Results(ctx context.Context, condition string, limit int) ([]Result, error) {
	q := url.Values{"condition": {condition}, "limit": {strconv.Itoa(limit)}}
	var rows []Result
	status, err := c.do(ctx, http.MethodGet, "/results?"+q.Encode(), nil, &rows)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("results: status %d", status)
	}
	return rows, nil
}

// submitAll posts sessions with cfg.Workers concurrent submitters.
func submitAll(ctx context.Context, cfg *Config, c *Client, sessions []Session, stats *Stats) {
	log := logger.Get().Named("loadgen")
	var accepted, duplicate, failed atomic.Int64

	ch := make(chan Session)
	var wg sync.WaitGroup
	for i := 0; i < max(1, cfg.Workers); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range ch {
				_, status, err := c.Submit(ctx, s)
				switch {
				case err != nil:
					failed.Add(1)
					log.Warn(ctx, "submit failed", logger.String("video", s.Video), logger.Error(err))
				case status == http.StatusAccepted:
					accepted.Add(1)
				case status == http.StatusOK:
					duplicate.Add(1)
				default:
					failed.Add(1)
					if cfg.Verbose {
						log.Warn(ctx, "submit rejected", logger.String("video", s.Video), logger.Int("status", status))
					}
				}
			}
		}()
	}

feed:
	for _, s := range sessions {
		select {
		case <-ctx.Done():
			break feed
		case ch <- s:
		}
	}
	close(ch)
	wg.Wait()

	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Failed = int(failed.Load())
}
