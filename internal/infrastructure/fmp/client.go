package fmp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/muhammadchandra19/bar-replay/internal/domain/bar"
	v1 "github.com/muhammadchandra19/bar-replay/internal/domain/bar/v1"
	"github.com/muhammadchandra19/bar-replay/pkg/config"
	"github.com/muhammadchandra19/bar-replay/pkg/errors"
	"github.com/muhammadchandra19/bar-replay/pkg/logger"
)

const (
	queryDateLayout = "2006-01-02"

	intradayPath = "/historical-chart/{granularity}/{ticker}"
	dailyPath    = "/historical-price-full/{ticker}"
)

var _ bar.Upstream = (*Client)(nil)

// Client fetches historical bars from a financialmodelingprep style HTTP API.
type Client struct {
	http   *resty.Client
	apiKey string
	logger logger.Interface
}

// NewClient creates a new HTTP upstream.
func NewClient(cfg config.FMPConfig, log logger.Interface) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:   httpClient,
		apiKey: cfg.APIKey,
		logger: log,
	}
}

// Intraday returns sub-daily records, newest first.
func (c *Client) Intraday(ctx context.Context, ticker, granularity string, from, to time.Time) ([]v1.RawBar, error) {
	req := c.request(ctx, from, to).
		SetPathParam("granularity", granularity).
		SetPathParam("ticker", ticker)

	return c.get(ctx, req, intradayPath)
}

// Daily returns daily records, newest first.
func (c *Client) Daily(ctx context.Context, ticker string, from, to time.Time) ([]v1.RawBar, error) {
	req := c.request(ctx, from, to).
		SetPathParam("ticker", ticker)

	return c.get(ctx, req, dailyPath)
}

func (c *Client) request(ctx context.Context, from, to time.Time) *resty.Request {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParam("from", from.UTC().Format(queryDateLayout)).
		SetQueryParam("to", to.UTC().Format(queryDateLayout))
	if c.apiKey != "" {
		req.SetQueryParam("apikey", c.apiKey)
	}
	return req
}

func (c *Client) get(ctx context.Context, req *resty.Request, path string) ([]v1.RawBar, error) {
	resp, err := req.Get(path)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}

	c.logger.DebugContext(ctx, "upstream responded",
		logger.NewField("url", resp.Request.URL),
		logger.NewField("status", resp.StatusCode()),
		logger.NewField("duration", resp.Time().String()),
	)

	if resp.StatusCode() != http.StatusOK {
		return nil, errors.NewTracer(fmt.Sprintf("upstream returned %s", resp.Status())).
			WithCode(errors.UpstreamStatusError)
	}

	return decode(resp.Body())
}

type historicalResponse struct {
	Symbol     string      `json:"symbol"`
	Historical []v1.RawBar `json:"historical"`
}

// decode accepts both a bare array of records and the {historical: [...]} envelope.
// An empty object means the provider has nothing for the range.
func decode(body []byte) ([]v1.RawBar, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	if body[0] == '[' {
		var records []v1.RawBar
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, errors.TracerFromError(err).WithCode(errors.UpstreamDecodeError)
		}
		return records, nil
	}

	var envelope historicalResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.TracerFromError(err).WithCode(errors.UpstreamDecodeError)
	}
	return envelope.Historical, nil
}
