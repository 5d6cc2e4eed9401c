package transcript

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const DefaultNinjasURL = "https://api.api-ninjas.com/v1"

type NinjasClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewNinjasClient(baseURL, apiKey string) *NinjasClient {
	if baseURL == "" {
		baseURL = DefaultNinjasURL
	}
	return &NinjasClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 1),
	}
}

func (c *NinjasClient) Name() string {
	return "APINinjas"
}

func (c *NinjasClient) Fetch(ctx context.Context, ticker string, year, quarter int) Result {
	if err := c.limiter.Wait(ctx); err != nil {
		return FailedResult(fmt.Errorf("ninjas rate limit: %w", err))
	}

	params := url.Values{}
	params.Set("ticker", ticker)
	params.Set("year", strconv.Itoa(year))
	params.Set("quarter", strconv.Itoa(quarter))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/earningstranscript?"+params.Encode(), nil)
	if err != nil {
		return FailedResult(err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FailedResult(fmt.Errorf("ninjas fetch: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return FailedResult(fmt.Errorf("ninjas read: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return FailedResult(fmt.Errorf("ninjas status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	// The API answers with an empty array or object when it has no transcript.
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] == '[' {
		return AbsentResult()
	}

	var raw ninjasTranscript
	if err := json.Unmarshal(body, &raw); err != nil {
		return FailedResult(fmt.Errorf("ninjas decode: %w", err))
	}

	if strings.TrimSpace(raw.Transcript) == "" {
		return AbsentResult()
	}

	return FoundResult(raw.Transcript)
}

type ninjasTranscript struct {
	Date       string `json:"date"`
	Transcript string `json:"transcript"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
