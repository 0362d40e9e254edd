package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client 行情 API 客户端，对接 OpenAI 风格的 JSON 行情服务
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建一个新的行情 API 客户端
func NewClient(baseURL string, timeoutSec int) *Client {
	httpClient := http.DefaultClient
	if timeoutSec > 0 {
		httpClient = &http.Client{Timeout: time.Duration(timeoutSec) * time.Second}
	}
	return &Client{
		baseURL: baseURL,
		client:  httpClient,
	}
}

// GetQuote 获取价格快照
func (c *Client) GetQuote(ctx context.Context, ticker string) (*Quote, error) {
	var quote Quote
	if err := c.get(ctx, "/quote", ticker, &quote); err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetSentiment 获取市场情绪快照
func (c *Client) GetSentiment(ctx context.Context, ticker string) (*Sentiment, error) {
	var sentiment Sentiment
	if err := c.get(ctx, "/sentiment", ticker, &sentiment); err != nil {
		return nil, err
	}
	return &sentiment, nil
}

func (c *Client) get(ctx context.Context, path, ticker string, out any) error {
	endpoint := fmt.Sprintf("%s%s?symbol=%s", c.baseURL, path, url.QueryEscape(ticker))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request failed: %w", err)
	}
	httpReq.Header.Add("Accept", "application/json")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("market api error (status %d): %s", res.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unmarshal response failed: %w", err)
	}

	return nil
}
