package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"MusicRoom/core/auth"
)

// Client 目录服务REST客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	creds      auth.Provider
}

// NewClient 创建目录服务客户端
func NewClient(baseURL string, creds auth.Provider) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
		creds: creds,
	}
}

// SetTimeout 设置请求超时时间
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// get 发起带鉴权的GET请求并解码JSON响应
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	token, err := c.creds.AccessToken()
	if err != nil {
		return fmt.Errorf("获取凭证失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API返回错误状态码: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}

	return nil
}
