package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Client 后端 HTTP 客户端，带持久化 cookie 会话
// Client is the backend HTTP client with a persisted cookie session.
type Client struct {
	baseURL    string
	base       *url.URL
	httpClient *http.Client
	jar        *cookiejar.Jar
	cookiePath string
	log        zerolog.Logger
}

// Options configures the client.
type Options struct {
	BaseURL    string
	TimeoutMS  int
	CookiePath string // empty disables cookie persistence
	Logger     zerolog.Logger
}

func NewClient(opts Options) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if raw == "" {
		return nil, fmt.Errorf("server base URL is empty")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse server base URL: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: raw,
		base:    base,
		jar:     jar,
		httpClient: &http.Client{
			Timeout: time.Duration(opts.TimeoutMS) * time.Millisecond,
			Jar:     jar,
		},
		cookiePath: strings.TrimSpace(opts.CookiePath),
		log:        opts.Logger.With().Str("component", "api").Logger(),
	}
	c.loadCookies()
	return c, nil
}

// storedCookie is the on-disk cookie shape. The jar interface only exposes
// name/value for the base URL, which is enough for the session cookie.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (c *Client) loadCookies() {
	if c.cookiePath == "" {
		return
	}
	data, err := os.ReadFile(c.cookiePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn().Err(err).Msg("read cookie file")
		}
		return
	}
	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		c.log.Warn().Err(err).Msg("parse cookie file")
		return
	}
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: "/"})
	}
	c.jar.SetCookies(c.base, cookies)
}

// SaveCookies persists the current session cookies. Called after login and
// on clean shutdown.
func (c *Client) SaveCookies() error {
	if c.cookiePath == "" {
		return nil
	}
	cookies := c.jar.Cookies(c.base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, ck := range cookies {
		stored = append(stored, storedCookie{Name: ck.Name, Value: ck.Value})
	}
	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.cookiePath), 0o700); err != nil {
		return fmt.Errorf("create cookie directory: %w", err)
	}
	if err := os.WriteFile(c.cookiePath, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}

// ClearCookies drops the in-memory session and removes the cookie file.
func (c *Client) ClearCookies() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("reset cookie jar: %w", err)
	}
	c.jar = jar
	c.httpClient.Jar = jar
	if c.cookiePath == "" {
		return nil
	}
	if err := os.Remove(c.cookiePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cookie file: %w", err)
	}
	return nil
}

// doJSON issues a request with an optional JSON body and decodes a JSON
// response into out (when out != nil). Non-2xx statuses become errors via
// decodeError.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	resp, body, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, []byte, error) {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal %s request: %w", path, err)
		}
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s request: %w", path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("send %s request: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s response: %w", path, err)
	}
	return resp, body, nil
}
