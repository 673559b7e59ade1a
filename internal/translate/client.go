package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultTarget = "es"

var ErrUpstream = errors.New("translate upstream")

// Client: тонкая обёртка над MyMemory: один GET, без повторов и кэша.
type Client struct {
	baseURL string
	source  string
	http    *http.Client
}

func New(baseURL, source string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		source:  source,
		http:    &http.Client{Timeout: timeout},
	}
}

type response struct {
	ResponseData *struct {
		TranslatedText string `json:"translatedText"`
	} `json:"responseData"`
}

func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		target = DefaultTarget
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: base url: %v", ErrUpstream, err)
	}
	q := u.Query()
	q.Set("q", text)
	q.Set("langpair", c.source+"|"+target)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("%w: http %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out response
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	if out.ResponseData == nil {
		return "", nil
	}
	return out.ResponseData.TranslatedText, nil
}
