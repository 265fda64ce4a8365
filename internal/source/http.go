package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/career-compass/internal/profile"
)

const (
	contentType     = "application/json"
	acceptEncoding  = "gzip"
	defaultAgent    = "spigell/career-compass"
	defaultPageSize = "100"
)

// Client pulls profile pages from an HTTP API that answers with
// {"items": [...], "page": n, "pages": m}.
type Client struct {
	// ctx used only for http requests right now
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
}

type pageResponse struct {
	Items   []map[string]any `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:   ctx,
		token: token,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    logger,
		UserAgent: defaultAgent,
	}
}

// Fetch requests every page and parses the collected documents.
func (c *Client) Fetch(url string) ([]profile.Raw, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	q := req.URL.Query()
	if q.Get("per_page") == "" {
		q.Set("per_page", defaultPageSize)
	}
	req.URL.RawQuery = q.Encode()

	response, err := c.page(req)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("got profiles page", zap.Int("pages", response.Pages), zap.Int("items", len(response.Items)))

	docs := append([]map[string]any(nil), response.Items...)
	for response.Page < response.Pages-1 {
		c.logger.Debug("additional request needed", zap.String("reason", fmt.Sprintf(
			"current page (%d) < all page count (%d)", response.Page+1, response.Pages),
		))

		response, err = c.page(withPage(req, response.Page+1))
		if err != nil {
			return nil, err
		}
		docs = append(docs, response.Items...)
	}

	return parseAll(docs)
}

func (c *Client) page(req *http.Request) (*pageResponse, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		body = gz
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var page pageResponse
	if err := dec.Decode(&page); err != nil {
		return nil, fmt.Errorf("decode profiles page: %w", err)
	}
	return &page, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", acceptEncoding)
}

// withPage sets the page parameter on a copy of req.
func withPage(req *http.Request, page int) *http.Request {
	next := req.Clone(req.Context())
	q := next.URL.Query()
	q.Set("page", strconv.Itoa(page))
	next.URL.RawQuery = q.Encode()

	return next
}
