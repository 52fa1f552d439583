// Package dataapi talks to the list endpoints of the YouTube Data API v3.
package dataapi

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/ytget/ytarchive/errs"
	"github.com/ytget/ytarchive/internal/logger"
	"github.com/ytget/ytarchive/types"
	"github.com/ytget/ytarchive/youtube/pager"
)

// DefaultBaseURL is the Data API v3 root.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

// MaxResults is the largest page size the list endpoints accept.
const MaxResults = 50

const (
	ResourcePlaylists     = "playlists"
	ResourcePlaylistItems = "playlistItems"
	ResourceVideos        = "videos"

	headerAccept         = "Accept"
	headerAcceptEncoding = "Accept-Encoding"
	acceptEncodingValue  = "gzip, deflate, br"
	maxErrorBodyBytes    = 64 << 10
)

var (
	partPlaylists     = []string{"snippet", "contentDetails"}
	partPlaylistItems = []string{"snippet", "contentDetails"}
	partVideos        = []string{"snippet", "contentDetails", "statistics"}
)

// Client issues list requests against the Data API.
type Client struct {
	HTTPClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.ComponentLogger
}

// New creates a client. The http client is expected to attach credentials;
// a nil client uses a plain one with a 30s timeout.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		HTTPClient: httpClient,
		baseURL:    DefaultBaseURL,
		log:        logger.WithComponent(logger.ComponentDataAPI),
	}
}

// WithBaseURL points the client at another API root, e.g. a test server.
func (c *Client) WithBaseURL(base string) *Client {
	if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
		c.baseURL = base
	}
	return c
}

// WithAPIKey adds a key parameter to every request.
func (c *Client) WithAPIKey(key string) *Client {
	c.apiKey = strings.TrimSpace(key)
	return c
}

// ListRequest describes one list call.
type ListRequest struct {
	Resource   string
	Part       []string
	MaxResults int
	PageToken  string
	// Params carries filters such as mine, playlistId or id.
	Params url.Values
}

func (r ListRequest) query() (url.Values, error) {
	if r.Resource == "" {
		return nil, errors.New("dataapi: resource is required")
	}
	if len(r.Part) == 0 {
		return nil, errors.New("dataapi: part is required")
	}
	size := r.MaxResults
	if size == 0 {
		size = MaxResults
	}
	if size < 0 || size > MaxResults {
		return nil, fmt.Errorf("dataapi: maxResults %d: %w", r.MaxResults, errs.ErrPageSize)
	}
	q := url.Values{}
	for k, vs := range r.Params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("part", strings.Join(r.Part, ","))
	q.Set("maxResults", strconv.Itoa(size))
	if r.PageToken != "" {
		q.Set("pageToken", r.PageToken)
	}
	return q, nil
}

// List fetches one page of req.
func List[T any](ctx context.Context, c *Client, req ListRequest) (*types.ListResponse[T], error) {
	q, err := req.query()
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	endpoint := c.baseURL + "/" + req.Resource + "?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(headerAccept, "application/json")
	httpReq.Header.Set(headerAcceptEncoding, acceptEncodingValue)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", req.Resource, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := decodedBody(resp)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", req.Resource, err)
	}
	defer func() { _ = body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list %s: %w", req.Resource, apiError(resp.StatusCode, body))
	}

	var page types.ListResponse[T]
	if err := json.NewDecoder(body).Decode(&page); err != nil {
		return nil, fmt.Errorf("list %s: decode response: %w", req.Resource, err)
	}
	for i, item := range page.Items {
		if v, ok := any(item).(types.Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("list %s: item %d: %w", req.Resource, i, err)
			}
		}
	}

	c.log.Debug("list page", map[string]any{
		"resource":  req.Resource,
		"items":     len(page.Items),
		"page":      req.PageToken,
		"has_next":  page.NextPageToken != "",
		"total":     page.PageInfo.TotalResults,
		"part":      q.Get("part"),
		"max_items": q.Get("maxResults"),
	})
	return &page, nil
}

// Pages returns a pager that follows nextPageToken for req.
func Pages[T any](c *Client, req ListRequest) *pager.Pager[T] {
	if _, err := req.query(); err != nil {
		return pager.Fail[T](err)
	}
	return pager.New(func(ctx context.Context, pageToken string) ([]T, string, error) {
		r := req
		r.PageToken = pageToken
		page, err := List[T](ctx, c, r)
		if err != nil {
			return nil, "", err
		}
		return page.Items, page.NextPageToken, nil
	})
}

// Playlists lists the playlists of the authenticated user.
func (c *Client) Playlists() *pager.Pager[types.Playlist] {
	return Pages[types.Playlist](c, ListRequest{
		Resource: ResourcePlaylists,
		Part:     partPlaylists,
		Params:   url.Values{"mine": {"true"}},
	})
}

// PlaylistItems lists the items of one playlist.
func (c *Client) PlaylistItems(playlistID string) *pager.Pager[types.PlaylistItem] {
	return Pages[types.PlaylistItem](c, ListRequest{
		Resource: ResourcePlaylistItems,
		Part:     partPlaylistItems,
		Params:   url.Values{"playlistId": {playlistID}},
	})
}

// Videos looks up at most MaxResults videos by identifier.
func (c *Client) Videos(ids []string) *pager.Pager[types.Video] {
	if len(ids) == 0 {
		return pager.New(func(context.Context, string) ([]types.Video, string, error) {
			return nil, "", nil
		})
	}
	return Pages[types.Video](c, ListRequest{
		Resource:   ResourceVideos,
		Part:       partVideos,
		MaxResults: len(ids),
		Params:     url.Values{"id": {strings.Join(ids, ",")}},
	})
}

// decodedBody unwraps the content encodings advertised in Accept-Encoding.
func decodedBody(resp *http.Response) (io.ReadCloser, error) {
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		return gz, nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}

type errorBody struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Domain  string `json:"domain"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func apiError(status int, body io.Reader) error {
	raw, _ := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	e := &errs.APIError{StatusCode: status}
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil && (eb.Error.Message != "" || len(eb.Error.Errors) > 0) {
		e.Message = eb.Error.Message
		if len(eb.Error.Errors) > 0 {
			e.Reason = eb.Error.Errors[0].Reason
		}
	} else {
		e.Message = strings.TrimSpace(string(raw))
	}
	e.Err = errs.FromStatus(status, e.Reason)
	return e
}
