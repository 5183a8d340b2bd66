package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/vadim/reddit-insight/internal/domain/activity/entity"
	"github.com/vadim/reddit-insight/internal/metrics"
)

const (
	defaultAPIURL   = "https://oauth.reddit.com"
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 100
	defaultMaxPages = 20
)

// Client is a Reddit OAuth API client for public user listings
type Client struct {
	baseURL           string
	httpClient        *http.Client
	pageSize          int
	maxPages          int
	requestsPerMinute int
	metrics           *metrics.Metrics

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // by credential id
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom API base URL
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithPageSize sets the listing page size (max 100 upstream)
func WithPageSize(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPages sets the page ceiling of a single listing walk
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// WithRequestsPerMinute paces API requests per credential set. Zero disables pacing.
func WithRequestsPerMinute(n int) ClientOption {
	return func(c *Client) {
		c.requestsPerMinute = n
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a new Reddit API client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: defaultAPIURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
		limiters: make(map[string]*rate.Limiter),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = instrument(c.httpClient, c.metrics)

	return c
}

// APIError represents a non-2xx response from the Reddit API
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Code       int    `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit API error: %s (status: %d)", e.Message, e.StatusCode)
}

// Unwrap lets callers match every API error against entity.ErrUpstream
func (e *APIError) Unwrap() error {
	return entity.ErrUpstream
}

// listing is the envelope of a paginated collection
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// thing is one post (t3) or comment (t1) inside a listing
type thing struct {
	Kind string    `json:"kind"`
	Data thingData `json:"data"`
}

type thingData struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Author         string   `json:"author"`
	AuthorFullname string   `json:"author_fullname"`
	Subreddit      string   `json:"subreddit"`
	CreatedUTC     *float64 `json:"created_utc"`
	Score          *int     `json:"score"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	Permalink      string   `json:"permalink"`
	LinkID         string   `json:"link_id"`
}

func (d thingData) toRawItem(kind entity.Kind) entity.RawItem {
	item := entity.RawItem{
		Kind:         kind,
		AuthorID:     d.AuthorFullname,
		Author:       d.Author,
		ItemID:       d.Name,
		ID:           d.ID,
		ParentPostID: strings.TrimPrefix(d.LinkID, "t3_"),
		Subreddit:    d.Subreddit,
		Permalink:    d.Permalink,
	}
	if d.CreatedUTC != nil {
		item.CreatedAt = unixTime(*d.CreatedUTC)
	}
	if d.Score != nil {
		item.Score = *d.Score
	}
	if kind == entity.KindPost {
		item.Text = d.Title
	} else {
		item.Text = d.Body
	}
	return item
}

// about is the /user/{name}/about response
type about struct {
	Kind string `json:"kind"`
	Data *struct {
		Name         string   `json:"name"`
		CreatedUTC   *float64 `json:"created_utc"`
		LinkKarma    int64    `json:"link_karma"`
		CommentKarma int64    `json:"comment_karma"`
		IsSuspended  bool     `json:"is_suspended"`
	} `json:"data"`
}

func unixTime(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).UTC()
}

// Profile retrieves the public profile of a user
// GET /user/{username}/about
func (c *Client) Profile(ctx context.Context, sess *Session, username string) (*entity.Profile, error) {
	endpoint := fmt.Sprintf("%s/user/%s/about", c.baseURL, url.PathEscape(username))

	params := url.Values{}
	params.Set("raw_json", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out about
	if err := c.do(req, sess, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, entity.ErrUserNotFound
		}
		return nil, err
	}
	if out.Data == nil {
		return nil, entity.ErrUserNotFound
	}

	profile := &entity.Profile{
		Name:         out.Data.Name,
		LinkKarma:    out.Data.LinkKarma,
		CommentKarma: out.Data.CommentKarma,
		IsSuspended:  out.Data.IsSuspended,
	}
	if out.Data.CreatedUTC != nil {
		profile.CreatedAt = unixTime(*out.Data.CreatedUTC)
	}

	return profile, nil
}

// ListingRequest identifies one listing walk
type ListingRequest struct {
	Username string
	Kind     entity.Kind
	Sort     entity.Sort
}

// page requests one page of a user listing
// GET /user/{username}/{submitted|comments}
func (c *Client) page(ctx context.Context, sess *Session, in ListingRequest, limit int, after string, count int) (*listing, error) {
	endpoint := fmt.Sprintf("%s/user/%s/%s", c.baseURL, url.PathEscape(in.Username), in.Kind)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	if in.Sort != "" {
		params.Set("sort", string(in.Sort))
		if in.Sort == entity.SortTop || in.Sort == entity.SortControversial {
			params.Set("t", "all")
		}
	}
	if after != "" {
		params.Set("after", after)
		params.Set("count", strconv.Itoa(count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var out listing
	if err := c.do(req, sess, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// FetchAll walks a listing page by page until the cursor runs out.
// Items keep upstream order. The walk fails with entity.ErrPaginationLimitExceeded
// instead of requesting more than the configured number of pages.
func (c *Client) FetchAll(ctx context.Context, sess *Session, in ListingRequest) ([]entity.RawItem, error) {
	items := []entity.RawItem{}
	after := ""

	for pages := 0; ; pages++ {
		if pages >= c.maxPages {
			c.metrics.PaginationLimitExceeded(in.Kind.String(), string(in.Sort))
			return nil, fmt.Errorf("%w: %s/%s sort=%s still had a cursor after %d pages",
				entity.ErrPaginationLimitExceeded, in.Username, in.Kind, in.Sort, pages)
		}

		l, err := c.page(ctx, sess, in, c.pageSize, after, len(items))
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
				return nil, entity.ErrUserNotFound
			}
			return nil, fmt.Errorf("fetching %s/%s sort=%s: %w", in.Username, in.Kind, in.Sort, err)
		}

		for _, child := range l.Data.Children {
			items = append(items, child.Data.toRawItem(in.Kind))
		}

		after = l.Data.After
		if after == "" {
			return items, nil
		}
	}
}

// CountRecent returns how many items the first page of a listing holds, up to limit.
// Client errors count as an empty listing, since hidden or restricted profiles answer with 4xx.
func (c *Client) CountRecent(ctx context.Context, sess *Session, username string, kind entity.Kind, limit int) (int, error) {
	l, err := c.page(ctx, sess, ListingRequest{Username: username, Kind: kind}, limit, "", 0)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			return 0, nil
		}
		return 0, err
	}
	return len(l.Data.Children), nil
}

// limiter returns the pacing limiter of a credential set, or nil when pacing is off
func (c *Client) limiter(credentialID string) *rate.Limiter {
	if c.requestsPerMinute <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[credentialID]
	if !ok {
		burst := max(1, c.requestsPerMinute/10)
		l = rate.NewLimiter(rate.Limit(float64(c.requestsPerMinute)/60), burst)
		c.limiters[credentialID] = l
	}
	return l
}

// do executes an authenticated request and decodes the response
func (c *Client) do(req *http.Request, sess *Session, out interface{}) error {
	if l := c.limiter(sess.credentialID); l != nil {
		if err := l.Wait(req.Context()); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	req.Header.Set("Authorization", "Bearer "+sess.token)
	req.Header.Set("User-Agent", sess.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: executing request: %w", entity.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response body: %w", entity.ErrUpstream, err)
	}

	// Check for error response
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: decoding response: %w", entity.ErrUpstream, err)
		}
	}

	return nil
}
