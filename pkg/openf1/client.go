package openf1

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/tyrelab/tyredeg/log"
	"github.com/tyrelab/tyredeg/pkg/model"
	"github.com/tyrelab/tyredeg/pkg/utils/cache"
	"github.com/tyrelab/tyredeg/pkg/utils/cache/filecache"
	"github.com/tyrelab/tyredeg/pkg/utils/cache/loadercache"
)

const DefaultBaseURL = "https://api.openf1.org/v1"

type (
	Option func(*Client)
	Client struct {
		baseURL string
		client  *fasthttp.Client
		cache   *filecache.FileCache
		timeout time.Duration
		l       *log.Logger

		// decoded responses, memoized per session key
		stints cache.Cache[int, []model.StintRecord]
		laps   cache.Cache[int, []model.LapRecord]
	}
)

func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithCacheDir(dir string) Option {
	return func(c *Client) {
		c.cache = filecache.New(filecache.WithDir(dir))
	}
}

func WithLogger(arg *log.Logger) Option {
	return func(c *Client) {
		c.l = arg
	}
}

func NewClient(opts ...Option) *Client {
	ret := &Client{
		baseURL: DefaultBaseURL,
		timeout: 30 * time.Second,
		l:       log.Default().Named("openf1"),
		client: &fasthttp.Client{
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.cache == nil {
		ret.cache = filecache.New()
	}
	ret.stints = loadercache.New(
		loadercache.WithLoader(ret.fetchStints),
		loadercache.WithLogger[int, []model.StintRecord](ret.l))
	ret.laps = loadercache.New(
		loadercache.WithLoader(ret.fetchLaps),
		loadercache.WithLogger[int, []model.LapRecord](ret.l))
	return ret
}

// Sessions returns the sessions matching country, session type and year.
//
//nolint:whitespace // can't make both editor and linter happy
func (c *Client) Sessions(
	ctx context.Context, country, sessionType string, year int,
) ([]model.Session, error) {
	url := fmt.Sprintf("%s/sessions?country_name=%s&session_type=%s&year=%d",
		c.baseURL, country, sessionType, year)
	key := fmt.Sprintf("sessions_%s_%s_%d.json", country, sessionType, year)
	data, err := c.fetch(ctx, key, url)
	if err != nil {
		return nil, err
	}
	return decodeSessions(data)
}

// Stints returns all stints of the session.
func (c *Client) Stints(ctx context.Context, sessionKey int) (
	[]model.StintRecord, error,
) {
	ret, err := c.stints.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return *ret, nil
}

// Laps returns all timed laps of the session.
func (c *Client) Laps(ctx context.Context, sessionKey int) (
	[]model.LapRecord, error,
) {
	ret, err := c.laps.Get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	return *ret, nil
}

func (c *Client) fetchStints(ctx context.Context, sessionKey int) (
	*[]model.StintRecord, error,
) {
	url := fmt.Sprintf("%s/stints?session_key=%d", c.baseURL, sessionKey)
	key := fmt.Sprintf("stints_%d.json", sessionKey)
	data, err := c.fetch(ctx, key, url)
	if err != nil {
		return nil, err
	}
	stints, err := decodeStints(data, sessionKey)
	if err != nil {
		return nil, err
	}
	return &stints, nil
}

func (c *Client) fetchLaps(ctx context.Context, sessionKey int) (
	*[]model.LapRecord, error,
) {
	url := fmt.Sprintf("%s/laps?session_key=%d", c.baseURL, sessionKey)
	key := fmt.Sprintf("laps_%d.json", sessionKey)
	data, err := c.fetch(ctx, key, url)
	if err != nil {
		return nil, err
	}
	laps, err := decodeLaps(data, sessionKey)
	if err != nil {
		return nil, err
	}
	return &laps, nil
}

func (c *Client) fetch(ctx context.Context, key, url string) ([]byte, error) {
	data, err := c.cache.GetOrLoad(ctx, key,
		func(ctx context.Context, _ string) ([]byte, error) {
			return c.doRequest(ctx, url)
		})
	if err != nil {
		return nil, err
	}
	return *data, nil
}

func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	c.l.Debug("fetching", log.String("url", url))
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}
	body := resp.Body()
	ret := make([]byte, len(body))
	copy(ret, body)
	return ret, nil
}
