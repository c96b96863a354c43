package maps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ticketplan/internal/shared/constants"
	"ticketplan/pkg/cache"
	"ticketplan/pkg/logger"
)

// ClientConfig configures the HTTP loader.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	ListTTL    time.Duration
	SeatMapTTL time.Duration
}

// Client talks to the ticket API. GET responses are cached under their
// request signature; purchases are never cached.
type Client struct {
	client  *http.Client
	cache   cache.Service
	baseURL string
	listTTL time.Duration
	mapTTL  time.Duration
	log     *logger.Logger
}

func NewClient(cfg ClientConfig, store cache.Service, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.Timeout > 0 {
		httpClient.Timeout = cfg.Timeout
	}
	if store == nil {
		store = cache.NewMemoryService()
	}
	if cfg.ListTTL == 0 {
		cfg.ListTTL = constants.TTL_MAP_LIST
	}
	if cfg.SeatMapTTL == 0 {
		cfg.SeatMapTTL = constants.TTL_SEAT_MAP
	}
	return &Client{
		client:  httpClient,
		cache:   store,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		listTTL: cfg.ListTTL,
		mapTTL:  cfg.SeatMapTTL,
		log:     logger.GetDefault(),
	}
}

// MapIDs fetches GET /map.
func (c *Client) MapIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := c.getCached(ctx, "/map", c.listTTL, &ids); err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return ids, nil
}

// SeatMatrix fetches GET /map/{mapId}.
func (c *Client) SeatMatrix(ctx context.Context, mapID string) ([][]int, error) {
	var seats [][]int
	if err := c.getCached(ctx, "/map/"+url.PathEscape(mapID), c.mapTTL, &seats); err != nil {
		return nil, fmt.Errorf("get seat map %s: %w", mapID, err)
	}
	return seats, nil
}

// PurchaseTicket posts to /map/{mapId}/ticket.
func (c *Client) PurchaseTicket(ctx context.Context, mapID string, req PurchaseRequest) (*PurchaseResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal purchase request: %w", err)
	}

	var resp PurchaseResponse
	if err := c.do(ctx, http.MethodPost, "/map/"+url.PathEscape(mapID)+"/ticket", body, &resp); err != nil {
		return nil, fmt.Errorf("purchase seat (%d, %d) on %s: %w", req.X, req.Y, mapID, err)
	}
	return &resp, nil
}

// CacheKey is the signature a GET on path is cached under.
func (c *Client) CacheKey(path string) string {
	return constants.BuildLoaderKey(http.MethodGet, c.baseURL+path)
}

// ClearCache drops every cached response.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.cache.DeletePattern(ctx, constants.CACHE_KEY_LOADER_PREFIX+"*")
}

// ClearCacheEntry drops one cached response by its signature.
func (c *Client) ClearCacheEntry(ctx context.Context, key string) error {
	return c.cache.Delete(ctx, key)
}

func (c *Client) getCached(ctx context.Context, path string, ttl time.Duration, dest interface{}) error {
	key := c.CacheKey(path)
	err := c.cache.Get(ctx, key, dest)
	if err == nil {
		c.log.LogUpstreamCall(ctx, http.MethodGet, c.baseURL+path, http.StatusOK, 0, true)
		return nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.log.WithError(err).WarnContext(ctx, "Loader cache read failed")
	}

	if err := c.do(ctx, http.MethodGet, path, nil, dest); err != nil {
		return err
	}

	if err := c.cache.Set(ctx, key, dest, ttl); err != nil {
		c.log.WithError(err).WarnContext(ctx, "Loader cache write failed")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.log.LogUpstreamCall(ctx, method, req.URL.String(), resp.StatusCode, time.Since(start), false)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er ErrorResponse
		if json.Unmarshal(data, &er) == nil {
			apiErr.Code = er.Error
			apiErr.Message = er.Message
			apiErr.Timestamp = er.Timestamp
		}
		return apiErr
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
