package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/fivetwenty-io/oneroster/pkg/oneroster"
	"github.com/tidwall/gjson"
)

// endpoint describes where a collection lives and how its payloads are keyed.
type endpoint struct {
	name          string
	path          string
	collectionKey string
	singularKey   string
}

// retryPolicy controls caller-side retries of gateway timeouts.
type retryPolicy struct {
	attempts int
	delay    time.Duration
}

// ResourceClient implements oneroster.ResourceClient for one collection.
type ResourceClient[T any] struct {
	conn      *oneroster.Connection
	retry     retryPolicy
	endpoint  endpoint
	mapRecord func(gjson.Result) T
}

func newResourceClient[T any](conn *oneroster.Connection, retry retryPolicy, ep endpoint, mapRecord func(gjson.Result) T) *ResourceClient[T] {
	return &ResourceClient[T]{
		conn:      conn,
		retry:     retry,
		endpoint:  ep,
		mapRecord: mapRecord,
	}
}

// List implements oneroster.ResourceClient.List.
func (c *ResourceClient[T]) List(ctx context.Context, opts *oneroster.ListOptions) (*oneroster.Page[T], error) {
	resp, err := c.get(ctx, c.endpoint.path, opts.Params())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.endpoint.name, err)
	}

	records := resp.Records(c.endpoint.collectionKey)

	page := &oneroster.Page[T]{
		Items: make([]T, 0, len(records)),
		Limit: opts.PageSize(),
	}

	if opts != nil {
		page.Offset = opts.Offset
	}

	for _, record := range records {
		page.Items = append(page.Items, c.mapRecord(record))
	}

	page.Total, page.HasTotal = resp.TotalCount()

	return page, nil
}

// All implements oneroster.ResourceClient.All.
func (c *ResourceClient[T]) All(ctx context.Context, opts *oneroster.ListOptions) ([]T, error) {
	var items []T

	next := opts.WithOffset(0)
	if opts != nil {
		next.Offset = opts.Offset
	}

	for {
		page, err := c.List(ctx, next)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Items...)

		if !page.HasMore() {
			return items, nil
		}

		next = next.WithOffset(page.NextOffset())
	}
}

// Get implements oneroster.ResourceClient.Get.
func (c *ResourceClient[T]) Get(ctx context.Context, sourcedID string) (*T, error) {
	if strings.TrimSpace(sourcedID) == "" {
		return nil, fmt.Errorf("getting %s: %w", c.endpoint.singularKey, oneroster.ErrNotFound)
	}

	resp, err := c.get(ctx, c.endpoint.path+"/"+url.PathEscape(sourcedID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s %s: %w", c.endpoint.singularKey, sourcedID, err)
	}

	record := resp.Get(c.endpoint.singularKey)
	if !record.IsObject() {
		return nil, fmt.Errorf("getting %s %s: %w", c.endpoint.singularKey, sourcedID, oneroster.ErrNotFound)
	}

	item := c.mapRecord(record)

	return &item, nil
}

// get executes a GET, turning failed responses into *oneroster.APIError and
// retrying gateway timeouts when the policy allows it.
func (c *ResourceClient[T]) get(ctx context.Context, path string, params oneroster.Params) (*oneroster.Response, error) {
	call := func() (*oneroster.Response, error) {
		resp, err := c.conn.Execute(ctx, path, oneroster.MethodGet, params)
		if err != nil {
			return nil, err
		}

		if !resp.Success() {
			return nil, oneroster.NewAPIError(oneroster.MethodGet, resp)
		}

		return resp, nil
	}

	if c.retry.attempts <= 0 {
		return call()
	}

	resp, err := retry.DoWithData(call,
		retry.Attempts(uint(c.retry.attempts)+1),
		retry.RetryIf(oneroster.IsGatewayTimeout),
		retry.Context(ctx),
		retry.Delay(c.retry.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.conn.Log(fmt.Sprintf("Retrying %s after gateway timeout (attempt %d)", path, n+1))
		}),
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with the resource name
	}

	return resp, nil
}
