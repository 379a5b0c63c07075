// Package client implements oneroster.Client on top of a Connection.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/fivetwenty-io/oneroster/pkg/oneroster"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// Client implements the oneroster.Client interface.
type Client struct {
	conn *oneroster.Connection

	// Resource clients
	schools     *ResourceClient[oneroster.School]
	tenants     *ResourceClient[oneroster.Tenant]
	students    *ResourceClient[oneroster.Student]
	teachers    *ResourceClient[oneroster.Teacher]
	classes     *ResourceClient[oneroster.Class]
	enrollments *ResourceClient[oneroster.Enrollment]

	concurrency int
}

// Option configures the Client.
type Option func(*options)

type options struct {
	retryDelay  time.Duration
	concurrency int
}

// WithRetryDelay sets the base delay between gateway timeout retries.
func WithRetryDelay(delay time.Duration) Option {
	return func(o *options) {
		o.retryDelay = delay
	}
}

// WithConcurrency sets how many collections FetchRoster reads at once.
func WithConcurrency(limit int) Option {
	return func(o *options) {
		o.concurrency = limit
	}
}

// New creates a client over conn.
func New(conn *oneroster.Connection, opts ...Option) *Client {
	o := options{
		retryDelay:  constants.GatewayTimeoutRetryDelay,
		concurrency: constants.DefaultConcurrencyLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := conn.Config()
	mapperOpts := oneroster.MapperOptions{UsernameSource: cfg.UsernameSource}
	retry := retryPolicy{attempts: cfg.RetryAttempts, delay: o.retryDelay}

	client := &Client{
		conn:        conn,
		concurrency: o.concurrency,
	}

	client.schools = newResourceClient(conn, retry, endpoint{
		name: "schools", path: "/schools", collectionKey: "orgs", singularKey: "org",
	}, oneroster.NewSchool)
	client.tenants = newResourceClient(conn, retry, endpoint{
		name: "tenants", path: "/orgs", collectionKey: "orgs", singularKey: "org",
	}, oneroster.NewTenant)
	client.students = newResourceClient(conn, retry, endpoint{
		name: "students", path: "/students", collectionKey: "users", singularKey: "user",
	}, func(obj gjson.Result) oneroster.Student {
		return oneroster.NewStudent(obj, mapperOpts)
	})
	client.teachers = newResourceClient(conn, retry, endpoint{
		name: "teachers", path: "/teachers", collectionKey: "users", singularKey: "user",
	}, func(obj gjson.Result) oneroster.Teacher {
		return oneroster.NewTeacher(obj, mapperOpts)
	})
	client.classes = newResourceClient(conn, retry, endpoint{
		name: "classes", path: "/classes", collectionKey: "classes", singularKey: "class",
	}, oneroster.NewClass)
	client.enrollments = newResourceClient(conn, retry, endpoint{
		name: "enrollments", path: "/enrollments", collectionKey: "enrollments", singularKey: "enrollment",
	}, oneroster.NewEnrollment)

	return client
}

// Connection implements oneroster.Client.Connection.
func (c *Client) Connection() *oneroster.Connection {
	return c.conn
}

// Schools implements oneroster.Client.Schools.
func (c *Client) Schools() oneroster.ResourceClient[oneroster.School] {
	return c.schools
}

// Tenants implements oneroster.Client.Tenants.
func (c *Client) Tenants() oneroster.ResourceClient[oneroster.Tenant] {
	return c.tenants
}

// Students implements oneroster.Client.Students.
func (c *Client) Students() oneroster.ResourceClient[oneroster.Student] {
	return c.students
}

// Teachers implements oneroster.Client.Teachers.
func (c *Client) Teachers() oneroster.ResourceClient[oneroster.Teacher] {
	return c.teachers
}

// Classes implements oneroster.Client.Classes.
func (c *Client) Classes() oneroster.ResourceClient[oneroster.Class] {
	return c.classes
}

// Enrollments implements oneroster.Client.Enrollments.
func (c *Client) Enrollments() oneroster.ResourceClient[oneroster.Enrollment] {
	return c.enrollments
}

// FetchRoster implements oneroster.Client.FetchRoster. The first failing
// collection cancels the others.
func (c *Client) FetchRoster(ctx context.Context) (*oneroster.Roster, error) {
	roster := &oneroster.Roster{}

	group, gctx := errgroup.WithContext(ctx)
	if c.concurrency > 0 {
		group.SetLimit(c.concurrency)
	}

	group.Go(func() (err error) {
		roster.Schools, err = c.schools.All(gctx, nil)

		return err
	})
	group.Go(func() (err error) {
		roster.Students, err = c.students.All(gctx, nil)

		return err
	})
	group.Go(func() (err error) {
		roster.Teachers, err = c.teachers.All(gctx, nil)

		return err
	})
	group.Go(func() (err error) {
		roster.Classes, err = c.classes.All(gctx, nil)

		return err
	})
	group.Go(func() (err error) {
		roster.Enrollments, err = c.enrollments.All(gctx, nil)

		return err
	})

	err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}

	return roster, nil
}

var _ oneroster.Client = (*Client)(nil)
