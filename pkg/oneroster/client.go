package oneroster

import (
	"context"
)

// Page is one page of a collection.
type Page[T any] struct {
	Items  []T
	Limit  int
	Offset int
	// Total is the X-Total-Count header; valid when HasTotal is set.
	Total    int
	HasTotal bool
}

// HasMore reports whether another page may follow this one. With a total
// count the total decides, since providers may cap pages below Limit;
// without one a short page ends the collection.
func (p *Page[T]) HasMore() bool {
	if len(p.Items) == 0 {
		return false
	}

	if p.HasTotal {
		return p.NextOffset() < p.Total
	}

	return len(p.Items) >= p.Limit
}

// NextOffset returns the offset of the following page.
func (p *Page[T]) NextOffset() int {
	return p.Offset + len(p.Items)
}

// ResourceClient reads one roster collection.
type ResourceClient[T any] interface {
	// List fetches a single page.
	List(ctx context.Context, opts *ListOptions) (*Page[T], error)
	// All follows pages from opts.Offset until the collection is exhausted.
	All(ctx context.Context, opts *ListOptions) ([]T, error)
	// Get fetches one record by sourcedId.
	Get(ctx context.Context, sourcedID string) (*T, error)
}

// Roster is a full read of the roster collections.
type Roster struct {
	Schools     []School
	Students    []Student
	Teachers    []Teacher
	Classes     []Class
	Enrollments []Enrollment
}

// Client provides access to the roster resource clients.
type Client interface {
	// Connection returns the underlying connection for raw calls.
	Connection() *Connection

	Schools() ResourceClient[School]
	Tenants() ResourceClient[Tenant]
	Students() ResourceClient[Student]
	Teachers() ResourceClient[Teacher]
	Classes() ResourceClient[Class]
	Enrollments() ResourceClient[Enrollment]

	// FetchRoster reads schools, students, teachers, classes and
	// enrollments concurrently.
	FetchRoster(ctx context.Context) (*Roster, error)
}
