package oneroster

import (
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/oneroster/internal/constants"
)

// Method is an HTTP method supported by Connection.Execute.
type Method string

// Supported methods.
const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
)

func (m Method) valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete:
		return true
	default:
		return false
	}
}

// Params are the parameters of one call. GET and DELETE send them as query
// parameters, POST and PUT as a JSON body.
type Params map[string]interface{}

// withPagination returns a copy of p with the limit and offset defaults
// filled in where the caller did not set them.
func (p Params) withPagination() Params {
	merged := make(Params, len(p)+2)
	maps.Copy(merged, p)

	if _, ok := merged[constants.ParamLimit]; !ok {
		merged[constants.ParamLimit] = PageLimit
	}

	if _, ok := merged[constants.ParamOffset]; !ok {
		merged[constants.ParamOffset] = constants.DefaultOffset
	}

	return merged
}

// Values formats p as query parameters. Slices produce repeated keys.
func (p Params) Values() url.Values {
	values := make(url.Values, len(p))

	for key, value := range p {
		switch typed := value.(type) {
		case nil:
			continue
		case []string:
			for _, item := range typed {
				values.Add(key, item)
			}
		case []interface{}:
			for _, item := range typed {
				values.Add(key, fmt.Sprint(item))
			}
		default:
			values.Set(key, fmt.Sprint(typed))
		}
	}

	return values
}

// ListOptions express the OneRoster collection query parameters.
type ListOptions struct {
	// Limit is the page size. Zero uses PageLimit.
	Limit int
	// Offset is the index of the first record.
	Offset int
	// Filter is a OneRoster filter expression, e.g. "status='active'".
	Filter string
	// Sort names the field to sort by.
	Sort string
	// OrderBy is "asc" or "desc".
	OrderBy string
	// Fields restricts the returned fields.
	Fields []string
}

// PageSize returns the effective limit.
func (o *ListOptions) PageSize() int {
	if o == nil || o.Limit <= 0 {
		return PageLimit
	}

	return o.Limit
}

// Params converts the options to call parameters.
func (o *ListOptions) Params() Params {
	params := Params{
		constants.ParamLimit:  o.PageSize(),
		constants.ParamOffset: 0,
	}

	if o == nil {
		return params
	}

	params[constants.ParamOffset] = o.Offset

	if o.Filter != "" {
		params["filter"] = o.Filter
	}

	if o.Sort != "" {
		params["sort"] = o.Sort
	}

	if o.OrderBy != "" {
		params["orderBy"] = o.OrderBy
	}

	if len(o.Fields) > 0 {
		params["fields"] = strings.Join(o.Fields, ",")
	}

	return params
}

// WithOffset returns a copy of o starting at offset.
func (o *ListOptions) WithOffset(offset int) *ListOptions {
	clone := ListOptions{}
	if o != nil {
		clone = *o
	}

	clone.Offset = offset

	return &clone
}

func parseCount(value string) (int, bool) {
	if value == "" {
		return 0, false
	}

	count, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || count < 0 {
		return 0, false
	}

	return count, true
}
