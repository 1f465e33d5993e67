package request

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"

	"github.com/kailas-cloud/openfda-mcp/internal/domain"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length, in characters.
	MaxQueryLength = 500
	MinLimit       = 1
	MaxLimit       = 1000
	DefaultLimit   = 10
)

// Bounds holds the validation limits applied to every request.
type Bounds struct {
	MaxQueryLength int
	MinLimit       int
	MaxLimit       int
	DefaultLimit   int
}

// DefaultBounds returns the openFDA limits.
func DefaultBounds() Bounds {
	return Bounds{
		MaxQueryLength: MaxQueryLength,
		MinLimit:       MinLimit,
		MaxLimit:       MaxLimit,
		DefaultLimit:   DefaultLimit,
	}
}

// Request is a validated classification search.
type Request struct {
	query string
	limit int
}

// New validates and normalizes search parameters.
// The query is trimmed; an overlong query is rejected, the limit is clamped into bounds.
func New(query string, limit int, b Bounds) (Request, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) > b.MaxQueryLength {
		return Request{}, domain.InvalidArgument("Search query too long (max %d characters)", b.MaxQueryLength)
	}
	return Request{query: query, limit: b.clamp(limit)}, nil
}

// Parse builds a Request from raw tool arguments ("search", "limit").
func Parse(args map[string]any, b Bounds) (Request, error) {
	limit, err := parseLimit(args["limit"], b)
	if err != nil {
		return Request{}, err
	}
	query, err := parseSearch(args["search"])
	if err != nil {
		return Request{}, err
	}
	return New(query, limit, b)
}

func parseLimit(v any, b Bounds) (int, error) {
	switch x := v.(type) {
	case nil:
		return b.DefaultLimit, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err == nil {
			return n, nil
		}
		// Out-of-range integers are still integers: clamp by sign.
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(strings.TrimSpace(x), "-") {
				return b.MinLimit, nil
			}
			return b.MaxLimit, nil
		}
		return 0, errInvalidLimit()
	case float64:
		switch {
		case math.IsNaN(x):
			return 0, errInvalidLimit()
		case x >= float64(b.MaxLimit):
			return b.MaxLimit, nil
		case x <= float64(b.MinLimit):
			return b.MinLimit, nil
		}
		return int(x), nil
	case map[string]any, []any:
		return 0, errInvalidLimit()
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, errInvalidLimit()
	}
	return n, nil
}

func parseSearch(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", domain.InvalidArgument("'search' must be a string")
	}
	return s, nil
}

func errInvalidLimit() error {
	return domain.InvalidArgument("'limit' must be a valid integer")
}

func (b Bounds) clamp(limit int) int {
	if limit > b.MaxLimit {
		return b.MaxLimit
	}
	if limit < b.MinLimit {
		return b.MinLimit
	}
	return limit
}

// Query returns the trimmed search query, empty when none was given.
func (r *Request) Query() string { return r.query }

// HasQuery reports whether a non-empty query was given.
func (r *Request) HasQuery() bool { return r.query != "" }

// Limit returns the clamped result count.
func (r *Request) Limit() int { return r.limit }
