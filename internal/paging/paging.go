// Package paging normalizes the heterogeneous timestamp encodings found in
// stored documents and provides in-memory sort and pagination for list
// endpoints. Sorting happens in application memory after the org-predicate
// merge, never in the store, so no composite index is needed for the union
// of org predicates.
package paging

import (
	"sort"
	"strconv"
	"time"
)

// PageSize is the fixed page length of paginated list endpoints.
const PageSize = 10

// Page is one slice of a sorted result set.
type Page[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
}

// NormalizeTimestamp converts any historical timestamp encoding to epoch
// milliseconds. It never fails: unparseable input yields 0, which sorts
// last in descending order.
//
// Accepted encodings: time.Time (native store timestamps decode to this),
// {seconds, nanoseconds} pairs with or without underscore-prefixed keys,
// numeric epochs (seconds or milliseconds), and ISO-ish strings.
func NormalizeTimestamp(raw interface{}) int64 {
	switch v := raw.(type) {
	case nil:
		return 0
	case time.Time:
		return v.UnixMilli()
	case *time.Time:
		if v == nil {
			return 0
		}
		return v.UnixMilli()
	case map[string]interface{}:
		return fromSecondsPair(v)
	case string:
		return fromString(v)
	case float64:
		return fromEpochNumber(int64(v))
	case int64:
		return fromEpochNumber(v)
	case int:
		return fromEpochNumber(int64(v))
	default:
		return 0
	}
}

func fromSecondsPair(m map[string]interface{}) int64 {
	seconds, okSec := pairNumber(m, "seconds", "_seconds")
	if !okSec {
		return 0
	}
	nanos, _ := pairNumber(m, "nanoseconds", "_nanoseconds")
	return int64(seconds)*1000 + int64(nanos)/1e6
}

func pairNumber(m map[string]interface{}, key, legacyKey string) (float64, bool) {
	for _, k := range []string{key, legacyKey} {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case int64:
			return float64(v), true
		case int:
			return float64(v), true
		}
	}
	return 0, false
}

func fromString(s string) int64 {
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpochNumber(n)
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// fromEpochNumber distinguishes second from millisecond epochs by magnitude:
// anything before the year 33658 in seconds is under 1e12.
func fromEpochNumber(n int64) int64 {
	if n == 0 {
		return 0
	}
	if n < 1e12 && n > -1e12 {
		return n * 1000
	}
	return n
}

// DisplayTimestamp renders a stored timestamp as an RFC 3339 string for
// display. Unparseable input falls back to the current time; the fallback is
// display-only and never written back to the store.
func DisplayTimestamp(raw interface{}) string {
	if s, ok := raw.(string); ok && s != "" {
		if _, err := time.Parse(time.RFC3339, s); err == nil {
			return s
		}
	}
	ms := NormalizeTimestamp(raw)
	if ms == 0 {
		return time.Now().UTC().Format(time.RFC3339)
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// SortByCreatedAtDesc sorts items newest-first by their normalized creation
// timestamp. The sort is stable so equal timestamps keep their merge order.
func SortByCreatedAtDesc[T any](items []T, createdAt func(T) interface{}) {
	sort.SliceStable(items, func(i, j int) bool {
		return NormalizeTimestamp(createdAt(items[i])) > NormalizeTimestamp(createdAt(items[j]))
	})
}

// Paginate slices a sorted result set into one fixed-size page. An
// out-of-range page yields empty data with correct totals; pages below 1 are
// treated as page 1.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	total := len(items)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	data := items[start:end]
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Total: total, TotalPages: totalPages, Page: page}
}
