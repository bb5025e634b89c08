package paging

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	native := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

	tests := []struct {
		name string
		raw  interface{}
		want int64
	}{
		{"nil", nil, 0},
		{"native time", native, 1700000000000},
		{"seconds pair", map[string]interface{}{"seconds": float64(1700000000), "nanoseconds": float64(500000000)}, 1700000000500},
		{"underscore pair", map[string]interface{}{"_seconds": float64(1700000000), "_nanoseconds": float64(500000000)}, 1700000000500},
		{"pair without nanos", map[string]interface{}{"seconds": float64(1700000000)}, 1700000000000},
		{"epoch seconds", float64(1700000000), 1700000000000},
		{"epoch millis", float64(1700000000500), 1700000000500},
		{"epoch seconds int", int64(1700000000), 1700000000000},
		{"numeric string seconds", "1700000000", 1700000000000},
		{"iso string", "2023-11-14T22:13:20Z", 1700000000000},
		{"date-only string", "2023-11-14", native.Truncate(24 * time.Hour).UnixMilli()},
		{"garbage string", "not a date", 0},
		{"unsupported type", []string{"x"}, 0},
		{"pair missing seconds", map[string]interface{}{"nanoseconds": float64(1)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTimestamp(tt.raw))
		})
	}
}

func TestDisplayTimestamp(t *testing.T) {
	assert.Equal(t, "2023-11-14T22:13:20Z", DisplayTimestamp("2023-11-14T22:13:20Z"))
	assert.Equal(t, "2023-11-14T22:13:20Z", DisplayTimestamp(float64(1700000000)))

	// Unparseable input falls back to the current time rather than zero.
	got, err := time.Parse(time.RFC3339, DisplayTimestamp("garbage"))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), got, time.Minute)
}

type stamped struct {
	ID        string
	CreatedAt interface{}
}

func TestSortByCreatedAtDesc(t *testing.T) {
	items := []stamped{
		{ID: "oldest", CreatedAt: float64(1600000000)},
		{ID: "newest", CreatedAt: "2023-11-14T22:13:20Z"},
		{ID: "broken", CreatedAt: "garbage"},
		{ID: "middle", CreatedAt: map[string]interface{}{"seconds": float64(1650000000)}},
	}
	SortByCreatedAtDesc(items, func(s stamped) interface{} { return s.CreatedAt })

	got := make([]string, len(items))
	for i, s := range items {
		got[i] = s.ID
	}
	// Unparseable timestamps normalize to zero and sort last.
	assert.Equal(t, []string{"newest", "middle", "oldest", "broken"}, got)
}

func TestSortByCreatedAtDescStable(t *testing.T) {
	items := []stamped{
		{ID: "a", CreatedAt: float64(1700000000)},
		{ID: "b", CreatedAt: float64(1700000000)},
		{ID: "c", CreatedAt: float64(1700000000)},
	}
	SortByCreatedAtDesc(items, func(s stamped) interface{} { return s.CreatedAt })
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "c", items[2].ID)
}

func TestPaginate(t *testing.T) {
	items := make([]string, 23)
	for i := range items {
		items[i] = fmt.Sprintf("item-%02d", i)
	}

	t.Run("first page", func(t *testing.T) {
		page := Paginate(items, 1, PageSize)
		assert.Len(t, page.Data, 10)
		assert.Equal(t, "item-00", page.Data[0])
		assert.Equal(t, 23, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 1, page.Page)
	})

	t.Run("last partial page", func(t *testing.T) {
		page := Paginate(items, 3, PageSize)
		assert.Len(t, page.Data, 3)
		assert.Equal(t, "item-20", page.Data[0])
		assert.Equal(t, 3, page.TotalPages)
	})

	t.Run("page out of range", func(t *testing.T) {
		page := Paginate(items, 99, PageSize)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Equal(t, 23, page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 99, page.Page)
	})

	t.Run("page below one is treated as one", func(t *testing.T) {
		page := Paginate(items, 0, PageSize)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, "item-00", page.Data[0])
	})

	t.Run("empty input", func(t *testing.T) {
		page := Paginate([]string(nil), 1, PageSize)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
		assert.Equal(t, 0, page.Total)
		assert.Equal(t, 0, page.TotalPages)
	})
}
