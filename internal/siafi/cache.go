package siafi

import (
	"sync"

	"github.com/go-gota/gota/dataframe"
)

// Cache memoizes built views keyed by view name and UO restriction. The
// extract files only change on a new data drop, so a built view stays valid
// until Invalidate is called. The entry count is bounded; hitting the bound
// resets the whole cache rather than tracking recency.
type Cache struct {
	mu      sync.Mutex
	entries map[string]dataframe.DataFrame
	max     int
}

func NewCache(max int) *Cache {
	if max <= 0 {
		max = 8
	}
	return &Cache{entries: make(map[string]dataframe.DataFrame), max: max}
}

// Get returns the cached view for key, building and storing it on a miss.
func (c *Cache) Get(key string, build func() (dataframe.DataFrame, error)) (dataframe.DataFrame, error) {
	c.mu.Lock()
	if df, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return df, nil
	}
	c.mu.Unlock()

	df, err := build()
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	c.mu.Lock()
	if len(c.entries) >= c.max {
		c.entries = make(map[string]dataframe.DataFrame)
	}
	c.entries[key] = df
	c.mu.Unlock()
	return df, nil
}

// Invalidate drops every cached view. Called after a new extract drop.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]dataframe.DataFrame)
	c.mu.Unlock()
}
