package siafi

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(v float64) dataframe.DataFrame {
	return dataframe.New(series.New([]float64{v}, series.Float, "x"))
}

func TestCacheMemoizes(t *testing.T) {
	c := NewCache(4)
	builds := 0
	build := func() (dataframe.DataFrame, error) {
		builds++
		return testFrame(1), nil
	}

	for i := 0; i < 3; i++ {
		df, err := c.Get("execucao:0", build)
		require.NoError(t, err)
		assert.Equal(t, 1, df.Nrow())
	}
	assert.Equal(t, 1, builds)
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(4)
	builds := 0
	build := func() (dataframe.DataFrame, error) {
		builds++
		return testFrame(1), nil
	}

	_, err := c.Get("k", build)
	require.NoError(t, err)
	c.Invalidate()
	_, err = c.Get("k", build)
	require.NoError(t, err)
	assert.Equal(t, 2, builds)
}

func TestCacheBoundResetsEntries(t *testing.T) {
	c := NewCache(2)
	build := func() (dataframe.DataFrame, error) { return testFrame(1), nil }

	for _, k := range []string{"a", "b", "c"} {
		_, err := c.Get(k, build)
		require.NoError(t, err)
	}
	// "c" displaced the full map; "a" must be rebuilt.
	builds := 0
	_, err := c.Get("a", func() (dataframe.DataFrame, error) {
		builds++
		return testFrame(2), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
}
