package locations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultIndex(t *testing.T) *Index {
	t.Helper()
	locs, err := LoadDefault()
	require.NoError(t, err)
	return NewIndex(locs)
}

func labels(locs []Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Label()
	}
	return out
}

func zips(locs []Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Zip
	}
	return out
}

func TestFilter_AustinYieldsSingleCity(t *testing.T) {
	ix := defaultIndex(t)

	for _, q := range []string{"Austin", "austin", "AUSTIN", "austin, tx", "  Austin  "} {
		res := ix.Filter(q)
		require.Len(t, res.Cities, 1, q)
		assert.Equal(t, "Austin", res.Cities[0].City)
		assert.Equal(t, "TX", res.Cities[0].State)
		assert.Empty(t, res.ZipCodes, q)
	}
}

func TestFilter_ShortQueriesMatchNothing(t *testing.T) {
	ix := defaultIndex(t)

	for _, q := range []string{"", " ", "a", "  a  ", "7", "é"} {
		res := ix.Filter(q)
		assert.Equal(t, 0, res.Len(), "query %q", q)
		assert.NotNil(t, res.Cities)
		assert.NotNil(t, res.ZipCodes)
	}
}

func TestFilter_ZipPrefix(t *testing.T) {
	ix := defaultIndex(t)

	res := ix.Filter("787")
	assert.Empty(t, res.Cities)
	assert.Equal(t, []string{"78701", "78702", "78704"}, zips(res.ZipCodes))
}

func TestFilter_ZipPrefixBeforeInterior(t *testing.T) {
	ix := defaultIndex(t)

	res := ix.Filter("10")
	assert.Equal(t, []string{"10001", "10002", "10003", "01103", "02108"}, zips(res.ZipCodes))
}

func TestFilter_DistinctCitiesSharingName(t *testing.T) {
	ix := defaultIndex(t)

	assert.Equal(t, []string{"Portland, ME", "Portland, OR"}, labels(ix.Filter("port").Cities))
	assert.Equal(t,
		[]string{"Springfield, IL", "Springfield, MA", "Springfield, MO"},
		labels(ix.Filter("springfield").Cities))
}

func TestFilter_RanksPrefixThenWordThenInterior(t *testing.T) {
	ix := defaultIndex(t)

	res := ix.Filter("an")
	require.Len(t, res.Cities, 5)
	assert.Equal(t, "Anchorage, AK", res.Cities[0].Label())
	assert.Equal(t, "Los Angeles, CA", res.Cities[1].Label())
	assert.Equal(t, "San Antonio, TX", res.Cities[2].Label())
}

func TestFilter_CapsEachGroup(t *testing.T) {
	ix := defaultIndex(t)

	res := ix.Filter("san")
	assert.Equal(t, []string{
		"San Antonio, TX", "San Diego, CA", "San Francisco, CA", "San Jose, CA", "Santa Fe, NM",
	}, labels(res.Cities))

	small := NewIndex(ix.all, WithMaxPerGroup(2))
	assert.Len(t, small.Filter("san").Cities, 2)
	assert.Len(t, small.Filter("02").ZipCodes, 2)
}

func TestFilter_CitiesAreUniquePerState(t *testing.T) {
	ix := defaultIndex(t)

	for _, q := range []string{"new", "san", "an", "ci"} {
		seen := map[string]bool{}
		for _, c := range ix.Filter(q).Cities {
			assert.False(t, seen[c.Label()], "duplicate %s for %q", c.Label(), q)
			seen[c.Label()] = true
		}
	}
}

func TestFilter_Deterministic(t *testing.T) {
	ix := defaultIndex(t)
	assert.Equal(t, ix.Filter("ton"), ix.Filter("ton"))
}

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		locs, err := Parse(strings.NewReader("city,state,zip,lat,lng\nPortland,me ,04101,43.6591,-70.2568\n"))
		require.NoError(t, err)
		require.Len(t, locs, 1)
		assert.Equal(t, "ME", locs[0].State)
		assert.Equal(t, "04101", locs[0].Zip)
		assert.Len(t, locs[0].Geohash, geohashPrecision)
	})

	t.Run("bad header", func(t *testing.T) {
		_, err := Parse(strings.NewReader("name,st,postal,lat,lng\n"))
		assert.ErrorContains(t, err, "unexpected header")
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := Parse(strings.NewReader("city,state,zip,lat,lng\nNowhere,XX,00000,95,0\n"))
		assert.ErrorIs(t, err, ErrInvalidCoordinates)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Parse(strings.NewReader("city,state,zip,lat,lng\n"))
		assert.Error(t, err)
	})
}

func TestGroupedSuggestions_At(t *testing.T) {
	g := GroupedSuggestions{
		Cities:   []Location{{City: "Austin", State: "TX"}},
		ZipCodes: []Location{{Zip: "78701"}, {Zip: "78702"}},
	}

	assert.Equal(t, 3, g.Len())
	l, ok := g.At(0)
	assert.True(t, ok)
	assert.Equal(t, "Austin", l.City)
	assert.False(t, g.IsZipSelection(0))

	l, ok = g.At(2)
	assert.True(t, ok)
	assert.Equal(t, "78702", l.Zip)
	assert.True(t, g.IsZipSelection(2))

	_, ok = g.At(3)
	assert.False(t, ok)
	_, ok = g.At(-1)
	assert.False(t, ok)
}

func TestSuggestOutcome(t *testing.T) {
	ix := defaultIndex(t)
	tests := map[string]string{
		"":        "short",
		" a ":     "short",
		"  ":      "short",
		"austin":  "matched",
		"zzzzzz":  "empty",
		" zzzz  ": "empty",
	}
	for query, want := range tests {
		t.Run(query, func(t *testing.T) {
			assert.Equal(t, want, suggestOutcome(query, ix.Filter(query)))
		})
	}
}
