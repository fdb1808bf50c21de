package locations

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/golang/geo/s2"
)

const (
	// MinQueryLength is the shortest query that produces suggestions.
	MinQueryLength = 2
	// DefaultMaxPerGroup caps each suggestion group.
	DefaultMaxPerGroup = 5
)

// Index is an immutable in-memory view of the dataset. Safe for concurrent use.
type Index struct {
	cities      []cityEntry
	zips        []Location
	all         []Location
	cells       map[s2.CellID][]int
	maxPerGroup int
}

type cityEntry struct {
	loc   Location
	label string // lower-cased "city, st"
	words []string
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithMaxPerGroup overrides DefaultMaxPerGroup. Non-positive values are ignored.
func WithMaxPerGroup(n int) IndexOption {
	return func(ix *Index) {
		if n > 0 {
			ix.maxPerGroup = n
		}
	}
}

// NewIndex builds an index over locs. The first entry seen for a city/state pair
// represents that city in the cities group.
func NewIndex(locs []Location, opts ...IndexOption) *Index {
	ix := &Index{
		maxPerGroup: DefaultMaxPerGroup,
		all:         append([]Location(nil), locs...),
	}
	for _, opt := range opts {
		opt(ix)
	}

	seenCity := make(map[string]bool)
	seenZip := make(map[string]bool)
	for _, l := range ix.all {
		key := strings.ToLower(l.City + "|" + l.State)
		if !seenCity[key] {
			seenCity[key] = true
			label := strings.ToLower(l.Label())
			ix.cities = append(ix.cities, cityEntry{
				loc:   l,
				label: label,
				words: strings.FieldsFunc(strings.ToLower(l.City), isWordBreak),
			})
		}
		if l.Zip != "" && !seenZip[l.Zip] {
			seenZip[l.Zip] = true
			ix.zips = append(ix.zips, l)
		}
	}

	sort.Slice(ix.zips, func(i, j int) bool { return ix.zips[i].Zip < ix.zips[j].Zip })
	ix.buildCellIndex()

	return ix
}

// Size is the number of dataset entries.
func (ix *Index) Size() int {
	return len(ix.all)
}

// Filter returns up to maxPerGroup cities and zip codes matching query.
//
// Matching is a case-insensitive substring test: cities against "City, ST",
// zip codes against the zip. Within a group, entries whose match starts at the
// beginning rank first, then word-start matches, then interior matches; ties
// are broken alphabetically. Queries shorter than MinQueryLength match nothing.
func (ix *Index) Filter(query string) GroupedSuggestions {
	q := strings.ToLower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLength {
		return Empty()
	}

	out := Empty()

	type rankedCity struct {
		entry cityEntry
		rank  int
	}
	var cities []rankedCity
	for _, c := range ix.cities {
		if rank, ok := matchCity(c, q); ok {
			cities = append(cities, rankedCity{entry: c, rank: rank})
		}
	}
	sort.SliceStable(cities, func(i, j int) bool {
		if cities[i].rank != cities[j].rank {
			return cities[i].rank < cities[j].rank
		}
		return cities[i].entry.label < cities[j].entry.label
	})
	for i := 0; i < len(cities) && i < ix.maxPerGroup; i++ {
		out.Cities = append(out.Cities, cities[i].entry.loc)
	}

	// Zips are already sorted, so a stable partition keeps numeric order per rank.
	var prefix, interior []Location
	for _, z := range ix.zips {
		switch idx := strings.Index(z.Zip, q); {
		case idx == 0:
			prefix = append(prefix, z)
		case idx > 0:
			interior = append(interior, z)
		}
	}
	for _, z := range append(prefix, interior...) {
		if len(out.ZipCodes) == ix.maxPerGroup {
			break
		}
		out.ZipCodes = append(out.ZipCodes, z)
	}

	return out
}

func matchCity(c cityEntry, q string) (int, bool) {
	idx := strings.Index(c.label, q)
	if idx < 0 {
		return 0, false
	}
	if idx == 0 {
		return 0, true
	}
	for _, w := range c.words {
		if strings.HasPrefix(w, q) {
			return 1, true
		}
	}
	return 2, true
}

func isWordBreak(r rune) bool {
	return r == ' ' || r == '-' || r == '.' || r == '\''
}
