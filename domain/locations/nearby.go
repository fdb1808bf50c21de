package locations

import (
	"errors"
	"math"
	"sort"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
	"github.com/golang/geo/s2"
)

// ErrInvalidCoordinates is returned for NaN, infinite or out-of-range coordinates.
var ErrInvalidCoordinates = errors.New("invalid coordinates")

// ErrInvalidGeohash is returned for empty or non-base32 geohash strings.
var ErrInvalidGeohash = errors.New("invalid geohash")

const (
	// Level 6 cells are roughly 150km across, about the size of a metro area.
	s2CellLevel = 6

	earthRadiusKm = 6371.0

	// DefaultNearbyLimit is used when the caller passes a non-positive limit.
	DefaultNearbyLimit = 5

	geohashAlphabet = "0123456789bcdefghjkmnpqrstuvwxyz"
)

func validCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func (ix *Index) buildCellIndex() {
	ix.cells = make(map[s2.CellID][]int)
	for i, l := range ix.all {
		cell := s2.CellIDFromLatLng(s2.LatLngFromDegrees(l.Lat, l.Lng)).Parent(s2CellLevel)
		ix.cells[cell] = append(ix.cells[cell], i)
	}
}

// cellAndNeighbors returns cell and the eight cells around it.
func cellAndNeighbors(cell s2.CellID) []s2.CellID {
	seen := map[s2.CellID]bool{cell: true}
	cells := []s2.CellID{cell}

	edges := cell.EdgeNeighbors()
	for _, e := range edges {
		if !seen[e] {
			seen[e] = true
			cells = append(cells, e)
		}
	}
	for _, e := range edges {
		for _, corner := range e.EdgeNeighbors() {
			if !seen[corner] {
				seen[corner] = true
				cells = append(cells, corner)
			}
		}
	}
	return cells
}

// Nearby returns up to limit dataset entries closest to (lat, lng), nearest first.
// Entries sharing a city and state are collapsed to the closest one.
func (ix *Index) Nearby(lat, lng float64, limit int) ([]NearbyLocation, error) {
	if !validCoordinates(lat, lng) {
		return nil, ErrInvalidCoordinates
	}
	if limit <= 0 {
		limit = DefaultNearbyLimit
	}

	query := s2.LatLngFromDegrees(lat, lng)
	cell := s2.CellIDFromLatLng(query).Parent(s2CellLevel)

	var candidates []int
	for _, c := range cellAndNeighbors(cell) {
		candidates = append(candidates, ix.cells[c]...)
	}

	ranked := ix.rank(query, candidates)
	if len(ranked) < limit {
		// Sparse area: fall back to the whole dataset.
		all := make([]int, len(ix.all))
		for i := range all {
			all[i] = i
		}
		ranked = ix.rank(query, all)
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// NearbyGeohash is Nearby centred on the middle of a geohash cell.
func (ix *Index) NearbyGeohash(hash string, limit int) ([]NearbyLocation, error) {
	lat, lng, err := DecodeGeohash(hash)
	if err != nil {
		return nil, err
	}
	return ix.Nearby(lat, lng, limit)
}

// DecodeGeohash returns the centre point of hash.
func DecodeGeohash(hash string) (float64, float64, error) {
	hash = strings.ToLower(strings.TrimSpace(hash))
	if hash == "" || len(hash) > 12 {
		return 0, 0, ErrInvalidGeohash
	}
	for _, r := range hash {
		if !strings.ContainsRune(geohashAlphabet, r) {
			return 0, 0, ErrInvalidGeohash
		}
	}

	box := geohash.Decode(hash)
	if box == nil {
		return 0, 0, ErrInvalidGeohash
	}
	center := box.Center()
	return center.Lat(), center.Lng(), nil
}

func (ix *Index) rank(query s2.LatLng, indices []int) []NearbyLocation {
	best := make(map[string]NearbyLocation)
	for _, i := range indices {
		l := ix.all[i]
		d := distanceKm(query, s2.LatLngFromDegrees(l.Lat, l.Lng))
		key := l.City + "|" + l.State
		if cur, ok := best[key]; !ok || d < cur.DistanceKm || (d == cur.DistanceKm && l.Zip < cur.Zip) {
			best[key] = NearbyLocation{Location: l, DistanceKm: d}
		}
	}

	out := make([]NearbyLocation, 0, len(best))
	for _, n := range best {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].State < out[j].State
	})
	return out
}

func distanceKm(a, b s2.LatLng) float64 {
	km := float64(a.Distance(b)) * earthRadiusKm
	return math.Round(km*10) / 10
}
