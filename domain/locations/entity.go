// Package locations serves city and zip code suggestions for the search bar.
package locations

import "fmt"

// Location is one city/state/zip entry of the static dataset.
type Location struct {
	City    string  `json:"city"`
	State   string  `json:"state"`
	Zip     string  `json:"zip"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Geohash string  `json:"geohash"`
}

// Label is the display form used for matching and for committed selections.
func (l Location) Label() string {
	return fmt.Sprintf("%s, %s", l.City, l.State)
}

// GroupedSuggestions is the result of a filter call.
type GroupedSuggestions struct {
	Cities   []Location `json:"cities"`
	ZipCodes []Location `json:"zipCodes"`
}

// Len is the number of entries a keyboard can move through.
func (g GroupedSuggestions) Len() int {
	return len(g.Cities) + len(g.ZipCodes)
}

// At returns the i-th entry in navigation order (cities, then zip codes).
func (g GroupedSuggestions) At(i int) (Location, bool) {
	if i < 0 || i >= g.Len() {
		return Location{}, false
	}
	if i < len(g.Cities) {
		return g.Cities[i], true
	}
	return g.ZipCodes[i-len(g.Cities)], true
}

// IsZipSelection reports whether the i-th entry belongs to the zip group.
func (g GroupedSuggestions) IsZipSelection(i int) bool {
	return i >= len(g.Cities) && i < g.Len()
}

// Empty returns a GroupedSuggestions that encodes to empty arrays rather than null.
func Empty() GroupedSuggestions {
	return GroupedSuggestions{Cities: []Location{}, ZipCodes: []Location{}}
}

// NearbyResponse is the body of GET /api/locations/nearby.
type NearbyResponse struct {
	Locations []NearbyLocation `json:"locations"`
}

// NearbyLocation is a dataset entry with its distance from the query point.
type NearbyLocation struct {
	Location
	DistanceKm float64 `json:"distanceKm"`
}
