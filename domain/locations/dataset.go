package locations

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	geohash "github.com/TomiHiltunen/geohash-golang"
)

//go:embed data/us_locations.csv
var defaultDataset []byte

// geohashPrecision gives cells of roughly 150m, enough to place a map pin.
const geohashPrecision = 7

// LoadDefault parses the embedded dataset.
func LoadDefault() ([]Location, error) {
	return Parse(bytes.NewReader(defaultDataset))
}

// Parse reads a city,state,zip,lat,lng CSV with a header row.
func Parse(r io.Reader) ([]Location, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 5
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if strings.ToLower(strings.Join(header, ",")) != "city,state,zip,lat,lng" {
		return nil, fmt.Errorf("unexpected header %q", strings.Join(header, ","))
	}

	var out []Location
	for line := 2; ; line++ {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		lat, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: lat: %w", line, err)
		}
		lng, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: lng: %w", line, err)
		}
		if !validCoordinates(lat, lng) {
			return nil, fmt.Errorf("line %d: %w", line, ErrInvalidCoordinates)
		}

		out = append(out, Location{
			City:    strings.TrimSpace(rec[0]),
			State:   strings.ToUpper(strings.TrimSpace(rec[1])),
			Zip:     strings.TrimSpace(rec[2]),
			Lat:     lat,
			Lng:     lng,
			Geohash: geohash.EncodeWithPrecision(lat, lng, geohashPrecision),
		})
	}

	if len(out) == 0 {
		return nil, errors.New("dataset is empty")
	}
	return out, nil
}
