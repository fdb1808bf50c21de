package locations

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/logger"
	"github.com/zerovacancy/zerovacancy/pkg/tracing"
)

var (
	suggestQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "location_suggest_queries_total",
		Help: "Suggestion queries by outcome (empty, short, matched)",
	}, []string{"outcome"})

	nearbyQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "location_nearby_queries_total",
		Help: "Nearby location lookups",
	})
)

// Service answers suggestion and proximity queries over the embedded dataset.
type Service struct {
	index     *Index
	maxNearby int
	log       *slog.Logger
}

// NewService loads the embedded dataset and indexes it.
func NewService(cfg *config.Config, log *slog.Logger) (*Service, error) {
	locs, err := LoadDefault()
	if err != nil {
		return nil, err
	}
	svc := NewServiceWithIndex(NewIndex(locs, WithMaxPerGroup(cfg.Locations.MaxPerGroup)), cfg.Locations.MaxNearby, log)
	svc.log.Info("location dataset loaded", slog.Int("entries", len(locs)))
	return svc, nil
}

// NewServiceWithIndex builds a Service over a prepared index.
func NewServiceWithIndex(index *Index, maxNearby int, log *slog.Logger) *Service {
	if maxNearby <= 0 {
		maxNearby = DefaultNearbyLimit
	}
	return &Service{
		index:     index,
		maxNearby: maxNearby,
		log:       log.With(logger.Scope("locations")),
	}
}

// Index exposes the underlying index for in-process callers such as the
// autocomplete controller.
func (s *Service) Index() *Index {
	return s.index
}

// Suggest filters the dataset for query.
func (s *Service) Suggest(ctx context.Context, query string) GroupedSuggestions {
	_, span := tracing.Start(ctx, "locations.suggest", attribute.Int("zerovacancy.query.length", len(query)))
	defer span.End()

	res := s.index.Filter(query)
	suggestQueries.WithLabelValues(suggestOutcome(query, res)).Inc()
	span.SetAttributes(
		attribute.Int("zerovacancy.suggest.cities", len(res.Cities)),
		attribute.Int("zerovacancy.suggest.zips", len(res.ZipCodes)),
	)
	return res
}

// suggestOutcome labels a query the way Filter saw it, after trimming.
func suggestOutcome(query string, res GroupedSuggestions) string {
	switch {
	case res.Len() > 0:
		return "matched"
	case utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength:
		return "short"
	default:
		return "empty"
	}
}

// Nearby returns the closest entries to a point, capped at the configured maximum.
func (s *Service) Nearby(ctx context.Context, lat, lng float64, limit int) ([]NearbyLocation, error) {
	_, span := tracing.Start(ctx, "locations.nearby")
	defer span.End()

	nearbyQueries.Inc()
	res, err := s.index.Nearby(lat, lng, s.clampLimit(limit))
	tracing.Fail(span, err)
	return res, err
}

// NearbyGeohash is Nearby for the centre of a geohash cell.
func (s *Service) NearbyGeohash(ctx context.Context, hash string, limit int) ([]NearbyLocation, error) {
	lat, lng, err := DecodeGeohash(hash)
	if err != nil {
		return nil, err
	}
	return s.Nearby(ctx, lat, lng, limit)
}

func (s *Service) clampLimit(limit int) int {
	if limit <= 0 || limit > s.maxNearby {
		return s.maxNearby
	}
	return limit
}
