package pricing

import (
	"fmt"
	"log/slog"

	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

// Service serves quotes from the embedded catalogue.
type Service struct {
	catalog *Catalog
	log     *slog.Logger
}

// NewService loads the embedded plans.
func NewService(log *slog.Logger) (*Service, error) {
	c, err := LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("load pricing plans: %w", err)
	}
	svc := NewServiceWithCatalog(c, log)
	svc.log.Debug("pricing plans loaded", slog.Int("plans", len(c.plans)))
	return svc, nil
}

// NewServiceWithCatalog builds a Service over a prepared catalogue.
func NewServiceWithCatalog(c *Catalog, log *slog.Logger) *Service {
	return &Service{catalog: c, log: log.With(logger.Scope("pricing"))}
}

// Catalog returns the loaded plans.
func (s *Service) Catalog() *Catalog {
	return s.catalog
}

// Quotes prices every plan for the raw cycle string.
func (s *Service) Quotes(rawCycle string) (Cycle, []Quote, error) {
	cycle, err := ParseCycle(rawCycle)
	if err != nil {
		return "", nil, err
	}
	qs, err := s.catalog.Quotes(cycle)
	return cycle, qs, err
}

// Quote prices a single plan for the raw cycle string.
func (s *Service) Quote(planID, rawCycle string) (Quote, error) {
	cycle, err := ParseCycle(rawCycle)
	if err != nil {
		return Quote{}, err
	}
	return s.catalog.Quote(planID, cycle)
}
