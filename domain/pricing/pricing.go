// Package pricing holds subscription plans and the prices derived from a
// billing cycle.
package pricing

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var defaultPlans []byte

// Cycle is a billing period.
type Cycle string

const (
	Monthly Cycle = "monthly"
	Annual  Cycle = "annual"
)

var (
	ErrUnknownPlan  = errors.New("unknown plan")
	ErrUnknownCycle = errors.New("unknown billing cycle")
)

// ParseCycle accepts "monthly" and "annual" in any case; empty means Monthly.
func ParseCycle(s string) (Cycle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "monthly", "month":
		return Monthly, nil
	case "annual", "annually", "yearly", "year":
		return Annual, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCycle, s)
}

// Plan is one subscription tier.
type Plan struct {
	ID                    string   `yaml:"id" json:"id"`
	Name                  string   `yaml:"name" json:"name"`
	Tagline               string   `yaml:"tagline" json:"tagline"`
	MonthlyCents          int64    `yaml:"monthly_cents" json:"monthlyCents"`
	AnnualDiscountPercent int      `yaml:"annual_discount_percent" json:"annualDiscountPercent"`
	Highlighted           bool     `yaml:"highlighted" json:"highlighted"`
	CTA                   string   `yaml:"cta" json:"cta"`
	Features              []string `yaml:"features" json:"features"`
}

// Free reports whether the plan costs nothing.
func (p Plan) Free() bool {
	return p.MonthlyCents == 0
}

// Quote is a plan priced for a cycle. PriceCents is charged once per cycle;
// PerMonthCents is the effective monthly price, rounded to the cent.
type Quote struct {
	Plan            Plan  `json:"plan"`
	Cycle           Cycle `json:"cycle"`
	PriceCents      int64 `json:"priceCents"`
	PerMonthCents   int64 `json:"perMonthCents"`
	SavingsCents    int64 `json:"savingsCents"`
	DiscountPercent int   `json:"discountPercent"`
}

// Catalog is an ordered, read-only set of plans.
type Catalog struct {
	plans []Plan
	byID  map[string]int
}

type catalogFile struct {
	Plans []Plan `yaml:"plans"`
}

// LoadDefault parses the embedded plans.
func LoadDefault() (*Catalog, error) {
	return Load(bytes.NewReader(defaultPlans))
}

// Load parses a plans document and validates it.
func Load(r io.Reader) (*Catalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse plans: %w", err)
	}
	return NewCatalog(f.Plans)
}

// NewCatalog validates plans and keeps their order.
func NewCatalog(plans []Plan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, errors.New("no plans defined")
	}
	c := &Catalog{byID: make(map[string]int, len(plans))}
	for i, p := range plans {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("plan %d: id is required", i)
		case p.MonthlyCents < 0:
			return nil, fmt.Errorf("plan %s: price must not be negative", p.ID)
		case p.AnnualDiscountPercent < 0 || p.AnnualDiscountPercent > 100:
			return nil, fmt.Errorf("plan %s: discount must be within 0-100", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("plan %s: duplicate id", p.ID)
		}
		if p.Name == "" {
			p.Name = p.ID
		}
		c.byID[p.ID] = len(c.plans)
		c.plans = append(c.plans, p)
	}
	return c, nil
}

// Plans returns the plans in catalogue order.
func (c *Catalog) Plans() []Plan {
	return append([]Plan(nil), c.plans...)
}

// Plan looks up a plan by ID.
func (c *Catalog) Plan(id string) (Plan, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Plan{}, false
	}
	return c.plans[i], true
}

// Quote prices planID for cycle.
func (c *Catalog) Quote(planID string, cycle Cycle) (Quote, error) {
	p, ok := c.Plan(planID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownPlan, planID)
	}
	return QuotePlan(p, cycle)
}

// Quotes prices every plan for cycle.
func (c *Catalog) Quotes(cycle Cycle) ([]Quote, error) {
	out := make([]Quote, 0, len(c.plans))
	for _, p := range c.plans {
		q, err := QuotePlan(p, cycle)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// QuotePlan prices p for cycle. Annual totals are rounded half up to the cent.
func QuotePlan(p Plan, cycle Cycle) (Quote, error) {
	switch cycle {
	case Monthly:
		return Quote{
			Plan:          p,
			Cycle:         Monthly,
			PriceCents:    p.MonthlyCents,
			PerMonthCents: p.MonthlyCents,
		}, nil
	case Annual:
		full := p.MonthlyCents * 12
		yearly := roundDiv(full*int64(100-p.AnnualDiscountPercent), 100)
		return Quote{
			Plan:            p,
			Cycle:           Annual,
			PriceCents:      yearly,
			PerMonthCents:   roundDiv(yearly, 12),
			SavingsCents:    full - yearly,
			DiscountPercent: p.AnnualDiscountPercent,
		}, nil
	}
	return Quote{}, fmt.Errorf("%w: %q", ErrUnknownCycle, cycle)
}

// roundDiv is n/d rounded half up for non-negative n.
func roundDiv(n, d int64) int64 {
	return (n + d/2) / d
}

// FormatCents renders cents as dollars, dropping ".00".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if cents%100 == 0 {
		return fmt.Sprintf("%s$%d", sign, cents/100)
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
