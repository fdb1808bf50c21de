package pricing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)

	plans := c.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"basic", "professional", "premium"}, []string{plans[0].ID, plans[1].ID, plans[2].ID})
	assert.True(t, plans[0].Free())
	assert.True(t, plans[1].Highlighted)
	assert.NotEmpty(t, plans[2].Features)
}

func TestParseCycle(t *testing.T) {
	tests := []struct {
		in      string
		want    Cycle
		wantErr bool
	}{
		{"", Monthly, false},
		{"monthly", Monthly, false},
		{" Annual ", Annual, false},
		{"yearly", Annual, false},
		{"weekly", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCycle(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCycle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuote(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)

	tests := []struct {
		plan     string
		cycle    Cycle
		price    int64
		perMonth int64
		savings  int64
	}{
		{"basic", Monthly, 0, 0, 0},
		{"basic", Annual, 0, 0, 0},
		{"professional", Monthly, 4900, 4900, 0},
		{"professional", Annual, 47040, 3920, 11760},
		{"premium", Annual, 95040, 7920, 23760},
	}
	for _, tt := range tests {
		t.Run(tt.plan+"/"+string(tt.cycle), func(t *testing.T) {
			q, err := c.Quote(tt.plan, tt.cycle)
			require.NoError(t, err)
			assert.Equal(t, tt.price, q.PriceCents)
			assert.Equal(t, tt.perMonth, q.PerMonthCents)
			assert.Equal(t, tt.savings, q.SavingsCents)
			assert.Equal(t, tt.cycle, q.Cycle)
		})
	}
}

func TestQuote_RoundsHalfUp(t *testing.T) {
	// 999 * 12 * 0.85 = 10189.8 -> 10190; 10190 / 12 = 849.17 -> 849
	q, err := QuotePlan(Plan{ID: "odd", MonthlyCents: 999, AnnualDiscountPercent: 15}, Annual)
	require.NoError(t, err)
	assert.Equal(t, int64(10190), q.PriceCents)
	assert.Equal(t, int64(849), q.PerMonthCents)
	assert.Equal(t, int64(11988-10190), q.SavingsCents)
	assert.Equal(t, 15, q.DiscountPercent)
}

func TestQuote_Errors(t *testing.T) {
	c, err := LoadDefault()
	require.NoError(t, err)

	_, err = c.Quote("enterprise", Monthly)
	assert.True(t, errors.Is(err, ErrUnknownPlan))

	_, err = c.Quote("basic", Cycle("weekly"))
	assert.True(t, errors.Is(err, ErrUnknownCycle))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "plans: []", "no plans"},
		{"missing id", "plans:\n  - name: X\n", "id is required"},
		{"negative", "plans:\n  - id: x\n    monthly_cents: -1\n", "negative"},
		{"discount", "plans:\n  - id: x\n    annual_discount_percent: 101\n", "0-100"},
		{"duplicate", "plans:\n  - id: x\n  - id: x\n", "duplicate"},
		{"unknown field", "plans:\n  - id: x\n    price: 3\n", "parse plans"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_NameDefaultsToID(t *testing.T) {
	c, err := Load(strings.NewReader("plans:\n  - id: solo\n    monthly_cents: 100\n"))
	require.NoError(t, err)

	p, ok := c.Plan("solo")
	require.True(t, ok)
	assert.Equal(t, "solo", p.Name)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "$0", FormatCents(0))
	assert.Equal(t, "$49", FormatCents(4900))
	assert.Equal(t, "$39.20", FormatCents(3920))
	assert.Equal(t, "$0.05", FormatCents(5))
	assert.Equal(t, "-$1.50", FormatCents(-150))
}
