package matching

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func baths(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func unionListing() Listing {
	return Listing{
		Price:     decimal.NewFromInt(450000),
		Bedrooms:  4,
		Bathrooms: decimal.NewFromInt(2),
		City:      "Union",
		Features:  []string{"garage", "basement"},
	}
}

func TestFullMatchScenario(t *testing.T) {
	prefs := Preferences{
		Budget:           money(500000),
		MinBedrooms:      intPtr(3),
		MinBathrooms:     baths(2),
		RequiredFeatures: []string{"garage"},
	}

	score, breakdown := Score(unionListing(), prefs)

	assert.Equal(t, 100, score)
	assert.Equal(t, score, breakdown.Total)
	require.Len(t, breakdown.Factors, 5)

	byFactor := map[string]FactorScore{}
	for _, f := range breakdown.Factors {
		byFactor[f.Factor] = f
	}
	assert.Equal(t, 30, byFactor["budget"].Points)
	assert.Equal(t, 20, byFactor["bedrooms"].Points)
	assert.Equal(t, 15, byFactor["bathrooms"].Points)
	assert.Equal(t, 20, byFactor["location"].Points)
	assert.Equal(t, 15, byFactor["features"].Points)
	assert.Equal(t, "Within budget ($450,000 <= $500,000)", byFactor["budget"].Reason)
	assert.Equal(t, "1/1 required features present", byFactor["features"].Reason)
}

func TestOneBedroomShortScenario(t *testing.T) {
	prefs := Preferences{
		Budget:           money(500000),
		MinBedrooms:      intPtr(5),
		MinBathrooms:     baths(2),
		RequiredFeatures: []string{"garage"},
	}

	score, _ := Score(unionListing(), prefs)
	assert.Equal(t, 90, score)
}

func TestDeterminism(t *testing.T) {
	prefs := Preferences{
		Budget:           money(480000),
		MinBedrooms:      intPtr(4),
		RequiredFeatures: []string{"garage", "finished basement", "fence"},
	}
	listing := unionListing()

	firstScore, firstBreakdown := Score(listing, prefs)
	for range 10 {
		score, breakdown := Score(listing, prefs)
		assert.Equal(t, firstScore, score)
		assert.Equal(t, firstBreakdown, breakdown)
	}
}

func TestUnsetPreferenceBaselines(t *testing.T) {
	tests := []struct {
		name     string
		city     string
		expected int
	}{
		{"primary target city", "Union", 10 + 6 + 5 + 20 + 5},
		{"secondary target city", "Roselle", 10 + 6 + 5 + 10 + 5},
		{"outside target areas", "Newark", 10 + 6 + 5 + 0 + 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := unionListing()
			listing.City = tt.city

			score, breakdown := Score(listing, Preferences{})
			assert.Equal(t, tt.expected, score)
			assert.Equal(t, tt.expected, breakdown.Total)
		})
	}
}

func TestBudgetBoundaries(t *testing.T) {
	budget := money(500000)
	tests := []struct {
		name     string
		price    int64
		expected int
	}{
		{"exactly at budget", 500000, 30},
		{"just under budget", 499999, 30},
		{"ten percent over", 550000, 15},
		{"twenty percent over", 600000, 0},
		{"beyond twenty percent", 600001, 0},
		{"five percent over", 525000, 22}, // 30*(1-0.25)=22.5 floored
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			listing := unionListing()
			listing.Price = decimal.NewFromInt(tt.price)

			factor := scoreBudget(listing, Preferences{Budget: budget})
			assert.Equal(t, tt.expected, factor.Points)
		})
	}
}

func TestNonPositiveBudgetScoresAsUnset(t *testing.T) {
	listing := unionListing()

	for _, v := range []int64{0, -100000} {
		factor := scoreBudget(listing, Preferences{Budget: money(v)})
		assert.Equal(t, MaxBudgetPoints/3, factor.Points, "budget %d", v)
		assert.Equal(t, "No budget preference set", factor.Reason)
	}
}

func TestBathroomsHaveNoPartialTier(t *testing.T) {
	listing := unionListing()
	listing.Bathrooms = decimal.NewFromFloat(1.5)

	factor := scoreBathrooms(listing, Preferences{MinBathrooms: baths(2)})
	assert.Equal(t, 0, factor.Points)

	factor = scoreBathrooms(listing, Preferences{MinBathrooms: baths(1.5)})
	assert.Equal(t, 15, factor.Points)
}

func TestBedroomPartialTiers(t *testing.T) {
	listing := unionListing()
	listing.Bedrooms = 3

	tests := []struct {
		required int
		expected int
	}{
		{2, 20},
		{3, 20},
		{4, 10},
		{5, 0},
	}
	for _, tt := range tests {
		factor := scoreBedrooms(listing, Preferences{MinBedrooms: intPtr(tt.required)})
		assert.Equal(t, tt.expected, factor.Points, "required %d", tt.required)
	}
}

func TestLocationMatchingIsCaseInsensitiveAndTrimmed(t *testing.T) {
	tests := []struct {
		city     string
		expected int
	}{
		{"union", 20},
		{"UNION", 20},
		{"  Roselle Park  ", 20},
		{"kenilworth", 10},
		{"ELIZABETH", 10},
		{"Springfield", 0},
		{"", 0},
	}

	for _, tt := range tests {
		listing := unionListing()
		listing.City = tt.city
		factor := scoreLocation(listing)
		assert.Equal(t, tt.expected, factor.Points, "city %q", tt.city)
	}
}

func TestFeatureMatchingIsBidirectionalSubstring(t *testing.T) {
	listing := unionListing()
	listing.Features = []string{"2-car garage", "pool"}

	// "garage" is contained in "2-car garage"
	factor := scoreFeatures(listing, Preferences{RequiredFeatures: []string{"garage"}})
	assert.Equal(t, 15, factor.Points)

	// "pool" is contained in the required "heated pool"
	factor = scoreFeatures(listing, Preferences{RequiredFeatures: []string{"heated pool"}})
	assert.Equal(t, 15, factor.Points)

	// 2 of 3 matched: floor(15*2/3) = 10
	factor = scoreFeatures(listing, Preferences{
		RequiredFeatures: []string{"garage", "pool", "solar panels"},
	})
	assert.Equal(t, 10, factor.Points)
	assert.Equal(t, "2/3 required features present", factor.Reason)
}

func TestScoreBounds(t *testing.T) {
	listings := []Listing{
		unionListing(),
		{Price: decimal.NewFromInt(1), Bedrooms: 0, Bathrooms: decimal.Zero, City: ""},
		{Price: decimal.NewFromInt(10000000), Bedrooms: 12, Bathrooms: decimal.NewFromInt(9), City: "Clark", Features: []string{"everything"}},
	}
	prefsSet := []Preferences{
		{},
		{Budget: money(1), MinBedrooms: intPtr(10), MinBathrooms: baths(8), RequiredFeatures: []string{"x", "y"}},
		{Budget: money(9999999), MinBedrooms: intPtr(1), MinBathrooms: baths(1), RequiredFeatures: []string{"everything"}},
	}

	for _, listing := range listings {
		for _, prefs := range prefsSet {
			score, breakdown := Score(listing, prefs)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
			for _, f := range breakdown.Factors {
				assert.GreaterOrEqual(t, f.Points, 0)
				assert.LessOrEqual(t, f.Points, f.Max)
			}
		}
	}
}

func TestBreakdownRoundTrip(t *testing.T) {
	_, breakdown := Score(unionListing(), Preferences{
		Budget:           money(500000),
		MinBedrooms:      intPtr(5),
		RequiredFeatures: []string{"garage", "deck"},
	})

	data, err := breakdown.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalBreakdown(data)
	require.NoError(t, err)
	assert.Equal(t, breakdown, restored)
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   decimal.Decimal
		expected string
	}{
		{decimal.NewFromInt(450000), "$450,000"},
		{decimal.NewFromInt(999), "$999"},
		{decimal.NewFromInt(1000), "$1,000"},
		{decimal.NewFromFloat(1234.5), "$1,234.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatMoney(tt.amount))
	}
}
