// Package matching scores a property listing against a family's housing
// preferences. Scoring is pure and deterministic: the same inputs always
// produce the same score and breakdown.
package matching

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Per-factor point caps. The total score is the unweighted sum, max 100.
const (
	MaxBudgetPoints   = 30
	MaxBedroomPoints  = 20
	MaxBathroomPoints = 15
	MaxLocationPoints = 20
	MaxFeaturePoints  = 15
)

// budgetOverageLimit is the fraction over budget at which the budget factor
// bottoms out.
var budgetOverageLimit = decimal.NewFromFloat(0.20)

// Primary and secondary target areas for the location factor. Matching is
// exact case-insensitive city-name equality, not geographic distance.
var (
	primaryCities = map[string]struct{}{
		"union":        {},
		"roselle park": {},
	}
	secondaryCities = map[string]struct{}{
		"roselle":    {},
		"kenilworth": {},
		"hillside":   {},
		"elizabeth":  {},
		"clark":      {},
	}
)

// Preferences is the scorer's view of a family's requirements. Nil fields
// mean "no preference" and earn the factor's baseline, one third of its cap.
type Preferences struct {
	Budget           *decimal.Decimal
	MinBedrooms      *int
	MinBathrooms     *decimal.Decimal
	RequiredFeatures []string
}

// Listing is the scorer's view of a property
type Listing struct {
	Price     decimal.Decimal
	Bedrooms  int
	Bathrooms decimal.Decimal
	City      string
	Features  []string
}

// Score computes the 0-100 match score and its per-factor breakdown
func Score(listing Listing, prefs Preferences) (int, Breakdown) {
	factors := []FactorScore{
		scoreBudget(listing, prefs),
		scoreBedrooms(listing, prefs),
		scoreBathrooms(listing, prefs),
		scoreLocation(listing),
		scoreFeatures(listing, prefs),
	}

	total := 0
	for _, f := range factors {
		total += f.Points
	}

	return total, Breakdown{Total: total, Factors: factors}
}

func scoreBudget(listing Listing, prefs Preferences) FactorScore {
	factor := FactorScore{Factor: "budget", Max: MaxBudgetPoints}

	if prefs.Budget == nil {
		factor.Points = MaxBudgetPoints / 3
		factor.Reason = "No budget preference set"
		return factor
	}

	budget := *prefs.Budget
	if !budget.IsPositive() {
		// A zero or negative budget carries no signal, so it scores like an
		// unset preference
		factor.Points = MaxBudgetPoints / 3
		factor.Reason = "No budget preference set"
		return factor
	}

	if listing.Price.LessThanOrEqual(budget) {
		factor.Points = MaxBudgetPoints
		factor.Reason = fmt.Sprintf(
			"Within budget (%s <= %s)",
			formatMoney(listing.Price), formatMoney(budget),
		)
		return factor
	}

	overage := listing.Price.Sub(budget).Div(budget)
	if overage.GreaterThan(budgetOverageLimit) {
		factor.Points = 0
		factor.Reason = fmt.Sprintf(
			"More than 20%% over budget (%s > %s)",
			formatMoney(listing.Price), formatMoney(budget),
		)
		return factor
	}

	// Linear falloff from full points at budget to zero at 20% over
	points := decimal.NewFromInt(MaxBudgetPoints).
		Mul(decimal.NewFromInt(1).Sub(overage.Div(budgetOverageLimit)))
	factor.Points = int(points.Floor().IntPart())
	factor.Reason = fmt.Sprintf(
		"%s%% over budget (%s > %s)",
		overage.Mul(decimal.NewFromInt(100)).Round(1),
		formatMoney(listing.Price), formatMoney(budget),
	)
	return factor
}

func scoreBedrooms(listing Listing, prefs Preferences) FactorScore {
	factor := FactorScore{Factor: "bedrooms", Max: MaxBedroomPoints}

	if prefs.MinBedrooms == nil {
		factor.Points = MaxBedroomPoints / 3
		factor.Reason = "No bedroom preference set"
		return factor
	}

	required := *prefs.MinBedrooms
	switch {
	case listing.Bedrooms >= required:
		factor.Points = MaxBedroomPoints
		factor.Reason = fmt.Sprintf("Meets bedroom requirement (%d >= %d)", listing.Bedrooms, required)
	case listing.Bedrooms == required-1:
		factor.Points = MaxBedroomPoints / 2
		factor.Reason = fmt.Sprintf("One bedroom short (%d of %d)", listing.Bedrooms, required)
	default:
		factor.Points = 0
		factor.Reason = fmt.Sprintf("Too few bedrooms (%d of %d)", listing.Bedrooms, required)
	}
	return factor
}

func scoreBathrooms(listing Listing, prefs Preferences) FactorScore {
	factor := FactorScore{Factor: "bathrooms", Max: MaxBathroomPoints}

	if prefs.MinBathrooms == nil {
		factor.Points = MaxBathroomPoints / 3
		factor.Reason = "No bathroom preference set"
		return factor
	}

	// Binary, no one-short tier like bedrooms
	required := *prefs.MinBathrooms
	if listing.Bathrooms.GreaterThanOrEqual(required) {
		factor.Points = MaxBathroomPoints
		factor.Reason = fmt.Sprintf(
			"Meets bathroom requirement (%s >= %s)",
			listing.Bathrooms, required,
		)
	} else {
		factor.Points = 0
		factor.Reason = fmt.Sprintf(
			"Too few bathrooms (%s of %s)",
			listing.Bathrooms, required,
		)
	}
	return factor
}

func scoreLocation(listing Listing) FactorScore {
	factor := FactorScore{Factor: "location", Max: MaxLocationPoints}

	city := normalizeTag(listing.City)
	if _, ok := primaryCities[city]; ok {
		factor.Points = MaxLocationPoints
		factor.Reason = fmt.Sprintf("In primary target area (%s)", strings.TrimSpace(listing.City))
		return factor
	}
	if _, ok := secondaryCities[city]; ok {
		factor.Points = MaxLocationPoints / 2
		factor.Reason = fmt.Sprintf("In secondary target area (%s)", strings.TrimSpace(listing.City))
		return factor
	}

	factor.Points = 0
	factor.Reason = fmt.Sprintf("Outside target areas (%s)", strings.TrimSpace(listing.City))
	return factor
}

func scoreFeatures(listing Listing, prefs Preferences) FactorScore {
	factor := FactorScore{Factor: "features", Max: MaxFeaturePoints}

	if len(prefs.RequiredFeatures) == 0 {
		factor.Points = MaxFeaturePoints / 3
		factor.Reason = "No required features listed"
		return factor
	}

	matched := 0
	for _, required := range prefs.RequiredFeatures {
		if featurePresent(required, listing.Features) {
			matched++
		}
	}

	factor.Points = MaxFeaturePoints * matched / len(prefs.RequiredFeatures)
	factor.Reason = fmt.Sprintf(
		"%d/%d required features present",
		matched, len(prefs.RequiredFeatures),
	)
	return factor
}

// featurePresent matches free-text tags with a bidirectional case-insensitive
// substring check, so "garage" matches "2-car garage" and vice versa.
func featurePresent(required string, available []string) bool {
	req := normalizeTag(required)
	if req == "" {
		return false
	}
	for _, have := range available {
		h := normalizeTag(have)
		if h == "" {
			continue
		}
		if strings.Contains(h, req) || strings.Contains(req, h) {
			return true
		}
	}
	return false
}

func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// formatMoney renders a dollar amount with thousands separators, keeping
// cents only when present, e.g. "$450,000" or "$1,234.50".
func formatMoney(amount decimal.Decimal) string {
	negative := amount.IsNegative()
	abs := amount.Abs()

	whole := abs.Floor()
	frac := abs.Sub(whole)

	digits := whole.String()
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(r)
	}

	out := "$" + grouped.String()
	if !frac.IsZero() {
		out += abs.Sub(whole).StringFixed(2)[1:] // ".NN"
	}
	if negative {
		out = "-" + out
	}
	return out
}
