package credit

import (
	"fmt"
	"strings"

	"DCFSuite/internal/model"
)

// DefaultRating is used when no rating is supplied.
const DefaultRating = "Aaa/AAA"

// DefaultTable maps interest coverage bands to a rating and its default
// spread in percent, lowest coverage first.
var DefaultTable = []model.CreditSpreadEntry{
	{GreaterThan: -100000, LessThan: 0.199999, Rating: "D2/D", Spread: 19.00},
	{GreaterThan: 0.2, LessThan: 0.649999, Rating: "C2/C", Spread: 15.50},
	{GreaterThan: 0.65, LessThan: 0.799999, Rating: "Ca2/CC", Spread: 10.10},
	{GreaterThan: 0.8, LessThan: 1.249999, Rating: "Caa/CCC", Spread: 7.28},
	{GreaterThan: 1.25, LessThan: 1.499999, Rating: "B3/B-", Spread: 4.42},
	{GreaterThan: 1.5, LessThan: 1.749999, Rating: "B2/B", Spread: 3.00},
	{GreaterThan: 1.75, LessThan: 1.999999, Rating: "B1/B+", Spread: 2.61},
	{GreaterThan: 2.0, LessThan: 2.2499999, Rating: "Ba2/BB", Spread: 1.83},
	{GreaterThan: 2.25, LessThan: 2.49999, Rating: "Ba1/BB+", Spread: 1.55},
	{GreaterThan: 2.5, LessThan: 2.999999, Rating: "Baa2/BBB", Spread: 1.20},
	{GreaterThan: 3.0, LessThan: 4.249999, Rating: "A3/A-", Spread: 0.95},
	{GreaterThan: 4.25, LessThan: 5.499999, Rating: "A2/A", Spread: 0.85},
	{GreaterThan: 5.5, LessThan: 6.499999, Rating: "A1/A+", Spread: 0.77},
	{GreaterThan: 6.5, LessThan: 8.499999, Rating: "Aa2/AA", Spread: 0.60},
	{GreaterThan: 8.5, LessThan: 100000, Rating: "Aaa/AAA", Spread: 0.45},
}

// Lookup returns the spread for rating as a decimal fraction.
// Labels match exactly after trimming whitespace and ignoring case. The
// numeric bands are not consulted. An unknown label yields a zero spread
// and a warning.
func Lookup(rating string, bands []model.CreditSpreadEntry) (float64, *model.Warning) {
	want := normalize(rating)
	for _, b := range bands {
		if normalize(b.Rating) == want {
			return b.Spread / 100, nil
		}
	}
	return 0, &model.Warning{
		Kind:    model.KindUnknownRating,
		Message: fmt.Sprintf("rating %q not found in credit spread table, using 0 spread", rating),
	}
}

// Ratings lists the labels of bands in table order.
func Ratings(bands []model.CreditSpreadEntry) []string {
	out := make([]string, len(bands))
	for i, b := range bands {
		out[i] = b.Rating
	}
	return out
}

// Validate checks that bands are ordered, non-overlapping and uniquely labelled.
func Validate(bands []model.CreditSpreadEntry) error {
	if len(bands) == 0 {
		return model.NewValidationMsg("credit spreads", "table is empty")
	}
	seen := make(map[string]bool, len(bands))
	for i, b := range bands {
		if b.LessThan <= b.GreaterThan {
			return model.NewValidationMsg("credit spreads", fmt.Sprintf("band %q has empty range", b.Rating))
		}
		if b.Spread < 0 {
			return model.NewValidationError("credit spreads", ">= 0 spread", b.Spread)
		}
		key := normalize(b.Rating)
		if key == "" || seen[key] {
			return model.NewValidationMsg("credit spreads", fmt.Sprintf("band %d has missing or duplicate rating %q", i, b.Rating))
		}
		seen[key] = true
		if i > 0 && b.GreaterThan < bands[i-1].LessThan {
			return model.NewValidationMsg("credit spreads", fmt.Sprintf("band %q overlaps %q", b.Rating, bands[i-1].Rating))
		}
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
