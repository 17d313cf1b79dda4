// Package match computes how well a product's sustainability attributes fit
// a user's importance ratings.
//
// Two scores exist. The listing score is a plain weighted fraction used to
// rank the shop. The detail score only looks at attributes rated above
// "Not Important" and charges a penalty for each one the product lacks.
package match

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ecoshop/internal/catalog"
	"ecoshop/internal/models"
)

var ErrInvalidImportance = fmt.Errorf("importance must be between %d and %d", catalog.MinImportance, catalog.MaxImportance)

var ErrUnknownAttribute = errors.New("unknown sustainability attribute")

// Importance maps attribute keys to a rating between 1 and 4.
type Importance map[string]int

// DefaultImportance rates every catalog attribute "Not Important".
func DefaultImportance() Importance {
	imp := make(Importance, len(catalog.AttributeKeys()))
	for _, key := range catalog.AttributeKeys() {
		imp[key] = catalog.MinImportance
	}
	return imp
}

func (imp Importance) Set(key string, value int) error {
	if _, ok := catalog.Attribute(key); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, key)
	}
	if value < catalog.MinImportance || value > catalog.MaxImportance {
		return ErrInvalidImportance
	}
	imp[key] = value
	return nil
}

// Get returns the rating for key, MinImportance when unrated.
func (imp Importance) Get(key string) int {
	if v, ok := imp[key]; ok {
		return v
	}
	return catalog.MinImportance
}

func (imp Importance) Clone() Importance {
	out := make(Importance, len(imp))
	for k, v := range imp {
		out[k] = v
	}
	return out
}

func ParseImportance(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < catalog.MinImportance || v > catalog.MaxImportance {
		return 0, ErrInvalidImportance
	}
	return v, nil
}

type ListingScore struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Listing sums every rating into the denominator and the ratings of the
// attributes the product carries into the numerator. Non-positive ratings
// are ignored so the percentage stays within [0,100].
func Listing(attributes []string, imp Importance) ListingScore {
	has := attributeSet(attributes)
	var s ListingScore
	for key, value := range imp {
		if value <= 0 {
			continue
		}
		s.Total += value
		if has[key] {
			s.Score += value
		}
	}
	if s.Total > 0 {
		s.Percentage = float64(s.Score) / float64(s.Total) * 100
	}
	return s
}

type DetailScore struct {
	Positive   int     `json:"positive"`
	Penalty    int     `json:"penalty"`
	Net        int     `json:"net"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Detail only counts ratings above MinImportance. Present attributes add
// their rating to Positive, missing ones add it to Penalty.
func Detail(attributes []string, imp Importance) DetailScore {
	has := attributeSet(attributes)
	var s DetailScore
	for key, value := range imp {
		if value <= catalog.MinImportance {
			continue
		}
		s.Total += value
		if has[key] {
			s.Positive += value
		} else {
			s.Penalty += value
		}
	}
	s.Net = s.Positive - s.Penalty
	if s.Total > 0 {
		s.Percentage = max(0, float64(s.Positive)/float64(s.Total)*100)
	}
	return s
}

// Warning is empty unless the product misses important attributes.
func (s DetailScore) Warning() string {
	if s.Penalty <= 0 {
		return ""
	}
	return fmt.Sprintf("This product is missing %d points from your important sustainability criteria", s.Penalty)
}

type BreakdownLine struct {
	Attribute  models.Attribute `json:"attribute"`
	Importance int              `json:"importance"`
	Points     int              `json:"points"`
	Present    bool             `json:"present"`
	Important  bool             `json:"important"`
}

// Breakdown lists every catalog attribute with the points it contributes:
// the rating when present, minus the rating when missing and important,
// zero otherwise.
func Breakdown(attributes []string, imp Importance) []BreakdownLine {
	has := attributeSet(attributes)
	lines := make([]BreakdownLine, 0, len(catalog.AttributeKeys()))
	for _, attr := range catalog.Attributes() {
		value := imp.Get(attr.Key)
		line := BreakdownLine{
			Attribute:  attr,
			Importance: value,
			Present:    has[attr.Key],
			Important:  value > catalog.MinImportance,
		}
		switch {
		case line.Present:
			line.Points = value
		case line.Important:
			line.Points = -value
		}
		lines = append(lines, line)
	}
	return lines
}

type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
	BandPoor   Band = "poor"
)

func BandFor(percentage float64) Band {
	switch {
	case percentage >= 80:
		return BandHigh
	case percentage >= 60:
		return BandMedium
	case percentage >= 40:
		return BandLow
	default:
		return BandPoor
	}
}

// Summary returns the labels of up to three attributes rated Important or
// higher, highest rating first, ties in catalog order.
func Summary(imp Importance) []string {
	type rated struct {
		key   string
		value int
	}
	var top []rated
	for _, key := range catalog.AttributeKeys() {
		if v := imp.Get(key); v >= 3 {
			top = append(top, rated{key: key, value: v})
		}
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].value > top[j].value })
	if len(top) > 3 {
		top = top[:3]
	}
	labels := make([]string, 0, len(top))
	for _, r := range top {
		labels = append(labels, catalog.Label(r.key))
	}
	return labels
}

func attributeSet(attributes []string) map[string]bool {
	set := make(map[string]bool, len(attributes))
	for _, a := range attributes {
		set[a] = true
	}
	return set
}
