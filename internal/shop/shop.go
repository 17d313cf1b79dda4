// Package shop builds the filtered and sorted product listing.
package shop

import (
	"sort"

	"ecoshop/internal/match"
	"ecoshop/internal/models"
)

type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
	SortNewest    SortOrder = "newest"
)

var sortLabels = map[SortOrder]string{
	SortRelevance: "Best Match",
	SortRating:    "Highest Rated",
	SortPriceLow:  "Price: Low to High",
	SortPriceHigh: "Price: High to Low",
	SortNewest:    "Newest",
}

// SortOrders lists the orders in menu order.
func SortOrders() []SortOrder {
	return []SortOrder{SortRelevance, SortRating, SortPriceLow, SortPriceHigh, SortNewest}
}

// Valid reports whether o is one of SortOrders.
func (o SortOrder) Valid() bool {
	_, ok := sortLabels[o]
	return ok
}

func (o SortOrder) Label() string {
	if l, ok := sortLabels[o]; ok {
		return l
	}
	return sortLabels[SortRelevance]
}

type Query struct {
	Categories []string // пусто = все категории
	Sort       SortOrder
}

// ToggleCategory selects the category, or deselects it when selected.
func (q *Query) ToggleCategory(category string) {
	for i, c := range q.Categories {
		if c == category {
			q.Categories = append(q.Categories[:i:i], q.Categories[i+1:]...)
			return
		}
	}
	q.Categories = append(q.Categories, category)
}

func (q Query) HasCategory(category string) bool {
	for _, c := range q.Categories {
		if c == category {
			return true
		}
	}
	return false
}

type Listing struct {
	Product models.Product     `json:"product"`
	Match   match.ListingScore `json:"match"`
}

// List filters products by category, scores them and sorts them. Unknown
// sort orders sort like SortRelevance.
func List(products []models.Product, q Query, imp match.Importance) []Listing {
	out := make([]Listing, 0, len(products))
	for _, p := range products {
		if len(q.Categories) > 0 && !q.HasCategory(p.Category) {
			continue
		}
		out = append(out, Listing{Product: p, Match: match.Listing(p.Attributes, imp)})
	}

	sort.SliceStable(out, less(out, q.Sort))
	return out
}

func less(l []Listing, order SortOrder) func(i, j int) bool {
	switch order {
	case SortPriceLow:
		return func(i, j int) bool { return l[i].Product.Price < l[j].Product.Price }
	case SortPriceHigh:
		return func(i, j int) bool { return l[i].Product.Price > l[j].Product.Price }
	case SortRating:
		return func(i, j int) bool { return l[i].Product.Rating > l[j].Product.Rating }
	case SortNewest:
		return func(i, j int) bool { return l[i].Product.ID > l[j].Product.ID }
	default: // SortRelevance: score, then rating
		return func(i, j int) bool {
			if l[i].Match.Score != l[j].Match.Score {
				return l[i].Match.Score > l[j].Match.Score
			}
			return l[i].Product.Rating > l[j].Product.Rating
		}
	}
}

const PageSize = 5

// Pages returns the number of pages needed for count items, at least 1.
func Pages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + PageSize - 1) / PageSize
}

// Page returns the 1-based page of l, clamping page into range.
func Page(l []Listing, page int) ([]Listing, int) {
	pages := Pages(len(l))
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	start := (page - 1) * PageSize
	if start >= len(l) {
		return nil, page
	}
	end := min(start+PageSize, len(l))
	return l[start:end], page
}
