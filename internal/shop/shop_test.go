package shop

import (
	"testing"

	"ecoshop/internal/catalog"
	"ecoshop/internal/match"
	"ecoshop/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(l []Listing) []int {
	out := make([]int, 0, len(l))
	for _, it := range l {
		out = append(out, it.Product.ID)
	}
	return out
}

func TestListRelevanceTieBreaksOnRating(t *testing.T) {
	l := List(catalog.Products(), Query{}, match.DefaultImportance())
	require.Len(t, l, 8)

	// with default ratings the score equals the number of attributes
	assert.Equal(t, 1, l[0].Product.ID) // 4 attributes
	for i := 1; i < len(l); i++ {
		prev, cur := l[i-1], l[i]
		assert.GreaterOrEqual(t, prev.Match.Score, cur.Match.Score)
		if prev.Match.Score == cur.Match.Score {
			assert.GreaterOrEqual(t, prev.Product.Rating, cur.Product.Rating)
		}
	}
	assert.Equal(t, 6, l[len(l)-1].Product.ID) // only 2 attributes
}

func TestListCategoryFilter(t *testing.T) {
	q := Query{Sort: SortPriceLow}
	q.ToggleCategory("Food & Beverages")
	q.ToggleCategory("Accessories")

	l := List(catalog.Products(), q, match.DefaultImportance())
	assert.Equal(t, []int{7, 3, 5, 8}, ids(l))

	q.ToggleCategory("Accessories")
	assert.Equal(t, []string{"Food & Beverages"}, q.Categories)
	l = List(catalog.Products(), q, match.DefaultImportance())
	assert.Equal(t, []int{7, 3}, ids(l))
}

func TestListSortOrders(t *testing.T) {
	imp := match.DefaultImportance()
	all := catalog.Products()

	assert.Equal(t, []int{8, 4, 6, 5, 1, 3, 7, 2}, ids(List(all, Query{Sort: SortPriceHigh}, imp)))
	assert.Equal(t, []int{8, 7, 6, 5, 4, 3, 2, 1}, ids(List(all, Query{Sort: SortNewest}, imp)))

	byRating := List(all, Query{Sort: SortRating}, imp)
	assert.Equal(t, 3, byRating[0].Product.ID)
	assert.Equal(t, 6, byRating[len(byRating)-1].Product.ID)
}

func TestListPreferencesChangeOrder(t *testing.T) {
	imp := match.DefaultImportance()
	require.NoError(t, imp.Set(catalog.AttrVegan, 4))

	l := List(catalog.Products(), Query{Sort: SortRelevance}, imp)
	assert.Equal(t, 5, l[0].Product.ID)
	for _, it := range l {
		assert.GreaterOrEqual(t, it.Match.Percentage, 0.0)
		assert.LessOrEqual(t, it.Match.Percentage, 100.0)
	}
}

func TestListUnknownOrderSortsByRelevance(t *testing.T) {
	products := []models.Product{
		{ID: 1, Category: "Clothing", Rating: 4.1, Attributes: []string{catalog.AttrBio}},
		{ID: 2, Category: "Clothing", Rating: 4.8, Attributes: []string{catalog.AttrBio}},
		{ID: 3, Category: "Clothing", Rating: 5.0},
	}
	imp := match.DefaultImportance()

	relevance := ids(List(products, Query{Sort: SortRelevance}, imp))
	assert.Equal(t, []int{2, 1, 3}, relevance)
	assert.Equal(t, relevance, ids(List(products, Query{Sort: "bogus"}, imp)))
	assert.Equal(t, relevance, ids(List(products, Query{}, imp)))
}

func TestSortOrderValid(t *testing.T) {
	for _, o := range SortOrders() {
		assert.True(t, o.Valid(), o)
	}
	assert.False(t, SortOrder("bogus").Valid())
	assert.False(t, SortOrder("").Valid())
}

func TestSortOrderLabel(t *testing.T) {
	assert.Equal(t, "Best Match", SortRelevance.Label())
	assert.Equal(t, "Newest", SortNewest.Label())
	assert.Equal(t, "Best Match", SortOrder("bogus").Label())
}

func TestPaging(t *testing.T) {
	l := List(catalog.Products(), Query{Sort: SortNewest}, match.DefaultImportance())

	assert.Equal(t, 2, Pages(len(l)))
	assert.Equal(t, 1, Pages(0))

	first, p := Page(l, 1)
	assert.Equal(t, 1, p)
	assert.Len(t, first, PageSize)

	second, p := Page(l, 9)
	assert.Equal(t, 2, p)
	assert.Equal(t, []int{3, 2, 1}, ids(second))

	none, p := Page(nil, 0)
	assert.Equal(t, 1, p)
	assert.Empty(t, none)
}
