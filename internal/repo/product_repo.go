package repo

import (
	"errors"
	"strconv"
	"strings"

	"ecoshop/internal/catalog"
	"ecoshop/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

// ProductRepo serves the compiled-in catalog. It has no backing store and
// is safe for concurrent use.
type ProductRepo struct {
	products []models.Product
}

func NewProductRepo() *ProductRepo {
	return NewProductRepoFrom(catalog.Products())
}

// NewProductRepoFrom serves the given products instead of the catalog.
func NewProductRepoFrom(products []models.Product) *ProductRepo {
	return &ProductRepo{products: products}
}

func (r *ProductRepo) AllProducts() []models.Product {
	out := make([]models.Product, len(r.products))
	copy(out, r.products)
	return out
}

func (r *ProductRepo) ProductByID(id int) (*models.Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *ProductRepo) ProductsByCategory(category string) []models.Product {
	var products []models.Product
	for _, p := range r.products {
		if strings.EqualFold(p.Category, category) {
			products = append(products, p)
		}
	}
	return products
}

// SearchProduct matches the query against name, description, category and
// attribute labels (case-insensitive), or the exact product ID or attribute
// key.
func (r *ProductRepo) SearchProduct(query string) []models.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var products []models.Product
	for _, p := range r.products {
		if strconv.Itoa(p.ID) == q || matchesProduct(p, q) {
			products = append(products, p)
		}
	}
	return products
}

func matchesProduct(p models.Product, q string) bool {
	if p.HasAttribute(q) {
		return true
	}
	for _, field := range []string{p.Name, p.Description, p.Category} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	for _, a := range p.Attributes {
		if strings.Contains(strings.ToLower(catalog.Label(a)), q) {
			return true
		}
	}
	return false
}

func (r *ProductRepo) CountProducts() int {
	return len(r.products)
}
