// Package catalog holds the compiled-in storefront data: products,
// sustainability attributes, categories and the importance scale.
package catalog

import "ecoshop/internal/models"

const (
	AttrBio            = "bio"
	AttrEthicalWork    = "ethical-work"
	AttrCO2Neutral     = "co2-neutral"
	AttrFairTrade      = "fair-trade"
	AttrRecyclable     = "recyclable"
	AttrLocallySourced = "locally-sourced"
	AttrVegan          = "vegan"
	AttrPlasticFree    = "plastic-free"
)

const (
	MinImportance = 1
	MaxImportance = 4
)

var attributes = []models.Attribute{
	{
		Key: AttrBio, Label: "Bio/Organic", Icon: "leaf",
		Description: "Made from organic materials without harmful chemicals",
		Examples:    "Organic cotton, natural ingredients, chemical-free production",
	},
	{
		Key: AttrEthicalWork, Label: "Ethical Work Enforced", Icon: "heart",
		Description: "Fair wages and safe working conditions guaranteed",
		Examples:    "Fair trade certified, worker rights protection, living wages",
	},
	{
		Key: AttrCO2Neutral, Label: "CO2 Neutral", Icon: "recycle",
		Description: "Carbon footprint offset through verified programs",
		Examples:    "Carbon offset programs, renewable energy, climate positive",
	},
	{
		Key: AttrFairTrade, Label: "Fair Trade", Icon: "heart",
		Description: "Fair trade certified supply chain",
		Examples:    "Fair trade certification, ethical sourcing, community support",
	},
	{
		Key: AttrRecyclable, Label: "Recyclable Packaging", Icon: "recycle",
		Description: "100% recyclable or biodegradable packaging",
		Examples:    "Cardboard packaging, biodegradable materials, minimal waste",
	},
	{
		Key: AttrLocallySourced, Label: "Locally Sourced", Icon: "leaf",
		Description: "Materials sourced within 500km radius",
		Examples:    "Local suppliers, reduced transport, community economy",
	},
	{
		Key: AttrVegan, Label: "Vegan", Icon: "leaf",
		Description: "No animal products or testing involved",
		Examples:    "Plant-based materials, cruelty-free, no animal testing",
	},
	{
		Key: AttrPlasticFree, Label: "Plastic-Free", Icon: "recycle",
		Description: "Zero plastic in product and packaging",
		Examples:    "Glass containers, paper packaging, natural materials",
	},
}

var categories = []string{
	"Clothing", "Personal Care", "Food & Beverages", "Sports & Fitness", "Accessories", "Electronics",
}

var importanceScale = []models.ImportanceLevel{
	{Value: 1, Label: "Not Important"},
	{Value: 2, Label: "Somewhat Important"},
	{Value: 3, Label: "Important"},
	{Value: 4, Label: "Very Important"},
}

// Attributes returns the attribute catalog in display order.
func Attributes() []models.Attribute {
	out := make([]models.Attribute, len(attributes))
	copy(out, attributes)
	return out
}

func AttributeKeys() []string {
	keys := make([]string, 0, len(attributes))
	for _, a := range attributes {
		keys = append(keys, a.Key)
	}
	return keys
}

func Attribute(key string) (models.Attribute, bool) {
	for _, a := range attributes {
		if a.Key == key {
			return a, true
		}
	}
	return models.Attribute{}, false
}

// Label returns the display label of an attribute, or the key itself for
// attributes the catalog does not know.
func Label(key string) string {
	if a, ok := Attribute(key); ok {
		return a.Label
	}
	return key
}

func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

func ImportanceScale() []models.ImportanceLevel {
	out := make([]models.ImportanceLevel, len(importanceScale))
	copy(out, importanceScale)
	return out
}

func ImportanceLabel(value int) string {
	for _, l := range importanceScale {
		if l.Value == value {
			return l.Label
		}
	}
	return ""
}

// Products returns a copy of the product list in catalog order.
func Products() []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)
	return out
}
