package models

type Product struct {
	ID              int      `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	LongDescription string   `json:"long_description,omitempty"`
	Price           float64  `json:"price"`
	OriginalPrice   float64  `json:"original_price,omitempty"` // 0 если скидки нет
	Category        string   `json:"category"`
	Images          []string `json:"images"`
	Attributes      []string `json:"attributes"` // ключи из каталога атрибутов
	Rating          float64  `json:"rating"`
	Reviews         int      `json:"reviews"`
	InStock         bool     `json:"in_stock"`
	Sizes           []string `json:"sizes,omitempty"`
	Colors          []string `json:"colors,omitempty"`
}

func (p Product) HasAttribute(key string) bool {
	for _, a := range p.Attributes {
		if a == key {
			return true
		}
	}
	return false
}

// Attribute is one entry of the sustainability attribute catalog.
type Attribute struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Examples    string `json:"examples"`
}

type ImportanceLevel struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}
