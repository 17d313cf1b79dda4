package catalog

import "ecoshop/internal/models"

var products = []models.Product{
	{
		ID:   1,
		Name: "Organic Cotton T-Shirt",
		Description: "100% organic cotton, ethically made in fair trade certified facilities",
		LongDescription: "This premium organic cotton t-shirt is crafted from GOTS-certified organic cotton, " +
			"ensuring no harmful chemicals were used in its production. Made in fair trade certified facilities " +
			"that guarantee fair wages and safe working conditions for all workers. The production process is " +
			"carbon neutral, and the packaging is 100% recyclable. Note: While our packaging is recyclable, it " +
			"does contain some plastic components for product protection during shipping.",
		Price:         29.99,
		OriginalPrice: 39.99,
		Category:      "Clothing",
		Images: []string{
			"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500&h=500&fit=crop",
			"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500&h=500&fit=crop&sat=-100",
			"https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500&h=500&fit=crop&brightness=110",
		},
		Attributes: []string{AttrBio, AttrEthicalWork, AttrCO2Neutral, AttrRecyclable},
		Rating:     4.8,
		Reviews:    124,
		InStock:    true,
		Sizes:      []string{"XS", "S", "M", "L", "XL", "XXL"},
		Colors:     []string{"White", "Black", "Navy", "Forest Green"},
	},
	{
		ID:          2,
		Name:        "Bamboo Toothbrush Set",
		Description: "Biodegradable bamboo toothbrushes",
		Price:       12.99,
		Category:    "Personal Care",
		Images:      []string{"https://images.unsplash.com/photo-1607613009820-a29f7bb81c04?w=300&h=300&fit=crop"},
		Attributes:  []string{AttrBio, AttrPlasticFree, AttrRecyclable},
		Rating:      4.6,
		Reviews:     89,
		InStock:     true,
	},
	{
		ID:          3,
		Name:        "Fair Trade Coffee Beans",
		Description: "Single origin, ethically sourced",
		Price:       18.5,
		Category:    "Food & Beverages",
		Images:      []string{"https://images.unsplash.com/photo-1559056199-641a0ac8b55e?w=300&h=300&fit=crop"},
		Attributes:  []string{AttrFairTrade, AttrEthicalWork, AttrLocallySourced},
		Rating:      4.9,
		Reviews:     203,
		InStock:     true,
	},
	{
		ID:          4,
		Name:        "Recycled Yoga Mat",
		Description: "Made from recycled ocean plastic",
		Price:       45.0,
		Category:    "Sports & Fitness",
		Images:      []string{"https://images.unsplash.com/photo-1544367567-0f2fcb009e0b?w=300&h=300&fit=crop"},
		Attributes:  []string{AttrRecyclable, AttrCO2Neutral, AttrPlasticFree},
		Rating:      4.7,
		Reviews:     156,
		InStock:     true,
	},
	{
		ID:          5,
		Name:        "Vegan Leather Wallet",
		Description: "Cruelty-free alternative leather",
		Price:       35.99,
		Category:    "Accessories",
		Images:      []string{"https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=300&h=300&fit=crop"},
		Attributes:  []string{AttrVegan, AttrEthicalWork, AttrRecyclable},
		Rating:      4.5,
		Reviews:     78,
		InStock:     true,
	},
	{
		ID:          6,
		Name:        "Solar Power Bank",
		Description: "Renewable energy charging solution",
		Price:       42.99,
		Category:    "Electronics",
		Images:      []string{"https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=300&h=300&fit=crop"},
		Attributes:  []string{AttrCO2Neutral, AttrRecyclable},
		Rating:      4.4,
		Reviews:     92,
		InStock:     true,
	},
	{
		ID:          7,
		Name:        "Organic Honey",
		Description: "Raw, unprocessed local honey",
		Price:       15.99,
		Category:    "Food & Beverages",
		Images:      []string{"https://images.unsplash.com/photo-1587049352846-4a222e784d38?w=300&h=300&fit=crop"},
		Attributes:  []string{AttrBio, AttrLocallySourced, AttrPlasticFree},
		Rating:      4.8,
		Reviews:     167,
		InStock:     true,
	},
	{
		ID:          8,
		Name:        "Hemp Backpack",
		Description: "Durable hemp fiber construction",
		Price:       68.0,
		Category:    "Accessories",
		Images:      []string{"https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=300&h=300&fit=crop"},
		Attributes:  []string{AttrBio, AttrEthicalWork, AttrRecyclable},
		Rating:      4.6,
		Reviews:     134,
		InStock:     true,
	},
}
