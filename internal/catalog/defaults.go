package catalog

import "topstore/internal/model"

// DefaultProducts стартовый ассортимент, которым заполняется пустой каталог
func DefaultProducts() []model.Product {
	return []model.Product{
		{
			ID:          "1",
			Name:        "TopStore Signature Hoodie",
			Description: "Heavyweight cotton hoodie with embroidered logo. Oversized fit for maximum comfort and style. Made in Belarus.",
			Price:       4500,
			Category:    model.CategoryHoodies,
			Images:      []string{"https://picsum.photos/id/447/800/1000", "https://picsum.photos/id/338/800/1000"},
			Sizes:       []string{"S", "M", "L", "XL"},
			Colors:      []string{"Black", "Red"},
			InStock:     true,
			WeightKg:    0.8,
		},
		{
			ID:          "2",
			Name:        "Tactical Cargo Pants",
			Description: "Durable tech-wear pants with multiple pockets. Water-resistant fabric.",
			Price:       3800,
			Category:    model.CategoryPants,
			Images:      []string{"https://picsum.photos/id/1/800/1000", "https://picsum.photos/id/1005/800/1000"},
			Sizes:       []string{"30", "32", "34", "36"},
			Colors:      []string{"Black", "Camo"},
			InStock:     true,
			WeightKg:    0.6,
		},
		{
			ID:          "3",
			Name:        "Essential Tee",
			Description: "Premium organic cotton t-shirt. Breathable and soft against the skin.",
			Price:       1900,
			Category:    model.CategoryTShirts,
			Images:      []string{"https://picsum.photos/id/1059/800/1000"},
			Sizes:       []string{"XS", "S", "M", "L", "XL"},
			Colors:      []string{"White", "Black", "Red"},
			InStock:     true,
			WeightKg:    0.2,
		},
		{
			ID:          "4",
			Name:        "Silk Evening Dress",
			Description: "Elegant red silk dress for special occasions.",
			Price:       8500,
			Category:    model.CategoryDresses,
			Images:      []string{"https://picsum.photos/id/325/800/1000"},
			Sizes:       []string{"XS", "S", "M"},
			Colors:      []string{"Red"},
			InStock:     true,
			WeightKg:    0.4,
		},
	}
}
