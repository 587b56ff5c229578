package model

// Category категория товара
type Category string

const (
	CategoryAll         Category = "All"
	CategoryTShirts     Category = "T-Shirts"
	CategoryHoodies     Category = "Hoodies"
	CategoryPants       Category = "Pants"
	CategoryDresses     Category = "Dresses"
	CategoryAccessories Category = "Accessories"
)

// Categories категории, которые могут быть у товара (All только для фильтра)
var Categories = []Category{
	CategoryTShirts,
	CategoryHoodies,
	CategoryPants,
	CategoryDresses,
	CategoryAccessories,
}

// Product позиция каталога. Цена в целых рублях.
type Product struct {
	ID          string   `json:"id" validate:"required"`
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description"`
	Price       int      `json:"price" validate:"gt=0"`
	Category    Category `json:"category" validate:"oneof=T-Shirts Hoodies Pants Dresses Accessories"`
	Images      []string `json:"images"`
	Sizes       []string `json:"sizes" validate:"required,min=1,dive,required"`
	Colors      []string `json:"colors" validate:"required,min=1,dive,required"`
	InStock     bool     `json:"inStock"`
	WeightKg    float64  `json:"weightKg" validate:"gt=0"`
}

// Clone копирует товар вместе со слайсами
func (p Product) Clone() Product {
	out := p
	out.Images = cloneStrings(p.Images)
	out.Sizes = cloneStrings(p.Sizes)
	out.Colors = cloneStrings(p.Colors)
	return out
}

// PrimaryImage первая картинка товара
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
