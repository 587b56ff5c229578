package seed

import (
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"topstore/internal/catalog"
	"topstore/internal/model"
	"topstore/internal/shipping"
)

// Лимиты генерации
const (
	MinPrice        = 900
	MaxPrice        = 15000
	MaxLinesInOrder = 3
	MaxQuantity     = 3
	OrderAgeDays    = 30
)

var (
	sizeSets = [][]string{
		{"XS", "S", "M", "L", "XL"},
		{"S", "M", "L"},
		{"28", "30", "32", "34", "36"},
		{"One Size"},
	}
	nouns = map[model.Category][]string{
		model.CategoryTShirts:     {"Tee", "Longsleeve", "Polo"},
		model.CategoryHoodies:     {"Hoodie", "Zip Hoodie", "Sweatshirt"},
		model.CategoryPants:       {"Cargo Pants", "Joggers", "Chinos"},
		model.CategoryDresses:     {"Dress", "Midi Dress", "Slip Dress"},
		model.CategoryAccessories: {"Cap", "Beanie", "Tote Bag"},
	}
	cities = []string{"Moscow", "Saint Petersburg", "Kazan", "Novosibirsk", "Yekaterinburg", "Samara"}
)

// Generator тестовые товары и заказы на gofakeit. При одинаковом seed
// выдает одинаковую последовательность.
type Generator struct {
	f   *gofakeit.Faker
	now func() time.Time
}

// New seed == 0 берет seed из текущего времени
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{f: gofakeit.New(seed), now: time.Now}
}

// Product черновик товара, проходящий валидацию каталога
func (g *Generator) Product() catalog.Draft {
	category := model.Categories[g.f.IntRange(0, len(model.Categories)-1)]
	adjective := g.f.Adjective()
	name := strings.ToUpper(adjective[:1]) + adjective[1:] + " " + g.f.RandomString(nouns[category])

	colors := make([]string, 0, 3)
	for i := g.f.IntRange(1, 3); i > 0; i-- {
		c := g.f.Color()
		if !contains(colors, c) {
			colors = append(colors, c)
		}
	}

	return catalog.Draft{
		Name:        name,
		Description: g.f.Sentence(12),
		Price:       g.f.IntRange(MinPrice/100, MaxPrice/100) * 100,
		Category:    category,
		Images:      []string{catalog.DefaultImage + "?random=" + g.f.DigitN(6)},
		Sizes:       append([]string(nil), sizeSets[g.f.IntRange(0, len(sizeSets)-1)]...),
		Colors:      colors,
		WeightKg:    float64(g.f.IntRange(1, 15)) / 10,
	}
}

func (g *Generator) Products(n int) []catalog.Draft {
	out := make([]catalog.Draft, n)
	for i := range out {
		out[i] = g.Product()
	}
	return out
}

// Customer контактные данные покупателя из поддерживаемой страны
func (g *Generator) Customer(country string) model.UserDetails {
	return model.UserDetails{
		FullName: g.f.Name(),
		Phone:    g.f.Phone(),
		Email:    g.f.Email(),
		Country:  country,
		City:     g.f.RandomString(cities),
		Address:  g.f.Street(),
	}
}

// Order заказ из случайных позиций каталога. Стоимость доставки считается
// по тарифу, итог равен сумме позиций плюс доставка.
func (g *Generator) Order(id, country string, products []model.Product) model.Order {
	lines := g.f.IntRange(1, MaxLinesInOrder)
	items := make([]model.CartItem, 0, lines)
	for i := 0; i < lines && len(products) > 0; i++ {
		p := products[g.f.IntRange(0, len(products)-1)]
		items = append(items, model.CartItem{
			Product:       p.Clone(),
			CartID:        g.f.UUID(),
			SelectedSize:  pick(g.f, p.Sizes),
			SelectedColor: pick(g.f, p.Colors),
			Quantity:      g.f.IntRange(1, MaxQuantity),
		})
	}

	details := g.Customer(country)
	options := shipping.Tariff(details.City, model.TotalWeight(items))
	method := options[g.f.IntRange(0, len(options)-1)]

	now := g.now()
	return model.Order{
		ID:          id,
		Date:        g.f.DateRange(now.AddDate(0, 0, -OrderAgeDays), now).UTC(),
		Status:      model.OrderStatuses[g.f.IntRange(0, len(model.OrderStatuses)-1)],
		Items:       items,
		UserDetails: details,
		Delivery:    model.OrderDelivery{Method: method, Cost: method.Price},
		TotalAmount: model.Subtotal(items) + method.Price,
	}
}

func pick(f *gofakeit.Faker, options []string) string {
	if len(options) == 0 {
		return ""
	}
	return options[f.IntRange(0, len(options)-1)]
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
