package model

// CartItem строка корзины: снимок товара плюс выбранные размер и цвет.
// CartID уникален в пределах корзины и не совпадает с ID товара.
type CartItem struct {
	Product
	CartID        string `json:"cartId"`
	SelectedSize  string `json:"selectedSize"`
	SelectedColor string `json:"selectedColor"`
	Quantity      int    `json:"quantity"`
}

// Matches проверяет совпадение по тройке (товар, размер, цвет)
func (i CartItem) Matches(productID, size, color string) bool {
	return i.ID == productID && i.SelectedSize == size && i.SelectedColor == color
}

// LineTotal стоимость строки
func (i CartItem) LineTotal() int {
	return i.Price * i.Quantity
}

// Clone копирует строку корзины
func (i CartItem) Clone() CartItem {
	out := i
	out.Product = i.Product.Clone()
	return out
}

// CloneItems копирует набор строк
func CloneItems(items []CartItem) []CartItem {
	out := make([]CartItem, len(items))
	for i, item := range items {
		out[i] = item.Clone()
	}
	return out
}

// Subtotal сумма price*quantity по строкам
func Subtotal(items []CartItem) int {
	total := 0
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// TotalWeight общий вес отправления в кг
func TotalWeight(items []CartItem) float64 {
	var weight float64
	for _, item := range items {
		weight += item.WeightKg * float64(item.Quantity)
	}
	return weight
}
