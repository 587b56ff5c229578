package model

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestSubtotal(t *testing.T) {
	items := []CartItem{
		{Product: Product{ID: "1", Price: 4500}, Quantity: 2},
		{Product: Product{ID: "3", Price: 1900}, Quantity: 1},
	}

	if got := Subtotal(items); got != 10900 {
		t.Errorf("Expected subtotal 10900, got %d", got)
	}
	if got := Subtotal(nil); got != 0 {
		t.Errorf("Expected empty subtotal 0, got %d", got)
	}
}

func TestTotalWeight(t *testing.T) {
	items := []CartItem{
		{Product: Product{WeightKg: 0.8}, Quantity: 2},
		{Product: Product{WeightKg: 0.25}, Quantity: 4},
	}

	if got := TotalWeight(items); math.Abs(got-2.6) > 1e-9 {
		t.Errorf("Expected weight 2.6, got %v", got)
	}
}

func TestCartItem_CloneIsIndependent(t *testing.T) {
	item := CartItem{
		Product:  Product{ID: "1", Sizes: []string{"M"}, Colors: []string{"Black"}, Images: []string{"a"}},
		Quantity: 1,
	}

	cp := item.Clone()
	cp.Sizes[0] = "XL"
	cp.Images[0] = "b"
	cp.Quantity = 5

	if item.Sizes[0] != "M" || item.Images[0] != "a" || item.Quantity != 1 {
		t.Errorf("Clone shares state with original: %+v", item)
	}
}

func TestCartItem_JSONIsFlat(t *testing.T) {
	item := CartItem{
		Product:       Product{ID: "1", Name: "Hoodie", Price: 4500},
		CartID:        "c1",
		SelectedSize:  "M",
		SelectedColor: "Black",
		Quantity:      2,
	}

	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	for _, key := range []string{`"id":"1"`, `"cartId":"c1"`, `"selectedSize":"M"`, `"price":4500`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("Expected %s in %s", key, data)
		}
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{OrderStatusNew, true},
		{OrderStatusPaid, true},
		{OrderStatusShipped, true},
		{OrderStatusDelivered, true},
		{"Cancelled", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := tt.status.Valid(); got != tt.want {
			t.Errorf("Valid(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestNewOrderNotification(t *testing.T) {
	order := Order{
		ID:          "ORD-1",
		UserDetails: UserDetails{FullName: "Иван Петров", Phone: "+79990000000", City: "Moscow", Address: "Tverskaya 1"},
		Delivery:    OrderDelivery{Method: DeliveryOption{Name: "СДЭК: Курьер до двери"}, Cost: 900},
		TotalAmount: 10900,
	}

	n := NewOrderNotification(order)
	if n.OrderID != "ORD-1" || n.CustomerName != "Иван Петров" || n.TotalAmount != 10900 {
		t.Errorf("Unexpected notification: %+v", n)
	}
	if n.DeliveryMethodName != "СДЭК: Курьер до двери" {
		t.Errorf("Unexpected delivery name: %s", n.DeliveryMethodName)
	}
}

func TestPaymentInstrument_Masked(t *testing.T) {
	tests := []struct {
		card string
		want string
	}{
		{"4242424242424242", "************4242"},
		{"4242 4242 4242 4242", "************4242"},
		{"123", "***"},
		{"", ""},
	}

	for _, tt := range tests {
		got := PaymentInstrument{CardNumber: tt.card}.Masked()
		if got != tt.want {
			t.Errorf("Masked(%q) = %q, want %q", tt.card, got, tt.want)
		}
	}
}
