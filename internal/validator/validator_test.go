package validator

import (
	"errors"
	"strings"
	"testing"

	apperrors "topstore/internal/errors"
	"topstore/internal/model"
)

func validProduct() model.Product {
	return model.Product{
		ID:       "1",
		Name:     "TopStore Signature Hoodie",
		Price:    4500,
		Category: model.CategoryHoodies,
		Images:   []string{"https://picsum.photos/id/447/800/1000"},
		Sizes:    []string{"S", "M"},
		Colors:   []string{"Black"},
		InStock:  true,
		WeightKg: 0.8,
	}
}

func validDetails() model.UserDetails {
	return model.UserDetails{
		FullName: "Иван Петров",
		Phone:    "+79990000000",
		Email:    "ivan@example.com",
		Country:  "Russia",
		City:     "Moscow",
		Address:  "Tverskaya 1",
	}
}

func TestValidateProduct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		mutate  func(p *model.Product)
		wantErr bool
	}{
		{"valid", func(p *model.Product) {}, false},
		{"empty id", func(p *model.Product) { p.ID = "" }, true},
		{"empty name", func(p *model.Product) { p.Name = "" }, true},
		{"zero price", func(p *model.Product) { p.Price = 0 }, true},
		{"category All is filter only", func(p *model.Product) { p.Category = model.CategoryAll }, true},
		{"unknown category", func(p *model.Product) { p.Category = "Shoes" }, true},
		{"no sizes", func(p *model.Product) { p.Sizes = nil }, true},
		{"empty color", func(p *model.Product) { p.Colors = []string{""} }, true},
		{"zero weight", func(p *model.Product) { p.WeightKg = 0 }, true},
		{"no images allowed", func(p *model.Product) { p.Images = nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)

			err := v.ValidateProduct(&p)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProduct() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				appErr, ok := apperrors.As(err)
				if !ok || appErr.Type != apperrors.ErrorTypeValidation {
					t.Errorf("Expected validation AppError, got %v", err)
				}
			}
		})
	}
}

func TestValidateProduct_Nil(t *testing.T) {
	if err := New().ValidateProduct(nil); err == nil {
		t.Error("Expected error for nil product")
	}
}

func TestValidateProduct_MessageUsesJSONNames(t *testing.T) {
	p := validProduct()
	p.WeightKg = 0

	err := New().ValidateProduct(&p)
	if err == nil || !strings.Contains(err.Error(), "weightKg") {
		t.Errorf("Expected error to mention weightKg, got %v", err)
	}
}

func TestValidateDetails(t *testing.T) {
	v := New()

	tests := []struct {
		name        string
		mutate      func(d *model.UserDetails)
		wantMissing string
	}{
		{"complete", func(d *model.UserDetails) {}, ""},
		{"no phone", func(d *model.UserDetails) { d.Phone = "" }, "phone"},
		{"blank city", func(d *model.UserDetails) { d.City = "   " }, "city"},
		{"no address", func(d *model.UserDetails) { d.Address = "" }, "address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDetails()
			tt.mutate(&d)

			err := v.ValidateDetails(&d)
			if tt.wantMissing == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, apperrors.ErrDetailsIncomplete) {
				t.Fatalf("Expected ErrDetailsIncomplete, got %v", err)
			}
			appErr, _ := apperrors.As(err)
			if !strings.Contains(appErr.Details, tt.wantMissing) {
				t.Errorf("Expected details to mention %s, got %q", tt.wantMissing, appErr.Details)
			}
		})
	}
}

func TestValidateInstrument(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		in      model.PaymentInstrument
		wantErr bool
	}{
		{"valid", model.PaymentInstrument{CardNumber: "4242424242424242", Expiry: "12/30", CVC: "123"}, false},
		{"spaces stripped", model.PaymentInstrument{CardNumber: "4242 4242 4242 4242", Expiry: "01/29", CVC: "1234"}, false},
		{"letters in number", model.PaymentInstrument{CardNumber: "4242abcd42424242", Expiry: "12/30", CVC: "123"}, true},
		{"short number", model.PaymentInstrument{CardNumber: "4242", Expiry: "12/30", CVC: "123"}, true},
		{"bad expiry month", model.PaymentInstrument{CardNumber: "4242424242424242", Expiry: "13/30", CVC: "123"}, true},
		{"bad expiry format", model.PaymentInstrument{CardNumber: "4242424242424242", Expiry: "2030-12", CVC: "123"}, true},
		{"short cvc", model.PaymentInstrument{CardNumber: "4242424242424242", Expiry: "12/30", CVC: "12"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := v.ValidateInstrument(&in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInstrument() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDeliveryOption(t *testing.T) {
	v := New()

	valid := model.DeliveryOption{ID: "cdek-pvz", Name: "СДЭК: Пункт выдачи", Price: 380, DaysMin: 3, DaysMax: 5, Type: model.DeliveryPoint}
	if err := v.ValidateDeliveryOption(&valid); err != nil {
		t.Errorf("Expected valid option, got %v", err)
	}

	inverted := valid
	inverted.DaysMin, inverted.DaysMax = 5, 3
	if err := v.ValidateDeliveryOption(&inverted); err == nil {
		t.Error("Expected error for daysMax < daysMin")
	}

	badType := valid
	badType.Type = "drone"
	if err := v.ValidateDeliveryOption(&badType); err == nil {
		t.Error("Expected error for unknown delivery type")
	}
}
