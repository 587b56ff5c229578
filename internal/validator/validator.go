package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "topstore/internal/errors"
	"topstore/internal/interfaces"
	"topstore/internal/model"
)

var expiryRegex = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

// Validator проверяет доменные структуры по validate-тегам модели
type Validator struct {
	validator *validator.Validate
}

func New() interfaces.Validator {
	return newValidator()
}

func newValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// в сообщениях об ошибках поля называются так же, как в JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("expiry", func(fl validator.FieldLevel) bool {
		return expiryRegex.MatchString(fl.Field().String())
	})

	return &Validator{validator: v}
}

// ValidateProduct проверяет форму товара перед записью в каталог
func (v *Validator) ValidateProduct(p *model.Product) error {
	if p == nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "product is nil")
	}
	return v.validate(p, "PRODUCT_INVALID")
}

// ValidateDetails проверяет, что все поля контакта и адреса заполнены
func (v *Validator) ValidateDetails(d *model.UserDetails) error {
	if d == nil {
		return apperrors.ErrDetailsIncomplete
	}
	trimmed := model.UserDetails{
		FullName: strings.TrimSpace(d.FullName),
		Phone:    strings.TrimSpace(d.Phone),
		Email:    strings.TrimSpace(d.Email),
		Country:  strings.TrimSpace(d.Country),
		City:     strings.TrimSpace(d.City),
		Address:  strings.TrimSpace(d.Address),
	}
	fields := MissingFields(v.validator.Struct(trimmed))
	if len(fields) > 0 {
		return apperrors.ErrDetailsIncomplete.WithDetails("missing: " + strings.Join(fields, ", "))
	}
	return nil
}

func (v *Validator) ValidateInstrument(i *model.PaymentInstrument) error {
	if i == nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "payment instrument is nil")
	}
	i.CardNumber = strings.ReplaceAll(i.CardNumber, " ", "")
	return v.validate(i, "INSTRUMENT_INVALID")
}

func (v *Validator) ValidateDeliveryOption(o *model.DeliveryOption) error {
	if o == nil {
		return apperrors.New(apperrors.ErrorTypeValidation, "delivery option is nil")
	}
	return v.validate(o, "DELIVERY_OPTION_INVALID")
}

func (v *Validator) validate(s interface{}, code string) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var errorMessages []string
		for _, validationErr := range validationErrors {
			errorMessages = append(errorMessages, fmt.Sprintf("field '%s' failed validation: %s", validationErr.Field(), validationErr.Tag()))
		}
		return apperrors.NewWithCode(
			apperrors.ErrorTypeValidation,
			"validation failed: "+strings.Join(errorMessages, "; "),
			code,
		)
	}
	return apperrors.Wrap(err, apperrors.ErrorTypeValidation, "validation error")
}

// MissingFields имена полей, не прошедших проверку required
func MissingFields(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}
	var fields []string
	for _, fe := range validationErrors {
		if fe.Tag() == "required" {
			fields = append(fields, fe.Field())
		}
	}
	return fields
}
