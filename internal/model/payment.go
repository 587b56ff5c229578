package model

import "strings"

// PaymentInstrument данные карты. В логи попадает только Masked().
type PaymentInstrument struct {
	CardNumber string `json:"cardNumber" validate:"required,min=12,max=19,numeric"`
	Expiry     string `json:"expiry" validate:"required,expiry"`
	CVC        string `json:"cvc" validate:"required,min=3,max=4,numeric"`
}

// Masked номер карты с открытыми последними четырьмя цифрами
func (p PaymentInstrument) Masked() string {
	digits := strings.ReplaceAll(p.CardNumber, " ", "")
	if len(digits) <= 4 {
		return strings.Repeat("*", len(digits))
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// ChargeResult ответ шлюза на списание
type ChargeResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
}
