package shipping

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"topstore/internal/config"
	"topstore/internal/model"
)

// Тариф СДЭК от склада в Минске
const (
	baseRate      = 300
	perCharRate   = 10
	perKgRate     = 100
	courierFactor = 1.5
	expressFactor = 2.5
)

// Calculator локальный расчет тарифа СДЭК. Цена зависит от длины названия
// города (условное расстояние) и веса отправления.
type Calculator struct {
	latency time.Duration
}

func NewCalculator(cfg config.ShippingConfig) *Calculator {
	return &Calculator{latency: cfg.SimulatedLatency}
}

// Quote возвращает три варианта доставки: ПВЗ, курьер, экспресс
func (c *Calculator) Quote(ctx context.Context, city string, totalWeightKg float64) ([]model.DeliveryOption, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	return Tariff(city, totalWeightKg), nil
}

// Tariff чистая функция расчета без задержки
func Tariff(city string, totalWeightKg float64) []model.DeliveryOption {
	base := float64(baseRate+perCharRate*utf8.RuneCountInString(strings.TrimSpace(city))) + totalWeightKg*perKgRate

	return []model.DeliveryOption{
		{
			ID:      "cdek-pvz",
			Name:    "СДЭК: Пункт выдачи",
			Price:   int(math.Floor(base)),
			DaysMin: 3,
			DaysMax: 5,
			Type:    model.DeliveryPoint,
		},
		{
			ID:      "cdek-courier",
			Name:    "СДЭК: Курьер до двери",
			Price:   int(math.Floor(base * courierFactor)),
			DaysMin: 2,
			DaysMax: 4,
			Type:    model.DeliveryCourier,
		},
		{
			ID:      "cdek-super",
			Name:    "СДЭК: Супер-экспресс",
			Price:   int(math.Floor(base * expressFactor)),
			DaysMin: 1,
			DaysMax: 2,
			Type:    model.DeliveryCourier,
		},
	}
}

// Eligible можно ли запрашивать расчет для адреса: страна обслуживается,
// а город введен хотя бы на MinCityLength символов
func Eligible(country, city string, cfg config.ShippingConfig) bool {
	minLen := cfg.MinCityLength
	if minLen < 1 {
		minLen = 1
	}
	return strings.EqualFold(strings.TrimSpace(country), cfg.SupportedCountry) &&
		utf8.RuneCountInString(strings.TrimSpace(city)) >= minLen
}
