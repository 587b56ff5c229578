package checkout

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"topstore/internal/config"
	"topstore/internal/interfaces"
	"topstore/internal/ledger"
	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/model"
)

// Cart часть корзины, нужная оформлению
type Cart interface {
	Items() []model.CartItem
	TotalWeight() float64
	Subtotal() int
	RemoveLines(ctx context.Context, paid []model.CartItem)
}

// OrderRecorder журнал, в который попадает оплаченный заказ
type OrderRecorder interface {
	Create(ctx context.Context, order model.Order) bool
}

// Dispatcher фоновая отправка оповещений оператору
type Dispatcher interface {
	Dispatch(n model.OrderNotification)
}

// Deps зависимости оркестратора
type Deps struct {
	Cart       Cart
	Ledger     OrderRecorder
	Quoter     interfaces.ShippingQuoter
	Gateway    interfaces.PaymentGateway
	Dispatcher Dispatcher
	Validator  interfaces.Validator
	IDs        *ledger.IDGenerator
	Config     *config.Config
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
}

// Orchestrator связывает корзину, расчет доставки, оплату и журнал заказов
type Orchestrator struct {
	cart       Cart
	ledger     OrderRecorder
	quoter     interfaces.ShippingQuoter
	gateway    interfaces.PaymentGateway
	dispatcher Dispatcher
	validator  interfaces.Validator
	ids        *ledger.IDGenerator
	shipping   config.ShippingConfig
	payTimeout time.Duration
	metrics    *metrics.Metrics
	log        *logrus.Entry
	now        func() time.Time
}

func NewOrchestrator(d Deps) *Orchestrator {
	cfg := d.Config
	if cfg == nil {
		cfg = &config.Config{}
	}
	ids := d.IDs
	if ids == nil {
		ids = ledger.NewIDGenerator()
	}
	payTimeout := cfg.Payment.Timeout
	if payTimeout <= 0 {
		payTimeout = 30 * time.Second
	}

	return &Orchestrator{
		cart:       d.Cart,
		ledger:     d.Ledger,
		quoter:     d.Quoter,
		gateway:    d.Gateway,
		dispatcher: d.Dispatcher,
		validator:  d.Validator,
		ids:        ids,
		shipping:   cfg.Shipping,
		payTimeout: payTimeout,
		metrics:    d.Metrics,
		log:        logger.OrDiscard(d.Logger).Component("checkout"),
		now:        time.Now,
	}
}

// NewSession новая сессия оформления на шаге ввода данных
func (o *Orchestrator) NewSession() *Session {
	return &Session{
		o:     o,
		state: StateCollectingDetails,
		step:  StepDetails,
	}
}
