package checkout

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "topstore/internal/errors"
	"topstore/internal/model"
	"topstore/internal/shipping"
)

// quoteKey входные данные расчета, при их изменении расчет повторяется
type quoteKey struct {
	country string
	city    string
	weight  float64
}

// Session одно оформление заказа. Все методы безопасны для
// конкурентного вызова, расчет доставки идет в фоне.
type Session struct {
	o *Orchestrator

	mu       sync.Mutex
	state    State
	step     int
	details  model.UserDetails
	options  []model.DeliveryOption
	selected *model.DeliveryOption

	// quoteGen растет на каждый запуск расчета, применяется только
	// ответ с текущим поколением
	quoteGen    uint64
	lastQuote   *quoteKey
	quoting     bool
	quoteErr    *apperrors.AppError
	cancelQuote context.CancelFunc

	submitting bool
	lastErr    *apperrors.AppError
	order      *model.Order
}

// View снимок сессии для отображения
type View struct {
	State        State                  `json:"state"`
	Step         int                    `json:"step"`
	Details      model.UserDetails      `json:"details"`
	Options      []model.DeliveryOption `json:"options"`
	Selected     *model.DeliveryOption  `json:"selected,omitempty"`
	Quoting      bool                   `json:"quoting"`
	Submitting   bool                   `json:"submitting"`
	Subtotal     int                    `json:"subtotal"`
	DeliveryCost int                    `json:"deliveryCost"`
	Total        int                    `json:"total"`
	QuoteError   *apperrors.AppError    `json:"quoteError,omitempty"`
	Error        *apperrors.AppError    `json:"error,omitempty"`
	OrderID      string                 `json:"orderId,omitempty"`
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Step шаг ввода, на котором находится сессия (в том числе в Errored)
func (s *Session) Step() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// UpdateDetails сохраняет данные покупателя и при смене страны, города или
// веса корзины запускает новый расчет. Канал закрывается, когда расчет
// завершен; если расчет не запускался, канал уже закрыт.
func (s *Session) UpdateDetails(ctx context.Context, d model.UserDetails) (<-chan struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inputAllowed(StepDetails); err != nil {
		return closedChan(), err
	}
	s.details = d
	s.clearError()
	return s.requote(ctx), nil
}

// RefreshQuote перечитывает вес корзины и пересчитывает доставку,
// если что-то изменилось. Вызывается после изменений корзины.
func (s *Session) RefreshQuote(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateCompleted {
		return closedChan()
	}
	return s.requote(ctx)
}

// Options текущие варианты доставки
func (s *Session) Options() []model.DeliveryOption {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOptions(s.options)
}

// SelectDelivery выбирает вариант доставки из текущего расчета
func (s *Session) SelectDelivery(optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inputAllowed(StepDetails); err != nil {
		return err
	}
	for i := range s.options {
		if s.options[i].ID != optionID {
			continue
		}
		opt := s.options[i]
		if s.o.validator != nil {
			if err := s.o.validator.ValidateDeliveryOption(&opt); err != nil {
				return err
			}
		}
		s.selected = &opt
		s.clearError()
		return nil
	}
	return apperrors.ErrUnknownDeliveryOption.WithDetails("option " + optionID)
}

// ConfirmDetails переход с шага данных на шаг оплаты
func (s *Session) ConfirmDetails() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inputAllowed(StepDetails); err != nil {
		return err
	}
	if len(s.o.cart.Items()) == 0 {
		return s.fail(StepDetails, apperrors.ErrEmptyCart)
	}
	if s.o.validator != nil {
		if err := s.o.validator.ValidateDetails(&s.details); err != nil {
			appErr, ok := apperrors.As(err)
			if !ok {
				appErr = apperrors.ErrDetailsIncomplete.WithCause(err)
			}
			return s.fail(StepDetails, appErr)
		}
	}
	if s.selected == nil {
		return s.fail(StepDetails, apperrors.ErrShippingNotSelected)
	}
	if s.quoting {
		return s.fail(StepDetails, apperrors.ErrShippingNotSelected.WithDetails("delivery is being recalculated"))
	}

	s.step = StepPayment
	s.state = StateDetailsConfirmed
	s.lastErr = nil
	return nil
}

// Back возврат с шага оплаты к вводу данных
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inputAllowed(StepPayment); err != nil {
		return err
	}
	s.step = StepDetails
	s.lastErr = nil
	s.state = s.detailsState()
	return nil
}

// Pay списывает итог заказа один раз. Пока списание идет, повторный вызов
// возвращает ErrPaymentInProgress без обращения к шлюзу. При отказе корзина
// и журнал не меняются; при успехе заказ записывается в журнал, оплаченные
// строки уходят из корзины, оператор получает оповещение.
func (s *Session) Pay(ctx context.Context, instrument model.PaymentInstrument) (string, error) {
	s.mu.Lock()
	if err := s.inputAllowed(StepPayment); err != nil {
		s.mu.Unlock()
		return "", err
	}
	if s.o.validator != nil {
		if err := s.o.validator.ValidateInstrument(&instrument); err != nil {
			appErr, ok := apperrors.As(err)
			if !ok {
				appErr = apperrors.Wrap(err, apperrors.ErrorTypeValidation, "invalid payment instrument")
			}
			err = s.fail(StepPayment, appErr)
			s.mu.Unlock()
			return "", err
		}
	}

	items := s.o.cart.Items()
	if len(items) == 0 {
		err := s.fail(StepDetails, apperrors.ErrEmptyCart)
		s.mu.Unlock()
		return "", err
	}
	if s.selected == nil || s.quoting {
		err := s.fail(StepDetails, apperrors.ErrShippingNotSelected)
		s.mu.Unlock()
		return "", err
	}

	delivery := *s.selected
	details := s.details
	total := model.Subtotal(items) + delivery.Price

	s.submitting = true
	s.state = StateAwaitingPayment
	s.lastErr = nil
	s.mu.Unlock()

	// списание не прерывается отменой запроса клиента, только таймаутом
	chargeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.o.payTimeout)
	result, chargeErr := s.o.gateway.Charge(chargeCtx, total, instrument)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false

	log := s.o.log.WithFields(logrus.Fields{
		"amount": total,
		"card":   instrument.Masked(),
	})

	if chargeErr != nil {
		s.o.metrics.RecordPayment("error")
		log.WithError(chargeErr).Warn("Payment gateway error")
		return "", s.fail(StepPayment, apperrors.ErrPaymentFailed.WithCause(chargeErr))
	}
	if !result.Success {
		s.o.metrics.RecordPayment("declined")
		log.Info("Payment declined")
		return "", s.fail(StepPayment, apperrors.ErrPaymentFailed.WithDetails("declined by gateway"))
	}
	s.o.metrics.RecordPayment("success")

	order := model.Order{
		ID:          s.o.ids.Next(),
		Date:        s.o.now().UTC(),
		Status:      model.OrderStatusPaid,
		Items:       items,
		UserDetails: trimDetails(details),
		Delivery: model.OrderDelivery{
			Method: delivery,
			Cost:   delivery.Price,
		},
		TotalAmount: total,
	}

	persistCtx := context.WithoutCancel(ctx)
	if !s.o.ledger.Create(persistCtx, order) {
		log.WithFields(logrus.Fields{
			"order_id":       order.ID,
			"transaction_id": result.TransactionID,
		}).Error("Paid order was not recorded")
		return "", s.fail(StepPayment, apperrors.New(apperrors.ErrorTypeInternal, "order was not recorded"))
	}
	s.o.cart.RemoveLines(persistCtx, items)
	if s.o.dispatcher != nil {
		s.o.dispatcher.Dispatch(model.NewOrderNotification(order))
	}

	s.order = &order
	s.state = StateCompleted
	s.lastErr = nil

	log.WithFields(logrus.Fields{
		"order_id":       order.ID,
		"transaction_id": result.TransactionID,
		"delivery":       delivery.ID,
	}).Info("Checkout completed")
	return order.ID, nil
}

// Snapshot текущее состояние сессии
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		State:      s.state,
		Step:       s.step,
		Details:    s.details,
		Options:    cloneOptions(s.options),
		Quoting:    s.quoting,
		Submitting: s.submitting,
		QuoteError: s.quoteErr,
		Error:      s.lastErr,
	}
	if v.Options == nil {
		v.Options = []model.DeliveryOption{}
	}
	if s.selected != nil {
		sel := *s.selected
		v.Selected = &sel
		v.DeliveryCost = sel.Price
	}

	if s.order != nil {
		v.OrderID = s.order.ID
		v.DeliveryCost = s.order.Delivery.Cost
		v.Subtotal = s.order.TotalAmount - s.order.Delivery.Cost
		v.Total = s.order.TotalAmount
		return v
	}
	v.Subtotal = s.o.cart.Subtotal()
	v.Total = v.Subtotal + v.DeliveryCost
	return v
}

// Reset возвращает сессию в исходное состояние. Ответ начатого расчета
// будет отброшен.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return apperrors.ErrPaymentInProgress
	}
	if s.cancelQuote != nil {
		s.cancelQuote()
	}
	s.quoteGen++
	s.cancelQuote = nil
	s.lastQuote = nil
	s.quoting = false
	s.quoteErr = nil
	s.state = StateCollectingDetails
	s.step = StepDetails
	s.details = model.UserDetails{}
	s.options = nil
	s.selected = nil
	s.lastErr = nil
	s.order = nil
	return nil
}

// requote вызывается под s.mu
func (s *Session) requote(ctx context.Context) <-chan struct{} {
	key := quoteKey{
		country: strings.ToLower(strings.TrimSpace(s.details.Country)),
		city:    strings.ToLower(strings.TrimSpace(s.details.City)),
		weight:  s.o.cart.TotalWeight(),
	}
	if s.lastQuote != nil && *s.lastQuote == key {
		return closedChan()
	}
	s.lastQuote = &key

	s.quoteGen++
	gen := s.quoteGen
	if s.cancelQuote != nil {
		s.cancelQuote()
		s.cancelQuote = nil
	}

	if !shipping.Eligible(s.details.Country, s.details.City, s.o.shipping) {
		s.options = nil
		s.selected = nil
		s.quoteErr = nil
		s.quoting = false
		if s.state == StateAwaitingShippingQuote {
			s.state = StateCollectingDetails
		}
		return closedChan()
	}

	s.quoting = true
	if s.step == StepDetails && s.state != StateErrored {
		s.state = StateAwaitingShippingQuote
	}

	quoteCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancelQuote = cancel
	city := strings.TrimSpace(s.details.City)
	weight := key.weight

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		options, err := s.o.quoter.Quote(quoteCtx, city, weight)
		s.applyQuote(gen, options, err)
	}()
	return done
}

func (s *Session) applyQuote(gen uint64, options []model.DeliveryOption, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.quoteGen {
		s.o.metrics.RecordStaleQuote()
		s.o.log.WithFields(logrus.Fields{
			"generation": gen,
			"current":    s.quoteGen,
		}).Debug("Stale quote discarded")
		return
	}

	s.quoting = false
	s.cancelQuote = nil
	if s.state == StateAwaitingShippingQuote {
		s.state = StateCollectingDetails
	}

	if err != nil {
		s.options = nil
		s.selected = nil
		appErr, ok := apperrors.As(err)
		if !ok {
			appErr = apperrors.ErrQuoteFailed.WithCause(err)
		}
		s.quoteErr = appErr
		// повторный запрос с теми же данными должен уйти в сервис
		s.lastQuote = nil
		s.o.log.WithError(err).WithField("city", s.details.City).Warn("Delivery quote failed")
		return
	}

	s.quoteErr = nil
	s.options = cloneOptions(options)
	s.selected = rebind(s.selected, s.options)
}

// inputAllowed проверяет, что операция шага step сейчас допустима.
// Вызывается под s.mu.
func (s *Session) inputAllowed(step int) error {
	switch {
	case s.state == StateCompleted:
		return apperrors.ErrCheckoutCompleted
	case s.submitting:
		return apperrors.ErrPaymentInProgress
	case s.step != step:
		return apperrors.ErrWrongStep
	}
	return nil
}

// fail переводит сессию в Errored с возвратом на шаг step
func (s *Session) fail(step int, err *apperrors.AppError) *apperrors.AppError {
	s.state = StateErrored
	s.step = step
	s.lastErr = err
	return err
}

func (s *Session) clearError() {
	if s.state == StateErrored {
		s.lastErr = nil
		s.state = s.detailsState()
	}
}

func (s *Session) detailsState() State {
	if s.quoting {
		return StateAwaitingShippingQuote
	}
	return StateCollectingDetails
}

// rebind переносит выбор на вариант с тем же id из нового расчета
func rebind(selected *model.DeliveryOption, options []model.DeliveryOption) *model.DeliveryOption {
	if selected == nil {
		return nil
	}
	for i := range options {
		if options[i].ID == selected.ID {
			opt := options[i]
			return &opt
		}
	}
	return nil
}

func trimDetails(d model.UserDetails) model.UserDetails {
	return model.UserDetails{
		FullName: strings.TrimSpace(d.FullName),
		Phone:    strings.TrimSpace(d.Phone),
		Email:    strings.TrimSpace(d.Email),
		Country:  strings.TrimSpace(d.Country),
		City:     strings.TrimSpace(d.City),
		Address:  strings.TrimSpace(d.Address),
	}
}

func cloneOptions(in []model.DeliveryOption) []model.DeliveryOption {
	if in == nil {
		return nil
	}
	out := make([]model.DeliveryOption, len(in))
	copy(out, in)
	return out
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
