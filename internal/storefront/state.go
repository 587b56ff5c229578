package storefront

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"topstore/internal/cache"
	"topstore/internal/catalog"
	"topstore/internal/cart"
	"topstore/internal/checkout"
	"topstore/internal/config"
	"topstore/internal/interfaces"
	"topstore/internal/kafka"
	"topstore/internal/ledger"
	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/model"
	"topstore/internal/notify"
	"topstore/internal/payment"
	"topstore/internal/shipping"
	"topstore/internal/store"
	"topstore/internal/validator"
)

// Deps внешние зависимости состояния. Пустые поля заполняются
// реализациями по умолчанию из конфигурации.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Backend  store.Backend
	Quoter   interfaces.ShippingQuoter
	Gateway  interfaces.PaymentGateway
	Notifier interfaces.OrderNotifier
}

// State состояние магазина: создается один раз при старте из хранилища
// и передается явно в API и CLI
type State struct {
	Config     *config.Config
	Store      *store.Store
	Catalog    *catalog.Repository
	Cart       *cart.Manager
	Ledger     *ledger.Ledger
	Checkout   *checkout.Orchestrator
	Session    *checkout.Session
	Dispatcher *notify.Dispatcher
	IDs        *ledger.IDGenerator
	Metrics    *metrics.Metrics
	Producer   *kafka.Producer

	quoteCache interfaces.QuoteCache
	log        *logrus.Entry
}

// Open загружает коллекции и собирает сервисы
func Open(ctx context.Context, d Deps) (*State, error) {
	cfg := d.Config
	if cfg == nil {
		return nil, errors.New("storefront: config is required")
	}
	log := logger.OrDiscard(d.Logger)
	m := d.Metrics
	if m == nil {
		m = metrics.New()
	}

	backend := d.Backend
	if backend == nil {
		var err error
		if backend, err = OpenBackend(ctx, cfg, log); err != nil {
			return nil, err
		}
	}

	loadCtx := ctx
	if cfg.App.StoreLoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(ctx, cfg.App.StoreLoadTimeout)
		defer cancel()
	}

	s := store.New(backend, log, m)
	v := validator.New()
	st := &State{
		Config:  cfg,
		Store:   s,
		Catalog: catalog.New(loadCtx, s, v, log),
		Cart:    cart.New(loadCtx, s, m, log),
		Ledger:  ledger.New(loadCtx, s, m, log),
		Metrics: m,
		log:     log.Component("storefront"),
	}

	quoter := d.Quoter
	if quoter == nil {
		st.quoteCache = cache.NewQuoteCache(cfg.Shipping.CacheMaxSize, cfg.Shipping.CacheTTL)
		quoter = shipping.NewResilient(shipping.NewCalculator(cfg.Shipping), cfg, st.quoteCache, m, log)
	}
	gateway := d.Gateway
	if gateway == nil {
		gateway = payment.NewMockGateway(cfg.Payment, log)
	}
	notifier := d.Notifier
	if notifier == nil {
		var err error
		if notifier, err = st.defaultNotifier(log); err != nil {
			s.Close()
			return nil, err
		}
	}
	st.Dispatcher = notify.NewDispatcher(notifier, cfg.Notify, m, log)

	st.IDs = ledger.NewIDGenerator()
	st.IDs.Seed(st.Ledger.List())

	st.Checkout = checkout.NewOrchestrator(checkout.Deps{
		Cart:       st.Cart,
		Ledger:     st.Ledger,
		Quoter:     quoter,
		Gateway:    gateway,
		Dispatcher: st.Dispatcher,
		Validator:  v,
		IDs:        st.IDs,
		Config:     cfg,
		Metrics:    m,
		Logger:     log,
	})
	st.Session = st.Checkout.NewSession()

	st.log.WithFields(logrus.Fields{
		"products":   st.Catalog.Count(),
		"cart_lines": st.Cart.Len(),
		"orders":     st.Ledger.Count(),
	}).Info("Storefront state loaded")
	return st, nil
}

// defaultNotifier лог оператора и, если включена Kafka, топик уведомлений
func (st *State) defaultNotifier(log *logger.Logger) (interfaces.OrderNotifier, error) {
	channels := notify.Multi{notify.NewLogNotifier(log)}
	if !st.Config.Kafka.Enabled {
		return channels, nil
	}

	producer, err := kafka.NewProducer(st.Config.Kafka)
	if err != nil {
		return nil, err
	}
	st.Producer = producer
	return append(channels, notify.NewKafkaNotifier(producer)), nil
}

// Stats сводка для админки
func (st *State) Stats() model.AdminStats {
	return st.Ledger.Stats(st.Catalog.Count())
}

// Close дожидается отправки оповещений и закрывает хранилище
func (st *State) Close(ctx context.Context) error {
	var errs []error
	if err := st.Dispatcher.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if st.quoteCache != nil {
		st.quoteCache.Stop()
	}
	if st.Producer != nil {
		if err := st.Producer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := st.Store.Close(); err != nil {
		errs = append(errs, err)
	}
	st.log.Info("Storefront state closed")
	return errors.Join(errs...)
}
