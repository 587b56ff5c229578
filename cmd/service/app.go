package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"topstore/internal/config"
	"topstore/internal/health"
	httpapi "topstore/internal/http"
	"topstore/internal/lifecycle"
	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/ratelimit"
	"topstore/internal/storefront"
)

// App собранный сервис магазина
type App struct {
	Config     *config.Config
	State      *storefront.State
	Health     *health.Health
	Limiter    *ratelimit.TokenBucket
	HTTPServer *http.Server

	lifecycle *lifecycle.Manager
	log       *logger.Logger
	listener  net.Listener
	stopBg    context.CancelFunc
}

// NewApp загружает состояние магазина и собирает HTTP сервер.
// Сервисы регистрируются в порядке запуска: хранилище, фоновые задачи, HTTP.
func NewApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	log = logger.OrDiscard(log)
	app := &App{
		Config:    cfg,
		log:       log,
		lifecycle: lifecycle.New(log),
	}

	st, err := storefront.Open(ctx, storefront.Deps{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.New(),
	})
	if err != nil {
		return nil, err
	}
	app.State = st

	app.initHealth()

	var opts []httpapi.Option
	if cfg.RateLimit.Enabled {
		app.Limiter = ratelimit.NewTokenBucket(cfg.RateLimit)
		opts = append(opts, httpapi.WithRateLimiter(app.Limiter))
	}

	api := httpapi.NewServer(st, app.Health, log, opts...)
	app.HTTPServer = &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.HTTP.Port),
		Handler:      api,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	app.lifecycle.Register(lifecycle.NewServiceWrapper("storefront", nil, st.Close))
	app.lifecycle.Register(lifecycle.NewServiceWrapper("background", app.startBackground, app.stopBackground))
	app.lifecycle.Register(lifecycle.NewServiceWrapper("http", app.startHTTP, app.HTTPServer.Shutdown))

	return app, nil
}

// initHealth хранилище критично, брокер уведомлений нет
func (a *App) initHealth() {
	a.Health = health.New()
	a.Health.AddChecker(health.NewStoreChecker(a.State.Store))
	if a.Config.Kafka.Enabled {
		a.Health.AddOptional(health.NewKafkaChecker(a.Config.Kafka.Brokers))
	}
}

func (a *App) startBackground(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	a.stopBg = cancel
	if a.Limiter != nil {
		go a.Limiter.StartCleanup(bgCtx)
	}
	return nil
}

func (a *App) stopBackground(context.Context) error {
	if a.stopBg != nil {
		a.stopBg()
	}
	return nil
}

// startHTTP занимает порт синхронно, чтобы ошибка bind вернулась из Start
func (a *App) startHTTP(context.Context) error {
	ln, err := net.Listen("tcp", a.HTTPServer.Addr)
	if err != nil {
		return err
	}
	a.listener = ln

	go func() {
		a.log.WithField("addr", ln.Addr().String()).Info("Starting HTTP server")
		if err := a.HTTPServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.WithError(err).Error("HTTP server error")
		}
	}()
	return nil
}

// Addr адрес, на котором слушает HTTP сервер после Start
func (a *App) Addr() string {
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

func (a *App) Start(ctx context.Context) error {
	return a.lifecycle.Start(ctx)
}

// Stop останавливает HTTP, фоновые задачи и сохраняет состояние
func (a *App) Stop(ctx context.Context) error {
	return a.lifecycle.Stop(ctx, a.Config.App.GracefulShutdownTimeout)
}
