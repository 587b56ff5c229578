package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"topstore/internal/logger"
)

// Service компонент с запуском и остановкой
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Name() string
}

// Manager запускает сервисы в порядке регистрации и останавливает в обратном:
// сначала перестаем принимать запросы, потом закрываем то, чем они пользуются
type Manager struct {
	services []Service
	started  int
	mu       sync.Mutex
	log      *logrus.Entry
}

func New(log *logger.Logger) *Manager {
	return &Manager{
		services: make([]Service, 0),
		log:      logger.OrDiscard(log).Component("lifecycle"),
	}
}

func (m *Manager) Register(service Service) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services = append(m.services, service)
}

// Start запускает сервисы по очереди. При ошибке уже запущенные
// останавливаются, ошибка возвращается.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, svc := range m.services[m.started:] {
		if err := svc.Start(ctx); err != nil {
			m.log.WithError(err).WithField("service", svc.Name()).Error("Service failed to start")
			stopErr := m.stopStarted(ctx)
			return errors.Join(fmt.Errorf("start %s: %w", svc.Name(), err), stopErr)
		}
		m.started++
		m.log.WithField("service", svc.Name()).Info("Service started")
	}
	return nil
}

// Stop останавливает запущенные сервисы в обратном порядке, общий срок timeout
func (m *Manager) Stop(ctx context.Context, timeout time.Duration) error {
	stopCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopStarted(stopCtx)
}

// stopStarted вызывается под m.mu
func (m *Manager) stopStarted(ctx context.Context) error {
	var errs []error
	for i := m.started - 1; i >= 0; i-- {
		svc := m.services[i]
		start := time.Now()
		if err := svc.Stop(ctx); err != nil {
			m.log.WithError(err).WithField("service", svc.Name()).Error("Service stop failed")
			errs = append(errs, fmt.Errorf("stop %s: %w", svc.Name(), err))
			continue
		}
		m.log.WithFields(logrus.Fields{
			"service":  svc.Name(),
			"duration": time.Since(start).String(),
		}).Info("Service stopped")
	}
	m.started = 0
	return errors.Join(errs...)
}

// ServiceWrapper сервис из пары функций
type ServiceWrapper struct {
	name    string
	startFn func(ctx context.Context) error
	stopFn  func(ctx context.Context) error
}

func NewServiceWrapper(name string, startFn, stopFn func(ctx context.Context) error) *ServiceWrapper {
	return &ServiceWrapper{
		name:    name,
		startFn: startFn,
		stopFn:  stopFn,
	}
}

func (w *ServiceWrapper) Start(ctx context.Context) error {
	if w.startFn != nil {
		return w.startFn(ctx)
	}
	return nil
}

func (w *ServiceWrapper) Stop(ctx context.Context) error {
	if w.stopFn != nil {
		return w.stopFn(ctx)
	}
	return nil
}

func (w *ServiceWrapper) Name() string {
	return w.name
}
