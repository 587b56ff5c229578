package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"topstore/internal/config"
	"topstore/internal/logger"
	"topstore/internal/model"
)

// MockGateway тестовый платежный шлюз. Отклоняет карты с заданным префиксом
// и суммы выше лимита, остальные списания проходят после задержки.
type MockGateway struct {
	latency       time.Duration
	declinePrefix string
	maxAmount     int
	now           func() time.Time
	log           *logrus.Entry

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewMockGateway(cfg config.PaymentConfig, log *logger.Logger) *MockGateway {
	return &MockGateway{
		latency:       cfg.SimulatedLatency,
		declinePrefix: cfg.DeclinePrefix,
		maxAmount:     cfg.MaxAmount,
		now:           time.Now,
		log:           logger.OrDiscard(log).Component("payment"),
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Charge выполняет одно списание. Ошибка означает сбой шлюза,
// отказ банка возвращается как Success=false без ошибки.
func (g *MockGateway) Charge(ctx context.Context, amount int, instrument model.PaymentInstrument) (model.ChargeResult, error) {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return model.ChargeResult{}, ctx.Err()
		}
	} else if err := ctx.Err(); err != nil {
		return model.ChargeResult{}, err
	}

	entry := g.log.WithFields(logrus.Fields{
		"amount": amount,
		"card":   instrument.Masked(),
	})

	if amount <= 0 {
		return model.ChargeResult{}, fmt.Errorf("invalid charge amount %d", amount)
	}
	card := strings.ReplaceAll(instrument.CardNumber, " ", "")
	if g.declinePrefix != "" && strings.HasPrefix(card, g.declinePrefix) {
		entry.Info("Charge declined by issuer")
		return model.ChargeResult{Success: false}, nil
	}
	if g.maxAmount > 0 && amount > g.maxAmount {
		entry.Info("Charge declined: amount over limit")
		return model.ChargeResult{Success: false}, nil
	}

	txID := g.transactionID()
	entry.WithField("transaction_id", txID).Info("Charge approved")
	return model.ChargeResult{Success: true, TransactionID: txID}, nil
}

// transactionID формат TXN-<unix ms>-<0..999>
func (g *MockGateway) transactionID() string {
	g.mu.Lock()
	n := g.rnd.Intn(1000)
	g.mu.Unlock()
	return fmt.Sprintf("TXN-%d-%d", g.now().UnixMilli(), n)
}
